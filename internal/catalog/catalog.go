// Package catalog imports herd records from a YAML document: goat types with
// their target weight curves, vaccine types, goats, matings and farm events.
//
//	goat_types:
//	  - name: Boer
//	    target_weights:
//	      - {sex: Male, age_months: 12, min_weight: 50}
//	vaccine_types:
//	  - {name: CDT, min_age_days: 60, booster_schedule_days: "21", default_frequency_days: 365}
//	goats:
//	  - {tag: K1, type: Boer, sex: Female, dob: 2024-01-01}
//	breedings:
//	  - {buck: B1, doe: K1, start: 2024-02-10, end: 2024-02-20}
//	farm_events:
//	  - {title: Deworming, date: 2024-03-01, recurrence: monthly}
//
// Catalog entries and goats are upserted by name and tag. Breedings and farm
// events have no natural key and are appended on every import.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// ErrInvalidCatalog marks a document that parses but cannot be imported.
var ErrInvalidCatalog = errors.New("invalid catalog")

// File is the import document.
type File struct {
	GoatTypes    []GoatTypeSpec    `yaml:"goat_types"`
	VaccineTypes []VaccineTypeSpec `yaml:"vaccine_types"`
	Goats        []GoatSpec        `yaml:"goats"`
	Breedings    []BreedingSpec    `yaml:"breedings"`
	FarmEvents   []FarmEventSpec   `yaml:"farm_events"`
}

type GoatTypeSpec struct {
	Name          string       `yaml:"name"`
	TargetWeights []TargetSpec `yaml:"target_weights"`
}

// TargetSpec is one step of a weight curve. An empty sex applies to both.
type TargetSpec struct {
	Sex       string  `yaml:"sex"`
	AgeMonths int     `yaml:"age_months"`
	MinWeight float64 `yaml:"min_weight"`
}

// VaccineTypeSpec keeps the booster intervals as the comma separated list the
// records use, e.g. "21, 42".
type VaccineTypeSpec struct {
	Name                 string `yaml:"name"`
	Description          string `yaml:"description"`
	MinAgeDays           int    `yaml:"min_age_days"`
	BoosterScheduleDays  string `yaml:"booster_schedule_days"`
	DefaultFrequencyDays int    `yaml:"default_frequency_days"`
}

type GoatSpec struct {
	Tag               string  `yaml:"tag"`
	Type              string  `yaml:"type"`
	Sex               string  `yaml:"sex"`
	DOB               string  `yaml:"dob"`
	AgeEstimateMonths int     `yaml:"age_estimate_months"`
	Acquired          string  `yaml:"date_acquired"`
	AcquisitionMethod string  `yaml:"acquisition_method"`
	Pregnant          bool    `yaml:"pregnant"`
	Weight            float64 `yaml:"weight"`
	Status            string  `yaml:"status"`
	Location          string  `yaml:"location"`
	Notes             string  `yaml:"notes"`
}

// BreedingSpec names the buck and doe by tag.
type BreedingSpec struct {
	Buck   string `yaml:"buck"`
	Doe    string `yaml:"doe"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Status string `yaml:"status"`
	Notes  string `yaml:"notes"`
}

type FarmEventSpec struct {
	Title      string `yaml:"title"`
	Date       string `yaml:"date"`
	Category   string `yaml:"category"`
	Recurrence string `yaml:"recurrence"`
	Notes      string `yaml:"notes"`
	CreatedBy  string `yaml:"created_by"`
}

// Parse decodes a document, rejecting unknown keys.
func Parse(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode catalog: %w", err)
	}
	return f, nil
}

// Load parses the document at path.
func Load(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open catalog: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Store is what the importer writes to.
type Store interface {
	SaveGoatType(ctx context.Context, goatType *models.GoatType) error
	SaveTargetWeight(ctx context.Context, target *models.TargetWeight) error
	SaveVaccineType(ctx context.Context, vt *models.VaccineType) error
	SaveGoat(ctx context.Context, goat *models.Goat) error
	GoatByTag(ctx context.Context, tag string) (models.Goat, error)
	ListGoatTypes(ctx context.Context) ([]models.GoatType, error)
	CreateBreeding(ctx context.Context, event *models.BreedingEvent) error
	CreateFarmEvent(ctx context.Context, event *models.FarmEvent) error
}

// Summary counts the records written by an import.
type Summary struct {
	GoatTypes     int `json:"goat_types"`
	TargetWeights int `json:"target_weights"`
	VaccineTypes  int `json:"vaccine_types"`
	Goats         int `json:"goats"`
	Breedings     int `json:"breedings"`
	FarmEvents    int `json:"farm_events"`
}

// Importer writes catalog documents to a store.
type Importer struct {
	store  Store
	logger *zap.Logger
}

// NewImporter builds an importer.
func NewImporter(store Store, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, logger: logger}
}

// Import validates the whole document first, then writes it in dependency
// order. Nothing is written when validation fails.
func (im *Importer) Import(ctx context.Context, f File) (Summary, error) {
	plan, err := im.validate(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	typeIDs, err := im.existingTypes(ctx)
	if err != nil {
		return sum, err
	}

	for i, gt := range f.GoatTypes {
		goatType := models.GoatType{Name: gt.Name}
		if err := im.store.SaveGoatType(ctx, &goatType); err != nil {
			return sum, err
		}
		typeIDs[goatType.Name] = goatType.ID
		sum.GoatTypes++

		for _, tw := range plan.targets[i] {
			tw.GoatTypeID = goatType.ID
			if err := im.store.SaveTargetWeight(ctx, &tw); err != nil {
				return sum, err
			}
			sum.TargetWeights++
		}
	}

	for _, vt := range plan.vaccines {
		if err := im.store.SaveVaccineType(ctx, &vt); err != nil {
			return sum, err
		}
		sum.VaccineTypes++
	}

	goatIDs := make(map[string]int64, len(plan.goats))
	for i, goat := range plan.goats {
		if name := f.Goats[i].Type; name != "" {
			id, ok := typeIDs[name]
			if !ok {
				return sum, fmt.Errorf("%w: goat %s: unknown type %q", ErrInvalidCatalog, goat.Tag, name)
			}
			goat.TypeID = id
		}
		if err := im.store.SaveGoat(ctx, &goat); err != nil {
			return sum, err
		}
		goatIDs[goat.Tag] = goat.ID
		sum.Goats++
	}

	for i, b := range plan.breedings {
		spec := f.Breedings[i]
		if b.BuckID, err = im.goatID(ctx, goatIDs, spec.Buck); err != nil {
			return sum, fmt.Errorf("breeding %d buck: %w", i+1, err)
		}
		if b.DoeID, err = im.goatID(ctx, goatIDs, spec.Doe); err != nil {
			return sum, fmt.Errorf("breeding %d doe: %w", i+1, err)
		}
		if err := im.store.CreateBreeding(ctx, &b); err != nil {
			return sum, err
		}
		sum.Breedings++
	}

	for _, ev := range plan.events {
		if err := im.store.CreateFarmEvent(ctx, &ev); err != nil {
			return sum, err
		}
		sum.FarmEvents++
	}

	im.logger.Info("catalog imported",
		zap.Int("goat_types", sum.GoatTypes),
		zap.Int("vaccine_types", sum.VaccineTypes),
		zap.Int("goats", sum.Goats),
		zap.Int("breedings", sum.Breedings),
		zap.Int("farm_events", sum.FarmEvents))
	return sum, nil
}

type plan struct {
	targets   [][]models.TargetWeight
	vaccines  []models.VaccineType
	goats     []models.Goat
	breedings []models.BreedingEvent
	events    []models.FarmEvent
}

func (im *Importer) validate(ctx context.Context, f File) (plan, error) {
	var (
		p    plan
		errs []error
	)
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidCatalog}, args...)...))
	}

	existing, err := im.existingTypes(ctx)
	if err != nil {
		return plan{}, err
	}
	types := make(map[string]bool, len(existing)+len(f.GoatTypes))
	for name := range existing {
		types[name] = true
	}
	for _, gt := range f.GoatTypes {
		if strings.TrimSpace(gt.Name) == "" {
			invalid("goat type without name")
		}
		types[gt.Name] = true
		var targets []models.TargetWeight
		for _, tw := range gt.TargetWeights {
			sex, err := parseSex(tw.Sex, true)
			if err != nil {
				invalid("goat type %s target weight: %v", gt.Name, err)
			}
			if tw.MinWeight <= 0 || tw.AgeMonths < 0 {
				invalid("goat type %s target weight at %d months: weight must be positive", gt.Name, tw.AgeMonths)
			}
			targets = append(targets, models.TargetWeight{Sex: sex, AgeMonths: tw.AgeMonths, MinWeight: tw.MinWeight})
		}
		p.targets = append(p.targets, targets)
	}

	for _, vt := range f.VaccineTypes {
		boosters, err := models.ParseBoosterSchedule(vt.BoosterScheduleDays)
		if err != nil {
			invalid("vaccine type %s: %v", vt.Name, err)
		}
		if strings.TrimSpace(vt.Name) == "" {
			invalid("vaccine type without name")
		}
		p.vaccines = append(p.vaccines, models.VaccineType{
			Name:                 vt.Name,
			Description:          vt.Description,
			MinAgeDays:           vt.MinAgeDays,
			BoosterDays:          boosters,
			DefaultFrequencyDays: vt.DefaultFrequencyDays,
		})
	}

	tags := make(map[string]bool)
	for _, g := range f.Goats {
		if strings.TrimSpace(g.Tag) == "" {
			invalid("goat without tag")
			continue
		}
		if tags[g.Tag] {
			invalid("goat %s listed twice", g.Tag)
		}
		tags[g.Tag] = true

		sex, err := parseSex(g.Sex, false)
		if err != nil {
			invalid("goat %s: %v", g.Tag, err)
		}
		status, err := parseStatus(g.Status)
		if err != nil {
			invalid("goat %s: %v", g.Tag, err)
		}
		dob, err := optionalDate(g.DOB)
		if err != nil {
			invalid("goat %s dob: %v", g.Tag, err)
		}
		acquired, err := optionalDate(g.Acquired)
		if err != nil {
			invalid("goat %s date_acquired: %v", g.Tag, err)
		}
		if g.Type != "" && !types[g.Type] {
			invalid("goat %s: unknown type %q", g.Tag, g.Type)
		}

		goat := models.Goat{
			Tag:               g.Tag,
			Sex:               sex,
			BirthDate:         dob,
			AgeEstimateMonths: g.AgeEstimateMonths,
			AcquisitionMethod: g.AcquisitionMethod,
			Pregnant:          g.Pregnant,
			Weight:            g.Weight,
			Status:            status,
			Location:          g.Location,
			Notes:             g.Notes,
		}
		if acquired != nil {
			goat.AcquiredOn = *acquired
		}
		p.goats = append(p.goats, goat)
	}

	for i, b := range f.Breedings {
		start, err := dates.Parse(b.Start)
		if err != nil {
			invalid("breeding %d start: %v", i+1, err)
		}
		end, err := optionalDate(b.End)
		if err != nil {
			invalid("breeding %d end: %v", i+1, err)
		}
		if end != nil && end.Before(start) {
			invalid("breeding %d ends before it starts", i+1)
		}
		for _, tag := range []string{b.Buck, b.Doe} {
			if tags[tag] {
				continue
			}
			_, err := im.store.GoatByTag(ctx, tag)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				invalid("breeding %d: unknown goat %q", i+1, tag)
			case err != nil:
				return plan{}, err
			}
		}
		p.breedings = append(p.breedings, models.BreedingEvent{MatingStart: start, MatingEnd: end, Status: b.Status, Notes: b.Notes})
	}

	for _, ev := range f.FarmEvents {
		day, err := dates.Parse(ev.Date)
		if err != nil {
			invalid("farm event %q date: %v", ev.Title, err)
		}
		rec := models.Recurrence(strings.ToLower(strings.TrimSpace(ev.Recurrence)))
		switch rec {
		case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		default:
			invalid("farm event %q: unknown recurrence %q", ev.Title, ev.Recurrence)
		}
		p.events = append(p.events, models.FarmEvent{
			Title:      ev.Title,
			Date:       day,
			Category:   ev.Category,
			Recurrence: rec,
			Notes:      ev.Notes,
			CreatedBy:  ev.CreatedBy,
		})
	}

	return p, errors.Join(errs...)
}

func (im *Importer) existingTypes(ctx context.Context) (map[string]int64, error) {
	types, err := im.store.ListGoatTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load goat types: %w", err)
	}
	ids := make(map[string]int64, len(types))
	for _, t := range types {
		ids[t.Name] = t.ID
	}
	return ids, nil
}

func (im *Importer) goatID(ctx context.Context, imported map[string]int64, tag string) (int64, error) {
	if id, ok := imported[tag]; ok {
		return id, nil
	}
	goat, err := im.store.GoatByTag(ctx, tag)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%w: unknown goat %q", ErrInvalidCatalog, tag)
	}
	if err != nil {
		return 0, err
	}
	return goat.ID, nil
}

func parseSex(raw string, optional bool) (models.Sex, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m", "buck":
		return models.SexMale, nil
	case "female", "f", "doe":
		return models.SexFemale, nil
	case "":
		if optional {
			return "", nil
		}
	}
	return "", fmt.Errorf("unknown sex %q", raw)
}

func parseStatus(raw string) (models.GoatStatus, error) {
	switch models.GoatStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.GoatActive:
		return models.GoatActive, nil
	case models.GoatRemoved:
		return models.GoatRemoved, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := dates.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
