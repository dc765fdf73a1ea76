package herd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

var (
	// ErrNoDueVaccination is returned when a goat has no due info for the vaccine type.
	ErrNoDueVaccination = errors.New("no due vaccination found")
	// ErrInvalidRequest marks caller input that cannot be processed.
	ErrInvalidRequest = errors.New("invalid request")
)

const (
	defaultCalendarDays = 30
	upcomingLimit       = 3
)

// Store is the subset of the record store the herd service reads and writes.
type Store interface {
	repository.GoatStore
	repository.CatalogStore
	repository.VaccinationStore
	repository.HealthStore
}

// Options tunes derived-state thresholds.
type Options struct {
	ReadyMinDays           int
	DashboardDueWindowDays int
	Location               *time.Location
}

// Service answers care questions about the herd by feeding stored records to the care engine.
type Service struct {
	store  Store
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a herd service.
func NewService(store Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReadyMinDays <= 0 {
		opts.ReadyMinDays = care.DefaultReadyMinDays
	}
	if opts.DashboardDueWindowDays <= 0 {
		opts.DashboardDueWindowDays = defaultCalendarDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{store: store, opts: opts, logger: logger, now: time.Now}
}

// Today is the current calendar day in the configured timezone.
func (s *Service) Today() time.Time {
	return dates.Today(s.now(), s.opts.Location)
}

// GoatDue pairs a goat with its computed vaccination schedule.
type GoatDue struct {
	Goat models.Goat    `json:"goat"`
	Due  []care.DueInfo `json:"due"`
}

// GoatDueInfo computes the vaccination schedule of one goat.
func (s *Service) GoatDueInfo(ctx context.Context, tag string) (GoatDue, error) {
	goat, err := s.store.GoatByTag(ctx, tag)
	if err != nil {
		return GoatDue{}, err
	}
	types, err := s.store.ListVaccineTypes(ctx)
	if err != nil {
		return GoatDue{}, err
	}
	history, err := s.store.ListVaccinations(ctx, repository.VaccinationFilter{GoatID: goat.ID})
	if err != nil {
		return GoatDue{}, err
	}
	return GoatDue{Goat: goat, Due: care.ComputeDueInfo(goat, types, history, s.Today())}, nil
}

// GoatTags derives the status tags of one goat.
func (s *Service) GoatTags(ctx context.Context, tag string) ([]models.Tag, error) {
	goat, err := s.store.GoatByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadTagInputs(ctx)
	if err != nil {
		return nil, err
	}
	return care.DeriveTags(goat, snap.tagContext(goat, s.opts.ReadyMinDays), s.Today()), nil
}

// ReadyDoes lists active does available for mating.
func (s *Service) ReadyDoes(ctx context.Context) ([]care.ReadyDoe, error) {
	does, err := s.store.ListGoats(ctx, repository.GoatFilter{ActiveOnly: true, Sex: models.SexFemale})
	if err != nil {
		return nil, err
	}
	breedings, err := s.store.ListBreedings(ctx)
	if err != nil {
		return nil, err
	}
	return care.ComputeReadyDoes(does, care.IndexBreedingsByDoe(breedings), s.opts.ReadyMinDays, s.Today()), nil
}

// CalendarFeed builds the merged calendar for [from, to]. Zero bounds default
// to today and thirty days after from.
func (s *Service) CalendarFeed(ctx context.Context, from, to time.Time) (care.Feed, error) {
	today := s.Today()
	if from.IsZero() {
		from = today
	}
	if to.IsZero() {
		to = dates.AddDays(from, defaultCalendarDays)
	}
	if dates.Day(to).Before(dates.Day(from)) {
		return care.Feed{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidRequest, dates.Format(to), dates.Format(from))
	}

	var in care.FeedInput
	var err error
	if in.FarmEvents, err = s.store.ListFarmEvents(ctx); err != nil {
		return care.Feed{}, err
	}
	if in.Breedings, err = s.store.ListBreedings(ctx); err != nil {
		return care.Feed{}, err
	}
	if in.Goats, err = s.store.ListGoats(ctx, repository.GoatFilter{}); err != nil {
		return care.Feed{}, err
	}
	if in.VaccineTypes, err = s.store.ListVaccineTypes(ctx); err != nil {
		return care.Feed{}, err
	}
	if in.Vaccinations, err = s.store.ListVaccinations(ctx, repository.VaccinationFilter{}); err != nil {
		return care.Feed{}, err
	}

	feed := care.BuildFeed(in, from, to, today)
	for _, w := range feed.Warnings {
		s.logger.Warn("calendar feed warning", zap.String("warning", w))
	}
	return feed, nil
}

// DueEntry is one computed due date of an active goat.
type DueEntry struct {
	Goat models.Goat  `json:"goat"`
	Info care.DueInfo `json:"info"`
}

// HerdDue computes the due dates of every active goat, earliest first.
func (s *Service) HerdDue(ctx context.Context) ([]DueEntry, error) {
	goats, err := s.store.ListGoats(ctx, repository.GoatFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	types, err := s.store.ListVaccineTypes(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListVaccinations(ctx, repository.VaccinationFilter{})
	if err != nil {
		return nil, err
	}
	return dueEntries(goats, types, care.IndexVaccinations(history), s.Today()), nil
}

func dueEntries(goats []models.Goat, types []models.VaccineType, history map[int64][]models.VaccinationEvent, today time.Time) []DueEntry {
	var entries []DueEntry
	for _, goat := range goats {
		for _, info := range care.ComputeDueInfo(goat, types, history[goat.ID], today) {
			entries = append(entries, DueEntry{Goat: goat, Info: info})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Info.NextDue.Equal(b.Info.NextDue) {
			return a.Info.NextDue.Before(b.Info.NextDue)
		}
		return a.Goat.Tag < b.Goat.Tag
	})
	return entries
}

// UpcomingVaccination is a dashboard line for the next doses.
type UpcomingVaccination struct {
	GoatTag       string         `json:"goat_tag"`
	VaccineTypeID int64          `json:"vaccine_type_id"`
	Vaccine       string         `json:"vaccine"`
	DueDate       time.Time      `json:"due_date"`
	Status        care.DueStatus `json:"status"`
}

// Dashboard is the herd overview.
type Dashboard struct {
	Date            time.Time             `json:"date"`
	TotalGoats      int                   `json:"total_goats"`
	Sick            int                   `json:"sick"`
	Underweight     int                   `json:"underweight"`
	ReadyToMate     int                   `json:"ready_to_mate"`
	Pregnant        int                   `json:"pregnant"`
	DueVaccinations int                   `json:"due_vaccinations"`
	Upcoming        []UpcomingVaccination `json:"upcoming"`
}

// Dashboard counts tag holders and vaccinations due within the dashboard window (overdue included).
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.Today()
	goats, err := s.store.ListGoats(ctx, repository.GoatFilter{ActiveOnly: true})
	if err != nil {
		return Dashboard{}, err
	}
	snap, err := s.loadTagInputs(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	types, err := s.store.ListVaccineTypes(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	history, err := s.store.ListVaccinations(ctx, repository.VaccinationFilter{})
	if err != nil {
		return Dashboard{}, err
	}

	board := Dashboard{Date: today, TotalGoats: len(goats), Upcoming: []UpcomingVaccination{}}
	for _, goat := range goats {
		tags := care.DeriveTags(goat, snap.tagContext(goat, s.opts.ReadyMinDays), today)
		if models.HasTag(tags, models.TagSick) {
			board.Sick++
		}
		if models.HasTag(tags, models.TagUnderweight) {
			board.Underweight++
		}
		if models.HasTag(tags, models.TagReadyToMate) {
			board.ReadyToMate++
		}
		if models.HasTag(tags, models.TagPregnant) {
			board.Pregnant++
		}
	}

	entries := dueEntries(goats, types, care.IndexVaccinations(history), today)
	for _, e := range entries {
		if dates.DaysBetween(today, e.Info.NextDue) <= s.opts.DashboardDueWindowDays {
			board.DueVaccinations++
		}
	}
	for i := 0; i < len(entries) && i < upcomingLimit; i++ {
		e := entries[i]
		board.Upcoming = append(board.Upcoming, UpcomingVaccination{
			GoatTag:       e.Goat.Tag,
			VaccineTypeID: e.Info.Vaccine.ID,
			Vaccine:       e.Info.Vaccine.Name,
			DueDate:       e.Info.NextDue,
			Status:        e.Info.Status,
		})
	}
	return board, nil
}

// tagInputs is the herd-wide data tag derivation reads.
type tagInputs struct {
	sickness  map[int64]*models.Sickness
	breedings map[int64][]models.BreedingEvent
	targets   care.TargetTable
}

func (s *Service) loadTagInputs(ctx context.Context) (tagInputs, error) {
	sicknesses, err := s.store.ListSicknesses(ctx, true)
	if err != nil {
		return tagInputs{}, err
	}
	breedings, err := s.store.ListBreedings(ctx)
	if err != nil {
		return tagInputs{}, err
	}
	targets, err := s.store.ListTargetWeights(ctx)
	if err != nil {
		return tagInputs{}, err
	}
	return tagInputs{
		sickness:  care.LatestActiveSickness(sicknesses),
		breedings: care.IndexBreedingsByDoe(breedings),
		targets:   care.TargetTable(targets),
	}, nil
}

func (t tagInputs) tagContext(goat models.Goat, readyMinDays int) care.TagContext {
	return care.TagContext{
		ActiveSickness: t.sickness[goat.ID],
		Breedings:      t.breedings[goat.ID],
		Targets:        t.targets,
		ReadyMinDays:   readyMinDays,
	}
}
