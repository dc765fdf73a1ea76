package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	repo "github.com/mamadbah2/herdcare/internal/repository/sheets"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const defaultDueSoonDays = 7

// HerdReader is the part of the herd service reports are computed from.
type HerdReader interface {
	Today() time.Time
	HerdDue(ctx context.Context) ([]herd.DueEntry, error)
	Dashboard(ctx context.Context) (herd.Dashboard, error)
}

// Store provides catalog names and keeps daily snapshots.
type Store interface {
	ListGoatTypes(ctx context.Context) ([]models.GoatType, error)
	ListVaccineTypes(ctx context.Context) ([]models.VaccineType, error)
	repository.ReportStore
}

// Service exposes vaccination reports and the daily herd digest.
type Service struct {
	herd        HerdReader
	store       Store
	exporter    repo.Repository
	dueSoonDays int
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires a new reporting service instance. A nil exporter disables
// the Sheets export.
func NewService(herdReader HerdReader, store Store, exporter repo.Repository, dueSoonDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dueSoonDays <= 0 {
		dueSoonDays = defaultDueSoonDays
	}
	return &Service{
		herd:        herdReader,
		store:       store,
		exporter:    exporter,
		dueSoonDays: dueSoonDays,
		logger:      logger,
		now:         time.Now,
	}
}

// OverdueRow is one overdue vaccination of an active goat.
type OverdueRow struct {
	GoatTag     string     `json:"goat_tag"`
	GoatType    string     `json:"goat_type"`
	Vaccine     string     `json:"vaccine"`
	LastGiven   *time.Time `json:"last_given,omitempty"`
	NextDue     time.Time  `json:"next_due"`
	DaysOverdue int        `json:"days_overdue"`
}

// OverdueReport lists overdue vaccinations, earliest due date first and then by tag.
func (s *Service) OverdueReport(ctx context.Context) ([]OverdueRow, error) {
	entries, err := s.herd.HerdDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute herd due dates: %w", err)
	}
	typeNames, err := s.goatTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	today := s.herd.Today()
	rows := []OverdueRow{}
	for _, e := range entries {
		if e.Info.Status != care.StatusOverdue {
			continue
		}
		rows = append(rows, OverdueRow{
			GoatTag:     e.Goat.Tag,
			GoatType:    typeNames[e.Goat.TypeID],
			Vaccine:     e.Info.Vaccine.Name,
			LastGiven:   e.Info.LastGiven,
			NextDue:     e.Info.NextDue,
			DaysOverdue: e.Info.DaysOverdue(today),
		})
	}
	return rows, nil
}

// OverdueGoat is a goat missing a dose in the compliance report.
type OverdueGoat struct {
	GoatTag string    `json:"goat_tag"`
	DueDate time.Time `json:"due_date"`
}

// Compliance summarises one vaccine type across the active herd.
type Compliance struct {
	Vaccine   models.VaccineType `json:"vaccine"`
	Total     int                `json:"total"`
	Compliant int                `json:"compliant"`
	Percent   int                `json:"percent"`
	Overdue   []OverdueGoat      `json:"overdue"`
}

// ComplianceReport counts, per vaccine type, the eligible goats and those not overdue.
// A vaccine type nobody is eligible for reports 100 percent.
func (s *Service) ComplianceReport(ctx context.Context) ([]Compliance, error) {
	types, err := s.store.ListVaccineTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vaccine types: %w", err)
	}
	entries, err := s.herd.HerdDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute herd due dates: %w", err)
	}

	byType := make(map[int64]*Compliance, len(types))
	report := make([]Compliance, len(types))
	for i, vt := range types {
		report[i] = Compliance{Vaccine: vt, Overdue: []OverdueGoat{}}
		byType[vt.ID] = &report[i]
	}

	for _, e := range entries {
		c, ok := byType[e.Info.Vaccine.ID]
		if !ok {
			continue
		}
		c.Total++
		if e.Info.Status == care.StatusOverdue {
			c.Overdue = append(c.Overdue, OverdueGoat{GoatTag: e.Goat.Tag, DueDate: e.Info.NextDue})
			continue
		}
		c.Compliant++
	}

	for i := range report {
		report[i].Percent = compliancePercent(report[i].Compliant, report[i].Total)
	}
	return report, nil
}

func compliancePercent(compliant, total int) int {
	if total == 0 {
		return 100
	}
	return compliant * 100 / total
}

// Snapshot computes today's herd report without persisting it.
func (s *Service) Snapshot(ctx context.Context) (models.HerdReport, error) {
	report, _, err := s.snapshot(ctx)
	return report, err
}

func (s *Service) snapshot(ctx context.Context) (models.HerdReport, herd.Dashboard, error) {
	board, err := s.herd.Dashboard(ctx)
	if err != nil {
		return models.HerdReport{}, herd.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	entries, err := s.herd.HerdDue(ctx)
	if err != nil {
		return models.HerdReport{}, herd.Dashboard{}, fmt.Errorf("compute herd due dates: %w", err)
	}

	report := models.HerdReport{
		Date:        board.Date,
		ActiveGoats: board.TotalGoats,
		Sick:        board.Sick,
		Underweight: board.Underweight,
		Pregnant:    board.Pregnant,
		ReadyToMate: board.ReadyToMate,
		CreatedAt:   s.now().UTC(),
	}
	for _, e := range entries {
		if e.Info.Status == care.StatusOverdue {
			report.OverdueVaccinations++
			continue
		}
		if dates.DaysBetween(board.Date, e.Info.NextDue) <= s.dueSoonDays {
			report.DueSoonVaccinations++
		}
	}
	return report, board, nil
}

// SaveSnapshot persists today's herd report, replacing an earlier one of the same day.
func (s *Service) SaveSnapshot(ctx context.Context) (models.HerdReport, error) {
	report, err := s.Snapshot(ctx)
	if err != nil {
		return models.HerdReport{}, err
	}
	if err := s.store.SaveHerdReport(ctx, report); err != nil {
		return models.HerdReport{}, fmt.Errorf("save herd report: %w", err)
	}
	s.logger.Info("herd snapshot saved",
		zap.String("date", dates.Format(report.Date)),
		zap.Int("overdue", report.OverdueVaccinations),
		zap.Int("due_soon", report.DueSoonVaccinations))
	return report, nil
}

// Digest renders a short text summary of the herd for messaging.
func (s *Service) Digest(ctx context.Context) (string, error) {
	report, board, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Herd digest %s\n", dates.Format(report.Date))
	fmt.Fprintf(&b, "Active goats: %d | Sick: %d | Underweight: %d\n", report.ActiveGoats, report.Sick, report.Underweight)
	fmt.Fprintf(&b, "Pregnant: %d | Ready to mate: %d\n", report.Pregnant, report.ReadyToMate)
	fmt.Fprintf(&b, "Vaccinations overdue: %d | due within %d days: %d", report.OverdueVaccinations, s.dueSoonDays, report.DueSoonVaccinations)
	if len(board.Upcoming) > 0 {
		b.WriteString("\nNext doses:")
		for _, u := range board.Upcoming {
			fmt.Fprintf(&b, "\n- %s %s %s (%s)", u.GoatTag, u.Vaccine, dates.Format(u.DueDate), u.Status)
		}
	}
	return b.String(), nil
}

// ExportOverdue appends today's overdue rows to the Sheets range and returns
// how many were written. It does nothing when no exporter is configured.
func (s *Service) ExportOverdue(ctx context.Context) (int, error) {
	if s.exporter == nil {
		return 0, nil
	}
	rows, err := s.OverdueReport(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	reportDate := dates.Format(s.herd.Today())
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, []interface{}{
			reportDate, r.GoatTag, r.GoatType, r.Vaccine,
			dates.FormatOptional(r.LastGiven), dates.Format(r.NextDue), r.DaysOverdue,
		})
	}
	if err := s.exporter.AppendRows(ctx, repo.OverdueRange, values); err != nil {
		return 0, fmt.Errorf("export overdue rows: %w", err)
	}
	s.logger.Info("overdue vaccinations exported", zap.Int("rows", len(values)))
	return len(values), nil
}

// History returns the stored snapshots since the given day.
func (s *Service) History(ctx context.Context, since time.Time) ([]models.HerdReport, error) {
	return s.store.ListHerdReports(ctx, since)
}

func (s *Service) goatTypeNames(ctx context.Context) (map[int64]string, error) {
	types, err := s.store.ListGoatTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load goat types: %w", err)
	}
	names := make(map[int64]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}
