package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// SaveHerdReport stores the snapshot of a day, replacing an earlier one for the same day.
func (s *Store) SaveHerdReport(ctx context.Context, report models.HerdReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO herd_reports(date, active_goats, sick, underweight, pregnant, ready_to_mate,
  overdue_vaccinations, due_soon_vaccinations, created_at)
VALUES(?,?,?,?,?,?,?,?,?)
ON CONFLICT(date) DO UPDATE SET
  active_goats = excluded.active_goats,
  sick = excluded.sick,
  underweight = excluded.underweight,
  pregnant = excluded.pregnant,
  ready_to_mate = excluded.ready_to_mate,
  overdue_vaccinations = excluded.overdue_vaccinations,
  due_soon_vaccinations = excluded.due_soon_vaccinations,
  created_at = excluded.created_at`,
		dates.Format(report.Date), report.ActiveGoats, report.Sick, report.Underweight, report.Pregnant,
		report.ReadyToMate, report.OverdueVaccinations, report.DueSoonVaccinations, formatTimestamp(report.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert herd report: %w", err)
	}
	return nil
}

// ListHerdReports returns snapshots taken on or after since, oldest first.
func (s *Store) ListHerdReports(ctx context.Context, since time.Time) ([]models.HerdReport, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT date, active_goats, sick, underweight, pregnant, ready_to_mate,
  overdue_vaccinations, due_soon_vaccinations, created_at
FROM herd_reports WHERE date >= ? ORDER BY date`, dates.Format(since))
	if err != nil {
		return nil, fmt.Errorf("list herd reports: %w", err)
	}
	defer rows.Close()

	var out []models.HerdReport
	for rows.Next() {
		var (
			r              models.HerdReport
			day, createdAt string
		)
		if err := rows.Scan(&day, &r.ActiveGoats, &r.Sick, &r.Underweight, &r.Pregnant, &r.ReadyToMate,
			&r.OverdueVaccinations, &r.DueSoonVaccinations, &createdAt); err != nil {
			return nil, fmt.Errorf("list herd reports: %w", err)
		}
		if r.Date, err = dates.ParseField("date", 0, day); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTimestamp("created_at", 0, createdAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
