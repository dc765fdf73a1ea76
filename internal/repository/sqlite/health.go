package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// CreateBreeding stores a mating record.
func (s *Store) CreateBreeding(ctx context.Context, event *models.BreedingEvent) error {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO breeding_events(buck_id, doe_id, mating_start_date, mating_end_date, status, notes)
VALUES(?,?,?,?,?,?)
RETURNING id`,
		event.BuckID, event.DoeID, dates.Format(event.MatingStart), nullDate(event.MatingEnd), event.Status, event.Notes)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("create breeding: %w", err)
	}
	return nil
}

// ListBreedings returns every mating record, oldest first.
func (s *Store) ListBreedings(ctx context.Context) ([]models.BreedingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, buck_id, doe_id, mating_start_date, mating_end_date, status, notes
FROM breeding_events ORDER BY mating_start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list breedings: %w", err)
	}
	defer rows.Close()

	var out []models.BreedingEvent
	for rows.Next() {
		var (
			b     models.BreedingEvent
			start string
			end   sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.BuckID, &b.DoeID, &start, &end, &b.Status, &b.Notes); err != nil {
			return nil, fmt.Errorf("list breedings: %w", err)
		}
		if b.MatingStart, err = dates.ParseField("mating_start_date", b.ID, start); err != nil {
			return nil, err
		}
		if b.MatingEnd, err = dates.ParseOptionalField("mating_end_date", b.ID, end.String); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateSickness logs an illness.
func (s *Store) CreateSickness(ctx context.Context, sickness *models.Sickness) error {
	if sickness.Status == "" {
		sickness.Status = models.SicknessActive
	}
	if sickness.CreatedAt.IsZero() {
		sickness.CreatedAt = s.now().UTC()
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO sicknesses(goat_id, sickness, medicine, status, created_at) VALUES(?,?,?,?,?)
RETURNING id`,
		sickness.GoatID, sickness.Condition, sickness.Medicine, string(sickness.Status), formatTimestamp(sickness.CreatedAt))
	if err := row.Scan(&sickness.ID); err != nil {
		return fmt.Errorf("create sickness: %w", err)
	}
	return nil
}

// ListSicknesses returns illness records, newest first.
func (s *Store) ListSicknesses(ctx context.Context, activeOnly bool) ([]models.Sickness, error) {
	query := `SELECT id, goat_id, sickness, medicine, status, created_at FROM sicknesses`
	var args []any
	if activeOnly {
		query += ` WHERE status = ?`
		args = append(args, string(models.SicknessActive))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sicknesses: %w", err)
	}
	defer rows.Close()

	var out []models.Sickness
	for rows.Next() {
		var (
			sk                models.Sickness
			status, createdAt string
		)
		if err := rows.Scan(&sk.ID, &sk.GoatID, &sk.Condition, &sk.Medicine, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("list sicknesses: %w", err)
		}
		sk.Status = models.SicknessStatus(status)
		if sk.CreatedAt, err = parseTimestamp("created_at", sk.ID, createdAt); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

// RecoverSicknesses closes every active sickness of a goat.
func (s *Store) RecoverSicknesses(ctx context.Context, goatID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sicknesses SET status = ? WHERE goat_id = ? AND status = ?`,
		string(models.SicknessRecovered), goatID, string(models.SicknessActive))
	if err != nil {
		return 0, fmt.Errorf("recover sicknesses of goat %d: %w", goatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recover sicknesses of goat %d: %w", goatID, err)
	}
	return int(n), nil
}

// CreateFarmEvent stores a user calendar entry.
func (s *Store) CreateFarmEvent(ctx context.Context, event *models.FarmEvent) error {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO farm_events(title, event_date, category, recurrence, notes, created_by) VALUES(?,?,?,?,?,?)
RETURNING id`,
		event.Title, dates.Format(event.Date), event.Category, string(event.Recurrence), event.Notes, event.CreatedBy)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("create farm event: %w", err)
	}
	return nil
}

// ListFarmEvents returns every farm event ordered by date.
func (s *Store) ListFarmEvents(ctx context.Context) ([]models.FarmEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, event_date, category, recurrence, notes, created_by
FROM farm_events ORDER BY event_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list farm events: %w", err)
	}
	defer rows.Close()

	var out []models.FarmEvent
	for rows.Next() {
		var (
			ev               models.FarmEvent
			date, recurrence string
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &date, &ev.Category, &recurrence, &ev.Notes, &ev.CreatedBy); err != nil {
			return nil, fmt.Errorf("list farm events: %w", err)
		}
		ev.Recurrence = models.Recurrence(recurrence)
		if ev.Date, err = dates.ParseField("event_date", ev.ID, date); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
