package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const vaccinationColumns = `id, goat_id, vaccine_type_id, scheduled_date, actual_date_given, status,
  notes, batch_number, given_by, created_by, created_at`

// ListVaccinations returns matching records ordered by goat, vaccine type and scheduled date.
func (s *Store) ListVaccinations(ctx context.Context, filter repository.VaccinationFilter) ([]models.VaccinationEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.GoatID != 0 {
		where = append(where, "goat_id = ?")
		args = append(args, filter.GoatID)
	}
	if filter.VaccineTypeID != 0 {
		where = append(where, "vaccine_type_id = ?")
		args = append(args, filter.VaccineTypeID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + vaccinationColumns + ` FROM vaccination_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY goat_id, vaccine_type_id, scheduled_date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vaccinations: %w", err)
	}
	defer rows.Close()

	var out []models.VaccinationEvent
	for rows.Next() {
		ev, err := scanVaccination(rows)
		if err != nil {
			return nil, fmt.Errorf("list vaccinations: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vaccinations: %w", err)
	}
	return out, nil
}

// UpsertVaccination writes a record keyed by (goat, vaccine type, scheduled date).
func (s *Store) UpsertVaccination(ctx context.Context, event *models.VaccinationEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO vaccination_events(goat_id, vaccine_type_id, scheduled_date, actual_date_given, status,
  notes, batch_number, given_by, created_by, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(goat_id, vaccine_type_id, scheduled_date) DO UPDATE SET
  actual_date_given = excluded.actual_date_given,
  status = excluded.status,
  notes = excluded.notes,
  batch_number = excluded.batch_number,
  given_by = excluded.given_by
RETURNING id`, vaccinationArgs(event)...)

	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("upsert vaccination for goat %d: %w", event.GoatID, err)
	}
	return nil
}

// RescheduleVaccination moves a pending dose in one transaction.
func (s *Store) RescheduleVaccination(ctx context.Context, from *time.Time, event *models.VaccinationEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	event.Status = models.VaccinationScheduled
	event.GivenOn = nil

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `
SELECT status FROM vaccination_events
WHERE goat_id = ? AND vaccine_type_id = ? AND scheduled_date = ?`,
			event.GoatID, event.VaccineTypeID, dates.Format(event.ScheduledDate)).Scan(&status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("check target date: %w", err)
		case models.VaccinationStatus(status) == models.VaccinationDone:
			return repository.ErrAlreadyDone
		}

		if from != nil {
			res, err := tx.ExecContext(ctx, `
DELETE FROM vaccination_events
WHERE goat_id = ? AND vaccine_type_id = ? AND scheduled_date = ? AND status = ?`,
				event.GoatID, event.VaccineTypeID, dates.Format(*from), string(models.VaccinationScheduled))
			if err != nil {
				return fmt.Errorf("drop previous schedule: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return repository.ErrConflict
			}
		} else {
			var pending int
			err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM vaccination_events
WHERE goat_id = ? AND vaccine_type_id = ? AND status = ?`,
				event.GoatID, event.VaccineTypeID, string(models.VaccinationScheduled)).Scan(&pending)
			if err != nil {
				return fmt.Errorf("count pending schedules: %w", err)
			}
			if pending > 0 {
				return repository.ErrConflict
			}
		}

		err = tx.QueryRowContext(ctx, `
INSERT INTO vaccination_events(goat_id, vaccine_type_id, scheduled_date, actual_date_given, status,
  notes, batch_number, given_by, created_by, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?)
RETURNING id`, vaccinationArgs(event)...).Scan(&event.ID)
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("insert new schedule: %w", err)
		}

		s.logger.Debug("vaccination rescheduled",
			zap.Int64("goat_id", event.GoatID),
			zap.Int64("vaccine_type_id", event.VaccineTypeID),
			zap.String("from", dates.FormatOptional(from)),
			zap.String("scheduled_date", dates.Format(event.ScheduledDate)))
		return nil
	})
}

func vaccinationArgs(event *models.VaccinationEvent) []any {
	return []any{
		event.GoatID, event.VaccineTypeID, dates.Format(event.ScheduledDate), nullDate(event.GivenOn),
		string(event.Status), event.Notes, event.BatchNumber, event.GivenBy, event.CreatedBy,
		formatTimestamp(event.CreatedAt),
	}
}

func scanVaccination(sc scanner) (models.VaccinationEvent, error) {
	var (
		ev                   models.VaccinationEvent
		scheduled, createdAt string
		status               string
		given                sql.NullString
	)
	if err := sc.Scan(&ev.ID, &ev.GoatID, &ev.VaccineTypeID, &scheduled, &given, &status,
		&ev.Notes, &ev.BatchNumber, &ev.GivenBy, &ev.CreatedBy, &createdAt); err != nil {
		return models.VaccinationEvent{}, err
	}
	ev.Status = models.VaccinationStatus(status)

	var err error
	if ev.ScheduledDate, err = dates.ParseField("scheduled_date", ev.ID, scheduled); err != nil {
		return models.VaccinationEvent{}, err
	}
	if ev.GivenOn, err = dates.ParseOptionalField("actual_date_given", ev.ID, given.String); err != nil {
		return models.VaccinationEvent{}, err
	}
	if ev.CreatedAt, err = parseTimestamp("created_at", ev.ID, createdAt); err != nil {
		return models.VaccinationEvent{}, err
	}
	return ev, nil
}
