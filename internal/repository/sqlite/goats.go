package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const goatColumns = `id, tag, goat_type_id, sex, dob, age_estimate_months, date_acquired,
  acquisition_method, is_pregnant, weight, status, location, notes`

// SaveGoat inserts or updates a goat keyed by its tag.
func (s *Store) SaveGoat(ctx context.Context, goat *models.Goat) error {
	if goat.Status == "" {
		goat.Status = models.GoatActive
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO goats(tag, goat_type_id, sex, dob, age_estimate_months, date_acquired,
  acquisition_method, is_pregnant, weight, status, location, notes)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(tag) DO UPDATE SET
  goat_type_id = excluded.goat_type_id,
  sex = excluded.sex,
  dob = excluded.dob,
  age_estimate_months = excluded.age_estimate_months,
  date_acquired = excluded.date_acquired,
  acquisition_method = excluded.acquisition_method,
  is_pregnant = excluded.is_pregnant,
  weight = excluded.weight,
  status = excluded.status,
  location = excluded.location,
  notes = excluded.notes
RETURNING id`,
		goat.Tag, goat.TypeID, string(goat.Sex), nullDate(goat.BirthDate), goat.AgeEstimateMonths,
		nullDateValue(goat.AcquiredOn), goat.AcquisitionMethod, boolToInt(goat.Pregnant), goat.Weight,
		string(goat.Status), goat.Location, goat.Notes)

	if err := row.Scan(&goat.ID); err != nil {
		return fmt.Errorf("save goat %s: %w", goat.Tag, err)
	}
	return nil
}

// GoatByTag loads a single goat.
func (s *Store) GoatByTag(ctx context.Context, tag string) (models.Goat, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goatColumns+` FROM goats WHERE tag = ?`, tag)
	goat, err := scanGoat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goat{}, fmt.Errorf("goat %s: %w", tag, repository.ErrNotFound)
	}
	if err != nil {
		return models.Goat{}, fmt.Errorf("load goat %s: %w", tag, err)
	}
	return goat, nil
}

// ListGoats returns goats ordered by tag.
func (s *Store) ListGoats(ctx context.Context, filter repository.GoatFilter) ([]models.Goat, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "status = ?")
		args = append(args, string(models.GoatActive))
	}
	if filter.Sex != "" {
		where = append(where, "sex = ?")
		args = append(args, string(filter.Sex))
	}

	query := `SELECT ` + goatColumns + ` FROM goats`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tag"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goats: %w", err)
	}
	defer rows.Close()

	var goats []models.Goat
	for rows.Next() {
		goat, err := scanGoat(rows)
		if err != nil {
			return nil, fmt.Errorf("list goats: %w", err)
		}
		goats = append(goats, goat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goats: %w", err)
	}
	return goats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoat(sc scanner) (models.Goat, error) {
	var (
		goat          models.Goat
		sex, status   string
		dob, acquired sql.NullString
		pregnant      int
	)
	if err := sc.Scan(&goat.ID, &goat.Tag, &goat.TypeID, &sex, &dob, &goat.AgeEstimateMonths, &acquired,
		&goat.AcquisitionMethod, &pregnant, &goat.Weight, &status, &goat.Location, &goat.Notes); err != nil {
		return models.Goat{}, err
	}
	goat.Sex = models.Sex(sex)
	goat.Status = models.GoatStatus(status)
	goat.Pregnant = pregnant == 1

	birth, err := dates.ParseOptionalField("dob", goat.ID, dob.String)
	if err != nil {
		return models.Goat{}, err
	}
	goat.BirthDate = birth

	if acquired.Valid && acquired.String != "" {
		on, err := dates.ParseField("date_acquired", goat.ID, acquired.String)
		if err != nil {
			return models.Goat{}, err
		}
		goat.AcquiredOn = on
	}
	return goat, nil
}
