package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
)

// SaveGoatType upserts a goat type by name.
func (s *Store) SaveGoatType(ctx context.Context, goatType *models.GoatType) error {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO goat_types(name) VALUES(?)
ON CONFLICT(name) DO UPDATE SET name = excluded.name
RETURNING id`, goatType.Name)
	if err := row.Scan(&goatType.ID); err != nil {
		return fmt.Errorf("save goat type %s: %w", goatType.Name, err)
	}
	return nil
}

// ListGoatTypes returns every goat type ordered by name.
func (s *Store) ListGoatTypes(ctx context.Context) ([]models.GoatType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM goat_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list goat types: %w", err)
	}
	defer rows.Close()

	var out []models.GoatType
	for rows.Next() {
		var gt models.GoatType
		if err := rows.Scan(&gt.ID, &gt.Name); err != nil {
			return nil, fmt.Errorf("list goat types: %w", err)
		}
		out = append(out, gt)
	}
	return out, rows.Err()
}

// SaveVaccineType upserts a vaccine type by name.
func (s *Store) SaveVaccineType(ctx context.Context, vt *models.VaccineType) error {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO vaccine_types(name, description, min_age_days, booster_schedule_days, default_frequency_days)
VALUES(?,?,?,?,?)
ON CONFLICT(name) DO UPDATE SET
  description = excluded.description,
  min_age_days = excluded.min_age_days,
  booster_schedule_days = excluded.booster_schedule_days,
  default_frequency_days = excluded.default_frequency_days
RETURNING id`,
		vt.Name, vt.Description, vt.MinAgeDays, models.FormatBoosterSchedule(vt.BoosterDays), vt.DefaultFrequencyDays)
	if err := row.Scan(&vt.ID); err != nil {
		return fmt.Errorf("save vaccine type %s: %w", vt.Name, err)
	}
	return nil
}

const vaccineTypeColumns = `id, name, description, min_age_days, booster_schedule_days, default_frequency_days`

// VaccineTypeByID loads one vaccine type.
func (s *Store) VaccineTypeByID(ctx context.Context, id int64) (models.VaccineType, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+vaccineTypeColumns+` FROM vaccine_types WHERE id = ?`, id)
	vt, err := scanVaccineType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VaccineType{}, fmt.Errorf("vaccine type %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return models.VaccineType{}, fmt.Errorf("load vaccine type %d: %w", id, err)
	}
	return vt, nil
}

// ListVaccineTypes returns the vaccine catalog ordered by name.
func (s *Store) ListVaccineTypes(ctx context.Context) ([]models.VaccineType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+vaccineTypeColumns+` FROM vaccine_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list vaccine types: %w", err)
	}
	defer rows.Close()

	var out []models.VaccineType
	for rows.Next() {
		vt, err := scanVaccineType(rows)
		if err != nil {
			return nil, fmt.Errorf("list vaccine types: %w", err)
		}
		out = append(out, vt)
	}
	return out, rows.Err()
}

func scanVaccineType(sc scanner) (models.VaccineType, error) {
	var (
		vt      models.VaccineType
		booster string
	)
	if err := sc.Scan(&vt.ID, &vt.Name, &vt.Description, &vt.MinAgeDays, &booster, &vt.DefaultFrequencyDays); err != nil {
		return models.VaccineType{}, err
	}
	days, err := models.ParseBoosterSchedule(booster)
	if err != nil {
		return models.VaccineType{}, fmt.Errorf("vaccine type %d: %w", vt.ID, err)
	}
	vt.BoosterDays = days
	return vt, nil
}

// SaveTargetWeight upserts one step of the weight curve.
func (s *Store) SaveTargetWeight(ctx context.Context, target *models.TargetWeight) error {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO target_weights(goat_type_id, sex, age_months, min_weight) VALUES(?,?,?,?)
ON CONFLICT(goat_type_id, sex, age_months) DO UPDATE SET min_weight = excluded.min_weight
RETURNING id`, target.GoatTypeID, string(target.Sex), target.AgeMonths, target.MinWeight)
	if err := row.Scan(&target.ID); err != nil {
		return fmt.Errorf("save target weight: %w", err)
	}
	return nil
}

// ListTargetWeights returns the whole weight table.
func (s *Store) ListTargetWeights(ctx context.Context) ([]models.TargetWeight, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, goat_type_id, sex, age_months, min_weight FROM target_weights
ORDER BY goat_type_id, age_months, sex`)
	if err != nil {
		return nil, fmt.Errorf("list target weights: %w", err)
	}
	defer rows.Close()

	var out []models.TargetWeight
	for rows.Next() {
		var (
			tw  models.TargetWeight
			sex string
		)
		if err := rows.Scan(&tw.ID, &tw.GoatTypeID, &sex, &tw.AgeMonths, &tw.MinWeight); err != nil {
			return nil, fmt.Errorf("list target weights: %w", err)
		}
		tw.Sex = models.Sex(sex)
		out = append(out, tw)
	}
	return out, rows.Err()
}
