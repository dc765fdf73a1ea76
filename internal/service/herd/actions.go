package herd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// RecordRequest records or schedules a dose for one goat.
type RecordRequest struct {
	Tag           string
	VaccineTypeID int64
	// ScheduledDate defaults to today.
	ScheduledDate *time.Time
	// GivenOn marks the dose done when set.
	GivenOn     *time.Time
	Notes       string
	BatchNumber string
	GivenBy     string
}

// RecordVaccination upserts the record for (goat, vaccine type, scheduled date).
func (s *Service) RecordVaccination(ctx context.Context, req RecordRequest) (models.VaccinationEvent, error) {
	goat, err := s.activeGoat(ctx, req.Tag)
	if err != nil {
		return models.VaccinationEvent{}, err
	}
	if _, err := s.store.VaccineTypeByID(ctx, req.VaccineTypeID); err != nil {
		return models.VaccinationEvent{}, err
	}

	scheduled := s.Today()
	if req.ScheduledDate != nil {
		scheduled = dates.Day(*req.ScheduledDate)
	}

	event := models.VaccinationEvent{
		GoatID:        goat.ID,
		VaccineTypeID: req.VaccineTypeID,
		ScheduledDate: scheduled,
		Status:        models.VaccinationScheduled,
		Notes:         req.Notes,
		BatchNumber:   req.BatchNumber,
		GivenBy:       req.GivenBy,
		CreatedBy:     req.GivenBy,
	}
	if req.GivenOn != nil {
		given := dates.Day(*req.GivenOn)
		event.GivenOn = &given
		event.Status = models.VaccinationDone
	}

	if err := s.store.UpsertVaccination(ctx, &event); err != nil {
		return models.VaccinationEvent{}, err
	}

	s.logger.Info("vaccination recorded",
		zap.String("goat", goat.Tag),
		zap.Int64("vaccine_type_id", req.VaccineTypeID),
		zap.String("scheduled_date", dates.Format(scheduled)),
		zap.String("status", string(event.Status)))
	return event, nil
}

// BatchRequest records the same dose for several goats.
type BatchRequest struct {
	VaccineTypeID int64
	Tags          []string
	// GivenOn defaults to today.
	GivenOn     *time.Time
	Notes       string
	BatchNumber string
	GivenBy     string
}

// BatchResult reports what a batch recording did.
type BatchResult struct {
	Recorded int      `json:"recorded"`
	Skipped  int      `json:"skipped"`
	Unknown  []string `json:"unknown,omitempty"`
}

// BatchRecordVaccination records a done dose for every listed goat. Goats that
// already have a dose of this vaccine given on that date are skipped, and
// unknown or inactive tags are reported without aborting the batch.
func (s *Service) BatchRecordVaccination(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if len(req.Tags) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no goats selected", ErrInvalidRequest)
	}
	if _, err := s.store.VaccineTypeByID(ctx, req.VaccineTypeID); err != nil {
		return BatchResult{}, err
	}

	given := s.Today()
	if req.GivenOn != nil {
		given = dates.Day(*req.GivenOn)
	}

	existing, err := s.store.ListVaccinations(ctx, repository.VaccinationFilter{VaccineTypeID: req.VaccineTypeID})
	if err != nil {
		return BatchResult{}, err
	}
	givenOn := make(map[int64]bool)
	for _, ev := range existing {
		if ev.GivenOn != nil && dates.Day(*ev.GivenOn).Equal(given) {
			givenOn[ev.GoatID] = true
		}
	}

	var result BatchResult
	seen := make(map[string]bool, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true

		goat, err := s.activeGoat(ctx, tag)
		if errors.Is(err, repository.ErrNotFound) {
			result.Unknown = append(result.Unknown, tag)
			continue
		}
		if err != nil {
			return result, err
		}
		if givenOn[goat.ID] {
			result.Skipped++
			continue
		}

		day := given
		event := models.VaccinationEvent{
			GoatID:        goat.ID,
			VaccineTypeID: req.VaccineTypeID,
			ScheduledDate: day,
			GivenOn:       &day,
			Status:        models.VaccinationDone,
			Notes:         req.Notes,
			BatchNumber:   req.BatchNumber,
			GivenBy:       req.GivenBy,
			CreatedBy:     req.GivenBy,
		}
		if err := s.store.UpsertVaccination(ctx, &event); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				result.Skipped++
				continue
			}
			return result, err
		}
		givenOn[goat.ID] = true
		result.Recorded++
	}

	s.logger.Info("batch vaccination recorded",
		zap.Int64("vaccine_type_id", req.VaccineTypeID),
		zap.String("given_on", dates.Format(given)),
		zap.Int("recorded", result.Recorded),
		zap.Int("skipped", result.Skipped),
		zap.Strings("unknown", result.Unknown))
	return result, nil
}

// RescheduleVaccination moves the next due dose of a vaccine type to newDate.
func (s *Service) RescheduleVaccination(ctx context.Context, tag string, vaccineTypeID int64, newDate time.Time, by string) (models.VaccinationEvent, error) {
	if newDate.IsZero() {
		return models.VaccinationEvent{}, fmt.Errorf("%w: no date provided", ErrInvalidRequest)
	}
	goat, err := s.activeGoat(ctx, tag)
	if err != nil {
		return models.VaccinationEvent{}, err
	}
	vt, err := s.store.VaccineTypeByID(ctx, vaccineTypeID)
	if err != nil {
		return models.VaccinationEvent{}, err
	}
	history, err := s.store.ListVaccinations(ctx, repository.VaccinationFilter{GoatID: goat.ID, VaccineTypeID: vaccineTypeID})
	if err != nil {
		return models.VaccinationEvent{}, err
	}

	dueList := care.ComputeDueInfo(goat, []models.VaccineType{vt}, history, s.Today())
	if len(dueList) == 0 {
		return models.VaccinationEvent{}, fmt.Errorf("%s for goat %s: %w", vt.Name, goat.Tag, ErrNoDueVaccination)
	}
	due := dueList[0]

	var from *time.Time
	if due.Scheduled {
		d := due.NextDue
		from = &d
	}

	now := s.now()
	event := models.VaccinationEvent{
		GoatID:        goat.ID,
		VaccineTypeID: vaccineTypeID,
		ScheduledDate: dates.Day(newDate),
		Notes:         fmt.Sprintf("Rescheduled by %s on %s", by, now.In(s.opts.Location).Format("2006-01-02 15:04")),
		CreatedBy:     by,
		CreatedAt:     now.UTC(),
	}
	if err := s.store.RescheduleVaccination(ctx, from, &event); err != nil {
		return models.VaccinationEvent{}, err
	}

	s.logger.Info("vaccination rescheduled",
		zap.String("goat", goat.Tag),
		zap.String("vaccine", vt.Name),
		zap.String("previous_due", dates.Format(due.NextDue)),
		zap.String("new_date", dates.Format(event.ScheduledDate)))
	return event, nil
}

// RecordSickness logs an active illness against a goat.
func (s *Service) RecordSickness(ctx context.Context, tag, condition, medicine string) (models.Sickness, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return models.Sickness{}, fmt.Errorf("%w: sickness is required", ErrInvalidRequest)
	}
	goat, err := s.activeGoat(ctx, tag)
	if err != nil {
		return models.Sickness{}, err
	}

	sickness := models.Sickness{
		GoatID:    goat.ID,
		Condition: condition,
		Medicine:  strings.TrimSpace(medicine),
		Status:    models.SicknessActive,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateSickness(ctx, &sickness); err != nil {
		return models.Sickness{}, err
	}
	s.logger.Info("sickness recorded", zap.String("goat", goat.Tag), zap.String("sickness", condition))
	return sickness, nil
}

// UpdateWeight stores a new weighing in kg.
func (s *Service) UpdateWeight(ctx context.Context, tag string, weight float64) (models.Goat, error) {
	if weight <= 0 {
		return models.Goat{}, fmt.Errorf("%w: weight must be positive", ErrInvalidRequest)
	}
	goat, err := s.activeGoat(ctx, tag)
	if err != nil {
		return models.Goat{}, err
	}

	goat.Weight = weight
	if err := s.store.SaveGoat(ctx, &goat); err != nil {
		return models.Goat{}, err
	}
	s.logger.Info("weight updated", zap.String("goat", goat.Tag), zap.Float64("kg", weight))
	return goat, nil
}

// MarkRecovered closes every active sickness of the goat.
func (s *Service) MarkRecovered(ctx context.Context, tag string) (int, error) {
	goat, err := s.store.GoatByTag(ctx, tag)
	if err != nil {
		return 0, err
	}
	n, err := s.store.RecoverSicknesses(ctx, goat.ID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("sickness recovered", zap.String("goat", goat.Tag), zap.Int("records", n))
	return n, nil
}

func (s *Service) activeGoat(ctx context.Context, tag string) (models.Goat, error) {
	goat, err := s.store.GoatByTag(ctx, tag)
	if err != nil {
		return models.Goat{}, err
	}
	if goat.Status != models.GoatActive {
		return models.Goat{}, fmt.Errorf("goat %s is %s: %w", tag, goat.Status, repository.ErrNotFound)
	}
	return goat, nil
}
