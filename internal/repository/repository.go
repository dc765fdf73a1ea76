// Package repository declares the record store contract shared by the
// SQLite and MongoDB adapters.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("record conflict")
	// ErrAlreadyDone is returned when a vaccination is rescheduled onto a date
	// that already holds an administered dose.
	ErrAlreadyDone = errors.New("vaccination already done on that date")
)

// GoatFilter narrows ListGoats. Zero values match everything.
type GoatFilter struct {
	ActiveOnly bool
	Sex        models.Sex
}

// VaccinationFilter narrows ListVaccinations. Zero values match everything.
type VaccinationFilter struct {
	GoatID        int64
	VaccineTypeID int64
	Status        models.VaccinationStatus
}

// GoatStore persists herd members.
type GoatStore interface {
	// SaveGoat inserts the goat or updates the one carrying the same tag; ID is set on return.
	SaveGoat(ctx context.Context, goat *models.Goat) error
	GoatByTag(ctx context.Context, tag string) (models.Goat, error)
	ListGoats(ctx context.Context, filter GoatFilter) ([]models.Goat, error)
}

// CatalogStore persists goat types, vaccine types and the target weight table.
type CatalogStore interface {
	// SaveGoatType and SaveVaccineType upsert by name.
	SaveGoatType(ctx context.Context, goatType *models.GoatType) error
	ListGoatTypes(ctx context.Context) ([]models.GoatType, error)
	SaveVaccineType(ctx context.Context, vaccineType *models.VaccineType) error
	VaccineTypeByID(ctx context.Context, id int64) (models.VaccineType, error)
	ListVaccineTypes(ctx context.Context) ([]models.VaccineType, error)
	// SaveTargetWeight upserts by (goat type, sex, age months).
	SaveTargetWeight(ctx context.Context, target *models.TargetWeight) error
	ListTargetWeights(ctx context.Context) ([]models.TargetWeight, error)
}

// VaccinationStore persists scheduled and administered doses.
type VaccinationStore interface {
	ListVaccinations(ctx context.Context, filter VaccinationFilter) ([]models.VaccinationEvent, error)
	// UpsertVaccination inserts the record or overwrites the one with the same
	// (goat, vaccine type, scheduled date); ID is set on return.
	UpsertVaccination(ctx context.Context, event *models.VaccinationEvent) error
	// RescheduleVaccination atomically moves a pending dose to event.ScheduledDate.
	// from is the scheduled date being replaced, nil when the due date was only
	// computed and no scheduled record exists yet. It fails with ErrAlreadyDone
	// when a done record already sits on the new date, and with ErrConflict when
	// the pending schedule changed underneath the caller.
	RescheduleVaccination(ctx context.Context, from *time.Time, event *models.VaccinationEvent) error
}

// HealthStore persists breeding, sickness and farm calendar records.
type HealthStore interface {
	CreateBreeding(ctx context.Context, event *models.BreedingEvent) error
	ListBreedings(ctx context.Context) ([]models.BreedingEvent, error)
	CreateSickness(ctx context.Context, sickness *models.Sickness) error
	ListSicknesses(ctx context.Context, activeOnly bool) ([]models.Sickness, error)
	// RecoverSicknesses marks every active sickness of the goat recovered and
	// returns how many rows changed.
	RecoverSicknesses(ctx context.Context, goatID int64) (int, error)
	CreateFarmEvent(ctx context.Context, event *models.FarmEvent) error
	ListFarmEvents(ctx context.Context) ([]models.FarmEvent, error)
}

// ReportStore keeps the daily herd snapshots.
type ReportStore interface {
	SaveHerdReport(ctx context.Context, report models.HerdReport) error
	ListHerdReports(ctx context.Context, since time.Time) ([]models.HerdReport, error)
}

// Store is the full record store used by the services.
type Store interface {
	GoatStore
	CatalogStore
	VaccinationStore
	HealthStore
	ReportStore
	Close(ctx context.Context) error
}
