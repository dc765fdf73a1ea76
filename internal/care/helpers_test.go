package care

import (
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

func day(y int, m time.Month, d int) time.Time {
	return dates.Date(y, m, d)
}

func ptr[T any](v T) *T {
	return &v
}

func doneDose(goatID, vaccineTypeID int64, given time.Time) models.VaccinationEvent {
	return models.VaccinationEvent{
		GoatID:        goatID,
		VaccineTypeID: vaccineTypeID,
		ScheduledDate: given,
		GivenOn:       ptr(given),
		Status:        models.VaccinationDone,
	}
}

func scheduledDose(id, goatID, vaccineTypeID int64, on time.Time) models.VaccinationEvent {
	return models.VaccinationEvent{
		ID:            id,
		GoatID:        goatID,
		VaccineTypeID: vaccineTypeID,
		ScheduledDate: on,
		Status:        models.VaccinationScheduled,
	}
}
