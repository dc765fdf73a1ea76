package care

import (
	"sort"
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// DueStatus classifies a computed due date against today.
type DueStatus string

const (
	StatusDue     DueStatus = "due"
	StatusOverdue DueStatus = "overdue"
)

// DueInfo is the next-due computation of one vaccine type for one goat.
type DueInfo struct {
	Vaccine    models.VaccineType `json:"vaccine"`
	LastGiven  *time.Time         `json:"last_given,omitempty"`
	NextDue    time.Time          `json:"next_due"`
	Status     DueStatus          `json:"status"`
	DosesGiven int                `json:"doses_given"`
	// Scheduled is set when NextDue comes from a persisted scheduled record.
	Scheduled bool `json:"scheduled"`
}

// DaysOverdue is how many days past due the entry is, 0 when not overdue.
func (d DueInfo) DaysOverdue(today time.Time) int {
	if n := dates.DaysBetween(d.NextDue, today); n > 0 {
		return n
	}
	return 0
}

// ComputeDueInfo computes the next due date of every vaccine type the goat
// is eligible for. history may contain records of other goats; they are ignored.
func ComputeDueInfo(goat models.Goat, vaccineTypes []models.VaccineType, history []models.VaccinationEvent, today time.Time) []DueInfo {
	if goat.BirthDate == nil {
		return nil
	}
	today = dates.Day(today)
	ageDays := dates.DaysBetween(*goat.BirthDate, today)

	result := make([]DueInfo, 0, len(vaccineTypes))
	for _, vt := range vaccineTypes {
		if ageDays < vt.MinAgeDays {
			continue
		}

		records := recordsFor(history, goat.ID, vt.ID)
		info := DueInfo{Vaccine: vt}

		if scheduled, ok := earliestScheduled(records); ok {
			info.NextDue = dates.Day(scheduled.ScheduledDate)
			info.Scheduled = true
			doses := givenDoses(records)
			info.DosesGiven = len(doses)
			if len(doses) > 0 {
				last := dates.Day(*doses[len(doses)-1].GivenOn)
				info.LastGiven = &last
			}
		} else {
			doses := givenDoses(records)
			info.DosesGiven = len(doses)
			if len(doses) == 0 {
				info.NextDue = dates.AddDays(*goat.BirthDate, vt.MinAgeDays)
			} else {
				last := dates.Day(*doses[len(doses)-1].GivenOn)
				info.LastGiven = &last
				info.NextDue = dates.AddDays(last, nextInterval(vt, len(doses)))
			}
		}

		info.Status = StatusDue
		if today.After(info.NextDue) {
			info.Status = StatusOverdue
		}
		result = append(result, info)
	}

	return result
}

// nextInterval picks the booster interval following dose number doseIndex (1-based),
// falling back to the routine frequency once boosters are exhausted.
func nextInterval(vt models.VaccineType, doseIndex int) int {
	if doseIndex <= len(vt.BoosterDays) {
		return vt.BoosterDays[doseIndex-1]
	}
	return vt.DefaultFrequencyDays
}

func recordsFor(history []models.VaccinationEvent, goatID, vaccineTypeID int64) []models.VaccinationEvent {
	var out []models.VaccinationEvent
	for _, ev := range history {
		if ev.GoatID == goatID && ev.VaccineTypeID == vaccineTypeID {
			out = append(out, ev)
		}
	}
	return out
}

func earliestScheduled(records []models.VaccinationEvent) (models.VaccinationEvent, bool) {
	var (
		best  models.VaccinationEvent
		found bool
	)
	for _, ev := range records {
		if ev.Status != models.VaccinationScheduled {
			continue
		}
		if !found || ev.ScheduledDate.Before(best.ScheduledDate) {
			best = ev
			found = true
		}
	}
	return best, found
}

// givenDoses returns done records with a given date, oldest first.
func givenDoses(records []models.VaccinationEvent) []models.VaccinationEvent {
	var doses []models.VaccinationEvent
	for _, ev := range records {
		if ev.IsDone() && ev.GivenOn != nil {
			doses = append(doses, ev)
		}
	}
	sort.SliceStable(doses, func(i, j int) bool {
		return doses[i].GivenOn.Before(*doses[j].GivenOn)
	})
	return doses
}

// IndexVaccinations groups a bulk history by goat so per-goat computations
// do not rescan the whole slice.
func IndexVaccinations(history []models.VaccinationEvent) map[int64][]models.VaccinationEvent {
	index := make(map[int64][]models.VaccinationEvent)
	for _, ev := range history {
		index[ev.GoatID] = append(index[ev.GoatID], ev)
	}
	return index
}

// HasDoneOn reports whether a done record exists for the goat and vaccine at the given scheduled date.
func HasDoneOn(history []models.VaccinationEvent, goatID, vaccineTypeID int64, day time.Time) bool {
	day = dates.Day(day)
	for _, ev := range history {
		if ev.GoatID == goatID && ev.VaccineTypeID == vaccineTypeID && ev.IsDone() && dates.Day(ev.ScheduledDate).Equal(day) {
			return true
		}
	}
	return false
}
