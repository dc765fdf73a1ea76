package care

import (
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const (
	oldAgeDays     = 6 * 365
	maturedAgeDays = 365
	newArrivalDays = 60
	newBornDays    = 60
)

// TagContext carries the records tag derivation needs for one goat.
type TagContext struct {
	// ActiveSickness is the goat's most recent active sickness, nil when healthy.
	ActiveSickness *models.Sickness
	// Breedings is the goat's history as a doe.
	Breedings []models.BreedingEvent
	Targets   TargetTable
	// ReadyMinDays overrides DefaultReadyMinDays when positive.
	ReadyMinDays int
}

// DeriveTags computes the goat's status tags in presentation order.
func DeriveTags(goat models.Goat, tc TagContext, today time.Time) []models.Tag {
	today = dates.Day(today)
	tags := make([]models.Tag, 0, 4)

	if goat.Pregnant {
		tags = append(tags, models.TagPregnant)
	}

	if tc.Targets.IsUnderweight(goat, today) {
		tags = append(tags, models.TagUnderweight)
	}

	sick := tc.ActiveSickness != nil
	if sick {
		tags = append(tags, models.TagSick)
	}

	if goat.IsFemale() && !goat.Pregnant && !sick {
		minDays := tc.ReadyMinDays
		if minDays <= 0 {
			minDays = DefaultReadyMinDays
		}
		if IsReadyToMate(tc.Breedings, minDays, today) {
			tags = append(tags, models.TagReadyToMate)
		}
	}

	ageDays := AgeDays(goat, today)
	if ageDays >= oldAgeDays {
		tags = append(tags, models.TagOld)
	}

	if !goat.AcquiredOn.IsZero() && dates.DaysBetween(goat.AcquiredOn, today) < newArrivalDays {
		tags = append(tags, models.TagNewArrival)
	}

	if goat.BirthDate != nil && dates.DaysBetween(*goat.BirthDate, today) < newBornDays {
		tags = append(tags, models.TagNewBorn)
	}

	if ageDays >= maturedAgeDays {
		tags = append(tags, models.TagMatured)
	}

	return tags
}

// LatestActiveSickness picks the newest active sickness per goat.
func LatestActiveSickness(records []models.Sickness) map[int64]*models.Sickness {
	index := make(map[int64]*models.Sickness)
	for i := range records {
		rec := &records[i]
		if rec.Status != models.SicknessActive {
			continue
		}
		if cur, ok := index[rec.GoatID]; !ok || rec.CreatedAt.After(cur.CreatedAt) {
			index[rec.GoatID] = rec
		}
	}
	return index
}
