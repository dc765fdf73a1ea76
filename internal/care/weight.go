package care

import (
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
)

// TargetTable is the prefetched set of target weight rows.
type TargetTable []models.TargetWeight

// Resolve returns the minimum weight of the highest age step not exceeding
// ageMonths for the given type and sex. Rows without a sex apply to both.
func (t TargetTable) Resolve(goatTypeID int64, sex models.Sex, ageMonths int) (float64, bool) {
	if goatTypeID == 0 {
		return 0, false
	}

	var (
		best  models.TargetWeight
		found bool
	)
	for _, row := range t {
		if row.GoatTypeID != goatTypeID {
			continue
		}
		if row.Sex != "" && row.Sex != sex {
			continue
		}
		if row.AgeMonths > ageMonths {
			continue
		}
		if !found || row.AgeMonths > best.AgeMonths {
			best = row
			found = true
		}
	}

	if !found {
		return 0, false
	}
	return best.MinWeight, true
}

// TargetFor resolves the threshold applicable to goat today.
func (t TargetTable) TargetFor(goat models.Goat, today time.Time) (float64, bool) {
	return t.Resolve(goat.TypeID, goat.Sex, AgeMonths(goat, today))
}

// IsUnderweight reports whether a weighed goat sits below its threshold.
func (t TargetTable) IsUnderweight(goat models.Goat, today time.Time) bool {
	target, ok := t.TargetFor(goat, today)
	return ok && goat.Weight > 0 && goat.Weight < target
}
