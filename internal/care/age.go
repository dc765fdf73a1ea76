package care

import (
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const daysPerMonth = 30

// AgeDays is the goat's age in days from its birth date, falling back to
// the month estimate. Unknown age and birth dates after today yield 0.
func AgeDays(goat models.Goat, today time.Time) int {
	if goat.BirthDate != nil {
		return max(dates.DaysBetween(*goat.BirthDate, today), 0)
	}
	return goat.AgeEstimateMonths * daysPerMonth
}

// AgeMonths is the age used for target-weight lookup, with the same zero
// floor as AgeDays.
func AgeMonths(goat models.Goat, today time.Time) int {
	if goat.BirthDate != nil {
		return AgeDays(goat, today) / daysPerMonth
	}
	return goat.AgeEstimateMonths
}
