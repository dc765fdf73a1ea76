package care

import (
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// DefaultReadyMinDays is the rest period after a mating before a doe is ready again.
const DefaultReadyMinDays = 21

// ReadyDoe is a doe available for mating. Breeding and DaysSince are nil
// for a doe that was never mated.
type ReadyDoe struct {
	Doe       models.Goat           `json:"doe"`
	Breeding  *models.BreedingEvent `json:"breeding,omitempty"`
	DaysSince *int                  `json:"days_since,omitempty"`
}

// LatestMating returns the breeding with the latest mating end date.
// Records without an end date sort lowest.
func LatestMating(history []models.BreedingEvent) (models.BreedingEvent, bool) {
	var (
		best  models.BreedingEvent
		found bool
	)
	for _, ev := range history {
		switch {
		case !found:
			best, found = ev, true
		case ev.MatingEnd == nil:
		case best.MatingEnd == nil || ev.MatingEnd.After(*best.MatingEnd):
			best = ev
		}
	}
	return best, found
}

// daysSinceMating reports the rest days since the latest mating ended.
// ok is false when there is nothing to measure from.
func daysSinceMating(history []models.BreedingEvent, today time.Time) (last models.BreedingEvent, days int, ok bool) {
	last, found := LatestMating(history)
	if !found || last.MatingEnd == nil {
		return last, 0, false
	}
	return last, dates.DaysBetween(*last.MatingEnd, today), true
}

// IsReadyToMate applies the rest-period rule to one doe's history.
func IsReadyToMate(history []models.BreedingEvent, minDays int, today time.Time) bool {
	_, days, ok := daysSinceMating(history, today)
	return !ok || days >= minDays
}

// ComputeReadyDoes lists does whose last mating ended at least minDays ago,
// plus every doe without breeding history. A non-positive minDays uses the default.
func ComputeReadyDoes(does []models.Goat, breedingsByDoe map[int64][]models.BreedingEvent, minDays int, today time.Time) []ReadyDoe {
	if minDays <= 0 {
		minDays = DefaultReadyMinDays
	}

	var ready []ReadyDoe
	for _, doe := range does {
		history := breedingsByDoe[doe.ID]
		last, days, ok := daysSinceMating(history, today)
		if !ok {
			entry := ReadyDoe{Doe: doe}
			if len(history) > 0 {
				entry.Breeding = &last
			}
			ready = append(ready, entry)
			continue
		}
		if days < minDays {
			continue
		}
		d := days
		ready = append(ready, ReadyDoe{Doe: doe, Breeding: &last, DaysSince: &d})
	}
	return ready
}

// IndexBreedingsByDoe groups breedings by the doe involved.
func IndexBreedingsByDoe(history []models.BreedingEvent) map[int64][]models.BreedingEvent {
	index := make(map[int64][]models.BreedingEvent)
	for _, ev := range history {
		index[ev.DoeID] = append(index[ev.DoeID], ev)
	}
	return index
}
