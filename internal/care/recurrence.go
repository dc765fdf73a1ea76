package care

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// ErrUnknownRecurrence marks a farm event whose repeat rule is not recognised.
var ErrUnknownRecurrence = errors.New("unknown recurrence")

// UnknownRecurrenceError names the event carrying an unrecognised rule.
type UnknownRecurrenceError struct {
	EventID    int64
	Recurrence models.Recurrence
}

func (e *UnknownRecurrenceError) Error() string {
	return fmt.Sprintf("farm event %d: %s %q", e.EventID, ErrUnknownRecurrence, string(e.Recurrence))
}

func (e *UnknownRecurrenceError) Unwrap() error { return ErrUnknownRecurrence }

// Occurrence is one concrete calendar instance of a farm event.
type Occurrence struct {
	ID         string            `json:"id"`
	EventID    int64             `json:"event_id"`
	Title      string            `json:"title"`
	Date       time.Time         `json:"start"`
	Category   string            `json:"category"`
	Notes      string            `json:"notes"`
	CreatedBy  string            `json:"createdBy"`
	Recurrence models.Recurrence `json:"recurrence,omitempty"`
}

// Recurring reports whether the occurrence was expanded from a repeat rule.
func (o Occurrence) Recurring() bool {
	return o.Recurrence != models.RecurrenceNone
}

// Expand produces the occurrences of event inside [from, to].
//
// The walk always starts at the event's own date; only emission is limited
// to the window. Monthly steps keep the original day-of-month and clamp to
// the end of shorter months. An unrecognised rule emits the base date (when
// in the window) and stops with an *UnknownRecurrenceError; the returned
// occurrences remain usable.
func Expand(event models.FarmEvent, from, to time.Time) ([]Occurrence, error) {
	from, to = dates.Day(from), dates.Day(to)
	base := dates.Day(event.Date)

	if event.Recurrence == models.RecurrenceNone {
		if dates.Within(base, from, to) {
			return []Occurrence{occurrence(event, strconv.FormatInt(event.ID, 10), base)}, nil
		}
		return nil, nil
	}

	if !knownRecurrence(event.Recurrence) {
		var out []Occurrence
		if dates.Within(base, from, to) {
			out = append(out, occurrence(event, recurringID(event.ID, base), base))
		}
		return out, &UnknownRecurrenceError{EventID: event.ID, Recurrence: event.Recurrence}
	}

	var out []Occurrence
	for step, current := 0, base; !current.After(to); {
		if !current.Before(from) {
			out = append(out, occurrence(event, recurringID(event.ID, current), current))
		}

		step++
		switch event.Recurrence {
		case models.RecurrenceDaily:
			current = dates.AddDays(base, step)
		case models.RecurrenceWeekly:
			current = dates.AddDays(base, 7*step)
		case models.RecurrenceMonthly:
			current = dates.AddMonthsClamped(base, step)
		}
	}
	return out, nil
}

func knownRecurrence(r models.Recurrence) bool {
	switch r {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return true
	}
	return false
}

func occurrence(event models.FarmEvent, id string, day time.Time) Occurrence {
	return Occurrence{
		ID:         id,
		EventID:    event.ID,
		Title:      event.Title,
		Date:       day,
		Category:   event.Category,
		Notes:      event.Notes,
		CreatedBy:  event.CreatedBy,
		Recurrence: event.Recurrence,
	}
}

func recurringID(eventID int64, day time.Time) string {
	return fmt.Sprintf("rec-%d-%s", eventID, dates.Format(day))
}
