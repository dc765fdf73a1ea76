package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar-day format used by every persisted date field.
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrEmptyDate indicates a required date field carried no value.
var ErrEmptyDate = errors.New("empty date")

// ParseError describes a persisted date that could not be parsed.
type ParseError struct {
	Field    string
	RecordID int64
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s of record %d: invalid date %q: %v", e.Field, e.RecordID, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in the given location.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return Day(now)
}

// timestampLayouts are the longer forms Parse accepts. Only their date part is kept.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Parse reads a YYYY-MM-DD value. A full timestamp is accepted and yields the
// calendar day written in it; any other trailing text is an error.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyDate
	}
	if len(value) > len(Layout) {
		if err := checkTimestamp(value); err != nil {
			return time.Time{}, err
		}
		value = value[:len(Layout)]
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func checkTimestamp(value string) error {
	if sep := value[len(Layout)]; sep != 'T' && sep != ' ' {
		return fmt.Errorf("unexpected text %q after date", value[len(Layout):])
	}
	var err error
	for _, layout := range timestampLayouts {
		if _, err = time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return err
}

// ParseField parses a persisted field and reports failures as *ParseError.
func ParseField(field string, recordID int64, value string) (time.Time, error) {
	t, err := Parse(value)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, RecordID: recordID, Value: value, Err: err}
	}
	return t, nil
}

// ParseOptionalField is ParseField for nullable columns: an empty value yields nil.
func ParseOptionalField(field string, recordID int64, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseField(field, recordID, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Format renders a calendar day.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatOptional renders a nullable day, empty when nil.
func FormatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// AddDays steps a calendar day forward (or backward for negative n).
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// AddMonthsClamped moves t by n months keeping its day-of-month, clamped to
// the last day of the target month when that day does not exist there.
func AddMonthsClamped(t time.Time, n int) time.Time {
	t = Day(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween counts whole calendar days from a to b (negative when b precedes a).
// It works on Unix seconds so spans beyond time.Duration's range stay exact.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}

// Within reports whether day lies in the inclusive range [from, to].
func Within(day, from, to time.Time) bool {
	day = Day(day)
	return !day.Before(Day(from)) && !day.After(Day(to))
}
