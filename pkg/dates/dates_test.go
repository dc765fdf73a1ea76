package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain", Date(2024, time.March, 15), 1, Date(2024, time.April, 15)},
		{"leap february", Date(2024, time.January, 31), 1, Date(2024, time.February, 29)},
		{"common february", Date(2023, time.January, 31), 1, Date(2023, time.February, 28)},
		{"thirty day month", Date(2024, time.March, 31), 1, Date(2024, time.April, 30)},
		{"year rollover", Date(2024, time.December, 31), 1, Date(2025, time.January, 31)},
		{"anchored on original day", Date(2024, time.January, 31), 2, Date(2024, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsClamped(tt.start, tt.n))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 64, DaysBetween(Date(2024, time.January, 1), Date(2024, time.March, 5)))
	assert.Equal(t, -1, DaysBetween(Date(2024, time.March, 5), Date(2024, time.March, 4)))

	late := time.Date(2024, time.March, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, Date(2024, time.March, 5)))

	// 2000 years is far past the ~292 years a time.Duration can hold.
	assert.Equal(t, 730485, DaysBetween(Date(24, time.January, 1), Date(2024, time.January, 1)))
	assert.Equal(t, -730485, DaysBetween(Date(2024, time.January, 1), Date(24, time.January, 1)))
}

func TestParse(t *testing.T) {
	got, err := Parse("2024-02-29T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.February, 29), got)

	for _, ts := range []string{"2024-02-29T10:00:00Z", "2024-02-29T10:00:00.123+01:00", "2024-02-29 10:00:00"} {
		got, err = Parse(ts)
		require.NoError(t, err, ts)
		assert.Equal(t, Date(2024, time.February, 29), got, ts)
	}

	_, err = Parse("  ")
	assert.ErrorIs(t, err, ErrEmptyDate)
}

func TestParseRejectsTrailingText(t *testing.T) {
	for _, value := range []string{"2024-03-05junk", "2024-03-0512", "2024-03-05 not a date", "2024-03-05T25:00:00"} {
		_, err := ParseField("dob", 7, value)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), value)
		assert.Equal(t, value, perr.Value)
	}
}

func TestParseFieldReportsRecord(t *testing.T) {
	_, err := ParseField("dob", 42, "31/01/2024")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "dob", perr.Field)
	assert.Equal(t, int64(42), perr.RecordID)
	assert.Contains(t, err.Error(), "record 42")
}

func TestParseOptionalField(t *testing.T) {
	got, err := ParseOptionalField("mating_end_date", 1, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptionalField("mating_end_date", 1, "2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Date(2024, time.May, 1), *got)
}

func TestWithin(t *testing.T) {
	from, to := Date(2024, time.May, 1), Date(2024, time.May, 31)
	assert.True(t, Within(from, from, to))
	assert.True(t, Within(to, from, to))
	assert.False(t, Within(Date(2024, time.June, 1), from, to))
}
