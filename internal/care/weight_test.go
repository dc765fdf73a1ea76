package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/herdcare/internal/domain/models"
)

var boerTargets = TargetTable{
	{GoatTypeID: 1, AgeMonths: 3, MinWeight: 12},
	{GoatTypeID: 1, AgeMonths: 6, MinWeight: 20},
	{GoatTypeID: 1, Sex: models.SexMale, AgeMonths: 12, MinWeight: 40},
	{GoatTypeID: 1, Sex: models.SexFemale, AgeMonths: 12, MinWeight: 32},
	{GoatTypeID: 2, AgeMonths: 1, MinWeight: 5},
}

func TestTargetTableResolve(t *testing.T) {
	tests := []struct {
		name      string
		typeID    int64
		sex       models.Sex
		ageMonths int
		want      float64
		ok        bool
	}{
		{"boundary inclusive", 1, models.SexFemale, 6, 20, true},
		{"between steps", 1, models.SexFemale, 9, 20, true},
		{"sex specific step", 1, models.SexMale, 14, 40, true},
		{"other sex step", 1, models.SexFemale, 14, 32, true},
		{"below smallest threshold", 1, models.SexMale, 2, 0, false},
		{"no type", 0, models.SexMale, 14, 0, false},
		{"unknown type", 9, models.SexMale, 14, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := boerTargets.Resolve(tt.typeID, tt.sex, tt.ageMonths)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeMonths(t *testing.T) {
	today := day(2024, time.July, 1)

	assert.Equal(t, 6, AgeMonths(models.Goat{BirthDate: ptr(day(2024, time.January, 1))}, today))
	assert.Equal(t, 18, AgeMonths(models.Goat{AgeEstimateMonths: 18}, today))
	assert.Equal(t, 0, AgeMonths(models.Goat{}, today))

	unborn := models.Goat{BirthDate: ptr(day(2024, time.August, 1))}
	assert.Equal(t, 0, AgeMonths(unborn, today))
	assert.Equal(t, 0, AgeDays(unborn, today))
	assert.Equal(t, 30, AgeDays(models.Goat{AgeEstimateMonths: 1}, today))
}

func TestIsUnderweight(t *testing.T) {
	today := day(2024, time.July, 1)
	goat := models.Goat{TypeID: 1, Sex: models.SexFemale, BirthDate: ptr(day(2024, time.January, 1))}

	goat.Weight = 18
	assert.True(t, boerTargets.IsUnderweight(goat, today))

	goat.Weight = 20
	assert.False(t, boerTargets.IsUnderweight(goat, today))

	goat.Weight = 0
	assert.False(t, boerTargets.IsUnderweight(goat, today), "unweighed goats are not flagged")
}
