package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/herdcare/internal/domain/models"
)

func TestDeriveTags(t *testing.T) {
	today := day(2024, time.June, 1)
	sickness := &models.Sickness{ID: 1, GoatID: 1, Status: models.SicknessActive}

	tests := []struct {
		name string
		goat models.Goat
		tc   TagContext
		want []models.Tag
	}{
		{
			name: "pregnant and sick doe is never ready",
			goat: models.Goat{
				ID: 1, Sex: models.SexFemale, Pregnant: true,
				BirthDate:  ptr(day(2021, time.June, 1)),
				AcquiredOn: day(2021, time.June, 1),
			},
			tc:   TagContext{ActiveSickness: sickness},
			want: []models.Tag{models.TagPregnant, models.TagSick, models.TagMatured},
		},
		{
			name: "never bred newborn doe",
			goat: models.Goat{
				ID: 2, Sex: models.SexFemale,
				BirthDate:  ptr(day(2024, time.May, 2)),
				AcquiredOn: day(2024, time.May, 2),
			},
			want: []models.Tag{models.TagReadyToMate, models.TagNewArrival, models.TagNewBorn},
		},
		{
			name: "recently mated doe is not ready",
			goat: models.Goat{
				ID: 3, Sex: models.SexFemale,
				BirthDate:  ptr(day(2022, time.January, 1)),
				AcquiredOn: day(2022, time.January, 1),
			},
			tc:   TagContext{Breedings: []models.BreedingEvent{mating(1, 3, ptr(day(2024, time.May, 20)))}},
			want: []models.Tag{models.TagMatured},
		},
		{
			name: "mated exactly 21 days ago is ready",
			goat: models.Goat{
				ID: 3, Sex: models.SexFemale,
				BirthDate:  ptr(day(2022, time.January, 1)),
				AcquiredOn: day(2022, time.January, 1),
			},
			tc:   TagContext{Breedings: []models.BreedingEvent{mating(1, 3, ptr(day(2024, time.May, 11)))}},
			want: []models.Tag{models.TagReadyToMate, models.TagMatured},
		},
		{
			name: "old buck from estimate, new arrival",
			goat: models.Goat{
				ID: 4, Sex: models.SexMale,
				AgeEstimateMonths: 80,
				AcquiredOn:        day(2024, time.May, 1),
			},
			want: []models.Tag{models.TagOld, models.TagNewArrival, models.TagMatured},
		},
		{
			name: "underweight kid",
			goat: models.Goat{
				ID: 5, Sex: models.SexMale, TypeID: 1, Weight: 15,
				BirthDate:  ptr(day(2023, time.December, 1)),
				AcquiredOn: day(2023, time.December, 1),
			},
			tc:   TagContext{Targets: boerTargets},
			want: []models.Tag{models.TagUnderweight},
		},
		{
			name: "unknown age",
			goat: models.Goat{ID: 6, Sex: models.SexMale, AcquiredOn: day(2020, time.January, 1)},
			want: []models.Tag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTags(tt.goat, tt.tc, today))
		})
	}
}

func TestDeriveTags_ReadyMinDaysOverride(t *testing.T) {
	today := day(2024, time.June, 1)
	doe := models.Goat{ID: 3, Sex: models.SexFemale, AcquiredOn: day(2020, time.January, 1)}
	tc := TagContext{
		Breedings:    []models.BreedingEvent{mating(1, 3, ptr(day(2024, time.May, 11)))},
		ReadyMinDays: 30,
	}

	assert.NotContains(t, DeriveTags(doe, tc, today), models.TagReadyToMate)
}

func TestLatestActiveSickness(t *testing.T) {
	records := []models.Sickness{
		{ID: 1, GoatID: 1, Status: models.SicknessActive, CreatedAt: day(2024, time.May, 1)},
		{ID: 2, GoatID: 1, Status: models.SicknessActive, CreatedAt: day(2024, time.May, 3)},
		{ID: 3, GoatID: 2, Status: models.SicknessRecovered, CreatedAt: day(2024, time.May, 3)},
	}

	index := LatestActiveSickness(records)

	assert.Len(t, index, 1)
	assert.Equal(t, int64(2), index[1].ID)
}
