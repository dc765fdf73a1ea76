package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/domain/models"
)

func mating(id, doeID int64, end *time.Time) models.BreedingEvent {
	return models.BreedingEvent{ID: id, BuckID: 100, DoeID: doeID, MatingEnd: end}
}

func TestComputeReadyDoes(t *testing.T) {
	today := day(2024, time.May, 22)
	does := []models.Goat{
		{ID: 1, Tag: "NEVER", Sex: models.SexFemale},
		{ID: 2, Tag: "EXACT", Sex: models.SexFemale},
		{ID: 3, Tag: "RECENT", Sex: models.SexFemale},
		{ID: 4, Tag: "OLDER", Sex: models.SexFemale},
	}
	history := IndexBreedingsByDoe([]models.BreedingEvent{
		mating(20, 2, ptr(day(2024, time.May, 1))),
		mating(30, 3, ptr(day(2024, time.May, 2))),
		mating(40, 4, ptr(day(2024, time.May, 10))),
		mating(41, 4, ptr(day(2024, time.January, 10))),
	})

	ready := ComputeReadyDoes(does, history, 21, today)

	require.Len(t, ready, 2)
	assert.Equal(t, "NEVER", ready[0].Doe.Tag)
	assert.Nil(t, ready[0].Breeding)
	assert.Nil(t, ready[0].DaysSince)

	assert.Equal(t, "EXACT", ready[1].Doe.Tag)
	require.NotNil(t, ready[1].DaysSince)
	assert.Equal(t, 21, *ready[1].DaysSince)
	assert.Equal(t, int64(20), ready[1].Breeding.ID)
}

func TestComputeReadyDoes_DefaultMinDays(t *testing.T) {
	does := []models.Goat{{ID: 2, Sex: models.SexFemale}}
	history := IndexBreedingsByDoe([]models.BreedingEvent{mating(1, 2, ptr(day(2024, time.May, 1)))})

	assert.Empty(t, ComputeReadyDoes(does, history, 0, day(2024, time.May, 21)))
	assert.Len(t, ComputeReadyDoes(does, history, 0, day(2024, time.May, 22)), 1)
}

func TestLatestMating_NullEndSortsLowest(t *testing.T) {
	history := []models.BreedingEvent{
		mating(1, 2, nil),
		mating(2, 2, ptr(day(2024, time.March, 1))),
		mating(3, 2, ptr(day(2024, time.February, 1))),
	}

	last, ok := LatestMating(history)
	require.True(t, ok)
	assert.Equal(t, int64(2), last.ID)

	_, ok = LatestMating(nil)
	assert.False(t, ok)
}

func TestIsReadyToMate_OnlyUndatedMatings(t *testing.T) {
	assert.True(t, IsReadyToMate([]models.BreedingEvent{mating(1, 2, nil)}, 21, day(2024, time.May, 1)))
}
