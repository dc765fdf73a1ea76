package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// These tests need a replica set, e.g. MONGODB_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0.
func newTestRepository(t *testing.T) *MongoDBRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("herdcare_test_%d", time.Now().UnixNano())
	repo, err := NewMongoDBRepository(ctx, uri, dbName, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.db.Drop(context.Background())
		_ = repo.Close(context.Background())
	})
	return repo
}

func TestMongoGoatUpsertByTag(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	goat := models.Goat{Tag: "G-1", Sex: models.SexFemale, Weight: 20}
	require.NoError(t, repo.SaveGoat(ctx, &goat))
	firstID := goat.ID

	goat.Weight = 22
	require.NoError(t, repo.SaveGoat(ctx, &goat))
	assert.Equal(t, firstID, goat.ID)

	got, err := repo.GoatByTag(ctx, "G-1")
	require.NoError(t, err)
	assert.Equal(t, 22.0, got.Weight)

	_, err = repo.GoatByTag(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMongoReschedule(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	done := models.VaccinationEvent{
		GoatID: 1, VaccineTypeID: 1,
		ScheduledDate: dates.Date(2024, time.January, 1),
		GivenOn:       func() *time.Time { d := dates.Date(2024, time.January, 1); return &d }(),
		Status:        models.VaccinationDone,
	}
	require.NoError(t, repo.UpsertVaccination(ctx, &done))
	pending := models.VaccinationEvent{GoatID: 1, VaccineTypeID: 1, ScheduledDate: dates.Date(2024, time.February, 1), Status: models.VaccinationScheduled}
	require.NoError(t, repo.UpsertVaccination(ctx, &pending))

	from := pending.ScheduledDate
	moved := models.VaccinationEvent{GoatID: 1, VaccineTypeID: 1, ScheduledDate: dates.Date(2024, time.February, 9)}
	require.NoError(t, repo.RescheduleVaccination(ctx, &from, &moved))

	scheduled, err := repo.ListVaccinations(ctx, repository.VaccinationFilter{GoatID: 1, Status: models.VaccinationScheduled})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, dates.Date(2024, time.February, 9), scheduled[0].ScheduledDate)

	clash := models.VaccinationEvent{GoatID: 1, VaccineTypeID: 1, ScheduledDate: dates.Date(2024, time.January, 1)}
	current := moved.ScheduledDate
	assert.ErrorIs(t, repo.RescheduleVaccination(ctx, &current, &clash), repository.ErrAlreadyDone)
	assert.ErrorIs(t, repo.RescheduleVaccination(ctx, &from, &clash), repository.ErrAlreadyDone)

	stale := models.VaccinationEvent{GoatID: 1, VaccineTypeID: 1, ScheduledDate: dates.Date(2024, time.February, 20)}
	assert.ErrorIs(t, repo.RescheduleVaccination(ctx, &from, &stale), repository.ErrConflict)
}
