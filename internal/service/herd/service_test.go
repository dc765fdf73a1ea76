package herd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/repository/sqlite"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

var testToday = dates.Date(2024, time.March, 5)

type fixture struct {
	svc   *Service
	store *sqlite.Store
	cdt   models.VaccineType
	goats map[string]models.Goat
}

func day(y int, m time.Month, d int) *time.Time {
	t := dates.Date(y, m, d)
	return &t
}

// newFixture seeds a small herd:
// K1 kid due for its first CDT on 2024-03-01, D1 pregnant doe mated two weeks ago,
// D2 open doe, D3 sick doe, B1 underweight buck, Y1 four days old, R1 removed.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "herd.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	boer := models.GoatType{Name: "Boer"}
	require.NoError(t, store.SaveGoatType(ctx, &boer))
	require.NoError(t, store.SaveTargetWeight(ctx, &models.TargetWeight{GoatTypeID: boer.ID, Sex: models.SexMale, AgeMonths: 12, MinWeight: 50}))

	cdt := models.VaccineType{Name: "CDT", MinAgeDays: 60, BoosterDays: []int{21}, DefaultFrequencyDays: 365}
	require.NoError(t, store.SaveVaccineType(ctx, &cdt))

	goats := map[string]models.Goat{}
	for _, g := range []models.Goat{
		{Tag: "K1", Sex: models.SexFemale, BirthDate: day(2024, time.January, 1)},
		{Tag: "D1", Sex: models.SexFemale, BirthDate: day(2021, time.January, 1), Pregnant: true},
		{Tag: "D2", Sex: models.SexFemale, BirthDate: day(2020, time.June, 1)},
		{Tag: "D3", Sex: models.SexFemale, BirthDate: day(2022, time.January, 1)},
		{Tag: "B1", Sex: models.SexMale, TypeID: boer.ID, BirthDate: day(2019, time.January, 1), Weight: 40},
		{Tag: "Y1", Sex: models.SexFemale, BirthDate: day(2024, time.March, 1)},
		{Tag: "R1", Sex: models.SexFemale, BirthDate: day(2022, time.January, 1), Status: models.GoatRemoved},
	} {
		g := g
		require.NoError(t, store.SaveGoat(ctx, &g))
		goats[g.Tag] = g
	}

	require.NoError(t, store.CreateBreeding(ctx, &models.BreedingEvent{
		BuckID:      goats["B1"].ID,
		DoeID:       goats["D1"].ID,
		MatingStart: dates.Date(2024, time.February, 10),
		MatingEnd:   day(2024, time.February, 20),
	}))
	require.NoError(t, store.CreateSickness(ctx, &models.Sickness{GoatID: goats["D3"].ID, Condition: "cough"}))

	svc := NewService(store, Options{}, nil)
	svc.now = func() time.Time { return testToday.Add(10 * time.Hour) }

	return fixture{svc: svc, store: store, cdt: cdt, goats: goats}
}

func TestGoatDueInfo(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.GoatDueInfo(context.Background(), "K1")
	require.NoError(t, err)
	require.Len(t, got.Due, 1)
	assert.Equal(t, dates.Date(2024, time.March, 1), got.Due[0].NextDue)
	assert.Equal(t, care.StatusOverdue, got.Due[0].Status)
	assert.Equal(t, 4, got.Due[0].DaysOverdue(testToday))

	young, err := f.svc.GoatDueInfo(context.Background(), "Y1")
	require.NoError(t, err)
	assert.Empty(t, young.Due)

	_, err = f.svc.GoatDueInfo(context.Background(), "ZZ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGoatTagsAndRecovery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tags, err := f.svc.GoatTags(ctx, "D3")
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{models.TagSick, models.TagMatured}, tags)

	tags, err = f.svc.GoatTags(ctx, "B1")
	require.NoError(t, err)
	assert.Contains(t, tags, models.TagUnderweight)

	n, err := f.svc.MarkRecovered(ctx, "D3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tags, err = f.svc.GoatTags(ctx, "D3")
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{models.TagReadyToMate, models.TagMatured}, tags)

	n, err = f.svc.MarkRecovered(ctx, "D3")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordSicknessAndRecover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sickness, err := f.svc.RecordSickness(ctx, "D2", " bloat ", "charcoal")
	require.NoError(t, err)
	assert.NotZero(t, sickness.ID)
	assert.Equal(t, "bloat", sickness.Condition)
	assert.Equal(t, models.SicknessActive, sickness.Status)

	tags, err := f.svc.GoatTags(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{models.TagSick, models.TagMatured}, tags)

	board, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, board.Sick)

	n, err := f.svc.MarkRecovered(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tags, err = f.svc.GoatTags(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{models.TagReadyToMate, models.TagMatured}, tags)

	_, err = f.svc.RecordSickness(ctx, "D2", "  ", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = f.svc.RecordSickness(ctx, "R1", "cough", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateWeight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	goat, err := f.svc.UpdateWeight(ctx, "B1", 55)
	require.NoError(t, err)
	assert.Equal(t, 55.0, goat.Weight)
	assert.Equal(t, f.goats["B1"].TypeID, goat.TypeID)

	tags, err := f.svc.GoatTags(ctx, "B1")
	require.NoError(t, err)
	assert.NotContains(t, tags, models.TagUnderweight)

	_, err = f.svc.UpdateWeight(ctx, "B1", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = f.svc.UpdateWeight(ctx, "ZZ", 30)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReadyDoes(t *testing.T) {
	f := newFixture(t)

	ready, err := f.svc.ReadyDoes(context.Background())
	require.NoError(t, err)

	var tags []string
	for _, r := range ready {
		tags = append(tags, r.Doe.Tag)
	}
	assert.Equal(t, []string{"D2", "D3", "K1", "Y1"}, tags)

	f.svc.opts.ReadyMinDays = 14
	ready, err = f.svc.ReadyDoes(context.Background())
	require.NoError(t, err)
	require.Len(t, ready, 5)
	require.NotNil(t, ready[0].DaysSince)
	assert.Equal(t, 14, *ready[0].DaysSince)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	board, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testToday, board.Date)
	assert.Equal(t, 6, board.TotalGoats)
	assert.Equal(t, 1, board.Sick)
	assert.Equal(t, 1, board.Underweight)
	assert.Equal(t, 1, board.Pregnant)
	assert.Equal(t, 3, board.ReadyToMate)
	assert.Equal(t, 5, board.DueVaccinations)

	require.Len(t, board.Upcoming, 3)
	var order []string
	for _, u := range board.Upcoming {
		order = append(order, u.GoatTag)
		assert.Equal(t, care.StatusOverdue, u.Status)
	}
	assert.Equal(t, []string{"B1", "D2", "D1"}, order)
}

func TestHerdDueSorted(t *testing.T) {
	f := newFixture(t)

	entries, err := f.svc.HerdDue(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "K1", entries[4].Goat.Tag)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Info.NextDue.Before(entries[i-1].Info.NextDue))
	}
}

func TestCalendarFeedWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.CreateFarmEvent(ctx, &models.FarmEvent{Title: "Hoof trim", Date: dates.Date(2024, time.March, 8)}))

	feed, err := f.svc.CalendarFeed(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, testToday, feed.From)
	assert.Equal(t, dates.Date(2024, time.April, 4), feed.To)

	var ids []string
	for _, e := range feed.Entries {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "custom-1")

	_, err = f.svc.CalendarFeed(ctx, dates.Date(2024, time.March, 10), dates.Date(2024, time.March, 1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRecordVaccination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.RecordVaccination(ctx, RecordRequest{
		Tag:           "K1",
		VaccineTypeID: f.cdt.ID,
		GivenOn:       &testToday,
		BatchNumber:   "LOT-1",
		GivenBy:       "amadou",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VaccinationDone, ev.Status)
	assert.Equal(t, testToday, ev.ScheduledDate)

	got, err := f.svc.GoatDueInfo(ctx, "K1")
	require.NoError(t, err)
	require.Len(t, got.Due, 1)
	assert.Equal(t, 1, got.Due[0].DosesGiven)
	assert.Equal(t, dates.Date(2024, time.March, 26), got.Due[0].NextDue)
	assert.Equal(t, care.StatusDue, got.Due[0].Status)

	_, err = f.svc.RecordVaccination(ctx, RecordRequest{Tag: "R1", VaccineTypeID: f.cdt.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.RecordVaccination(ctx, RecordRequest{Tag: "K1", VaccineTypeID: 999})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBatchRecordVaccination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := BatchRequest{VaccineTypeID: f.cdt.ID, Tags: []string{"K1", "D1", "NOPE", "K1", "R1"}, BatchNumber: "LOT-7"}
	result, err := f.svc.BatchRecordVaccination(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recorded)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, []string{"NOPE", "R1"}, result.Unknown)

	again, err := f.svc.BatchRecordVaccination(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, again.Recorded)
	assert.Equal(t, 2, again.Skipped)

	done, err := f.store.ListVaccinations(ctx, repository.VaccinationFilter{Status: models.VaccinationDone})
	require.NoError(t, err)
	assert.Len(t, done, 2)

	_, err = f.svc.BatchRecordVaccination(ctx, BatchRequest{VaccineTypeID: f.cdt.ID})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRescheduleVaccination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.RescheduleVaccination(ctx, "K1", f.cdt.ID, dates.Date(2024, time.March, 10), "vet")
	require.NoError(t, err)
	assert.Equal(t, models.VaccinationScheduled, ev.Status)
	assert.Equal(t, "Rescheduled by vet on 2024-03-05 10:00", ev.Notes)

	got, err := f.svc.GoatDueInfo(ctx, "K1")
	require.NoError(t, err)
	require.Len(t, got.Due, 1)
	assert.True(t, got.Due[0].Scheduled)
	assert.Equal(t, dates.Date(2024, time.March, 10), got.Due[0].NextDue)
	assert.Equal(t, care.StatusDue, got.Due[0].Status)

	// moving an already scheduled dose replaces the pending record
	_, err = f.svc.RescheduleVaccination(ctx, "K1", f.cdt.ID, dates.Date(2024, time.March, 12), "vet")
	require.NoError(t, err)
	pending, err := f.store.ListVaccinations(ctx, repository.VaccinationFilter{GoatID: f.goats["K1"].ID, Status: models.VaccinationScheduled})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, dates.Date(2024, time.March, 12), pending[0].ScheduledDate)
}

func TestRescheduleVaccinationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RescheduleVaccination(ctx, "Y1", f.cdt.ID, dates.Date(2024, time.March, 10), "vet")
	assert.ErrorIs(t, err, ErrNoDueVaccination)

	_, err = f.svc.RescheduleVaccination(ctx, "R1", f.cdt.ID, dates.Date(2024, time.March, 10), "vet")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.RescheduleVaccination(ctx, "K1", f.cdt.ID, time.Time{}, "vet")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.RecordVaccination(ctx, RecordRequest{
		Tag:           "D2",
		VaccineTypeID: f.cdt.ID,
		ScheduledDate: day(2024, time.March, 20),
		GivenOn:       &testToday,
	})
	require.NoError(t, err)

	_, err = f.svc.RescheduleVaccination(ctx, "D2", f.cdt.ID, dates.Date(2024, time.March, 20), "vet")
	assert.ErrorIs(t, err, repository.ErrAlreadyDone)
}
