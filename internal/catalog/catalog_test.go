package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/repository/sqlite"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const herdYAML = `
goat_types:
  - name: Boer
    target_weights:
      - {sex: Male, age_months: 12, min_weight: 50}
      - {age_months: 6, min_weight: 25}
vaccine_types:
  - name: CDT
    description: Clostridium and tetanus
    min_age_days: 60
    booster_schedule_days: "21, 42"
    default_frequency_days: 365
goats:
  - {tag: B1, type: Boer, sex: buck, dob: 2023-01-15, weight: 40}
  - {tag: D1, type: Boer, sex: Female, date_acquired: 2023-06-01, age_estimate_months: 18, pregnant: true}
breedings:
  - {buck: B1, doe: D1, start: 2024-02-10, end: 2024-02-20}
farm_events:
  - {title: Deworming, date: 2024-03-01, category: health, recurrence: Monthly}
`

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "herd.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("goats:\n  - {tag: K1, colour: brown}\n"))
	assert.Error(t, err)

	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Goats)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	f, err := Parse(strings.NewReader(herdYAML))
	require.NoError(t, err)

	sum, err := NewImporter(store, nil).Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{GoatTypes: 1, TargetWeights: 2, VaccineTypes: 1, Goats: 2, Breedings: 1, FarmEvents: 1}, sum)

	vts, err := store.ListVaccineTypes(ctx)
	require.NoError(t, err)
	require.Len(t, vts, 1)
	assert.Equal(t, []int{21, 42}, vts[0].BoosterDays)

	buck, err := store.GoatByTag(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, models.SexMale, buck.Sex)
	assert.Equal(t, models.GoatActive, buck.Status)
	require.NotNil(t, buck.BirthDate)
	assert.Equal(t, dates.Date(2023, time.January, 15), *buck.BirthDate)
	assert.NotZero(t, buck.TypeID)

	doe, err := store.GoatByTag(ctx, "D1")
	require.NoError(t, err)
	assert.True(t, doe.Pregnant)
	assert.Nil(t, doe.BirthDate)

	breedings, err := store.ListBreedings(ctx)
	require.NoError(t, err)
	require.Len(t, breedings, 1)
	assert.Equal(t, buck.ID, breedings[0].BuckID)
	assert.Equal(t, doe.ID, breedings[0].DoeID)

	events, err := store.ListFarmEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.RecurrenceMonthly, events[0].Recurrence)
}

func TestImportIsRepeatableForKeyedRecords(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	im := NewImporter(store, nil)

	f, err := Parse(strings.NewReader(herdYAML))
	require.NoError(t, err)
	_, err = im.Import(ctx, f)
	require.NoError(t, err)

	f.Goats[0].Weight = 52
	_, err = im.Import(ctx, f)
	require.NoError(t, err)

	goats, err := store.ListGoats(ctx, repository.GoatFilter{})
	require.NoError(t, err)
	assert.Len(t, goats, 2)

	buck, err := store.GoatByTag(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, 52.0, buck.Weight)
}

func TestImportReferencesExistingRecords(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	im := NewImporter(store, nil)

	_, err := im.Import(ctx, File{GoatTypes: []GoatTypeSpec{{Name: "Saanen"}}})
	require.NoError(t, err)

	f := File{
		Goats:     []GoatSpec{{Tag: "S1", Type: "Saanen", Sex: "f"}},
		Breedings: []BreedingSpec{{Buck: "S1", Doe: "S1", Start: "2024-01-01"}},
	}
	sum, err := im.Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Breedings)
}

func TestImportValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	f := File{
		VaccineTypes: []VaccineTypeSpec{{Name: "PPR", BoosterScheduleDays: "21,x"}},
		Goats: []GoatSpec{
			{Tag: "K1", Sex: "unknown"},
			{Tag: "K2", Sex: "Female", Type: "Alpine", DOB: "01/02/2024"},
			{Tag: "K2", Sex: "Female"},
		},
		Breedings:  []BreedingSpec{{Buck: "ZZ", Doe: "K1", Start: "2024-02-20", End: "2024-02-10"}},
		FarmEvents: []FarmEventSpec{{Title: "Shearing", Date: "2024-04-01", Recurrence: "yearly"}},
	}

	_, err := NewImporter(store, nil).Import(ctx, f)
	require.ErrorIs(t, err, ErrInvalidCatalog)
	for _, want := range []string{
		`vaccine type PPR`,
		`goat K1: unknown sex "unknown"`,
		`goat K2: unknown type "Alpine"`,
		`goat K2 dob`,
		`goat K2 listed twice`,
		`breeding 1 ends before it starts`,
		`breeding 1: unknown goat "ZZ"`,
		`unknown recurrence "yearly"`,
	} {
		assert.Contains(t, err.Error(), want)
	}

	goats, err := store.ListGoats(ctx, repository.GoatFilter{})
	require.NoError(t, err)
	assert.Empty(t, goats)
	vts, err := store.ListVaccineTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, vts)
}
