package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/catalog"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/internal/service/reporting"
)

const fixture = `
goat_types:
  - name: Boer
vaccine_types:
  - {name: CDT, min_age_days: 60, booster_schedule_days: "21", default_frequency_days: 365}
goats:
  - {tag: D1, type: Boer, sex: Female, dob: 2020-01-01}
  - {tag: B1, type: Boer, sex: Male, dob: 2020-01-01}
farm_events:
  - {title: Deworming, date: 2024-03-01, category: health, recurrence: monthly}
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "herd.db"))
	t.Setenv("TIMEZONE", "UTC")
	for _, key := range []string{"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID"} {
		t.Setenv(key, "")
	}

	path := filepath.Join(dir, "herd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestImportAndQuery(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "import", path, "--json")
	require.NoError(t, err)
	var sum catalog.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 2, sum.Goats)
	assert.Equal(t, 1, sum.FarmEvents)

	out, err = run(t, "due", "D1", "--json")
	require.NoError(t, err)
	var due herd.GoatDue
	require.NoError(t, json.Unmarshal([]byte(out), &due))
	require.Len(t, due.Due, 1)
	assert.Equal(t, care.StatusOverdue, due.Due[0].Status)

	out, err = run(t, "due", "D1")
	require.NoError(t, err)
	assert.Contains(t, out, "VACCINE")
	assert.Contains(t, out, "CDT")

	out, err = run(t, "ready", "--json")
	require.NoError(t, err)
	var ready []care.ReadyDoe
	require.NoError(t, json.Unmarshal([]byte(out), &ready))
	require.Len(t, ready, 1)
	assert.Equal(t, "D1", ready[0].Doe.Tag)

	out, err = run(t, "overdue", "--json")
	require.NoError(t, err)
	var rows []reporting.OverdueRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Boer", rows[0].GoatType)

	out, err = run(t, "overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "DAYS OVERDUE")

	out, err = run(t, "calendar", "--from", "2024-03-01", "--to", "2024-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Deworming")
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "due", "NOPE")
	assert.Error(t, err)

	_, err = run(t, "calendar", "--from", "March")
	assert.ErrorContains(t, err, "--from")

	_, err = run(t, "calendar", "--from", "2024-03-10", "--to", "2024-03-01")
	assert.ErrorIs(t, err, herd.ErrInvalidRequest)

	_, err = run(t, "import", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
