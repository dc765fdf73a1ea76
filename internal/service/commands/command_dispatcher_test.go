package commands

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/internal/service/reporting"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

var today = dates.Date(2024, time.March, 5)

type fakeHerd struct {
	goats map[string]herd.GoatDue
	tags  map[string][]models.Tag
	ready []care.ReadyDoe
}

func (f *fakeHerd) Today() time.Time { return today }

func (f *fakeHerd) GoatDueInfo(_ context.Context, tag string) (herd.GoatDue, error) {
	due, ok := f.goats[tag]
	if !ok {
		return herd.GoatDue{}, fmt.Errorf("goat %s: %w", tag, repository.ErrNotFound)
	}
	return due, nil
}

func (f *fakeHerd) GoatTags(_ context.Context, tag string) ([]models.Tag, error) {
	tags, ok := f.tags[tag]
	if !ok {
		return nil, fmt.Errorf("goat %s: %w", tag, repository.ErrNotFound)
	}
	return tags, nil
}

func (f *fakeHerd) ReadyDoes(context.Context) ([]care.ReadyDoe, error) { return f.ready, nil }

type fakeReporting struct {
	rows []reporting.OverdueRow
}

func (f *fakeReporting) OverdueReport(context.Context) ([]reporting.OverdueRow, error) {
	return f.rows, nil
}

func (f *fakeReporting) Digest(context.Context) (string, error) { return "Herd digest 2024-03-05", nil }

func newDispatcher() (*Service, *fakeHerd, *fakeReporting) {
	days := 30
	h := &fakeHerd{
		goats: map[string]herd.GoatDue{
			"K1": {
				Goat: models.Goat{Tag: "K1"},
				Due: []care.DueInfo{
					{Vaccine: models.VaccineType{Name: "CDT"}, NextDue: dates.Date(2024, time.March, 1), Status: care.StatusOverdue},
					{Vaccine: models.VaccineType{Name: "PPR"}, NextDue: dates.Date(2024, time.March, 20), Status: care.StatusDue, Scheduled: true},
				},
			},
			"Y1": {Goat: models.Goat{Tag: "Y1"}},
		},
		tags: map[string][]models.Tag{
			"D1": {models.TagPregnant, models.TagMatured},
			"Y1": {},
		},
		ready: []care.ReadyDoe{
			{Doe: models.Goat{Tag: "D1"}, Breeding: &models.BreedingEvent{}, DaysSince: &days},
			{Doe: models.Goat{Tag: "D2"}},
			{Doe: models.Goat{Tag: "D3"}, Breeding: &models.BreedingEvent{}},
		},
	}
	r := &fakeReporting{}
	return NewService(h, r, nil), h, r
}

func TestHandleCommand(t *testing.T) {
	svc, _, _ := newDispatcher()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "due with overdue and scheduled doses",
			message: "/due K1",
			want:    "K1 vaccinations:\n- CDT next due 2024-03-01, overdue by 4 days\n- PPR next due 2024-03-20 (scheduled)",
		},
		{name: "due for a young goat", message: "/due Y1", want: "Y1 has no vaccinations due yet."},
		{name: "due for unknown goat", message: "/DUE ZZ", want: "Goat ZZ not found."},
		{name: "tags", message: "/tags D1", want: "D1: pregnant, matured"},
		{name: "no tags", message: "tags Y1", want: "Y1: no tags"},
		{
			name:    "ready",
			message: "/ready",
			want:    "Ready does (3):\n- D1 (30 days since mating)\n- D2 (never mated)\n- D3 (mating end not recorded)",
		},
		{name: "no overdue", message: "/overdue", want: "No overdue vaccinations."},
		{name: "digest", message: "/digest", want: "Herd digest 2024-03-05"},
		{name: "unknown", message: "/eggs 12", want: HelpText},
		{name: "empty", message: "   ", want: HelpText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := svc.HandleCommand(context.Background(), models.ParseCommand(tt.message), "221770000000")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestHandleCommandMissingTag(t *testing.T) {
	svc, _, _ := newDispatcher()

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/due"), "x")
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.ErrorContains(t, err, "usage /due <tag>")
}

func TestOverdueReplyTruncates(t *testing.T) {
	svc, _, r := newDispatcher()
	for i := 0; i < 12; i++ {
		r.rows = append(r.rows, reporting.OverdueRow{
			GoatTag:     fmt.Sprintf("G%02d", i),
			Vaccine:     "CDT",
			NextDue:     dates.Date(2024, time.February, 1),
			DaysOverdue: 33,
		})
	}

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/overdue"), "x")
	require.NoError(t, err)

	lines := strings.Split(reply, "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "Overdue vaccinations (12):", lines[0])
	assert.Equal(t, "- G00 CDT due 2024-02-01 (33 days)", lines[1])
	assert.Equal(t, "... and 2 more", lines[11])
}
