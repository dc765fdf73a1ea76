package care

import (
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// Feed categories for generated entries.
const (
	CategoryMating      = "Mating"
	CategoryVaccination = "Vaccination"
)

// FeedEntry is one item of the merged calendar feed.
type FeedEntry struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Start         time.Time         `json:"start"`
	End           *time.Time        `json:"end,omitempty"`
	Category      string            `json:"category"`
	Notes         string            `json:"notes,omitempty"`
	CreatedBy     string            `json:"createdBy,omitempty"`
	Recurrence    models.Recurrence `json:"recurrence,omitempty"`
	AllDay        bool              `json:"allDay"`
	GoatTag       string            `json:"goat_tag,omitempty"`
	VaccineTypeID int64             `json:"vaccine_type_id,omitempty"`
	Status        string            `json:"status,omitempty"`
}

// Feed is the calendar for a window plus non-fatal data problems met while building it.
type Feed struct {
	From     time.Time   `json:"from"`
	To       time.Time   `json:"to"`
	Entries  []FeedEntry `json:"entries"`
	Warnings []string    `json:"warnings,omitempty"`
}

// FeedInput is the prefetched snapshot the feed is built from.
type FeedInput struct {
	FarmEvents   []models.FarmEvent
	Breedings    []models.BreedingEvent
	Goats        []models.Goat
	VaccineTypes []models.VaccineType
	Vaccinations []models.VaccinationEvent
}

// BuildFeed merges farm events, matings, computed vaccination due dates and
// persisted scheduled vaccinations falling inside [from, to].
func BuildFeed(in FeedInput, from, to, today time.Time) Feed {
	from, to = dates.Day(from), dates.Day(to)
	feed := Feed{From: from, To: to, Entries: []FeedEntry{}}

	for _, ev := range in.FarmEvents {
		occurrences, err := Expand(ev, from, to)
		if err != nil {
			feed.Warnings = append(feed.Warnings, err.Error())
		}
		for _, occ := range occurrences {
			id := occ.ID
			if !occ.Recurring() {
				id = "custom-" + occ.ID
			}
			feed.Entries = append(feed.Entries, FeedEntry{
				ID:         id,
				Title:      occ.Title,
				Start:      occ.Date,
				Category:   occ.Category,
				Notes:      occ.Notes,
				CreatedBy:  occ.CreatedBy,
				Recurrence: occ.Recurrence,
				AllDay:     true,
			})
		}
	}

	goats := make(map[int64]models.Goat, len(in.Goats))
	for _, g := range in.Goats {
		goats[g.ID] = g
	}
	vaccines := make(map[int64]models.VaccineType, len(in.VaccineTypes))
	for _, vt := range in.VaccineTypes {
		vaccines[vt.ID] = vt
	}

	for _, b := range in.Breedings {
		if !dates.Within(b.MatingStart, from, to) {
			continue
		}
		feed.Entries = append(feed.Entries, FeedEntry{
			ID:       fmt.Sprintf("mating-%d", b.ID),
			Title:    fmt.Sprintf("Mating: %s x %s", tagOrDash(goats, b.BuckID), tagOrDash(goats, b.DoeID)),
			Start:    dates.Day(b.MatingStart),
			End:      b.MatingEnd,
			Category: CategoryMating,
			Notes:    b.Notes,
			AllDay:   true,
		})
	}

	history := IndexVaccinations(in.Vaccinations)
	for _, goat := range in.Goats {
		if goat.Status != models.GoatActive {
			continue
		}
		goatHistory := history[goat.ID]
		for _, due := range ComputeDueInfo(goat, in.VaccineTypes, goatHistory, today) {
			// persisted schedules are listed from their own rows below
			if due.Scheduled || !dates.Within(due.NextDue, from, to) {
				continue
			}
			if HasDoneOn(goatHistory, goat.ID, due.Vaccine.ID, due.NextDue) {
				continue
			}
			feed.Entries = append(feed.Entries, FeedEntry{
				ID:            fmt.Sprintf("auto-vax-%d-%d-%s", goat.ID, due.Vaccine.ID, dates.Format(due.NextDue)),
				Title:         fmt.Sprintf("%s - %s", due.Vaccine.Name, goat.Tag),
				Start:         due.NextDue,
				Category:      CategoryVaccination,
				Notes:         fmt.Sprintf("Due for %s: %s", goat.Tag, due.Vaccine.Name),
				AllDay:        true,
				GoatTag:       goat.Tag,
				VaccineTypeID: due.Vaccine.ID,
				Status:        string(due.Status),
			})
		}
	}

	for _, ve := range in.Vaccinations {
		if ve.IsDone() || !dates.Within(ve.ScheduledDate, from, to) {
			continue
		}
		goat, okGoat := goats[ve.GoatID]
		vt, okVaccine := vaccines[ve.VaccineTypeID]
		if !okGoat || !okVaccine {
			continue
		}
		feed.Entries = append(feed.Entries, FeedEntry{
			ID:            fmt.Sprintf("vax-%d", ve.ID),
			Title:         fmt.Sprintf("%s - %s", vt.Name, goat.Tag),
			Start:         dates.Day(ve.ScheduledDate),
			Category:      CategoryVaccination,
			Notes:         fmt.Sprintf("Scheduled for %s: %s", goat.Tag, vt.Name),
			AllDay:        true,
			GoatTag:       goat.Tag,
			VaccineTypeID: vt.ID,
			Status:        string(ve.Status),
		})
	}

	sort.SliceStable(feed.Entries, func(i, j int) bool {
		a, b := feed.Entries[i], feed.Entries[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})

	return feed
}

func tagOrDash(goats map[int64]models.Goat, id int64) string {
	if g, ok := goats[id]; ok && g.Tag != "" {
		return g.Tag
	}
	return "-"
}
