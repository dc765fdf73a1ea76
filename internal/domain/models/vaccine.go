package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VaccinationStatus is the lifecycle state of a vaccination record.
type VaccinationStatus string

const (
	VaccinationScheduled VaccinationStatus = "scheduled"
	VaccinationDone      VaccinationStatus = "done"
)

// VaccineType describes a vaccination program from the catalog.
type VaccineType struct {
	ID                   int64  `bson:"_id" json:"id"`
	Name                 string `bson:"name" json:"name"`
	Description          string `bson:"description" json:"description"`
	MinAgeDays           int    `bson:"min_age_days" json:"min_age_days"`
	BoosterDays          []int  `bson:"booster_schedule_days" json:"booster_schedule_days"`
	DefaultFrequencyDays int    `bson:"default_frequency_days" json:"default_frequency_days"`
}

// VaccinationEvent is a scheduled or administered dose.
type VaccinationEvent struct {
	ID            int64             `bson:"_id" json:"id"`
	GoatID        int64             `bson:"goat_id" json:"goat_id"`
	VaccineTypeID int64             `bson:"vaccine_type_id" json:"vaccine_type_id"`
	ScheduledDate time.Time         `bson:"scheduled_date" json:"scheduled_date"`
	GivenOn       *time.Time        `bson:"actual_date_given,omitempty" json:"actual_date_given,omitempty"`
	Status        VaccinationStatus `bson:"status" json:"status"`
	Notes         string            `bson:"notes" json:"notes"`
	BatchNumber   string            `bson:"batch_number" json:"batch_number"`
	GivenBy       string            `bson:"given_by" json:"given_by"`
	CreatedBy     string            `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
}

// IsDone reports whether the record documents an administered dose.
func (v VaccinationEvent) IsDone() bool {
	return v.Status == VaccinationDone
}

// ParseBoosterSchedule reads a comma separated list of day intervals such as "21, 42".
// Whitespace is trimmed and empty tokens are dropped.
func ParseBoosterSchedule(raw string) ([]int, error) {
	var intervals []int
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		days, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("booster interval %q: %w", token, err)
		}
		intervals = append(intervals, days)
	}
	return intervals, nil
}

// FormatBoosterSchedule is the inverse of ParseBoosterSchedule.
func FormatBoosterSchedule(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
