package models

import "time"

// Recurrence is the repeat rule of a farm event. The empty value means a one-off event.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// FarmEvent is a user-created calendar entry.
type FarmEvent struct {
	ID         int64      `bson:"_id" json:"id"`
	Title      string     `bson:"title" json:"title"`
	Date       time.Time  `bson:"event_date" json:"event_date"`
	Category   string     `bson:"category" json:"category"`
	Recurrence Recurrence `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	Notes      string     `bson:"notes" json:"notes"`
	CreatedBy  string     `bson:"created_by" json:"created_by"`
}
