package models

import "time"

// BreedingEvent records a mating between a buck and a doe.
type BreedingEvent struct {
	ID          int64      `bson:"_id" json:"id"`
	BuckID      int64      `bson:"buck_id" json:"buck_id"`
	DoeID       int64      `bson:"doe_id" json:"doe_id"`
	MatingStart time.Time  `bson:"mating_start_date" json:"mating_start_date"`
	MatingEnd   *time.Time `bson:"mating_end_date,omitempty" json:"mating_end_date,omitempty"`
	Status      string     `bson:"status" json:"status"`
	Notes       string     `bson:"notes" json:"notes"`
}

// SicknessStatus is the state of an illness record.
type SicknessStatus string

const (
	SicknessActive    SicknessStatus = "active"
	SicknessRecovered SicknessStatus = "recovered"
)

// Sickness is an illness logged against a goat.
type Sickness struct {
	ID        int64          `bson:"_id" json:"id"`
	GoatID    int64          `bson:"goat_id" json:"goat_id"`
	Condition string         `bson:"sickness" json:"sickness"`
	Medicine  string         `bson:"medicine" json:"medicine"`
	Status    SicknessStatus `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}
