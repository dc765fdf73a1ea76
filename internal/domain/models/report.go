package models

import "time"

// HerdReport represents the aggregated daily herd health snapshot kept for trend history.
type HerdReport struct {
	Date                time.Time `bson:"date" json:"date"`
	ActiveGoats         int       `bson:"active_goats" json:"active_goats"`
	Sick                int       `bson:"sick" json:"sick"`
	Underweight         int       `bson:"underweight" json:"underweight"`
	Pregnant            int       `bson:"pregnant" json:"pregnant"`
	ReadyToMate         int       `bson:"ready_to_mate" json:"ready_to_mate"`
	OverdueVaccinations int       `bson:"overdue_vaccinations" json:"overdue_vaccinations"`
	DueSoonVaccinations int       `bson:"due_soon_vaccinations" json:"due_soon_vaccinations"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
}
