package models

import "time"

// Sex distinguishes bucks from does.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// GoatStatus tracks whether a goat is still part of the herd.
type GoatStatus string

const (
	GoatActive  GoatStatus = "active"
	GoatRemoved GoatStatus = "removed"
)

// Goat is a single animal of the herd.
type Goat struct {
	ID                int64      `bson:"_id" json:"id"`
	Tag               string     `bson:"tag" json:"tag"`
	TypeID            int64      `bson:"goat_type_id" json:"goat_type_id"`
	Sex               Sex        `bson:"sex" json:"sex"`
	BirthDate         *time.Time `bson:"dob,omitempty" json:"dob,omitempty"`
	AgeEstimateMonths int        `bson:"age_estimate_months" json:"age_estimate_months"`
	AcquiredOn        time.Time  `bson:"date_acquired" json:"date_acquired"`
	AcquisitionMethod string     `bson:"acquisition_method" json:"acquisition_method"`
	Pregnant          bool       `bson:"is_pregnant" json:"is_pregnant"`
	Weight            float64    `bson:"weight" json:"weight"` // kg, 0 when never weighed
	Status            GoatStatus `bson:"status" json:"status"`
	Location          string     `bson:"location" json:"location"`
	Notes             string     `bson:"notes" json:"notes"`
}

// IsFemale reports whether the goat is a doe.
func (g Goat) IsFemale() bool {
	return g.Sex == SexFemale
}

// GoatType is a breed or production type.
type GoatType struct {
	ID   int64  `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// TargetWeight is one step of the minimum weight curve for a goat type.
// An empty Sex applies to both sexes.
type TargetWeight struct {
	ID         int64   `bson:"_id" json:"id"`
	GoatTypeID int64   `bson:"goat_type_id" json:"goat_type_id"`
	Sex        Sex     `bson:"sex,omitempty" json:"sex,omitempty"`
	AgeMonths  int     `bson:"age_months" json:"age_months"`
	MinWeight  float64 `bson:"min_weight" json:"min_weight"`
}
