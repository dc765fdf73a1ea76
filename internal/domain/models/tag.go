package models

// Tag is a derived status label. The set is closed; use the constants below.
type Tag string

const (
	TagPregnant    Tag = "pregnant"
	TagUnderweight Tag = "underweight"
	TagSick        Tag = "sick"
	TagReadyToMate Tag = "ready to mate"
	TagOld         Tag = "old"
	TagNewArrival  Tag = "new arrival"
	TagNewBorn     Tag = "new born"
	TagMatured     Tag = "matured"
)

var allTags = []Tag{
	TagPregnant,
	TagUnderweight,
	TagSick,
	TagReadyToMate,
	TagOld,
	TagNewArrival,
	TagNewBorn,
	TagMatured,
}

// AllTags lists every tag in presentation order.
func AllTags() []Tag {
	out := make([]Tag, len(allTags))
	copy(out, allTags)
	return out
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	for _, known := range allTags {
		if t == known {
			return true
		}
	}
	return false
}

// HasTag reports whether tags contains t.
func HasTag(tags []Tag, t Tag) bool {
	for _, candidate := range tags {
		if candidate == t {
			return true
		}
	}
	return false
}
