package models

// Instructor joins a person with its staff badge.
type Instructor struct {
	Person
	InstructorDetail
}

// InstructorDetail is the instructor-specific row keyed by person_id.
type InstructorDetail struct {
	BadgeNumber string `db:"badge_number" json:"badge_number"`
}

// RoleValues implements Composite.
func (d *InstructorDetail) RoleValues() []interface{} {
	return []interface{}{d.BadgeNumber}
}
