package models

// Student joins a person with its enrollment details.
type Student struct {
	Person
	StudentDetail
}

// StudentDetail is the student-specific row keyed by person_id.
type StudentDetail struct {
	StudentNumber  string  `db:"student_number" json:"student_number"`
	Program        string  `db:"program" json:"program"`
	Term           string  `db:"term" json:"term"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
}

// RoleValues implements Composite.
func (d *StudentDetail) RoleValues() []interface{} {
	return []interface{}{d.StudentNumber, d.Program, d.Term, d.Specialization}
}
