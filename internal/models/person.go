package models

// BirthDateLayout is the wire format for birth dates.
const BirthDateLayout = "2006-01-02"

// Person is the identity record shared by every role.
type Person struct {
	ID              uint64  `db:"person_id" json:"person_id"`
	FirstName       string  `db:"first_name" json:"first_name"`
	MiddleName      *string `db:"middle_name" json:"middle_name,omitempty"`
	PaternalSurname string  `db:"paternal_surname" json:"paternal_surname"`
	MaternalSurname *string `db:"maternal_surname" json:"maternal_surname,omitempty"`
	BirthDate       Date    `db:"birth_date" json:"birth_date"`
	RoleType        *string `db:"role_type" json:"role_type,omitempty"`
}

// PersonRecord returns the person half of a composite entity.
func (p *Person) PersonRecord() *Person {
	return p
}

// FullName joins the populated name parts.
func (p *Person) FullName() string {
	name := p.FirstName
	if p.MiddleName != nil && *p.MiddleName != "" {
		name += " " + *p.MiddleName
	}
	name += " " + p.PaternalSurname
	if p.MaternalSurname != nil && *p.MaternalSurname != "" {
		name += " " + *p.MaternalSurname
	}
	return name
}

// Composite is a logical record stored as one person row plus one role row keyed by person_id.
type Composite interface {
	PersonRecord() *Person
	// RoleValues returns the role columns in schema order, without person_id.
	RoleValues() []interface{}
}
