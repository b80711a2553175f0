package dto

import (
	"strings"

	"github.com/noah-isme/sma-roster-api/internal/models"
)

// PersonRequest carries the identity fields shared by every role payload.
type PersonRequest struct {
	FirstName       string  `json:"first_name" validate:"required,min=2,max=100"`
	MiddleName      *string `json:"middle_name" validate:"omitempty,max=100"`
	PaternalSurname string  `json:"paternal_surname" validate:"required,min=2,max=100"`
	MaternalSurname *string `json:"maternal_surname" validate:"omitempty,max=100"`
	BirthDate       string  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	RoleType        *string `json:"role_type" validate:"omitempty,max=50"`
}

// StudentRequest is the create/update payload for students.
type StudentRequest struct {
	PersonRequest
	StudentNumber  string  `json:"student_number" validate:"required,min=2,max=50"`
	Program        string  `json:"program" validate:"required,min=2,max=100"`
	Term           string  `json:"term" validate:"required,max=20"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
}

// InstructorRequest is the create/update payload for instructors.
type InstructorRequest struct {
	PersonRequest
	BadgeNumber string `json:"badge_number" validate:"required,min=2,max=50"`
}

// Normalize trims every field and drops blank optional values.
func (r *PersonRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.PaternalSurname = strings.TrimSpace(r.PaternalSurname)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.MiddleName = normalizeOptional(r.MiddleName)
	r.MaternalSurname = normalizeOptional(r.MaternalSurname)
	r.RoleType = normalizeOptional(r.RoleType)
}

// Normalize trims the payload.
func (r *StudentRequest) Normalize() {
	r.PersonRequest.Normalize()
	r.StudentNumber = strings.TrimSpace(r.StudentNumber)
	r.Program = strings.TrimSpace(r.Program)
	r.Term = strings.TrimSpace(r.Term)
	r.Specialization = normalizeOptional(r.Specialization)
}

// Normalize trims the payload.
func (r *InstructorRequest) Normalize() {
	r.PersonRequest.Normalize()
	r.BadgeNumber = strings.TrimSpace(r.BadgeNumber)
}

// Person converts a validated payload into the person model.
func (r PersonRequest) Person() (models.Person, error) {
	birth, err := models.ParseDate(r.BirthDate)
	if err != nil {
		return models.Person{}, err
	}
	return models.Person{
		FirstName:       r.FirstName,
		MiddleName:      r.MiddleName,
		PaternalSurname: r.PaternalSurname,
		MaternalSurname: r.MaternalSurname,
		BirthDate:       birth,
		RoleType:        r.RoleType,
	}, nil
}

// Student converts a validated payload into a student model.
func (r StudentRequest) Student() (*models.Student, error) {
	person, err := r.PersonRequest.Person()
	if err != nil {
		return nil, err
	}
	return &models.Student{
		Person: person,
		StudentDetail: models.StudentDetail{
			StudentNumber:  r.StudentNumber,
			Program:        r.Program,
			Term:           r.Term,
			Specialization: r.Specialization,
		},
	}, nil
}

// Instructor converts a validated payload into an instructor model.
func (r InstructorRequest) Instructor() (*models.Instructor, error) {
	person, err := r.PersonRequest.Person()
	if err != nil {
		return nil, err
	}
	return &models.Instructor{
		Person:           person,
		InstructorDetail: models.InstructorDetail{BadgeNumber: r.BadgeNumber},
	}, nil
}

// ExportFile is a rendered roster ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
