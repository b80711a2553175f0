package repository

import "github.com/noah-isme/sma-roster-api/internal/models"

// StudentSchema maps models.StudentDetail onto the student table.
var StudentSchema = RoleSchema{
	Name:    "student",
	Table:   "student",
	Columns: []string{"student_number", "program", "term", "specialization"},
}

// StudentRepository manages persistence for students.
type StudentRepository = CompositeRepository[models.Student, *models.Student]

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(provider connectionProvider, codec fieldCodec, opts CompositeOptions) *StudentRepository {
	return NewCompositeRepository[models.Student, *models.Student](provider, codec, StudentSchema, opts)
}
