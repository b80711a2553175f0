package repository

import "github.com/noah-isme/sma-roster-api/internal/models"

// InstructorSchema maps models.InstructorDetail onto the instructor table.
var InstructorSchema = RoleSchema{
	Name:    "instructor",
	Table:   "instructor",
	Columns: []string{"badge_number"},
}

// InstructorRepository manages persistence for instructors.
type InstructorRepository = CompositeRepository[models.Instructor, *models.Instructor]

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(provider connectionProvider, codec fieldCodec, opts CompositeOptions) *InstructorRepository {
	return NewCompositeRepository[models.Instructor, *models.Instructor](provider, codec, InstructorSchema, opts)
}
