package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-api/internal/dto"
	"github.com/noah-isme/sma-roster-api/internal/models"
)

var studentExportHeaders = append(append([]string{}, personExportHeaders...), "student_number", "program", "term", "specialization")

// StudentService orchestrates student operations.
type StudentService struct {
	roster    *rosterService[models.Student, *models.Student]
	validator *validator.Validate
}

// NewStudentService constructs a StudentService. exports may be nil when roster exports are disabled.
func NewStudentService(repo compositeRepository[models.Student, *models.Student], validate *validator.Validate, exports *ExportService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		roster:    newRosterService[models.Student, *models.Student]("student", repo, exports, logger),
		validator: validate,
	}
}

// List returns every student.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.roster.list(ctx)
}

// Get returns a student by person id.
func (s *StudentService) Get(ctx context.Context, id uint64) (*models.Student, error) {
	return s.roster.get(ctx, id)
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.StudentRequest) (*models.Student, error) {
	student, err := s.build(req)
	if err != nil {
		return nil, err
	}
	return s.roster.create(ctx, student)
}

// Update replaces the student stored under id.
func (s *StudentService) Update(ctx context.Context, id uint64, req dto.StudentRequest) (*models.Student, error) {
	student, err := s.build(req)
	if err != nil {
		return nil, err
	}
	return s.roster.update(ctx, id, student)
}

// Delete removes a student. Deleting an unknown id succeeds.
func (s *StudentService) Delete(ctx context.Context, id uint64) error {
	return s.roster.delete(ctx, id)
}

// Export renders the student roster in the requested format.
func (s *StudentService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	return s.roster.export(ctx, format, studentExportHeaders, func(st *models.Student) map[string]string {
		row := personExportRow(&st.Person)
		row["student_number"] = st.StudentNumber
		row["program"] = st.Program
		row["term"] = st.Term
		row["specialization"] = deref(st.Specialization)
		return row
	})
}

func (s *StudentService) build(req dto.StudentRequest) (*models.Student, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := req.Student()
	if err != nil {
		return nil, validationError(err, "invalid student birth date")
	}
	return student, nil
}
