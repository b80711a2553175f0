package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-api/internal/dto"
	"github.com/noah-isme/sma-roster-api/internal/models"
)

var instructorExportHeaders = append(append([]string{}, personExportHeaders...), "badge_number")

// InstructorService orchestrates instructor operations.
type InstructorService struct {
	roster    *rosterService[models.Instructor, *models.Instructor]
	validator *validator.Validate
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo compositeRepository[models.Instructor, *models.Instructor], validate *validator.Validate, exports *ExportService, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	return &InstructorService{
		roster:    newRosterService[models.Instructor, *models.Instructor]("instructor", repo, exports, logger),
		validator: validate,
	}
}

// List returns every instructor.
func (s *InstructorService) List(ctx context.Context) ([]models.Instructor, error) {
	return s.roster.list(ctx)
}

// Get returns an instructor by person id.
func (s *InstructorService) Get(ctx context.Context, id uint64) (*models.Instructor, error) {
	return s.roster.get(ctx, id)
}

// Create registers a new instructor.
func (s *InstructorService) Create(ctx context.Context, req dto.InstructorRequest) (*models.Instructor, error) {
	instructor, err := s.build(req)
	if err != nil {
		return nil, err
	}
	return s.roster.create(ctx, instructor)
}

// Update replaces the instructor stored under id.
func (s *InstructorService) Update(ctx context.Context, id uint64, req dto.InstructorRequest) (*models.Instructor, error) {
	instructor, err := s.build(req)
	if err != nil {
		return nil, err
	}
	return s.roster.update(ctx, id, instructor)
}

// Delete removes an instructor.
func (s *InstructorService) Delete(ctx context.Context, id uint64) error {
	return s.roster.delete(ctx, id)
}

// Export renders the instructor roster.
func (s *InstructorService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	return s.roster.export(ctx, format, instructorExportHeaders, func(in *models.Instructor) map[string]string {
		row := personExportRow(&in.Person)
		row["badge_number"] = in.BadgeNumber
		return row
	})
}

func (s *InstructorService) build(req dto.InstructorRequest) (*models.Instructor, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid instructor payload")
	}
	instructor, err := req.Instructor()
	if err != nil {
		return nil, validationError(err, "invalid instructor birth date")
	}
	return instructor, nil
}
