package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-api/internal/dto"
	"github.com/noah-isme/sma-roster-api/internal/models"
	"github.com/noah-isme/sma-roster-api/pkg/export"
	appErrors "github.com/noah-isme/sma-roster-api/pkg/errors"
	"github.com/noah-isme/sma-roster-api/pkg/logger"
)

type compositeRepository[T any, PT any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint64) (*T, error)
	Create(ctx context.Context, entity PT) error
	Update(ctx context.Context, id uint64, entity PT) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
}

type compositePtr[T any] interface {
	*T
	models.Composite
}

// rosterService holds the flow shared by every role: typed errors out, first-name
// corruption logged, and zero-row writes reported.
type rosterService[T any, PT compositePtr[T]] struct {
	repo    compositeRepository[T, PT]
	exports *ExportService
	logger  *zap.Logger
	label   string
}

func newRosterService[T any, PT compositePtr[T]](label string, repo compositeRepository[T, PT], exports *ExportService, logger *zap.Logger) *rosterService[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rosterService[T, PT]{repo: repo, exports: exports, logger: logger.With(zap.String("role", label)), label: label}
}

func (s *rosterService[T, PT]) list(ctx context.Context) ([]T, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to list "+s.label+"s")
	}
	return items, nil
}

func (s *rosterService[T, PT]) get(ctx context.Context, id uint64) (*T, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to load "+s.label)
	}
	return item, nil
}

func (s *rosterService[T, PT]) create(ctx context.Context, entity PT) (PT, error) {
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, s.translate(ctx, err, "failed to create "+s.label)
	}
	logger.WithContext(ctx, s.logger).Info("composite entity created", zap.Uint64("person_id", entity.PersonRecord().ID))
	return entity, nil
}

func (s *rosterService[T, PT]) update(ctx context.Context, id uint64, entity PT) (PT, error) {
	affected, err := s.repo.Update(ctx, id, entity)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to update "+s.label)
	}
	// TODO: surface NOT_FOUND once API consumers stop relying on blind updates.
	if affected == 0 {
		logger.WithContext(ctx, s.logger).Warn("update matched no rows", zap.Uint64("person_id", id))
	}
	entity.PersonRecord().ID = id
	return entity, nil
}

func (s *rosterService[T, PT]) delete(ctx context.Context, id uint64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.translate(ctx, err, "failed to delete "+s.label)
	}
	if affected == 0 {
		s.logger.Debug("delete matched no rows", zap.Uint64("person_id", id))
	}
	return nil
}

func (s *rosterService[T, PT]) export(ctx context.Context, format string, headers []string, row func(PT) map[string]string) (*dto.ExportFile, error) {
	if s.exports == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "roster exports are disabled")
	}
	if err := s.exports.Supports(format); err != nil {
		return nil, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(items))}
	for i := range items {
		data.Rows = append(data.Rows, row(PT(&items[i])))
	}
	return s.exports.Render(format, s.label+"s", data)
}

// translate maps repository failures onto API errors. Typed errors pass through untouched.
func (s *rosterService[T, PT]) translate(ctx context.Context, err error, message string) error {
	log := logger.WithContext(ctx, s.logger)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, s.label+" not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case appErrors.ErrFormat.Code:
			log.Error("stored first name could not be deobfuscated", zap.Error(err))
		case appErrors.ErrConnection.Code, appErrors.ErrPersistence.Code:
			log.Error(message, zap.Error(err))
		}
		return appErr
	}
	log.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

var personExportHeaders = []string{"person_id", "first_name", "middle_name", "paternal_surname", "maternal_surname", "birth_date", "role_type"}

func personExportRow(p *models.Person) map[string]string {
	return map[string]string{
		"person_id":        strconv.FormatUint(p.ID, 10),
		"first_name":       p.FirstName,
		"middle_name":      deref(p.MiddleName),
		"paternal_surname": p.PaternalSurname,
		"maternal_surname": deref(p.MaternalSurname),
		"birth_date":       p.BirthDate.String(),
		"role_type":        deref(p.RoleType),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
