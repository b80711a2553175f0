package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-roster-api/internal/dto"
	"github.com/noah-isme/sma-roster-api/internal/models"
	appErrors "github.com/noah-isme/sma-roster-api/pkg/errors"
)

type instructorServiceMock struct {
	items   []models.Instructor
	lastReq dto.InstructorRequest
	err     error
}

func (m *instructorServiceMock) List(ctx context.Context) ([]models.Instructor, error) {
	return m.items, m.err
}

func (m *instructorServiceMock) Get(ctx context.Context, id uint64) (*models.Instructor, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
}

func (m *instructorServiceMock) Create(ctx context.Context, req dto.InstructorRequest) (*models.Instructor, error) {
	m.lastReq = req
	return &models.Instructor{Person: models.Person{ID: 3, FirstName: req.FirstName}, InstructorDetail: models.InstructorDetail{BadgeNumber: req.BadgeNumber}}, nil
}

func (m *instructorServiceMock) Update(ctx context.Context, id uint64, req dto.InstructorRequest) (*models.Instructor, error) {
	return &models.Instructor{Person: models.Person{ID: id}}, nil
}

func (m *instructorServiceMock) Delete(ctx context.Context, id uint64) error {
	return nil
}

func (m *instructorServiceMock) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

func TestInstructorHandlerCreateAndList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &instructorServiceMock{items: []models.Instructor{{Person: models.Person{ID: 3, FirstName: "Marta"}}}}
	h := NewInstructorHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/instructors", bytes.NewReader([]byte(`{"first_name":"Marta","badge_number":"F-100"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "F-100", svc.lastReq.BadgeNumber)
	assert.Contains(t, w.Body.String(), `"badge_number":"F-100"`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/instructors", nil)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestInstructorHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewInstructorHandler(&instructorServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/instructors/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstructorHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewInstructorHandler(&instructorServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/instructors/export?format=docx", nil)

	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstructorHandlerDeleteBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewInstructorHandler(&instructorServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/instructors/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	h.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
