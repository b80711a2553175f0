package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-api/internal/dto"
	"github.com/noah-isme/sma-roster-api/pkg/export"
	appErrors "github.com/noah-isme/sma-roster-api/pkg/errors"
)

// Supported roster export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

var exportContentTypes = map[string]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportService renders roster datasets into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	xlsx   xlsxRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService; nil renderers fall back to the pkg/export defaults.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, xlsx: xlsx, logger: logger, now: time.Now}
}

// Supports validates the requested format.
func (s *ExportService) Supports(format string) error {
	if _, ok := exportContentTypes[strings.ToLower(format)]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	return nil
}

// Render produces the file for data; name becomes the title, sheet name and filename prefix.
func (s *ExportService) Render(format, name string, data export.Dataset) (*dto.ExportFile, error) {
	format = strings.ToLower(format)
	if err := s.Supports(format); err != nil {
		return nil, err
	}

	var (
		content []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		content, err = s.csv.Render(data)
	case ExportFormatPDF:
		content, err = s.pdf.Render(data, name)
	case ExportFormatXLSX:
		content, err = s.xlsx.Render(data, name)
	}
	if err != nil {
		s.logger.Error("render roster export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", name, s.now().UTC().Format("20060102"), format),
		ContentType: exportContentTypes[format],
		Content:     content,
	}, nil
}
