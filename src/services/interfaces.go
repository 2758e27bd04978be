// src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/creditreport/src/model"
	"github.com/username/creditreport/src/models"
)

// Define common service errors
var (
	ErrParsingFailed  = errors.New("report parsing failed")
	ErrUploadTooLarge = errors.New("uploaded file exceeds the size limit")
	ErrReportNotFound = model.ErrReportNotFound
)

// Extractor turns a raw bureau document into a ParsedReport.
type Extractor interface {
	Extract(raw []byte) (*models.ParsedReport, error)
}

// ReportStore is the persistence the service needs. *model.ReportStore implements it.
type ReportStore interface {
	Create(ctx context.Context, fileName string, uploadedAt time.Time, r *models.ParsedReport) (*models.StoredReport, error)
	List(ctx context.Context) ([]models.ReportListItem, error)
	Get(ctx context.Context, id string) (*models.StoredReport, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (*models.StoredReport, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ReportService defines the upload and report management operations exposed over HTTP.
type ReportService interface {
	ProcessUpload(ctx context.Context, fileReader io.Reader, fileName string) (*models.StoredReport, error)
	ListReports(ctx context.Context) ([]models.ReportListItem, error)
	GetReport(ctx context.Context, id string) (*models.StoredReport, error)
	RenameReport(ctx context.Context, id, displayName string) (*models.StoredReport, error)
	DeleteReport(ctx context.Context, id string) error
	CountReports(ctx context.Context) (int, error)
	InvalidateCache(id string)
}
