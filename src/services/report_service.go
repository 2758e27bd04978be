// src/services/report_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/creditreport/src/logger"
	"github.com/username/creditreport/src/models"
	"github.com/username/creditreport/src/security/validation"
)

const (
	ckReport               = "report_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	extractor   Extractor
	store       ReportStore
	reportCache *cache.Cache
	maxBytes    int64
	now         func() time.Time
}

// Option customizes a ReportService.
type Option func(*reportServiceImpl)

// WithClock sets the source of upload timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *reportServiceImpl) { s.now = now }
}

func NewReportService(extractor Extractor, store ReportStore, reportCache *cache.Cache, maxBytes int64, opts ...Option) ReportService {
	s := &reportServiceImpl{
		extractor:   extractor,
		store:       store,
		reportCache: reportCache,
		maxBytes:    maxBytes,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessUpload reads one document, extracts it and stores the result.
// Nothing is stored when extraction fails.
func (s *reportServiceImpl) ProcessUpload(ctx context.Context, fileReader io.Reader, fileName string) (*models.StoredReport, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("ProcessUpload START", "fileName", fileName)

	raw, err := io.ReadAll(io.LimitReader(fileReader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		log.Warn("Upload exceeds size limit", "fileName", fileName, "limit", s.maxBytes)
		return nil, ErrUploadTooLarge
	}

	parsed, err := s.extractor.Extract(raw)
	if err != nil {
		log.Warn("Report extraction failed", "fileName", fileName, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	stored, err := s.store.Create(ctx, fileName, s.now(), parsed)
	if err != nil {
		log.Error("Failed to store report", "fileName", fileName, "error", err)
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	s.reportCache.Set(fmt.Sprintf(ckReport, stored.ID), stored, cache.DefaultExpiration)

	log.Info("ProcessUpload END", "reportID", stored.ID, "accounts", len(stored.Accounts), "duration", time.Since(start))
	return stored, nil
}

func (s *reportServiceImpl) ListReports(ctx context.Context) ([]models.ReportListItem, error) {
	return s.store.List(ctx)
}

// GetReport serves from the cache when it can.
func (s *reportServiceImpl) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	cacheKey := fmt.Sprintf(ckReport, id)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.StoredReport), nil
	}

	report, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	return report, nil
}

func (s *reportServiceImpl) RenameReport(ctx context.Context, id, displayName string) (*models.StoredReport, error) {
	clean, err := validation.ValidateDisplayName(displayName, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateDisplayName(ctx, id, clean)
	if err != nil {
		return nil, err
	}
	s.InvalidateCache(id)
	logger.FromContext(ctx).Info("Report renamed", "reportID", id, "displayName", clean)
	return updated, nil
}

func (s *reportServiceImpl) DeleteReport(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(id)
	logger.FromContext(ctx).Info("Report deleted", "reportID", id)
	return nil
}

func (s *reportServiceImpl) CountReports(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *reportServiceImpl) InvalidateCache(id string) {
	s.reportCache.Delete(fmt.Sprintf(ckReport, id))
}
