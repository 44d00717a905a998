package integrity

import (
	"context"

	"marketplace/core/storage"
	"marketplace/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures the integrity service.
type Options struct {
	Bucket string
	Region string
	// PhotoTag is the resource tag used for listing photos.
	PhotoTag string
	// Schema is the expected column set per table.
	Schema map[string][]string
}

// Service handles integrity checks.
type Service struct {
	client storage.Client
	db     *gorm.DB
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service. Either backend may be nil;
// checks that need it then fail.
func NewService(client storage.Client, db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	if opts.PhotoTag == "" {
		opts.PhotoTag = "listing"
	}
	return &Service{
		client: client,
		db:     db,
		opts:   opts,
		logger: logger,
	}
}

// CheckStorage reports whether the photo bucket exists.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, errStorageDisabled
	}
	return checks.CheckStorage(ctx, s.client, s.opts.Bucket)
}

// FixStorage creates the photo bucket if needed.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return errStorageDisabled
	}
	return checks.FixStorage(ctx, s.client, s.opts.Bucket, s.opts.Region, s.logger)
}

// CheckSchema verifies the database schema.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, s.opts.Schema)
}

// CheckPhotos cross-checks photo associations against resources and the bucket.
func (s *Service) CheckPhotos(ctx context.Context) (*checks.PhotoReport, error) {
	return checks.CheckPhotos(ctx, s.db, s.client, s.opts.Bucket, s.opts.PhotoTag)
}

// FixPhotos removes the dangling associations found in report.
func (s *Service) FixPhotos(ctx context.Context, report *checks.PhotoReport) (int, error) {
	return checks.FixPhotos(ctx, s.db, s.logger, report.Dangling)
}
