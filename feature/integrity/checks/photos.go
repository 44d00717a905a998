package checks

import (
	"context"
	"fmt"

	"marketplace/core/cdn"
	"marketplace/core/storage"
	"marketplace/feature/market/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PhotoRef is one listing photo association.
type PhotoRef struct {
	DetailsID  string `json:"details_id"`
	ResourceID string `json:"resource_id"`
}

// PhotoReport lists the inconsistencies between photo associations,
// image resources and the bucket.
type PhotoReport struct {
	Checked int `json:"checked"`
	// Dangling associations point at a resource row that no longer exists.
	Dangling []PhotoRef `json:"dangling"`
	// Orphaned resources carry the listing tag but belong to no listing.
	Orphaned []string `json:"orphaned"`
	// MissingObjects are associated resources whose object is gone from the bucket.
	MissingObjects []string `json:"missing_objects"`
}

// Healthy reports whether nothing was found.
func (r *PhotoReport) Healthy() bool {
	return len(r.Dangling) == 0 && len(r.Orphaned) == 0 && len(r.MissingObjects) == 0
}

// CheckPhotos cross-checks market_images, image_resources and the bucket.
func CheckPhotos(ctx context.Context, db *gorm.DB, client storage.Client, bucket, tag string) (*PhotoReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	photos := models.ListingPhoto{}.TableName()
	resources := cdn.Resource{}.TableName()

	report := &PhotoReport{Dangling: []PhotoRef{}, Orphaned: []string{}, MissingObjects: []string{}}

	var total int64
	if err := db.WithContext(ctx).Model(&models.ListingPhoto{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	report.Checked = int(total)

	err := db.WithContext(ctx).
		Table(photos+" AS p").
		Select("p.details_id, p.resource_id").
		Joins("LEFT JOIN "+resources+" AS r ON r.resource_id = p.resource_id").
		Where("r.resource_id IS NULL").
		Order("p.details_id, p.resource_id").
		Scan(&report.Dangling).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find dangling photos: %w", err)
	}

	err = db.WithContext(ctx).
		Table(resources+" AS r").
		Joins("LEFT JOIN "+photos+" AS p ON p.resource_id = r.resource_id").
		Where("p.resource_id IS NULL AND r.tag = ?", tag).
		Order("r.resource_id").
		Pluck("r.resource_id", &report.Orphaned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned resources: %w", err)
	}

	if client == nil {
		return report, nil
	}

	var linked []cdn.Resource
	err = db.WithContext(ctx).
		Table(resources+" AS r").
		Select("DISTINCT r.*").
		Joins("JOIN "+photos+" AS p ON p.resource_id = r.resource_id").
		Order("r.resource_id").
		Scan(&linked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load linked resources: %w", err)
	}

	for _, res := range linked {
		_, err := client.StatObject(ctx, bucket, res.ObjectName, minio.StatObjectOptions{})
		if err == nil {
			continue
		}
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			report.MissingObjects = append(report.MissingObjects, res.ResourceID)
			continue
		}
		return nil, fmt.Errorf("failed to stat %s: %w", res.ObjectName, err)
	}

	return report, nil
}

// FixPhotos deletes the dangling associations of a report. Orphaned
// resources and missing objects are left for an operator.
func FixPhotos(ctx context.Context, db *gorm.DB, logger *zap.Logger, dangling []PhotoRef) (int, error) {
	removed := 0
	for _, ref := range dangling {
		res := db.WithContext(ctx).
			Where("details_id = ? AND resource_id = ?", ref.DetailsID, ref.ResourceID).
			Delete(&models.ListingPhoto{})
		if res.Error != nil {
			logger.Error("Failed to delete dangling photo",
				zap.String("details_id", ref.DetailsID),
				zap.String("resource_id", ref.ResourceID),
				zap.Error(res.Error))
			return removed, res.Error
		}
		removed += int(res.RowsAffected)
	}
	if removed > 0 {
		logger.Info("Removed dangling photos", zap.Int("count", removed))
	}
	return removed, nil
}
