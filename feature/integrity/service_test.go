package integrity

import (
	"context"
	"testing"

	"marketplace/core/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_WithoutStorage(t *testing.T) {
	svc := NewService(nil, nil, Options{Bucket: "test-bucket"}, zap.NewNop())

	_, err := svc.CheckStorage(context.Background())
	assert.ErrorIs(t, err, errStorageDisabled)
	assert.ErrorIs(t, svc.FixStorage(context.Background()), errStorageDisabled)

	_, err = svc.CheckSchema()
	assert.Error(t, err)
}

func TestService_DefaultPhotoTag(t *testing.T) {
	db := dbtest.SQLite(t)
	svc := NewService(nil, db, Options{}, zap.NewNop())
	assert.Equal(t, "listing", svc.opts.PhotoTag)

	report, err := svc.CheckSchema()
	require.NoError(t, err)
	assert.True(t, report.Matched)
}

func TestLoader(t *testing.T) {
	svc := NewService(nil, nil, Options{}, zap.NewNop())
	feature := NewFeature(svc)

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}
