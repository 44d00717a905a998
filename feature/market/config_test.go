package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 1, cfg.ListingLifetimeMonths)
	assert.Equal(t, 3, cfg.RefreshGraceDays)
	assert.Equal(t, 10, cfg.MaxPhotos)
	assert.Equal(t, "listing", cfg.PhotoTag)

	cfg = Config{ListingLifetimeMonths: 2, RefreshGraceDays: 7, MaxPhotos: 4, PhotoTag: "shop"}.withDefaults()
	assert.Equal(t, Config{ListingLifetimeMonths: 2, RefreshGraceDays: 7, MaxPhotos: 4, PhotoTag: "shop"}, cfg)
}
