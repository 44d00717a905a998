package market

// Config holds the listing lifecycle rules.
type Config struct {
	// ListingLifetimeMonths is how long a new or refreshed listing stays up.
	ListingLifetimeMonths int `mapstructure:"listing_lifetime_months" default:"1"`
	// RefreshGraceDays is how far before a full lifetime a refresh is allowed.
	RefreshGraceDays int `mapstructure:"refresh_grace_days" default:"3"`
	// MaxPhotos caps the photos on one listing.
	MaxPhotos int `mapstructure:"max_photos" default:"10"`
	// PhotoTag labels resources created for listing photos.
	PhotoTag string `mapstructure:"photo_tag" default:"listing"`
}

func (c Config) withDefaults() Config {
	if c.ListingLifetimeMonths <= 0 {
		c.ListingLifetimeMonths = 1
	}
	if c.RefreshGraceDays <= 0 {
		c.RefreshGraceDays = 3
	}
	if c.MaxPhotos <= 0 {
		c.MaxPhotos = 10
	}
	if c.PhotoTag == "" {
		c.PhotoTag = "listing"
	}
	return c
}
