package messaging

// Config holds configuration for the NATS connection.
type Config struct {
	// Enabled toggles NATS. When false, notifications are dropped and offer handoff fails.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// URL is the NATS server url.
	URL string `mapstructure:"url" default:"nats://localhost:4222"`
	// Name identifies this client in the NATS monitoring endpoints.
	Name string `mapstructure:"name" default:"marketplace"`
	// RequestTimeoutSeconds bounds request/reply calls.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"5"`
	// BidSubject receives bid notifications.
	BidSubject string `mapstructure:"bid_subject" default:"market.bid.placed"`
	// OfferSubject receives offer handoff requests.
	OfferSubject string `mapstructure:"offer_subject" default:"orders.offer.create"`
}
