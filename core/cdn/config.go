package cdn

// Options configures the resource service.
type Options struct {
	// Bucket holds uploaded photos.
	Bucket string
	// PublicURL is the externally reachable base of Bucket, without trailing slash.
	PublicURL string
	// MaxBytes caps the size of a fetched external image.
	MaxBytes int64
	// LinkCacheSize is the number of resolved links kept in memory.
	LinkCacheSize int
}

const (
	defaultMaxBytes      = 10 << 20
	defaultLinkCacheSize = 4096
)
