package simdex

const (
	// DefaultDimension matches the CLIP image embedding size.
	DefaultDimension = 512

	// DefaultOverfetch is the raw-candidate multiplier used to absorb
	// post-filtering losses without re-querying.
	DefaultOverfetch = 10

	defaultSnapshotName = "index.bin"
)

type options struct {
	dimension    int
	overfetch    int
	snapshotName string
	compression  Compression
	logger       *Logger
}

func defaultOptions() options {
	return options{
		dimension:    DefaultDimension,
		overfetch:    DefaultOverfetch,
		snapshotName: defaultSnapshotName,
		compression:  CompressionNone,
		logger:       NewLogger(nil),
	}
}

// Option configures Open behavior.
type Option func(*options)

// WithDimension sets the fixed embedding dimensionality (default 512).
func WithDimension(dim int) Option {
	return func(o *options) {
		o.dimension = dim
	}
}

// WithOverfetch sets the raw-candidate multiplier for filtered searches
// (default 10). Values below 1 are clamped to 1.
func WithOverfetch(overfetch int) Option {
	return func(o *options) {
		if overfetch < 1 {
			overfetch = 1
		}
		o.overfetch = overfetch
	}
}

// WithSnapshotName sets the blob name snapshots are stored under
// (default "index.bin").
func WithSnapshotName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.snapshotName = name
		}
	}
}

// WithCompression sets the snapshot payload compression (default none).
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger sets the logger. Pass NoopLogger() to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type searchOptions struct {
	excludeID int64
	ownerID   *int64
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

// WithExcludeID drops the given item id from results, typically the query
// item itself.
func WithExcludeID(itemID int64) SearchOption {
	return func(o *searchOptions) {
		o.excludeID = itemID
	}
}

// WithOwner restricts results to items owned by ownerID plus unowned
// legacy-public items.
func WithOwner(ownerID int64) SearchOption {
	return func(o *searchOptions) {
		o.ownerID = &ownerID
	}
}
