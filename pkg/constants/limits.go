package constants

// Pagination constants
const (
	// Default pagination values
	DefaultPageSize   = 20
	DefaultPageNumber = 1
	MaxPageSize       = 100
	MinPageSize       = 1

	// List limits
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Batch processing constants
const (
	// Payment batch processing
	DefaultPaymentBatchSize = 50
	MaxPaymentBatchSize     = 100

	// Webhook redelivery batch processing
	DefaultRetryBatchSize = 50
	MaxRetryBatchSize     = 100

	// Deadline expiry sweep batch size
	DefaultExpiryBatchSize = 200
	MaxExpiryBatchSize     = 500
)

// Retry constants
const (
	// Maximum retry attempts for various operations
	MaxPaymentRetries  = 3
	MaxCallbackRetries = 5
	MaxGatewayRetries  = 3
	MaxDatabaseRetries = 2

	// Retry delays (in seconds)
	InitialRetryDelay = 1
	MaxRetryDelay     = 60
)

// Validation limits
const (
	MaxDescriptionLength = 1000

	// Payment constraints
	MinPaymentAmount = 100      // 1.00 in smallest currency unit
	MaxPaymentAmount = 10000000 // 100,000.00 in smallest currency unit
)

// Database constraints
const (
	// Query limits
	MaxInClauseItems  = 1000
	MaxBulkInsertRows = 1000

	// Connection pool settings
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 300 // seconds
)

// API rate limiting
const (
	// Requests per minute
	DefaultRateLimit         = 100
	AuthEndpointRateLimit    = 20
	PaymentEndpointRateLimit = 50

	// Burst size
	DefaultBurstSize = 10
	AuthBurstSize    = 5
)
