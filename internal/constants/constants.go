package constants

// Session / context keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
	SessionCookieName  = "production_session"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Bulk assignment
const (
	// MaxBulkProducts and MaxBulkSteps cap the request so a single
	// invocation never exceeds 2500 candidate combinations.
	MaxBulkProducts = 50
	MaxBulkSteps    = 50

	// BulkChunkSize is the number of rows written per insert; each chunk
	// succeeds or fails independently.
	BulkChunkSize = 25
)

// OrganizationIDHeader carries the acting organization for tenant-scoped
// requests. Absent header means the caller acts as an individual.
const OrganizationIDHeader = "X-Organization-ID"
