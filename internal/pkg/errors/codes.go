package errors

const (
	CodeInputNotFound      = "INPUT_NOT_FOUND"
	CodeInputInvalid       = "INPUT_INVALID"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeInvalidGrid        = "INVALID_GRID"
	CodeInvalidMapping     = "INVALID_MAPPING"
	CodeEmptyGeometry      = "EMPTY_GEOMETRY"
	CodeDissolveFailed     = "DISSOLVE_FAILED"
	CodeRateLimitExhausted = "RATE_LIMIT_EXHAUSTED"
	CodeTileFetchFailed    = "TILE_FETCH_FAILED"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodePartialCoverage    = "PARTIAL_COVERAGE"
	CodeCacheError         = "CACHE_ERROR"
	CodeDatabaseError      = "DATABASE_ERROR"
)

var (
	ErrInputNotFound = New(
		CodeInputNotFound,
		"Input file not found or unreadable",
	)

	ErrInputInvalid = New(
		CodeInputInvalid,
		"Input file could not be parsed",
	)

	ErrInvalidConfig = New(
		CodeInvalidConfig,
		"Invalid configuration",
	)

	ErrInvalidGrid = New(
		CodeInvalidGrid,
		"Invalid grid bounds or cell size",
	)

	ErrInvalidMapping = New(
		CodeInvalidMapping,
		"Invalid name mapping or merge plan",
	)

	ErrEmptyGeometry = New(
		CodeEmptyGeometry,
		"Geometry has no coordinates",
	)

	ErrDissolveFailed = New(
		CodeDissolveFailed,
		"Failed to dissolve region geometries",
	)

	ErrRateLimitExhausted = New(
		CodeRateLimitExhausted,
		"Rate limited on every retry",
	)

	ErrTileFetchFailed = New(
		CodeTileFetchFailed,
		"Failed to fetch tile",
	)

	ErrInvalidResponse = New(
		CodeInvalidResponse,
		"Overpass response is not valid JSON",
	)

	ErrPartialCoverage = New(
		CodePartialCoverage,
		"Some tiles produced no data",
	)

	ErrCacheError = New(
		CodeCacheError,
		"Cache operation failed",
	)

	ErrDatabaseError = New(
		CodeDatabaseError,
		"Database operation failed",
	)
)
