// Package constants provides shared constants for the microloan engine.
package constants

import "time"

// DateLayout is the calendar date format accepted on input and used for output.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerYear is the day count used for simple (periodic/penalty) interest
	DaysPerYear = 365

	// DecimalPlaces is the number of decimal places money is rounded to
	DecimalPlaces = 2

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Loan parameter bounds
const (
	// MinPrincipal is the smallest principal that may be originated
	MinPrincipal = 1000.0

	// MaxPrincipal is the largest principal that may be originated
	MaxPrincipal = 10000000.0

	// MinInterestRate is the annual rate below which a positive rate draws a warning
	MinInterestRate = 0.1

	// MaxInterestRate is the highest annual rate accepted
	MaxInterestRate = 36.0

	// MinTenure is the shortest tenure in months
	MinTenure = 1

	// MaxTenure is the longest tenure in months
	MaxTenure = 360
)

// Affordability and numbering defaults
const (
	// DefaultFOIR is the fraction of monthly income available for loan repayments
	DefaultFOIR = 0.4

	// DefaultLenderCode prefixes generated loan numbers
	DefaultLenderCode = "ML"

	// LoanNumberSuffixRange is the exclusive upper bound of the random loan number suffix
	LoanNumberSuffixRange = 100000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Cache backend constants
const (
	// CacheBackendNone disables quote caching
	CacheBackendNone = "none"

	// CacheBackendMemory keeps quotes in process memory
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps quotes in redis
	CacheBackendRedis = "redis"

	// DefaultCacheTTLSeconds is how long cached quotes live
	DefaultCacheTTLSeconds = 3600

	// DefaultRedisAddress is used when the redis backend has no address configured
	DefaultRedisAddress = "localhost:6379"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. MICROLOAN_LENDING_FOIR
	EnvPrefix = "MICROLOAN"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultShutdownTimeout bounds graceful shutdown of the API server
	DefaultShutdownTimeout = 10 * time.Second
)
