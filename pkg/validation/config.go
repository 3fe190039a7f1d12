package validation

import (
	"fmt"

	"github.com/iwvelando/microloan/pkg/constants"
)

// ValidateLogLevel checks a log level name. An empty level is allowed and
// means the default.
func ValidateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// ValidateLogFormat checks a log encoder name. An empty format is allowed.
func ValidateLogFormat(format string) error {
	switch format {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("invalid log format: %s", format)
}

// ValidateCacheBackend checks the quote cache backend name.
func ValidateCacheBackend(backend string) error {
	switch backend {
	case "", constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis:
		return nil
	}
	return fmt.Errorf("expected cache backend of %s, %s or %s, got %s",
		constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis, backend)
}

// ValidateFOIR checks that a fixed obligation to income ratio lies in (0, 1].
func ValidateFOIR(foir float64) error {
	if foir <= 0 || foir > 1 {
		return fmt.Errorf("FOIR must be between 0 and 1, got %.2f", foir)
	}
	return nil
}
