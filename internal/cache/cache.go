// Package cache stores computed quotes so repeated requests for the same loan
// skip the schedule computation.
package cache

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/microloan/internal/config"
	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/loans"
	"go.uber.org/zap"
)

// keyPrefix namespaces quote entries in shared stores.
const keyPrefix = "microloan:quote:"

// Cache is a string key-value store with per-entry expiry. A miss is
// reported as ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Key derives the cache key for a calculation. Inputs that produce the same
// schedule map to the same key. Due dates carry the start's clock and zone,
// so the key covers the exact instant and its location.
func Key(params loans.LoanParameters, startDate time.Time) string {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(params.Principal), 16))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(params.AnnualInterestRate), 16))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(params.TenureMonths))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(startDate.Format(time.RFC3339Nano))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(startDate.Location().String())
	return fmt.Sprintf("%s%016x", keyPrefix, d.Sum64())
}

// New builds the cache selected by cfg.Backend.
func New(cfg config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", constants.CacheBackendNone:
		logger.Debug("quote caching disabled", zap.String("op", "cache.New"))
		return Noop{}, nil
	case constants.CacheBackendMemory:
		logger.Debug("using in-memory quote cache", zap.String("op", "cache.New"))
		return NewMemoryCache(), nil
	case constants.CacheBackendRedis:
		addr := cfg.Address
		if addr == "" {
			addr = constants.DefaultRedisAddress
		}
		logger.Info("using redis quote cache",
			zap.String("op", "cache.New"),
			zap.String("address", addr),
		)
		return NewRedisCache(addr), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }

func (Noop) Close() error { return nil }
