// Package config defines the data structures related to configuration and
// includes functions for loading it.
package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/loans"
	"github.com/iwvelando/microloan/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for microloan.
type Configuration struct {
	Lending LendingConfig `mapstructure:"lending" yaml:"lending"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache,omitempty"`
}

// LendingConfig holds the lending policy applied by the engine.
type LendingConfig struct {
	MinPrincipal    float64 `mapstructure:"minPrincipal" yaml:"minPrincipal"`
	MaxPrincipal    float64 `mapstructure:"maxPrincipal" yaml:"maxPrincipal"`
	MinInterestRate float64 `mapstructure:"minInterestRate" yaml:"minInterestRate"`
	MaxInterestRate float64 `mapstructure:"maxInterestRate" yaml:"maxInterestRate"`
	MinTenure       int     `mapstructure:"minTenure" yaml:"minTenure"`
	MaxTenure       int     `mapstructure:"maxTenure" yaml:"maxTenure"`
	FOIR            float64 `mapstructure:"foir" yaml:"foir"`
	LenderCode      string  `mapstructure:"lenderCode" yaml:"lenderCode"`
	BranchCode      string  `mapstructure:"branchCode" yaml:"branchCode,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

// CacheConfig selects where computed quotes are cached.
type CacheConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend,omitempty"` // none, memory, redis
	Address    string `mapstructure:"address" yaml:"address,omitempty"`
	TTLSeconds int    `mapstructure:"ttlSeconds" yaml:"ttlSeconds,omitempty"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path loads defaults and environment
// overrides only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from an arbitrary reader.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	v := newViper()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// DefaultConfiguration returns the configuration used when no file is given.
func DefaultConfiguration() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults always decode; this only guards against programming errors.
		panic(err)
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("lending.minPrincipal", constants.MinPrincipal)
	v.SetDefault("lending.maxPrincipal", constants.MaxPrincipal)
	v.SetDefault("lending.minInterestRate", constants.MinInterestRate)
	v.SetDefault("lending.maxInterestRate", constants.MaxInterestRate)
	v.SetDefault("lending.minTenure", constants.MinTenure)
	v.SetDefault("lending.maxTenure", constants.MaxTenure)
	v.SetDefault("lending.foir", constants.DefaultFOIR)
	v.SetDefault("lending.lenderCode", constants.DefaultLenderCode)
	v.SetDefault("lending.branchCode", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("cache.backend", constants.CacheBackendMemory)
	v.SetDefault("cache.address", "")
	v.SetDefault("cache.ttlSeconds", constants.DefaultCacheTTLSeconds)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Bounds converts the lending policy into engine bounds.
func (c *Configuration) Bounds() loans.Bounds {
	return loans.Bounds{
		MinPrincipal:    c.Lending.MinPrincipal,
		MaxPrincipal:    c.Lending.MaxPrincipal,
		MinInterestRate: c.Lending.MinInterestRate,
		MaxInterestRate: c.Lending.MaxInterestRate,
		MinTenure:       c.Lending.MinTenure,
		MaxTenure:       c.Lending.MaxTenure,
	}
}

// ValidateConfiguration checks the configuration, returning an error for
// settings that cannot work and warnings for settings that look unusual.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var warnings []string

	if err := c.Bounds().Validate(); err != nil {
		return nil, fmt.Errorf("invalid lending bounds: %w", err)
	}
	if err := validation.ValidateFOIR(c.Lending.FOIR); err != nil {
		return nil, err
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return nil, err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return nil, err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateCacheBackend(c.Cache.Backend); err != nil {
		return nil, err
	}

	defaults := loans.DefaultBounds()
	if c.Lending.MaxInterestRate > defaults.MaxInterestRate {
		warnings = append(warnings, fmt.Sprintf("maximum interest rate %.2f%% is above the standard %.2f%% cap",
			c.Lending.MaxInterestRate, defaults.MaxInterestRate))
	}
	if c.Lending.FOIR > 0.6 {
		warnings = append(warnings, fmt.Sprintf("FOIR of %.2f leaves borrowers little income headroom", c.Lending.FOIR))
	}
	if strings.TrimSpace(c.Lending.LenderCode) == "" {
		warnings = append(warnings, fmt.Sprintf("no lender code configured, loan numbers will use %s",
			constants.DefaultLenderCode))
	}
	if c.Cache.Backend == constants.CacheBackendRedis && c.Cache.Address == "" {
		warnings = append(warnings, fmt.Sprintf("redis cache has no address, using %s", constants.DefaultRedisAddress))
	}
	if c.Cache.Backend != constants.CacheBackendNone && c.Cache.TTLSeconds <= 0 {
		warnings = append(warnings, "cache TTL is not positive, cached quotes will not expire")
	}

	return warnings, nil
}
