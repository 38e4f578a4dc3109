// Package config loads a client configuration from a config file, a .env
// file and SIDESHIFT_* environment variables.
//
// Precedence, highest first: process environment, .env file, config file,
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sideshift/pkg/core"
)

const EnvPrefix = "SIDESHIFT"

// DefaultEnvFile is read from the working directory when Options.EnvFile is empty.
const DefaultEnvFile = ".env"

// envBindings maps config keys to the environment variables that set them.
var envBindings = []struct {
	key string
	env string
}{
	{"base_url", "SIDESHIFT_BASE_URL"},
	{"private_key", "SIDESHIFT_PRIVATE_KEY"},
	{"affiliate_id", "SIDESHIFT_AFFILIATE_ID"},
	{"max_request.default", "SIDESHIFT_RATE_LIMIT"},
	{"max_request.shift", "SIDESHIFT_RATE_LIMIT_SHIFT"},
	{"max_request.quote", "SIDESHIFT_RATE_LIMIT_QUOTE"},
	{"timeout", "SIDESHIFT_TIMEOUT"},
	{"verbose", "SIDESHIFT_VERBOSE"},
	{"circuit_breaker_enabled", "SIDESHIFT_CIRCUIT_BREAKER"},
}

type Options struct {
	// ConfigFile is an optional yaml, json or toml file.
	ConfigFile string
	// EnvFile overrides DefaultEnvFile. A missing default file is ignored,
	// a missing explicit file is an error.
	EnvFile string
}

// Load builds and validates a core.Config.
func Load(opts Options) (*core.Config, error) {
	v := viper.New()
	setDefaults(v, core.DefaultConfig())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.env, err)
		}
		if _, ok := os.LookupEnv(b.env); ok {
			continue
		}
		if value, ok := dotenv[b.env]; ok {
			v.Set(b.key, value)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

func setDefaults(v *viper.Viper, cfg *core.Config) {
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("private_key", cfg.PrivateKey)
	v.SetDefault("affiliate_id", cfg.AffiliateID)
	v.SetDefault("max_request.shift", cfg.MaxRequest.Shift)
	v.SetDefault("max_request.quote", cfg.MaxRequest.Quote)
	v.SetDefault("max_request.default", cfg.MaxRequest.Default)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("circuit_breaker_enabled", cfg.CircuitBreakerEnabled)
	v.SetDefault("circuit_breaker_fail_threshold", cfg.CircuitBreakerFailThreshold)
	v.SetDefault("circuit_breaker_success_threshold", cfg.CircuitBreakerSuccessThreshold)
	v.SetDefault("circuit_breaker_timeout", cfg.CircuitBreakerTimeout)
}

func fromViper(v *viper.Viper) *core.Config {
	return &core.Config{
		BaseURL:     v.GetString("base_url"),
		PrivateKey:  v.GetString("private_key"),
		AffiliateID: v.GetString("affiliate_id"),
		MaxRequest: core.RateConfig{
			Shift:   v.GetInt("max_request.shift"),
			Quote:   v.GetInt("max_request.quote"),
			Default: v.GetInt("max_request.default"),
		},
		Timeout:                        v.GetDuration("timeout"),
		Verbose:                        v.GetBool("verbose"),
		CircuitBreakerEnabled:          v.GetBool("circuit_breaker_enabled"),
		CircuitBreakerFailThreshold:    v.GetInt("circuit_breaker_fail_threshold"),
		CircuitBreakerSuccessThreshold: v.GetInt("circuit_breaker_success_threshold"),
		CircuitBreakerTimeout:          v.GetDuration("circuit_breaker_timeout"),
	}
}
