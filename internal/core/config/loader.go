package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Environment variables read on top of the config file.
const (
	EnvRPCURL          = "RPC_URL"
	EnvContractAddress = "CONTRACT_ADDRESS"
	EnvPrivateKey      = "LISTER_PRIVATE_KEY"
	EnvABIPath         = "ABI_PATH"
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
)

// Load reads configuration from an optional YAML file, applies environment
// overrides and defaults, and validates the result. A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	if v := env(EnvRPCURL); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := env(EnvContractAddress); v != "" {
		cfg.Chain.ContractAddress = v
	}
	if v := env(EnvPrivateKey); v != "" {
		cfg.Chain.PrivateKey = v
	}
	if v := env(EnvABIPath); v != "" {
		cfg.Chain.ABIPath = v
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := env(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5002
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Chain.ABIPath == "" {
		cfg.Chain.ABIPath = "Marketplace.json"
	}
	if cfg.Chain.GasLimit == 0 {
		cfg.Chain.GasLimit = 2_000_000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate reports every missing required setting at once.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.Chain.RPCURL == "" {
		missing = append(missing, EnvRPCURL)
	}
	if c.Chain.ContractAddress == "" {
		missing = append(missing, EnvContractAddress)
	}
	if c.Chain.PrivateKey == "" {
		missing = append(missing, EnvPrivateKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
