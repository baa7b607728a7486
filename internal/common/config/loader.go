// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like WORKER_ENGINE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from any of the usual run locations.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Worker.EngineURL == "" {
		if val := os.Getenv("WORKER_ENGINE_URL"); val != "" {
			cfg.Worker.EngineURL = val
		}
	}

	if cfg.Audit.WebhookURL == "" {
		if val := os.Getenv("AUDIT_WEBHOOK_URL"); val != "" {
			cfg.Audit.WebhookURL = val
		}
	}

	if cfg.Reputation.URL == "" {
		if val := os.Getenv("REPUTATION_LEDGER_URL"); val != "" {
			cfg.Reputation.URL = val
		}
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":3000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Payment.Scheme == "" {
		cfg.Payment.Scheme = "L402"
	}
	if cfg.Payment.DefaultAmount == 0 {
		cfg.Payment.DefaultAmount = 10
	}
	if cfg.Payment.InvoicePrefix == "" {
		cfg.Payment.InvoicePrefix = "lnbc10u1...mock_invoice_"
	}

	if cfg.Worker.Mode == "" {
		cfg.Worker.Mode = "simulate"
	}
	if cfg.Worker.Timeout == 0 {
		cfg.Worker.Timeout = 30000
	}
	if cfg.Worker.SimulatedLatency == 0 {
		cfg.Worker.SimulatedLatency = 1500
	}

	if cfg.Audit.Mode == "" {
		cfg.Audit.Mode = "local"
	}
	if cfg.Audit.Timeout == 0 {
		cfg.Audit.Timeout = 10000
	}
	if cfg.Audit.SlowThreshold == 0 {
		cfg.Audit.SlowThreshold = 2000
	}

	if cfg.Ledger.Store == "" {
		cfg.Ledger.Store = "memory"
	}
	if cfg.Ledger.InvoiceTTL == 0 {
		cfg.Ledger.InvoiceTTL = 900000 // 15m
	}
	if cfg.Ledger.TokenTTL == 0 {
		cfg.Ledger.TokenTTL = 600000 // 10m
	}

	if cfg.Reputation.Timeout == 0 {
		cfg.Reputation.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Worker.Mode != "simulate" && cfg.Worker.Mode != "http" {
		return fmt.Errorf("worker.mode must be \"simulate\" or \"http\"")
	}
	if cfg.Worker.Mode == "http" && cfg.Worker.EngineURL == "" {
		return fmt.Errorf("worker.engine_url is required in http mode")
	}

	if cfg.Audit.Mode != "local" && cfg.Audit.Mode != "remote" {
		return fmt.Errorf("audit.mode must be \"local\" or \"remote\"")
	}
	if cfg.Audit.Mode == "remote" && cfg.Audit.WebhookURL == "" {
		return fmt.Errorf("audit.webhook_url is required in remote mode")
	}

	if cfg.Ledger.Store != "memory" && cfg.Ledger.Store != "redis" {
		return fmt.Errorf("ledger.store must be \"memory\" or \"redis\"")
	}
	if cfg.Ledger.Store == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required for the redis ledger store")
	}

	if cfg.Reputation.Enabled && cfg.Reputation.URL == "" {
		return fmt.Errorf("reputation.url is required when reputation is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
