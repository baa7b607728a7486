// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Reputation ReputationConfig `mapstructure:"reputation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// PaymentConfig holds settings for the 402 challenge flow.
type PaymentConfig struct {
	Scheme        string `mapstructure:"scheme"`         // credential scheme, e.g. "L402"
	DefaultAmount int    `mapstructure:"default_amount"` // invoice amount when the agent has no price
	InvoicePrefix string `mapstructure:"invoice_prefix"` // rendered into the Www-Authenticate challenge
}

// WorkerConfig holds settings for the execution dispatcher.
type WorkerConfig struct {
	Mode             string `mapstructure:"mode"` // "simulate" or "http"
	EngineURL        string `mapstructure:"engine_url"`
	Timeout          int    `mapstructure:"timeout"`           // milliseconds
	SimulatedLatency int    `mapstructure:"simulated_latency"` // milliseconds, simulate mode only
}

// AuditConfig holds settings for the scoring engine and its remote mode.
type AuditConfig struct {
	Mode          string   `mapstructure:"mode"` // "local" or "remote"
	WebhookURL    string   `mapstructure:"webhook_url"`
	Timeout       int      `mapstructure:"timeout"`        // milliseconds
	SlowThreshold int      `mapstructure:"slow_threshold"` // milliseconds, SLA boundary
	Denylist      []string `mapstructure:"denylist"`
}

// LedgerConfig holds settings for the invoice/token ledger.
type LedgerConfig struct {
	Store      string `mapstructure:"store"`       // "memory" or "redis"
	InvoiceTTL int    `mapstructure:"invoice_ttl"` // milliseconds, 0 disables expiry
	TokenTTL   int    `mapstructure:"token_ttl"`   // milliseconds, 0 disables expiry
}

// ReputationConfig holds settings for the external reputation ledger write.
type ReputationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RegistryConfig points at the agent catalog file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
