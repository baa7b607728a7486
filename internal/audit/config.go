// internal/audit/config.go
package audit

// DefaultDenylist holds the forbidden patterns scanned by the safety stage.
var DefaultDenylist = []string{
	"ignore previous instructions",
	"system prompt",
}

type Config struct {
	// SlowThresholdMillis is the SLA boundary for the performance stage.
	SlowThresholdMillis float64
	// Denylist overrides DefaultDenylist when non-empty. Order matters:
	// scanning stops at the first match.
	Denylist []string
}

func LoadConfig() *Config {
	return &Config{
		SlowThresholdMillis: 2000,
	}
}

func (c *Config) denylist() []string {
	if len(c.Denylist) > 0 {
		return c.Denylist
	}
	return DefaultDenylist
}
