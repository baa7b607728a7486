// internal/dispatch/config.go
package dispatch

import (
	"time"

	"agentscore-gateway/internal/common/config"
)

const (
	ModeSimulate = "simulate"
	ModeHTTP     = "http"
)

// Config holds dispatcher settings resolved to native durations.
type Config struct {
	Mode             string
	EngineURL        string
	Timeout          time.Duration
	SimulatedLatency time.Duration
}

// ConfigFrom maps the application worker section onto dispatcher settings.
func ConfigFrom(wc config.WorkerConfig) *Config {
	return &Config{
		Mode:             wc.Mode,
		EngineURL:        wc.EngineURL,
		Timeout:          time.Duration(wc.Timeout) * time.Millisecond,
		SimulatedLatency: time.Duration(wc.SimulatedLatency) * time.Millisecond,
	}
}
