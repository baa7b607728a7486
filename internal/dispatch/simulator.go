// internal/dispatch/simulator.go
package dispatch

import (
	"context"
	"strings"
	"time"
)

// Simulator is an in-process stand-in for the execution engine. Prompt
// keywords select canned outputs, including a deliberately malformed one
// so audit failure paths can be exercised end to end.
type Simulator struct {
	latency time.Duration
}

func newSimulator(latency time.Duration) *Simulator {
	return &Simulator{latency: latency}
}

func (s *Simulator) Execute(ctx context.Context, prompt string) (string, error) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	lower := strings.ToLower(prompt)

	if strings.Contains(lower, "weather") {
		return `{"temperature":22,"condition":"Sunny","location":"Base Testnet"}`, nil
	}

	// Non-JSON prose, guaranteed to fail the syntax audit.
	if strings.Contains(lower, "hallucinate") {
		return "Here is the weather: It is 22 degrees and sunny. Hope this helps!", nil
	}

	return `{"message":"Generic task completed successfully."}`, nil
}
