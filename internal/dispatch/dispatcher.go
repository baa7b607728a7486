// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agentscore-gateway/internal/common/logger"
)

var ErrWorkerUnavailable = errors.New("WORKER_UNAVAILABLE")

// Executor runs a prompt against an execution engine and returns its raw,
// unparsed output. Implementations do not retry.
type Executor interface {
	Execute(ctx context.Context, prompt string) (string, error)
}

// Dispatcher wraps an Executor with per-call timeout and wall-clock timing.
type Dispatcher struct {
	config   *Config
	executor Executor
	logger   logger.Logger
}

// New builds a Dispatcher for the configured mode. Unknown modes fall back
// to the simulator so a misconfigured deployment still serves requests.
func New(config *Config, log logger.Logger) *Dispatcher {
	var exec Executor
	switch config.Mode {
	case ModeHTTP:
		exec = newHTTPWorker(config, log)
	default:
		exec = newSimulator(config.SimulatedLatency)
	}
	return &Dispatcher{
		config:   config,
		executor: exec,
		logger:   log.With(map[string]interface{}{"component": "dispatcher", "mode": config.Mode}),
	}
}

// NewWithExecutor builds a Dispatcher around a caller-supplied Executor.
func NewWithExecutor(config *Config, exec Executor, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config:   config,
		executor: exec,
		logger:   log.With(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Dispatch runs the prompt once. The elapsed time in the result brackets
// the executor call only, so audit timing reflects engine latency.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (*Result, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := d.executor.Execute(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Error("execution failed", map[string]interface{}{
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		return nil, fmt.Errorf("%w: %v", ErrWorkerUnavailable, err)
	}

	d.logger.Info("execution complete", map[string]interface{}{
		"durationMs": elapsed.Milliseconds(),
		"outputSize": len(raw),
	})

	return &Result{
		RawOutput:     raw,
		ElapsedMillis: float64(elapsed.Milliseconds()),
	}, nil
}
