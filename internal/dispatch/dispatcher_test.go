// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agentscore-gateway/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestSimulator_PromptRouting(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		want     string
		wantJSON bool
	}{
		{
			name:     "weather prompt",
			prompt:   "What is the WEATHER today?",
			want:     `{"temperature":22,"condition":"Sunny","location":"Base Testnet"}`,
			wantJSON: true,
		},
		{
			name:     "hallucinate prompt returns prose",
			prompt:   "please hallucinate something",
			want:     "Here is the weather: It is 22 degrees and sunny. Hope this helps!",
			wantJSON: false,
		},
		{
			name:     "generic prompt",
			prompt:   "summarize this document",
			want:     `{"message":"Generic task completed successfully."}`,
			wantJSON: true,
		},
	}

	sim := newSimulator(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sim.Execute(context.Background(), tt.prompt)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, out)

			var parsed map[string]interface{}
			if tt.wantJSON {
				assert.NoError(t, json.Unmarshal([]byte(out), &parsed))
			} else {
				assert.Error(t, json.Unmarshal([]byte(out), &parsed))
			}
		})
	}
}

func TestSimulator_CancelledContext(t *testing.T) {
	sim := newSimulator(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Execute(ctx, "weather")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_MeasuresWallClock(t *testing.T) {
	cfg := &Config{Mode: ModeSimulate, SimulatedLatency: 30 * time.Millisecond}
	d := New(cfg, logger.NewTestLogger(t))

	res, err := d.Dispatch(context.Background(), "weather in Berlin")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, res.ElapsedMillis, float64(30))
	assert.Contains(t, res.RawOutput, "Sunny")
}

type failingExecutor struct{}

func (failingExecutor) Execute(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestDispatcher_ExecutorFailure(t *testing.T) {
	d := NewWithExecutor(&Config{}, failingExecutor{}, logger.NewTestLogger(t))

	_, err := d.Dispatch(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrWorkerUnavailable)
}

func TestDispatcher_Timeout(t *testing.T) {
	cfg := &Config{Mode: ModeSimulate, SimulatedLatency: time.Second, Timeout: 20 * time.Millisecond}
	d := New(cfg, logger.NewTestLogger(t))

	_, err := d.Dispatch(context.Background(), "slow task")
	assert.ErrorIs(t, err, ErrWorkerUnavailable)
}

func TestHTTPWorker_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req engineRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "compute things", req.Prompt)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(engineResponse{Output: `{"response":"done"}`})
	}))
	defer srv.Close()

	cfg := &Config{Mode: ModeHTTP, EngineURL: srv.URL, Timeout: 2 * time.Second}
	d := New(cfg, logger.NewTestLogger(t))

	res, err := d.Dispatch(context.Background(), "compute things")
	assert.NoError(t, err)
	assert.Equal(t, `{"response":"done"}`, res.RawOutput)
}

func TestHTTPWorker_EngineDown(t *testing.T) {
	cfg := &Config{Mode: ModeHTTP, EngineURL: "http://127.0.0.1:1/execute", Timeout: 200 * time.Millisecond}
	d := New(cfg, logger.NewTestLogger(t))

	_, err := d.Dispatch(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrWorkerUnavailable)
}
