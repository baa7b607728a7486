// internal/dispatch/httpworker.go
package dispatch

import (
	"context"
	"fmt"

	commonhttp "agentscore-gateway/internal/common/http"
	"agentscore-gateway/internal/common/logger"
)

// httpWorker forwards prompts to a remote execution engine over HTTP.
type httpWorker struct {
	url    string
	client *commonhttp.Client
	logger logger.Logger
}

func newHTTPWorker(config *Config, log logger.Logger) *httpWorker {
	return &httpWorker{
		url:    config.EngineURL,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{"component": "http-worker"}),
	}
}

func (w *httpWorker) Execute(ctx context.Context, prompt string) (string, error) {
	var resp engineResponse
	if err := w.client.PostJSON(ctx, w.url, engineRequest{Prompt: prompt}, &resp); err != nil {
		return "", fmt.Errorf("engine call: %w", err)
	}
	return resp.Output, nil
}
