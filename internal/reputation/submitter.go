// internal/reputation/submitter.go
package reputation

import (
	"context"
	"fmt"
	"time"

	commonhttp "agentscore-gateway/internal/common/http"
	"agentscore-gateway/internal/common/logger"
	"agentscore-gateway/internal/common/metrics"
)

// Submitter records an assertion on an external reputation ledger.
type Submitter interface {
	Submit(ctx context.Context, a Assertion) error
}

// HTTPSubmitter posts assertions to a reputation ledger endpoint.
type HTTPSubmitter struct {
	url    string
	client *commonhttp.Client
	logger logger.Logger
}

func NewHTTPSubmitter(url string, timeout time.Duration, log logger.Logger) *HTTPSubmitter {
	return &HTTPSubmitter{
		url:    url,
		client: commonhttp.NewClient(timeout),
		logger: log.With(map[string]interface{}{"component": "reputation-submitter"}),
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, a Assertion) error {
	if err := s.client.PostJSON(ctx, s.url, a, nil); err != nil {
		return fmt.Errorf("reputation submit: %w", err)
	}
	return nil
}

// NoOpSubmitter discards assertions. Used when the ledger is disabled.
type NoOpSubmitter struct{}

func (NoOpSubmitter) Submit(context.Context, Assertion) error { return nil }

// Reporter fires assertions without joining them into the request path.
// A ledger failure is logged and counted but never surfaces to callers.
type Reporter struct {
	submitter Submitter
	timeout   time.Duration
	logger    logger.Logger
}

func NewReporter(submitter Submitter, timeout time.Duration, log logger.Logger) *Reporter {
	return &Reporter{
		submitter: submitter,
		timeout:   timeout,
		logger:    log.With(map[string]interface{}{"component": "reputation-reporter"}),
	}
}

// Report submits the assertion on its own goroutine with a detached
// context, so it survives the originating request's cancellation.
func (r *Reporter) Report(a Assertion) {
	go func() {
		ctx := context.Background()
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		if err := r.submitter.Submit(ctx, a); err != nil {
			metrics.ReputationSubmissions.WithLabelValues("error").Inc()
			r.logger.Error("assertion submission failed", map[string]interface{}{
				"agentId":    a.AgentID,
				"scoreDelta": a.ScoreDelta,
				"error":      err.Error(),
			})
			return
		}

		metrics.ReputationSubmissions.WithLabelValues("success").Inc()
		r.logger.Info("assertion submitted", map[string]interface{}{
			"agentId":    a.AgentID,
			"scoreDelta": a.ScoreDelta,
			"evidence":   a.EvidenceHash,
		})
	}()
}
