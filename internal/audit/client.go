// internal/audit/client.go
package audit

import (
	"context"
	"fmt"
	"time"

	commonhttp "agentscore-gateway/internal/common/http"
	"agentscore-gateway/internal/common/logger"
)

// WebhookClient audits through a remote webhook instead of the in-process
// engine. A transport failure here is an audit-infrastructure outage and
// maps to a 502-class response upstream.
type WebhookClient struct {
	url     string
	timeout time.Duration
	client  *commonhttp.Client
	logger  logger.Logger
}

func NewWebhookClient(url string, timeout time.Duration, log logger.Logger) *WebhookClient {
	return &WebhookClient{
		url:     url,
		timeout: timeout,
		client:  commonhttp.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "audit-client"}),
	}
}

func (c *WebhookClient) Audit(ctx context.Context, req Request) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result Result
	if err := c.client.PostJSON(ctx, c.url, req, &result); err != nil {
		c.logger.Error("audit webhook unreachable", map[string]interface{}{
			"url":   c.url,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("audit webhook: %w", err)
	}

	return VerdictFromResult(req.AgentID, &result), nil
}
