// internal/audit/engine.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agentscore-gateway/internal/common/logger"

	"github.com/xeipuuv/gojsonschema"
)

// Auditor turns an execution attempt into a verdict. The in-process Engine
// never returns an error; the webhook client can, and that error means the
// audit infrastructure is down, not that the content was rejected.
type Auditor interface {
	Audit(ctx context.Context, req Request) (*Verdict, error)
}

// payloadSchema accepts any structured payload carrying a recognized
// primary-content field or a recognized data field.
const payloadSchema = `{
	"anyOf": [
		{"type": "object", "required": ["response"]},
		{"type": "object", "required": ["data"]}
	]
}`

// Engine is the deterministic multi-stage scorer. Score is a pure, total
// function of (rawOutput, responseTime): malformed input degrades the score
// instead of erroring.
type Engine struct {
	config *Config
	logger logger.Logger
	schema *gojsonschema.Schema
}

func NewEngine(config *Config, log logger.Logger) (*Engine, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchema))
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &Engine{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "audit-engine"}),
		schema: schema,
	}, nil
}

func (e *Engine) Audit(_ context.Context, req Request) (*Verdict, error) {
	return e.Score(req), nil
}

// Score runs the validation pipeline in stage order. Only a syntax failure
// short-circuits: a safety violation still lets the logic and performance
// stages run and contribute to the message.
func (e *Engine) Score(req Request) *Verdict {
	var findings []Finding

	var payload interface{}
	if err := json.Unmarshal([]byte(req.RawPayload), &payload); err != nil {
		findings = append(findings, Finding{
			Category: CategorySyntax,
			Outcome:  OutcomeFail,
			Score:    -10,
			Detail:   "Syntax: FAILED",
		})
		return e.finalize(req.AgentID, findings)
	}

	findings = append(findings, Finding{
		Category: CategorySyntax,
		Outcome:  OutcomePass,
		Score:    5,
		Detail:   "Syntax: OK",
	})

	findings = append(findings, e.checkSchema(payload))
	findings = append(findings, e.checkSafety(payload))
	if logic := e.checkLogic(payload); logic != nil {
		findings = append(findings, *logic)
	}
	if perf := e.checkPerformance(req.ResponseTime); perf != nil {
		findings = append(findings, *perf)
	}

	return e.finalize(req.AgentID, findings)
}

func (e *Engine) checkSchema(payload interface{}) Finding {
	result, err := e.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err == nil && result.Valid() {
		return Finding{
			Category: CategorySchema,
			Outcome:  OutcomePass,
			Score:    5,
			Detail:   "Schema: OK",
		}
	}
	return Finding{
		Category: CategorySchema,
		Outcome:  OutcomeFail,
		Score:    -5,
		Detail:   "Schema: FAILED",
	}
}

// checkSafety scans the re-serialized payload case-insensitively and stops
// at the first denylist match.
func (e *Engine) checkSafety(payload interface{}) Finding {
	serialized, _ := json.Marshal(payload)
	haystack := strings.ToLower(string(serialized))

	for _, pattern := range e.config.denylist() {
		if strings.Contains(haystack, strings.ToLower(pattern)) {
			return Finding{
				Category: CategorySafety,
				Outcome:  OutcomeFail,
				Score:    -20,
				Detail:   fmt.Sprintf("Safety: FAILED ('%s')", pattern),
			}
		}
	}
	return Finding{
		Category: CategorySafety,
		Outcome:  OutcomePass,
		Score:    10,
		Detail:   "Safety: OK",
	}
}

// checkLogic records a finding only on failure; a clean payload passes
// silently, asymmetric with the other stages.
func (e *Engine) checkLogic(payload interface{}) *Finding {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}
	val, exists := obj["error"]
	if !exists || !truthy(val) {
		return nil
	}
	return &Finding{
		Category: CategoryLogic,
		Outcome:  OutcomeFail,
		Score:    -5,
		Detail:   "Logic: FAILED (Internal Error)",
	}
}

func (e *Engine) checkPerformance(responseTime *float64) *Finding {
	if responseTime == nil {
		return nil
	}
	ms := formatMillis(*responseTime)
	if *responseTime <= e.config.SlowThresholdMillis {
		return &Finding{
			Category: CategoryPerformance,
			Outcome:  OutcomePass,
			Score:    5,
			Detail:   fmt.Sprintf("Performance: GOOD (%sms)", ms),
		}
	}
	return &Finding{
		Category: CategoryPerformance,
		Outcome:  OutcomeFail,
		Score:    -5,
		Detail:   fmt.Sprintf("Performance: SLOW (%sms)", ms),
	}
}

func (e *Engine) finalize(agentID int64, findings []Finding) *Verdict {
	delta := 0
	details := make([]string, 0, len(findings))
	for _, f := range findings {
		delta += f.Score
		details = append(details, f.Detail)
	}
	message := strings.Join(details, " | ")

	verdict := &Verdict{
		AgentID:        agentID,
		Findings:       findings,
		ScoreDelta:     delta,
		Message:        message,
		Pass:           delta > 0,
		EvidenceDigest: DigestMessage(message),
		Timestamp:      time.Now().UTC(),
	}

	e.logger.Info("audit complete", map[string]interface{}{
		"agentId":    agentID,
		"scoreDelta": delta,
		"pass":       verdict.Pass,
		"message":    message,
	})

	return verdict
}

// truthy mirrors the loose error-indicator semantics the audit contract
// inherited: null, false, empty string and numeric zero do not count.
func truthy(val interface{}) bool {
	switch v := val.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}
