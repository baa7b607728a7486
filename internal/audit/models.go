// internal/audit/models.go
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Category identifies a validation stage.
type Category string

const (
	CategorySyntax      Category = "Syntax"
	CategorySchema      Category = "Schema"
	CategorySafety      Category = "Safety"
	CategoryLogic       Category = "Logic"
	CategoryPerformance Category = "Performance"
)

// Outcome is a single stage's pass/fail result.
type Outcome string

const (
	OutcomePass Outcome = "Pass"
	OutcomeFail Outcome = "Fail"
)

const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// Request is the audit call contract, shared by the in-process engine and
// the webhook transport.
type Request struct {
	AgentID    int64  `json:"agentId"`
	RawPayload string `json:"rawPayload"`
	// ResponseTime is nil when the caller supplied no usable numeric timing;
	// the performance stage is then skipped entirely.
	ResponseTime *float64 `json:"responseTime,omitempty"`
}

// Finding is one stage's scored observation. Findings are immutable and
// ordered by stage.
type Finding struct {
	Category Category `json:"category"`
	Outcome  Outcome  `json:"outcome"`
	Score    int      `json:"scoreContribution"`
	Detail   string   `json:"detail"`
}

// Verdict is the aggregate audit decision for one execution attempt.
type Verdict struct {
	AgentID        int64     `json:"agentId"`
	Findings       []Finding `json:"findings"`
	ScoreDelta     int       `json:"reputationImpact"`
	Message        string    `json:"message"`
	Pass           bool      `json:"pass"`
	EvidenceDigest string    `json:"evidenceDigest"`
	Timestamp      time.Time `json:"timestamp"`
}

// Result is the wire shape of a verdict as exchanged with a remote auditor.
type Result struct {
	AuditStatus      string `json:"auditStatus"`
	Message          string `json:"message"`
	ReputationImpact int    `json:"reputationImpact"`
	Timestamp        string `json:"timestamp"`
}

// Result projects the verdict onto the wire contract.
func (v *Verdict) Result() *Result {
	status := StatusFailed
	if v.Pass {
		status = StatusPassed
	}
	return &Result{
		AuditStatus:      status,
		Message:          v.Message,
		ReputationImpact: v.ScoreDelta,
		Timestamp:        v.Timestamp.Format(time.RFC3339),
	}
}

// VerdictFromResult rebuilds a verdict from the wire shape. The evidence
// digest is a function of the message string alone, so it can always be
// recomputed locally; per-stage findings do not cross the wire.
func VerdictFromResult(agentID int64, r *Result) *Verdict {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	return &Verdict{
		AgentID:        agentID,
		ScoreDelta:     r.ReputationImpact,
		Message:        r.Message,
		Pass:           r.AuditStatus == StatusPassed,
		EvidenceDigest: DigestMessage(r.Message),
		Timestamp:      ts,
	}
}

// DigestMessage hashes the verdict message exactly as constructed. The
// digest covers the auditable narrative, not the raw payload: two outputs
// producing identical finding text hash identically.
func DigestMessage(message string) string {
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}
