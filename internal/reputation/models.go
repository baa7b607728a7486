// internal/reputation/models.go
package reputation

import (
	"crypto/sha256"
	"encoding/hex"
)

// AssertionTypeFormatCompliance identifies format/SLA compliance assertions
// on the reputation ledger. It is the digest of the assertion name so the
// identifier is stable across deployments.
var AssertionTypeFormatCompliance = hashString("FORMAT_COMPLIANCE")

// Assertion is a reputation ledger write derived from one audit verdict.
// EvidenceHash commits to the audit narrative, not the raw agent output.
type Assertion struct {
	AgentID       int64  `json:"agentId"`
	AssertionType string `json:"assertionType"`
	ScoreDelta    int    `json:"scoreDelta"`
	EvidenceHash  string `json:"evidenceHash"`
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
