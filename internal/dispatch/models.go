// internal/dispatch/models.go
package dispatch

// Result is the outcome of a single execution attempt. ElapsedMillis
// covers the worker call only, not request parsing or auditing.
type Result struct {
	RawOutput     string
	ElapsedMillis float64
}

// engineRequest is the wire body sent to a remote execution engine.
type engineRequest struct {
	Prompt string `json:"prompt"`
}

// engineResponse is the wire body expected back from a remote engine.
type engineResponse struct {
	Output string `json:"output"`
}
