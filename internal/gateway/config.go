// internal/gateway/config.go
package gateway

import "agentscore-gateway/internal/common/config"

const payInstruction = "Include this token in your next request header as: 'Authorization: L402 <token>'"

const challengeInstruction = "Please pay the invoice to receive an L402 token, then retry with the Authorization header."

// Config holds the paywall settings the orchestrator needs.
type Config struct {
	Scheme        string
	InvoicePrefix string
	DefaultAmount int
}

func ConfigFrom(pc config.PaymentConfig) *Config {
	return &Config{
		Scheme:        pc.Scheme,
		InvoicePrefix: pc.InvoicePrefix,
		DefaultAmount: pc.DefaultAmount,
	}
}
