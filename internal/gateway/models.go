// internal/gateway/models.go
package gateway

import "agentscore-gateway/internal/audit"

// ServiceRequest is the body of POST /api/request-service.
type ServiceRequest struct {
	AgentID    int64  `json:"agentId"`
	UserPrompt string `json:"userPrompt"`
}

// ServiceResponse is the success body: the parsed agent output plus the
// audit verdict that cleared it.
type ServiceResponse struct {
	Status          string       `json:"status"`
	Data            interface{}  `json:"data"`
	AgentScoreAudit *audit.Result `json:"agentScoreAudit"`
}

// PayInvoiceRequest is the body of POST /api/pay-invoice.
type PayInvoiceRequest struct {
	InvoiceID string `json:"invoiceId"`
}

// PayInvoiceResponse carries the freshly minted single-use bearer token.
type PayInvoiceResponse struct {
	Status      string `json:"status"`
	Token       string `json:"token"`
	Instruction string `json:"instruction"`
}
