// Package errors provides standardized error handling for the payment-gated
// execution pipeline.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"

	ErrCodePaymentRequired     ErrorCode = "PAYMENT_REQUIRED"
	ErrCodeInvalidPaymentToken ErrorCode = "INVALID_PAYMENT_TOKEN"
	ErrCodeInvoiceNotFound     ErrorCode = "INVOICE_NOT_FOUND"

	ErrCodeWorkerUnavailable ErrorCode = "WORKER_UNAVAILABLE"

	ErrCodeAuditInfraUnavailable ErrorCode = "AUDIT_INFRA_UNAVAILABLE"
	ErrCodeAuditRejected         ErrorCode = "AUDIT_REJECTED"

	ErrCodeLedgerWriteFailed ErrorCode = "LEDGER_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMalformedRequestError creates a non-retryable request validation error.
func NewMalformedRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   "Missing or invalid fields in request body",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentRequiredError signals that a fresh invoice must be settled before
// the request can be served. The invoice id travels in Metadata.
func NewPaymentRequiredError(invoiceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentRequired,
		Message:   "Payment Required",
		Retryable: false,
		Metadata:  map[string]interface{}{"invoiceId": invoiceID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPaymentTokenError creates a non-retryable authorization error.
func NewInvalidPaymentTokenError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPaymentToken,
		Message:   "Unauthorized. Invalid payment token.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvoiceNotFoundError covers both unknown and already-redeemed invoices;
// the two cases are deliberately indistinguishable to the caller.
func NewInvoiceNotFoundError(invoiceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvoiceNotFound,
		Message:   "Invoice not found or already paid.",
		Details:   fmt.Sprintf("invoiceId: %s", invoiceID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkerUnavailableError creates a fatal dispatcher error. The pipeline
// never retries it; the token was already consumed.
func NewWorkerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkerUnavailable,
		Message:   "Execution engine unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditInfraUnavailableError reports an audit-infrastructure outage, which
// is a service failure rather than a content rejection.
func NewAuditInfraUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditInfraUnavailable,
		Message:   "Decentralized audit failed. Service unavailable.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditRejectedError reports a content rejection by the audit protocol.
// The full audit narrative travels in Metadata; the raw agent output does not.
func NewAuditRejectedError(auditDetails interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditRejected,
		Message:   "The Agent's response was rejected by the AgentScore Quality Protocol.",
		Retryable: false,
		Metadata:  map[string]interface{}{"auditDetails": auditDetails},
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteFailedError is logged and counted but never surfaced to the
// caller.
func NewLedgerWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Reputation ledger write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal Gateway Error.",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMalformedRequest:      http.StatusBadRequest,
	ErrCodePaymentRequired:       http.StatusPaymentRequired,
	ErrCodeInvalidPaymentToken:   http.StatusUnauthorized,
	ErrCodeInvoiceNotFound:       http.StatusNotFound,
	ErrCodeWorkerUnavailable:     http.StatusInternalServerError,
	ErrCodeAuditInfraUnavailable: http.StatusBadGateway,
	ErrCodeAuditRejected:         http.StatusBadRequest,
	ErrCodeLedgerWriteFailed:     http.StatusInternalServerError,
	ErrCodeInternal:              http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeAuditInfraUnavailable, ErrCodeLedgerWriteFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PAYMENT") || strings.Contains(codeStr, "INVOICE"):
		return "PAYMENT"
	case strings.Contains(codeStr, "WORKER"):
		return "EXECUTION"
	case strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "LEDGER"):
		return "REPUTATION"
	case strings.Contains(codeStr, "MALFORMED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
