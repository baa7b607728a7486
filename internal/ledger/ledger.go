// internal/ledger/ledger.go

// Package ledger owns the invoice and bearer-token state behind the payment
// challenge flow. An invoice is created pending, redeemed exactly once for a
// single-use token, and a token survives exactly one successful Authorize.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrInvoiceNotFound covers never-issued, already-redeemed and expired
	// invoices alike; callers cannot tell them apart.
	ErrInvoiceNotFound = errors.New("INVOICE_NOT_FOUND")

	// ErrTokenInvalid covers unknown, already-consumed and expired tokens.
	ErrTokenInvalid = errors.New("INVALID_PAYMENT_TOKEN")
)

// Store is the ledger contract shared by the memory and redis backends.
// RedeemInvoice and Authorize are atomic check-and-remove operations: two
// concurrent calls racing on the same id or token admit exactly one winner.
type Store interface {
	// IssueInvoice registers a fresh pending invoice and returns its id.
	IssueInvoice(ctx context.Context, amount int) (string, error)

	// RedeemInvoice consumes a pending invoice and mints a single-use token.
	RedeemInvoice(ctx context.Context, invoiceID string) (string, error)

	// Authorize consumes a token. The token is gone after a successful call
	// regardless of what happens downstream.
	Authorize(ctx context.Context, token string) error

	Close() error
}

// Config holds the expiry policy. Zero durations disable expiry.
type Config struct {
	InvoiceTTL time.Duration
	TokenTTL   time.Duration
}

// newToken mints an unguessable 32-hex-char bearer token.
func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for a payment credential
		panic(err)
	}
	return hex.EncodeToString(buf)
}
