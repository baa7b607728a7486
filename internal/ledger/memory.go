// internal/ledger/memory.go
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memInvoice struct {
	amount    int
	expiresAt time.Time // zero means no expiry
}

// MemoryStore keeps ledger state in mutex-guarded maps. It is the default
// backend; state is ephemeral by design.
type MemoryStore struct {
	config Config

	mu       sync.Mutex
	invoices map[string]memInvoice
	tokens   map[string]time.Time

	stopJanitor chan struct{}
	janitorOnce sync.Once
}

func NewMemoryStore(config Config) *MemoryStore {
	s := &MemoryStore{
		config:      config,
		invoices:    make(map[string]memInvoice),
		tokens:      make(map[string]time.Time),
		stopJanitor: make(chan struct{}),
	}
	if config.InvoiceTTL > 0 || config.TokenTTL > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemoryStore) IssueInvoice(_ context.Context, amount int) (string, error) {
	invoiceID := uuid.NewString()

	var expiresAt time.Time
	if s.config.InvoiceTTL > 0 {
		expiresAt = time.Now().Add(s.config.InvoiceTTL)
	}

	s.mu.Lock()
	s.invoices[invoiceID] = memInvoice{amount: amount, expiresAt: expiresAt}
	s.mu.Unlock()

	return invoiceID, nil
}

func (s *MemoryStore) RedeemInvoice(_ context.Context, invoiceID string) (string, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok || expired(inv.expiresAt, now) {
		delete(s.invoices, invoiceID)
		return "", ErrInvoiceNotFound
	}
	delete(s.invoices, invoiceID)

	token := newToken()
	var expiresAt time.Time
	if s.config.TokenTTL > 0 {
		expiresAt = now.Add(s.config.TokenTTL)
	}
	s.tokens[token] = expiresAt

	return token, nil
}

func (s *MemoryStore) Authorize(_ context.Context, token string) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[token]
	if !ok || expired(expiresAt, now) {
		delete(s.tokens, token)
		return ErrTokenInvalid
	}
	delete(s.tokens, token)
	return nil
}

func (s *MemoryStore) Close() error {
	s.janitorOnce.Do(func() { close(s.stopJanitor) })
	return nil
}

// janitor sweeps expired entries so abandoned invoices don't accumulate.
// Correctness does not depend on it: expiry is also checked on access.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopJanitor:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, inv := range s.invoices {
				if expired(inv.expiresAt, now) {
					delete(s.invoices, id)
				}
			}
			for token, expiresAt := range s.tokens {
				if expired(expiresAt, now) {
					delete(s.tokens, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

func expired(expiresAt time.Time, now time.Time) bool {
	return !expiresAt.IsZero() && now.After(expiresAt)
}
