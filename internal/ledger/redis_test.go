// internal/ledger/redis_test.go
package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedisStore(t *testing.T, cfg Config) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, cfg), mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRedisStore_IssueAndRedeem(t *testing.T) {
	s, _ := setupRedisStore(t, Config{})
	ctx := context.Background()

	invoiceID, err := s.IssueInvoice(ctx, 10)
	assert.NoError(t, err)
	assert.NotEmpty(t, invoiceID)

	token, err := s.RedeemInvoice(ctx, invoiceID)
	assert.NoError(t, err)
	assert.Len(t, token, 32)
}

func TestRedisStore_RedeemTwice(t *testing.T) {
	s, _ := setupRedisStore(t, Config{})
	ctx := context.Background()

	invoiceID, _ := s.IssueInvoice(ctx, 10)

	_, err := s.RedeemInvoice(ctx, invoiceID)
	assert.NoError(t, err)

	_, err = s.RedeemInvoice(ctx, invoiceID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestRedisStore_TokenSingleUse(t *testing.T) {
	s, _ := setupRedisStore(t, Config{})
	ctx := context.Background()

	invoiceID, _ := s.IssueInvoice(ctx, 10)
	token, err := s.RedeemInvoice(ctx, invoiceID)
	assert.NoError(t, err)

	assert.NoError(t, s.Authorize(ctx, token))
	assert.ErrorIs(t, s.Authorize(ctx, token), ErrTokenInvalid)
}

func TestRedisStore_AuthorizeUnknownToken(t *testing.T) {
	s, _ := setupRedisStore(t, Config{})

	err := s.Authorize(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// ==========================
// Concurrency Tests
// ==========================

func TestRedisStore_ConcurrentAuthorizeOneWinner(t *testing.T) {
	s, _ := setupRedisStore(t, Config{})
	ctx := context.Background()

	invoiceID, _ := s.IssueInvoice(ctx, 10)
	token, err := s.RedeemInvoice(ctx, invoiceID)
	assert.NoError(t, err)

	const racers = 20
	var wins int64
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			if s.Authorize(ctx, token) == nil {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

// ==========================
// Expiry Policy Tests
// ==========================

func TestRedisStore_InvoiceExpiry(t *testing.T) {
	s, mr := setupRedisStore(t, Config{InvoiceTTL: 5 * time.Minute})
	ctx := context.Background()

	invoiceID, _ := s.IssueInvoice(ctx, 10)
	mr.FastForward(6 * time.Minute)

	_, err := s.RedeemInvoice(ctx, invoiceID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestRedisStore_TokenExpiry(t *testing.T) {
	s, mr := setupRedisStore(t, Config{TokenTTL: 5 * time.Minute})
	ctx := context.Background()

	invoiceID, _ := s.IssueInvoice(ctx, 10)
	token, err := s.RedeemInvoice(ctx, invoiceID)
	assert.NoError(t, err)

	mr.FastForward(6 * time.Minute)
	assert.ErrorIs(t, s.Authorize(ctx, token), ErrTokenInvalid)
}
