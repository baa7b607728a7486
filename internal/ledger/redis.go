// internal/ledger/redis.go
package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	invoiceKeyPrefix = "agentscore:invoice:"
	tokenKeyPrefix   = "agentscore:token:"
)

// RedisStore keeps ledger state in redis. GETDEL makes the consume
// operations atomic, and key TTLs implement the expiry policy natively.
type RedisStore struct {
	client *redis.Client
	config Config
}

func NewRedisStore(client *redis.Client, config Config) *RedisStore {
	return &RedisStore{
		client: client,
		config: config,
	}
}

func (s *RedisStore) IssueInvoice(ctx context.Context, amount int) (string, error) {
	invoiceID := uuid.NewString()

	if err := s.client.Set(ctx, invoiceKeyPrefix+invoiceID, strconv.Itoa(amount), s.config.InvoiceTTL).Err(); err != nil {
		return "", err
	}
	return invoiceID, nil
}

func (s *RedisStore) RedeemInvoice(ctx context.Context, invoiceID string) (string, error) {
	err := s.client.GetDel(ctx, invoiceKeyPrefix+invoiceID).Err()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvoiceNotFound
	}
	if err != nil {
		return "", err
	}

	token := newToken()
	if err := s.client.Set(ctx, tokenKeyPrefix+token, "1", s.config.TokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Authorize(ctx context.Context, token string) error {
	err := s.client.GetDel(ctx, tokenKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return ErrTokenInvalid
	}
	return err
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
