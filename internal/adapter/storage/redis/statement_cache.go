package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// StatementCache implements ports.StatementCache backed by Redis.
// A whole rendered statement is stored as one blob under one key, so a
// cached statement is always internally consistent; applies invalidate
// the key after commit.
type StatementCache struct {
	client *goredis.Client
	prefix string
}

// NewStatementCache creates a Redis-backed statement cache.
func NewStatementCache(client *goredis.Client) *StatementCache {
	return &StatementCache{
		client: client,
		prefix: "statement:",
	}
}

func (c *StatementCache) key(accountID int) string {
	return fmt.Sprintf("%s%d", c.prefix, accountID)
}

// Get returns the cached statement blob, or (nil, nil) on a miss.
func (c *StatementCache) Get(ctx context.Context, accountID int) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis statement get: %w", err)
	}
	return val, nil
}

// Set stores the statement blob with the given TTL.
func (c *StatementCache) Set(ctx context.Context, accountID int, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(accountID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis statement set: %w", err)
	}
	return nil
}

// Invalidate drops the cached statement for the account.
func (c *StatementCache) Invalidate(ctx context.Context, accountID int) error {
	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		return fmt.Errorf("redis statement invalidate: %w", err)
	}
	return nil
}
