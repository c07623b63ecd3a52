package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyConfirmed = "newsletter:confirmed_emails"

// RecipientCache caches the confirmed-subscriber email list in Redis so that
// back-to-back publishes don't re-read the whole table.
type RecipientCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRecipientCache returns a new RecipientCache.
func NewRecipientCache(rdb *redis.Client, ttl time.Duration) *RecipientCache {
	return &RecipientCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached email list or nil if miss.
func (c *RecipientCache) Get(ctx context.Context) ([]string, error) {
	b, err := c.rdb.Get(ctx, keyConfirmed).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEmails(b)
}

// Set stores the email list in cache. An empty list is a valid value and is
// cached too, so callers can tell "nobody confirmed yet" apart from a miss.
func (c *RecipientCache) Set(ctx context.Context, emails []string) error {
	b, err := encodeEmails(emails)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyConfirmed, b, c.ttl).Err()
}

// encodeEmails always produces a JSON array. A nil slice would marshal to
// "null", which decodes back to nil and reads as a cache miss.
func encodeEmails(emails []string) ([]byte, error) {
	return json.Marshal(append([]string{}, emails...))
}

func decodeEmails(b []byte) ([]string, error) {
	var emails []string
	if err := json.Unmarshal(b, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []string{}
	}
	return emails, nil
}

// Invalidate drops the cached list (called when a subscriber confirms).
func (c *RecipientCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyConfirmed).Err()
}
