// Package rediscache decorates the sender-history provider with a
// read-through Redis cache. Scoring hits the history lookup once per message,
// so a short TTL takes most of that load off the primary store without
// letting stale rates linger past a few minutes.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
	"github.com/ignite/inbox-triage/internal/service/scoring"
)

// SenderHistoryCache wraps a SenderHistoryProvider with a per-(user, sender)
// cache. Cache failures degrade to the underlying provider; a broken Redis
// never breaks scoring.
type SenderHistoryCache struct {
	next   scoring.SenderHistoryProvider
	client *redis.Client
	ttl    time.Duration
}

// NewSenderHistoryCache creates the cache decorator. ttlSeconds <= 0 falls
// back to five minutes.
func NewSenderHistoryCache(next scoring.SenderHistoryProvider, client *redis.Client, ttlSeconds int) *SenderHistoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SenderHistoryCache{next: next, client: client, ttl: ttl}
}

func historyKey(userID, senderEmail string) string {
	return fmt.Sprintf("triage:history:%s:%s", userID, senderEmail)
}

// SenderHistory implements scoring.SenderHistoryProvider.
func (c *SenderHistoryCache) SenderHistory(ctx context.Context, userID, senderEmail string) (domain.SenderHistory, error) {
	key := historyKey(userID, senderEmail)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var h domain.SenderHistory
		if err := json.Unmarshal(data, &h); err == nil {
			return h, nil
		}
		// Unreadable entry: drop it and fall through to the source.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		logger.Warn("sender history cache read failed", "error", err.Error())
	}

	h, err := c.next.SenderHistory(ctx, userID, senderEmail)
	if err != nil {
		return domain.SenderHistory{}, err
	}

	if data, err := json.Marshal(h); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("sender history cache write failed", "error", err.Error())
		}
	}
	return h, nil
}

// Invalidate drops the cached history for one sender. The memory surface
// calls it after a weight edit so the next score sees the new prior.
func (c *SenderHistoryCache) Invalidate(ctx context.Context, userID, senderEmail string) {
	if err := c.client.Del(ctx, historyKey(userID, senderEmail)).Err(); err != nil && err != redis.Nil {
		logger.Warn("sender history cache invalidate failed", "error", err.Error())
	}
}
