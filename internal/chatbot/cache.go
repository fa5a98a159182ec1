package chatbot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
)

const cacheKeyPrefix = "chatbot:answer:"

// Cache stores structured-path answers in Redis keyed by the normalized
// question. A nil *Cache is a valid, always-missing cache. Redis failures
// are logged and otherwise ignored.
type Cache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewCache returns nil when redis is nil or ttl is not positive.
func NewCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *Cache {
	if redis == nil || ttl <= 0 {
		return nil
	}
	return &Cache{redis: redis, ttl: ttl, logger: logger.Component(log, "answer-cache")}
}

// CacheKey folds case and whitespace so trivially different questions share an entry.
func CacheKey(question string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(norm))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, question string) (Answer, bool) {
	if c == nil {
		return Answer{}, false
	}

	key := CacheKey(question)
	val, err := c.redis.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, database.ErrCacheMiss) {
			c.logger.Warn("Answer cache read failed", map[string]interface{}{"error": err})
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Answer{}, false
	}

	var ans Answer
	dec := json.NewDecoder(bytes.NewReader([]byte(val)))
	dec.UseNumber()
	if err := dec.Decode(&ans); err != nil {
		c.logger.Warn("Answer cache entry unreadable, evicting", map[string]interface{}{"error": err})
		if err := c.redis.Del(ctx, key); err != nil {
			c.logger.Warn("Answer cache evict failed", map[string]interface{}{"error": err})
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Answer{}, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	ans.Question = question
	return ans, true
}

func (c *Cache) Set(ctx context.Context, question string, ans Answer) {
	if c == nil {
		return
	}

	data, err := json.Marshal(ans)
	if err != nil {
		c.logger.Warn("Answer cache encode failed", map[string]interface{}{"error": err})
		return
	}
	if err := c.redis.Set(ctx, CacheKey(question), data, c.ttl); err != nil {
		c.logger.Warn("Answer cache write failed", map[string]interface{}{"error": err})
	}
}
