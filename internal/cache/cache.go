// internal/cache/cache.go
// Package cache keeps recent prediction results in Redis so an identical
// resubmission reuses the service's last decision. Cache failures are soft:
// they are logged and the submission proceeds as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "loanintake:prediction:"

type ResultCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func New(redisClient *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{
		redis:  redisClient,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

// Key derives a deterministic cache key from the normalized application.
// Struct field order fixes the JSON property order, so equal applications
// always hash the same.
func Key(app *models.LoanApplication) string {
	payload, _ := json.Marshal(app)
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for app, or (nil, false) on miss or error.
func (c *ResultCache) Get(ctx context.Context, app *models.LoanApplication) (*models.PredictionResult, bool) {
	raw, err := c.redis.Get(ctx, Key(app))
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var result models.PredictionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Warn("cache entry unreadable, dropping", map[string]interface{}{"error": err.Error()})
		_ = c.redis.Del(ctx, Key(app))
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return &result, true
}

// Put stores the result for app. Errors are logged and swallowed.
func (c *ResultCache) Put(ctx context.Context, app *models.LoanApplication, result *models.PredictionResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, Key(app), payload, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
