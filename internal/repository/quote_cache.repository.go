package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

type cachedQuoteRepositoryHandler struct {
	client *redis.Client
	ttl    time.Duration
	next   QuoteRepository
}

// NewCachedQuoteRepository keeps quotes from next in redis for ttl. Redis
// failures are logged and fall through to next.
func NewCachedQuoteRepository(client *redis.Client, ttl time.Duration, next QuoteRepository) QuoteRepository {
	return cachedQuoteRepositoryHandler{
		client: client,
		ttl:    ttl,
		next:   next,
	}
}

func quoteCacheKey(ticker string) string {
	return fmt.Sprintf("quote:%s", strings.ToUpper(strings.TrimSpace(ticker)))
}

func (h cachedQuoteRepositoryHandler) GetQuote(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	log := logger.FromContext(ctx)
	key := quoteCacheKey(ticker)

	data, err := h.client.Get(ctx, key).Bytes()
	if err == nil {
		cached := domain.PriceQuote{}
		if err := json.Unmarshal(data, &cached); err == nil {
			// stored under the canonical symbol, answer with the caller's spelling
			cached.Ticker = ticker
			return &cached, nil
		}
		log.Warnf("dropping unreadable cached quote %s", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Warnf("quote cache read failed for %s: %v", key, err)
	}

	q, err := h.next.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := h.client.Set(ctx, key, b, h.ttl).Err(); err != nil {
		log.Warnf("quote cache write failed for %s: %v", key, err)
	}

	return q, nil
}
