package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

type priceSource interface {
	GetPrice(ctx context.Context, pricelistID *uuid.UUID, productID uuid.UUID, date time.Time, qty decimal.Decimal, uomID *uuid.UUID) (decimal.Decimal, error)
}

// PriceCache memoizes resolved unit prices in redis for ttl. A redis failure
// never fails a lookup; the source is asked instead.
type PriceCache struct {
	rdb    *redis.Client
	source priceSource
	ttl    time.Duration
}

func NewPriceCache(rdb *redis.Client, source priceSource, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: rdb, source: source, ttl: ttl}
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func priceKey(pricelistID *uuid.UUID, productID uuid.UUID, date time.Time, qty decimal.Decimal, uomID *uuid.UUID) string {
	return fmt.Sprintf("price:%s:%s:%s:%s:%s",
		optionalID(pricelistID), productID, date.Format("2006-01-02"), qty.String(), optionalID(uomID))
}

func (c *PriceCache) GetPrice(ctx context.Context, pricelistID *uuid.UUID, productID uuid.UUID, date time.Time, qty decimal.Decimal, uomID *uuid.UUID) (decimal.Decimal, error) {
	key := priceKey(pricelistID, productID, date, qty, uomID)
	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if price, perr := decimal.NewFromString(cached); perr == nil {
			return price, nil
		}
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("price_cache: read failed")
	}

	price, err := c.source.GetPrice(ctx, pricelistID, productID, date, qty, uomID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.rdb.Set(ctx, key, price.String(), c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("price_cache: write failed")
	}
	return price, nil
}
