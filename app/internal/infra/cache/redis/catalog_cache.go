package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

const keyPrefix = "catalog:entry:"

type cachedEntry struct {
	ID          int64           `json:"id"`
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int64           `json:"stock"`
	IsActive    bool            `json:"is_active"`
}

// CatalogCache keeps catalog entries in redis for ttl.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Get returns nil, nil on a miss.
func (c *CatalogCache) Get(ctx context.Context, id int64) (*domcatalog.Entry, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEntry(raw)
}

func (c *CatalogCache) Set(ctx context.Context, e *domcatalog.Entry) error {
	raw, err := encodeEntry(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(e.ID), raw, c.ttl).Err()
}

func (c *CatalogCache) Delete(ctx context.Context, id int64) error {
	return c.client.Del(ctx, key(id)).Err()
}

func key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func encodeEntry(e *domcatalog.Entry) ([]byte, error) {
	return json.Marshal(cachedEntry{
		ID:          e.ID,
		Kind:        string(e.Kind),
		Name:        e.Name,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		UnitPrice:   e.UnitPrice,
		Stock:       e.Stock,
		IsActive:    e.IsActive,
	})
}

func decodeEntry(raw []byte) (*domcatalog.Entry, error) {
	var c cachedEntry
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	return &domcatalog.Entry{
		ID:          c.ID,
		Kind:        domcatalog.Kind(c.Kind),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		UnitPrice:   c.UnitPrice,
		Stock:       c.Stock,
		IsActive:    c.IsActive,
	}, nil
}
