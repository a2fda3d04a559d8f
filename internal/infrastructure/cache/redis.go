package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/printshop/internal/readmodel"
	"github.com/go-redis/redis/v8"
)

// CartTTL bounds how long a cached cart can serve reads before the
// read store is consulted again.
const CartTTL = 15 * time.Minute

// CartCache keeps recently synced carts in Redis so the storefront can
// render the cart without hitting the read store on every page view.
type CartCache struct {
	client *redis.Client
}

func NewCartCache(addr, password string, db int) *CartCache {
	return &CartCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *CartCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

// Put stores a cart read model
func (c *CartCache) Put(ctx context.Context, cart *readmodel.CartReadModel) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cartKey(cart.ID), data, CartTTL).Err()
}

// Get returns the cached cart, or nil on a miss
func (c *CartCache) Get(ctx context.Context, cartID string) (*readmodel.CartReadModel, error) {
	data, err := c.client.Get(ctx, cartKey(cartID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart readmodel.CartReadModel
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Invalidate drops the cached cart after a write
func (c *CartCache) Invalidate(ctx context.Context, cartID string) error {
	return c.client.Del(ctx, cartKey(cartID)).Err()
}

func (c *CartCache) Close() error {
	return c.client.Close()
}
