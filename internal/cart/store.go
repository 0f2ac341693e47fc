package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/techstore/storefront-backend/pkg/redis"
)

// Store persists carts per session.
type Store interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, cartID string) error
}

// RedisStore keeps each cart as a JSON blob with a sliding expiry.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns an empty cart when none is stored and refreshes the expiry otherwise.
func (s *RedisStore) Load(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := s.client.GetEx(ctx, s.client.CartKey(cartID), s.ttl)
	if redisclient.IsNil(err) {
		return New(cartID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	c.ID = cartID
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(c.ID), payload, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, s.client.CartKey(cartID))
}
