package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/logger"
)

const keyNamespace = "sf"

// Key families under the namespace.
const (
	familyRateLimit = "rate_limit"
	familySession   = "session"
	familyCart      = "cart"
)

// Nil is returned by reads of missing keys.
var Nil = redis.Nil

var errNotInitialized = errors.New("redis client not initialized")

// Client is the narrow redis surface used by sessions, carts and rate limits.
type Client struct {
	cmd   redis.Cmdable
	close func() error
}

// Window is the outcome of one fixed-window hit.
type Window struct {
	Allowed bool
	Count   int64
	ResetIn time.Duration
}

// IsNil reports whether err signals a missing key.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// New connects with pooling and timeouts from cfg and pings once.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"redis_db": opts.DB, "redis_pool": opts.PoolSize}), "redis connection established")
	}
	return NewFromUniversal(raw), nil
}

// NewFromUniversal wraps an already constructed go-redis client.
func NewFromUniversal(raw *redis.Client) *Client {
	return &Client{cmd: raw, close: raw.Close}
}

// optionsFromConfig prefers the URL; pool and timeout settings fill in
// whatever the URL left at zero.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) ready() error {
	if c == nil || c.cmd == nil {
		return errNotInitialized
	}
	return nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	return c.cmd.Get(ctx, key).Result()
}

// GetEx reads key and, when ttl > 0, slides its expiry in the same command.
func (c *Client) GetEx(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return c.cmd.Get(ctx, key).Result()
	}
	return c.cmd.GetEx(ctx, key, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Del(ctx, keys...).Err()
}

// FixedWindowAllow counts one hit against scope. The counter and its TTL are
// read in one transaction; a counter found without expiry gets the window
// applied, so a lost EXPIRE cannot pin a client forever.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (Window, error) {
	if err := c.ready(); err != nil {
		return Window{}, err
	}
	key := c.RateLimitKey(scope)

	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	if _, err := c.cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return Window{}, err
	}

	resetIn := pttl.Val()
	if resetIn <= 0 && window > 0 {
		if err := c.cmd.PExpire(ctx, key, window).Err(); err != nil {
			return Window{}, err
		}
		resetIn = window
	}
	count := incr.Val()
	return Window{Allowed: count <= limit, Count: count, ResetIn: resetIn}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.close == nil {
		return nil
	}
	return c.close()
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(familyRateLimit, scope)
}

// AccessSessionKey addresses the refresh session of an access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(familySession, "access", accessID)
}

func (c *Client) CartKey(cartID string) string {
	return buildKey(familyCart, cartID)
}

func buildKey(parts ...string) string {
	segments := []string{keyNamespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}
