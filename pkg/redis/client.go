package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// Every key this service writes lives under we:<kind>:...
const (
	namespace = "we"

	kindRateLimit = "rate_limit"
	kindCache     = "cache"
	kindLock      = "lock"
	kindSession   = "session"
)

var errNotInitialized = errors.New("redis client not initialized")

// deleteIfEquals removes KEYS[1] only while it still holds ARGV[1].
const deleteIfEquals = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// commands is the subset of go-redis the client issues. Tests swap in a fake.
type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Client holds the connection used for sessions, auth throttling, brand
// caching and importer locks.
type Client struct {
	cmd  commands
	conn *redis.Client
}

// New dials Redis and fails unless the server answers a PING.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connection established")
	return &Client{cmd: conn, conn: conn}, nil
}

// options prefers WATCHENGINE_REDIS_URL and fills any pool setting the URL
// left unset from the discrete config fields.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
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

func (c *Client) commands() (commands, error) {
	if c == nil || c.cmd == nil {
		return nil, errNotInitialized
	}
	return c.cmd, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	cmd, err := c.commands()
	if err != nil {
		return err
	}
	return cmd.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil when key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	cmd, err := c.commands()
	if err != nil {
		return "", err
	}
	return cmd.Get(ctx, key).Result()
}

// GetDel reads and removes key in one round trip. redis.Nil means absent.
func (c *Client) GetDel(ctx context.Context, key string) (string, error) {
	cmd, err := c.commands()
	if err != nil {
		return "", err
	}
	return cmd.GetDel(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	cmd, err := c.commands()
	if err != nil {
		return false, err
	}
	return cmd.SetNX(ctx, key, value, ttl).Result()
}

// Exists counts how many of keys are present.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	cmd, err := c.commands()
	if err != nil {
		return 0, err
	}
	return cmd.Exists(ctx, keys...).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	cmd, err := c.commands()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return cmd.Del(ctx, keys...).Err()
}

// DeleteIfEquals deletes key atomically when its value is expected and
// reports whether a delete happened. Lock owners use it to release only
// what they still hold.
func (c *Client) DeleteIfEquals(ctx context.Context, key, expected string) (bool, error) {
	cmd, err := c.commands()
	if err != nil {
		return false, err
	}
	n, err := cmd.Eval(ctx, deleteIfEquals, []string{key}, expected).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrWithTTL increments key and attaches ttl when the key has none. Using
// EXPIRE NX on every call heals a counter whose first EXPIRE was lost, which
// would otherwise throttle its scope forever.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	cmd, err := c.commands()
	if err != nil {
		return 0, err
	}
	count, err := cmd.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 {
		if err := cmd.ExpireNX(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}

// FixedWindowAllow counts one hit against scope and reports whether the
// count is still within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := c.IncrWithTTL(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, count, err
	}
	return count <= limit, count, nil
}

// GetJSON decodes the document at key into dest. A miss returns false, nil.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	return c.Set(ctx, key, string(payload), ttl)
}

func (c *Client) Ping(ctx context.Context) error {
	cmd, err := c.commands()
	if err != nil {
		return err
	}
	return cmd.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) RateLimitKey(scope string) string {
	return key(kindRateLimit, scope)
}

func (c *Client) CacheKey(scope string, parts ...string) string {
	return key(append([]string{kindCache, scope}, parts...)...)
}

func (c *Client) LockKey(name string) string {
	return key(kindLock, name)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return key(kindSession, "access", accessID)
}

// key joins the non-blank parts under the service namespace.
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
