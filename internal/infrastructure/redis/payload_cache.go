// Package redis keeps finished FotMob documents in Redis so repeated ingests
// and backfills of the same match skip the provider.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type PayloadCache struct {
	client *goredis.Client
	prefix string
}

// NewPayloadCache connects to rawURL (redis:// or rediss://) and pings it.
func NewPayloadCache(ctx context.Context, rawURL, prefix string) (*PayloadCache, error) {
	opts, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return &PayloadCache{client: client, prefix: normalizePrefix(prefix)}, nil
}

func parseURL(rawURL string) (*goredis.Options, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, crerr.New("redis url is empty")
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, crerr.Wrap(err, "parse redis url")
	}
	return opts, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return ""
	}
	return prefix + ":"
}

func (c *PayloadCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if crerr.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

func (c *PayloadCache) Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *PayloadCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *PayloadCache) Close() error {
	return c.client.Close()
}
