package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/chat-backend/internal/config"
	"github.com/fathima-sithara/chat-backend/internal/models"
)

// Client is a read-through cache for profile lookups. Conversation listings
// hit the profile store once per row; the cache keeps that enrichment cheap.
type Client struct {
	cli *redis.Client
	ttl time.Duration
}

func NewRedis(ctx context.Context, cfg *config.Config) (*Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return &Client{cli: r, ttl: cfg.ProfileCacheTTL}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func profileKey(username string) string {
	return "profile:" + username
}

// GetProfile returns the cached profile, or (nil, false) on miss. Cache
// errors are treated as misses; the store is the source of truth.
func (c *Client) GetProfile(ctx context.Context, username string) (*models.Profile, bool) {
	s, err := c.cli.Get(ctx, profileKey(username)).Result()
	if err != nil {
		return nil, false
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *Client) SetProfile(ctx context.Context, p *models.Profile) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.cli.Set(ctx, profileKey(p.Username), b, c.ttl).Err()
}

func (c *Client) InvalidateProfile(ctx context.Context, username string) {
	_ = c.cli.Del(ctx, profileKey(username)).Err()
}
