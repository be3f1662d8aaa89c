package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leozw/domain-inspector/internal/core"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) *Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	return &Client{client}
}

func (c *Client) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, data, expiration).Err()
}

func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// ReportCache keeps recent reports under domain:report:<domain>.
type ReportCache struct {
	client *Client
	ttl    time.Duration
}

func NewReportCache(client *Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(domain string) string {
	return fmt.Sprintf("domain:report:%s", domain)
}

// Get returns false without an error when no report is cached for domain.
func (c *ReportCache) Get(ctx context.Context, domain string) (*core.DomainReport, bool, error) {
	var report core.DomainReport
	err := c.client.GetJSON(ctx, reportKey(domain), &report)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached report for %s: %w", domain, err)
	}
	return &report, true, nil
}

func (c *ReportCache) Set(ctx context.Context, report *core.DomainReport) error {
	if err := c.client.SetJSON(ctx, reportKey(report.Domain), report, c.ttl); err != nil {
		return fmt.Errorf("cache report for %s: %w", report.Domain, err)
	}
	return nil
}
