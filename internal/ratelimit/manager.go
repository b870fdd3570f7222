package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager provides Redis-backed rate limiting and monthly quota accounting
// for API keys.
type Manager struct {
	redis *redis.Client
	// per-plan limits; plan rows in the DB may override these later
	liteRPM          int
	liteMonthlyQuota int
	proRPM           int
	proMonthlyQuota  int
}

// NewManager connects to Redis and returns a manager with default plan limits
func NewManager(redisURL string) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{
		redis:            client,
		liteRPM:          60,
		liteMonthlyQuota: 50000,
		proRPM:           240,
		proMonthlyQuota:  500000,
	}, nil
}

// NewManagerWithClient wraps an existing client; used by tests with miniredis
func NewManagerWithClient(client *redis.Client) *Manager {
	return &Manager{
		redis:            client,
		liteRPM:          60,
		liteMonthlyQuota: 50000,
		proRPM:           240,
		proMonthlyQuota:  500000,
	}
}

func (m *Manager) Close() error { return m.redis.Close() }

// SetPlanLimits allows tests to override plan limits
func (m *Manager) SetPlanLimits(liteRPM, liteMonthly, proRPM, proMonthly int) {
	m.liteRPM = liteRPM
	m.liteMonthlyQuota = liteMonthly
	m.proRPM = proRPM
	m.proMonthlyQuota = proMonthly
}

// PlanLimits returns rpm and monthly quota for the given plan code
func (m *Manager) PlanLimits(planCode string) (rpm int, monthly int) {
	if strings.ToLower(planCode) == "pro" {
		return m.proRPM, m.proMonthlyQuota
	}
	return m.liteRPM, m.liteMonthlyQuota
}

func monthKey(t time.Time) string { return t.Format("200601") }

// CheckRate increments the per-minute window counter and reports whether the
// request is allowed. When blocked it also returns the seconds until reset.
func (m *Manager) CheckRate(ctx context.Context, apiKeyID, method, path string, rpm int) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("rl:%s:%s:%s:%d", apiKeyID, method, path, window)

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	if int(incr.Val()) > rpm {
		secPassed := int(now.Unix() % 60)
		return false, 60 - secPassed, nil
	}
	return true, 0, nil
}

// GetQuota returns the key's running total for the current month
func (m *Manager) GetQuota(ctx context.Context, apiKeyID string, now time.Time) (int, error) {
	qk := fmt.Sprintf("quota:%s:%s:total", apiKeyID, monthKey(now))
	val, err := m.redis.Get(ctx, qk).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// IncQuota increments the monthly total and per-endpoint counters. Counters
// expire at the start of the next month.
func (m *Manager) IncQuota(ctx context.Context, apiKeyID, method, path string, now time.Time) error {
	totalKey := fmt.Sprintf("quota:%s:%s:total", apiKeyID, monthKey(now))
	epKey := fmt.Sprintf("quota:%s:%s:ep:%s:%s", apiKeyID, monthKey(now), method, path)
	exp := time.Until(time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC))

	pipe := m.redis.TxPipeline()
	pipe.Incr(ctx, totalKey)
	pipe.Expire(ctx, totalKey, exp)
	pipe.Incr(ctx, epKey)
	pipe.Expire(ctx, epKey, exp)
	_, err := pipe.Exec(ctx)
	return err
}

// GetEndpointQuota returns per-endpoint usage for the current month
func (m *Manager) GetEndpointQuota(ctx context.Context, apiKeyID, method, path string, now time.Time) (int, error) {
	epKey := fmt.Sprintf("quota:%s:%s:ep:%s:%s", apiKeyID, monthKey(now), method, path)
	val, err := m.redis.Get(ctx, epKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// ListEndpointUsage scans endpoint counters for a key in the current month
func (m *Manager) ListEndpointUsage(ctx context.Context, apiKeyID string, now time.Time) (map[string]int, error) {
	res := make(map[string]int)
	pattern := fmt.Sprintf("quota:%s:%s:ep:*", apiKeyID, monthKey(now))
	var cursor uint64
	for {
		keys, cur, err := m.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		cursor = cur
		for _, k := range keys {
			v, err := m.redis.Get(ctx, k).Int()
			if err != nil {
				continue
			}
			// k format: quota:<key>:<month>:ep:<METHOD>:<PATH>
			parts := strings.SplitN(k, ":ep:", 2)
			if len(parts) == 2 {
				res[parts[1]] = v
			}
		}
		if cursor == 0 {
			break
		}
	}
	return res, nil
}

// SumQuotas returns the combined monthly total across a set of key IDs
func (m *Manager) SumQuotas(ctx context.Context, apiKeyIDs []string, now time.Time) (int, error) {
	total := 0
	for _, id := range apiKeyIDs {
		q, err := m.GetQuota(ctx, id, now)
		if err != nil {
			return 0, err
		}
		total += q
	}
	return total, nil
}
