package ratelimit

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// Manager enforces per-client limits on the public endpoints. Counters live
// in Redis when a client is configured so all instances share them; on Redis
// errors the manager uses the in-process limiter for redisBreakerDuration.
type Manager struct {
	window   time.Duration
	nowFn    func() time.Time
	memory   Limiter
	redis    Limiter // Nil when Redis is not configured.
	mu       sync.Mutex
	tripped  time.Time // Breaker expiry.
	fallback int       // Checks served from memory while tripped.
}

// NewManager constructs a Manager.
func NewManager(opts Options) *Manager {
	m := &Manager{
		window: opts.Window,
		nowFn:  opts.Now,
		memory: NewMemoryLimiter(),
	}
	if m.window <= 0 {
		m.window = time.Minute
	}
	if m.nowFn == nil {
		m.nowFn = time.Now
	}
	if opts.Client != nil {
		m.redis = NewRedisLimiter(opts.Client, opts.Prefix)
	}
	return m
}

// Allow counts one request from clientIP against scope. A non-positive limit
// or an unknown client address always passes.
func (m *Manager) Allow(ctx context.Context, scope Scope, clientIP string, limit int) (Result, error) {
	key := KeyForClient(scope, clientIP)
	if m == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := m.nowFn()
	if m.redis != nil && !m.breakerActive(now) {
		result, errAllow := m.redis.Allow(ctx, key, limit, m.window, now)
		if errAllow == nil {
			return result, nil
		}
		m.trip(errAllow, now)
	}
	return m.memory.Allow(ctx, key, limit, m.window, now)
}

// Backend reports which limiter currently serves checks.
func (m *Manager) Backend() string {
	if m == nil || m.redis == nil || m.breakerActive(m.nowFn()) {
		return "memory"
	}
	return "redis"
}

func (m *Manager) breakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tripped.IsZero() {
		return false
	}
	if now.Before(m.tripped) {
		m.fallback++
		return true
	}
	if m.fallback > 0 {
		log.WithField("fallback_checks", m.fallback).Info("rate limit: retrying redis")
	}
	m.tripped = time.Time{}
	m.fallback = 0
	return false
}

func (m *Manager) trip(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tripped.IsZero() && now.Before(m.tripped) {
		return
	}
	m.tripped = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("rate limit: redis unavailable, falling back to memory")
}
