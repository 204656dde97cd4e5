package ratelimit

import (
	"strings"
	"time"

	"github.com/energee/energee-site/internal/config"
	"github.com/redis/go-redis/v9"
)

// Options configures a Manager.
type Options struct {
	Client *redis.Client    // Shared Redis client. Nil keeps counters in process.
	Prefix string           // Redis key prefix.
	Window time.Duration    // Fixed window length, one minute when zero.
	Now    func() time.Time // Clock override for tests.
}

// OptionsFromConfig builds limiter options from the Redis section of the config
// file. client is ignored when Redis is not configured.
func OptionsFromConfig(redisCfg config.RedisConfig, client *redis.Client) Options {
	opts := Options{
		Prefix: strings.TrimSpace(redisCfg.Prefix),
		Window: time.Minute,
	}
	if redisCfg.Enabled() {
		opts.Client = client
	}
	if opts.Prefix == "" {
		opts.Prefix = config.DefaultRedisPrefix
	}
	return opts
}
