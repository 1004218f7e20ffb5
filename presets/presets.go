// Package presets provides convenience constructors that wire a Redis
// client, a metrics registry, and the lock coordinator together, mirroring
// the teacher's presets.NewRedisEventual shape.
package presets

import (
	redis "github.com/redis/go-redis/v9"

	"github.com/flowforge/runlock/lockmetrics"
	"github.com/flowforge/runlock/redlock"
	"github.com/flowforge/runlock/runlock"

	"github.com/prometheus/client_golang/prometheus"
)

// RedisOptions configures the connection to Redis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis builds a *runlock.Coordinator backed by a fresh *redis.Client
// constructed from opts.
func NewRedis(opts RedisOptions, runlockOpts ...runlock.Option) (*runlock.Coordinator, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	client := redlock.NewClient(rdb)
	return runlock.New(client, runlockOpts...)
}

// NewRedisWithMetrics is NewRedis plus registration of a fresh
// lockmetrics.Metrics on reg.
func NewRedisWithMetrics(opts RedisOptions, reg prometheus.Registerer, runlockOpts ...runlock.Option) (*runlock.Coordinator, error) {
	m := lockmetrics.New()
	m.Register(reg)
	return NewRedis(opts, append(runlockOpts, runlock.WithMetrics(m))...)
}
