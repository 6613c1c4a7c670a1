package config

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client backing the checkout rate
// limiter and the dashboard response cache.  REDIS_URL takes a full
// redis:// or rediss:// connection string; otherwise REDIS_ADDR,
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS are read individually.  Redis is
// an optional dependency here: if the server cannot be reached at startup
// the function logs and returns nil, and both middlewares turn into
// pass-throughs.  Payments must keep flowing without it.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if raw := getenv("REDIS_URL", ""); raw != "" {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			log.Printf("redis: invalid REDIS_URL, running without redis: %v", err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       atoi(getenv("REDIS_DB", "0")),
		}
		if envBool("REDIS_TLS", false) {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: unreachable, cache and rate limit disabled: %v", err)
		return nil
	}
	return client
}
