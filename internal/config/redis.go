package config

// This file defines a Redis client constructor for the application.  Redis
// backs the request rate limiter and the response cache for room listings.
// Connection parameters are loaded from environment variables.  If the
// server cannot be reached during startup, the constructor returns nil and
// callers degrade gracefully by disabling caching and rate limiting.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_ADDR     – host:port of the Redis server (default localhost:6379)
//   REDIS_PASSWORD – optional password
//   REDIS_DB       – database number (default 0)
// The returned client is nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       getenvInt("REDIS_DB", 0),
	})
	// Ping the server with a short timeout.  Return nil on failure so the
	// middleware constructors fall back to pass-through handlers.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
