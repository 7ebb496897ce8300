package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

const DailyExpire = 24 * time.Hour

// Connect initializes the shared redis client.
func Connect() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Conn.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// Get returns the cached value for key, or "" when absent or redis is down.
// Cache misses are never fatal to callers.
func Get(ctx context.Context, key string) string {
	if Conn == nil {
		return ""
	}
	val, err := Conn.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[rdx] get %s: %v", key, err)
		}
		return ""
	}
	return val
}

// Set stores value under key with a TTL, logging failures instead of
// returning them.
func Set(ctx context.Context, key, value string, ttl time.Duration) {
	if Conn == nil {
		return
	}
	if err := Conn.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[rdx] set %s: %v", key, err)
	}
}

// Del drops a cached key, used to invalidate rankings after writes.
func Del(ctx context.Context, key string) {
	if Conn == nil {
		return
	}
	if err := Conn.Del(ctx, key).Err(); err != nil {
		log.Printf("[rdx] del %s: %v", key, err)
	}
}
