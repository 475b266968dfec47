package artifact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edentir/edenpdf/render"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached document lives when Redis.TTL is zero.
const DefaultTTL = 10 * time.Minute

// Redis caches documents under Key(kind, record) with a TTL.
type Redis struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRedis connects to addr and checks it with a ping.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("artifact: redis ping failed: %w", err)
	}
	log.Println("[INFO] redis artifact cache initialized")
	return &Redis{Client: c, Prefix: "edenpdf:", TTL: ttl}, nil
}

func (r *Redis) ttl() time.Duration {
	if r.TTL <= 0 {
		return DefaultTTL
	}
	return r.TTL
}

// Put implements Sink.
func (r *Redis) Put(ctx context.Context, a *render.Artifact) (string, error) {
	key, err := Key(a.Kind, a.Record)
	if err != nil {
		return "", err
	}
	if err := r.Client.Set(ctx, r.Prefix+key, a.Data, r.ttl()).Err(); err != nil {
		return "", fmt.Errorf("artifact: caching %s: %w", a.Filename, err)
	}
	return key, nil
}

// Get implements Cache. An absent or expired key gives ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: cache lookup: %w", err)
	}
	return data, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.Client.Close()
}
