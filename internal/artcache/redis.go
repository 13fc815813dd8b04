package artcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// RedisConfig addresses the optional persistent art tier.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DialRedis opens a client and pings it once.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redislib.Client, error) {
	client := redislib.NewClient(&redislib.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisStore keeps scaled artwork in Redis so restarts do not refetch it
// from the daemon.
type RedisStore struct {
	client *redislib.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redislib.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(k Key) string {
	return fmt.Sprintf("mpdgoweb:art:%q:%q", k.Artist, k.Album)
}

func (s *RedisStore) Get(ctx context.Context, k Key) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, redisKey(k)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Put(ctx context.Context, k Key, art []byte) error {
	return s.client.Set(ctx, redisKey(k), art, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
