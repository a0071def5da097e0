package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// redisPresenceStore implements PresenceStore using Redis.
type redisPresenceStore struct {
	client *redis.Client
}

// NewRedisPresenceStore creates a new Redis-backed presence store.
func NewRedisPresenceStore(cfg RedisConfig) (PresenceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisPresenceStore{client: client}, nil
}

// Redis key patterns:
// presence:user:{user_id}   STRING<"1">  - online marker, expires with TTL

func userOnlineKey(userID string) string {
	return fmt.Sprintf("presence:user:%s", userID)
}

func (s *redisPresenceStore) SetOnline(ctx context.Context, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, userOnlineKey(userID), "1", ttl).Err()
}

func (s *redisPresenceStore) SetOffline(ctx context.Context, userID string) error {
	return s.client.Del(ctx, userOnlineKey(userID)).Err()
}

func (s *redisPresenceStore) RefreshTTL(ctx context.Context, userID string, ttl time.Duration) error {
	return s.client.Expire(ctx, userOnlineKey(userID), ttl).Err()
}

func (s *redisPresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := s.client.Get(ctx, userOnlineKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisPresenceStore) OnlineAmong(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(userIDs))
	for i, id := range userIDs {
		cmds[i] = pipe.Exists(ctx, userOnlineKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	online := make([]string, 0, len(userIDs))
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			online = append(online, userIDs[i])
		}
	}
	return online, nil
}

func (s *redisPresenceStore) Close() error {
	return s.client.Close()
}

var _ PresenceStore = (*redisPresenceStore)(nil)
