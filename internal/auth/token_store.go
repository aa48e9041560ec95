package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore は有効なアクセストークンを保持するストア。
// ユーザーごとに最新の 1 本だけを有効とする。
type TokenStore interface {
	// Save はユーザーの有効トークンを TTL 付きで保存する。既存のトークンは上書きされる。
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	// Validate はトークンがユーザーの現在有効なトークンと一致するかを返す。
	Validate(ctx context.Context, userID, token string) (bool, error)
	// Delete はユーザーの有効トークンを破棄する。
	Delete(ctx context.Context, userID string) error
}

// RedisTokenStore は Redis による TokenStore 実装。
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore は RedisTokenStore を生成する。
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(userID string) string {
	return fmt.Sprintf("access_token:%s", userID)
}

func (s *RedisTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Validate(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.client.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load token: %w", err)
	}
	return stored == token, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, tokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

var _ TokenStore = (*RedisTokenStore)(nil)
