package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/dailycheck/internal/model"
	"github.com/hitoshi/dailycheck/internal/repository"
)

// Service は登録・認証・ログアウトを担う。
type Service struct {
	users  repository.UserRepository
	issuer *TokenIssuer
	tokens TokenStore
	ttl    time.Duration
	logger *slog.Logger
}

// NewService は Service を生成する。
func NewService(users repository.UserRepository, issuer *TokenIssuer, tokens TokenStore, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
		tokens: tokens,
		ttl:    ttl,
		logger: logger,
	}
}

// Register は新規ユーザーを登録する。メールアドレスは小文字に正規化する。
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login は資格情報を検証し、アクセストークンを発行して返す。
// 発行済みトークンは新しいトークンで置き換えられる。
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}
	if err := s.tokens.Save(ctx, user.ID, token, s.ttl); err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout はユーザーの有効トークンを破棄する。
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// Me はユーザー情報を返す。
func (s *Service) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
