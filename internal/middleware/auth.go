// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenParser はアクセストークンの検証に必要なインターフェース。
type TokenParser interface {
	Parse(tokenStr string) (string, error)
}

// TokenChecker はトークンがユーザーの現在有効なものかを確認するインターフェース。
// auth.TokenStore の部分集合として定義する。
type TokenChecker interface {
	Validate(ctx context.Context, userID, token string) (bool, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 署名検証に加えてストア上の有効トークンと一致することを確認する。
// ログアウト後や再ログイン後の古いトークンはここで弾かれる。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
func NewAuthMiddleware(parser TokenParser, checker TokenChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				WriteUnauthorized(w)
				return
			}

			userID, err := parser.Parse(token)
			if err != nil {
				WriteUnauthorized(w)
				return
			}

			valid, err := checker.Validate(r.Context(), userID, token)
			if err != nil {
				slog.Error("failed to validate token",
					slog.String("error", err.Error()),
				)
				WriteUnauthorized(w)
				return
			}
			if !valid {
				WriteUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
