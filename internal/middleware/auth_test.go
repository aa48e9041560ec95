package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- モック ---

type mockTokenParser struct {
	parseFn func(tokenStr string) (string, error)
}

func (m *mockTokenParser) Parse(tokenStr string) (string, error) {
	return m.parseFn(tokenStr)
}

type mockTokenChecker struct {
	validateFn func(ctx context.Context, userID, token string) (bool, error)
}

func (m *mockTokenChecker) Validate(ctx context.Context, userID, token string) (bool, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, userID, token)
	}
	return true, nil
}

func okParser(userID string) *mockTokenParser {
	return &mockTokenParser{
		parseFn: func(tokenStr string) (string, error) { return userID, nil },
	}
}

// --- テスト ---

func TestAuthMiddleware_ValidToken_InjectsUserID(t *testing.T) {
	mw := NewAuthMiddleware(okParser("user-123"), &mockTokenChecker{})

	var gotUserID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUserID != "user-123" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-123")
	}
}

func TestAuthMiddleware_MissingHeader_Unauthorized(t *testing.T) {
	mw := NewAuthMiddleware(okParser("user-123"), &mockTokenChecker{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_MalformedHeader_Unauthorized(t *testing.T) {
	mw := NewAuthMiddleware(okParser("user-123"), &mockTokenChecker{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidSignature_Unauthorized(t *testing.T) {
	parser := &mockTokenParser{
		parseFn: func(tokenStr string) (string, error) {
			return "", errors.New("signature is invalid")
		},
	}
	mw := NewAuthMiddleware(parser, &mockTokenChecker{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_RevokedToken_Unauthorized(t *testing.T) {
	// 署名は有効でもストア上の有効トークンと一致しない場合は拒否される
	checker := &mockTokenChecker{
		validateFn: func(ctx context.Context, userID, token string) (bool, error) {
			return false, nil
		},
	}
	mw := NewAuthMiddleware(okParser("user-123"), checker)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for missing user ID")
	}
}
