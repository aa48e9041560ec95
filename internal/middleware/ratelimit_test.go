package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- RateLimitMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		CheckinRate:     1, // 未使用
		CheckinBurst:    10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    2, // バースト2
		CheckinRate:     1,
		CheckinBurst:    10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト分（2回）は通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-rate-limit"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	// 3回目は429
	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-rate-limit"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header is missing")
	}
}

func TestRateLimitMiddleware_NoUserID_Unauthorized(t *testing.T) {
	rl := NewRateLimiter(NewRateLimiterConfig(120, 30))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- CheckinMiddleware のテスト ---

func TestCheckinMiddleware_IndependentFromGeneralLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		CheckinRate:     1,
		CheckinBurst:    2,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	checkinHandler := rl.CheckinMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// API全般のバーストを使い切る
	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	generalHandler.ServeHTTP(httptest.NewRecorder(), req)

	// 打刻登録のリミッターは独立しているため、まだ通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/checkins/daily", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		checkinHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("checkin request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		CheckinRate:     1,
		CheckinBurst:    1,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-a がバーストを使い切る
	reqA := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	reqA = reqA.WithContext(ContextWithUserID(reqA.Context(), "user-a"))
	handler.ServeHTTP(httptest.NewRecorder(), reqA)

	// user-b は影響を受けない
	reqB := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	reqB = reqB.WithContext(ContextWithUserID(reqB.Context(), "user-b"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, reqB)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}
