package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dailycheck/internal/metrics"
	"github.com/hitoshi/dailycheck/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenParser       middleware.TokenParser
	TokenChecker      middleware.TokenChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	AuthService    AuthServiceInterface
	PlanService    PlanServiceInterface
	CheckinService CheckinServiceInterface

	// メトリクス
	Collector      metrics.MetricsCollector
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → Auth → RateLimit(General)
//
// 登録・ログインと/health、/metricsは認証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService)
	planHandler := NewPlanHandler(deps.PlanService)
	checkinHandler := NewCheckinHandler(deps.CheckinService, deps.Collector)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// ログアウトと自分の情報は認証が必要
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenParser, deps.TokenChecker))
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenParser, deps.TokenChecker))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 計画管理
		r.Route("/api/plans", func(r chi.Router) {
			r.Get("/", planHandler.List)
			r.Post("/", planHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", planHandler.Get)
				r.Patch("/", planHandler.Update)
				r.Delete("/", planHandler.Delete)
			})
		})

		// 打刻
		r.Route("/api/checkins", func(r chi.Router) {
			// 打刻登録には専用レート制限を追加
			r.With(deps.RateLimiter.CheckinMiddleware()).Post("/daily", checkinHandler.RecordLive)
			r.With(deps.RateLimiter.CheckinMiddleware()).Post("/retro", checkinHandler.RecordRetro)

			r.Get("/calendar", checkinHandler.GetMonthStatus)
			r.Get("/detail", checkinHandler.GetDayDetail)
		})
	})

	return r
}
