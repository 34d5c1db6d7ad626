package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillup/interviewd/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CookieVerifier    middleware.CookieVerifier
	AuthSessionFinder middleware.AuthSessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder

	// 面接
	InterviewService InterviewServiceInterface
	SessionReader    SessionReader

	// 認証
	AuthService AuthServiceInterface
	UserFinder  UserFinder
	CookieCodec CookieCodec
	AuthConfig  AuthHandlerConfig

	// 運用
	HealthChecker  Pinger
	MetricsHandler http.Handler
}

// Pinger は死活監視でのDB疎通確認に必要なインターフェース。
// *sql.DBを想定する。
type Pinger interface {
	Ping() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General)
//
// GET /interviewのみSessionMiddlewareで保護する。/healthと/metricsは
// レート制限の外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	interviewHandler := NewInterviewHandler(deps.InterviewService, deps.SessionReader)
	authHandler := NewAuthHandler(deps.AuthService, deps.UserFinder, deps.CookieCodec, deps.AuthConfig)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", newHealthCheck(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 面接セッション
		// POST /hr-questions - LLM呼び出しを伴うため生成専用レート制限を追加
		r.With(deps.RateLimiter.GenerationMiddleware()).Post("/hr-questions", interviewHandler.GenerateQuestion)
		r.Post("/evaluate", interviewHandler.Evaluate)
		r.Get("/session/{id}", interviewHandler.GetSession)

		// 認証
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// 認証保護ルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.CookieVerifier, deps.AuthSessionFinder))
			r.Get("/interview", authHandler.Interview)
		})
	})

	return r
}

// newHealthCheck は死活監視エンドポイントのハンドラーを返す。
// DB疎通が確認できない場合は503を返す。
// GET /health
func newHealthCheck(checker Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
