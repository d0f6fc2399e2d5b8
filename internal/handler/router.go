package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/todoapi/internal/metrics"
	"github.com/hitoshi/todoapi/internal/middleware"
)

// ルーターが返す固定メッセージ
const (
	MsgRouteNotFound    = "Route not found"
	MsgMethodNotAllowed = "Method not allowed"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	AppVersion        string
	CORSAllowedOrigin string
	Verifier          middleware.TokenVerifier
	Revocations       middleware.RevocationChecker

	// メトリクス（nilの場合は収集・公開しない）
	Metrics         metrics.Recorder
	MetricsGatherer prometheus.Gatherer

	// サービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface
	TodoService TodoServiceInterface

	// ヘルスチェックの稼働時間の起点
	StartedAt time.Time
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestMetadata → Logging → Metrics → Recovery → SecurityHeaders → CORS → (Auth)
//
// Authは認証必須ルートのグループにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestMetadataMiddleware(deps.AppVersion))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, MsgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	var rejections middleware.RejectionRecorder
	if deps.Metrics != nil {
		rejections = deps.Metrics
	}
	authMW := middleware.NewAuthMiddleware(deps.Verifier, deps.Revocations, rejections)

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	todoHandler := NewTodoHandler(deps.TodoService)
	healthHandler := NewHealthHandler(deps.StartedAt)
	errorHandler := NewErrorHandler()

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)

	r.Route("/errors", func(r chi.Router) {
		for _, code := range []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusInternalServerError,
		} {
			r.Get("/"+strconv.Itoa(code), errorHandler.Simulate(code))
		}
		r.Get("/delay", errorHandler.Delay)
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Post("/auth/logout", authHandler.Logout)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", userHandler.GetProfile)
			r.Put("/", userHandler.UpdateProfile)
			r.Delete("/", userHandler.DeleteAccount)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/", todoHandler.ListTodos)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.GetTodo)
				r.Put("/", todoHandler.UpdateTodo)
				r.Delete("/", todoHandler.DeleteTodo)
				r.Patch("/complete", todoHandler.CompleteTodo)
			})
		})
	})

	return r
}
