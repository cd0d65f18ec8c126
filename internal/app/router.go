package app

import (
	"database/sql"
	"net/http"
	"time"

	"aprovado/internal/apostila"
	"aprovado/internal/app/observability"
	"aprovado/internal/audit"
	"aprovado/internal/auth"
	"aprovado/internal/cache"
	"aprovado/internal/performance"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg Config, dbConn *sql.DB, cacheStore cache.Cache) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	collector := observability.NewCollector(dbConn)
	r.Use(collector.Middleware)

	authSvc := auth.NewService(dbConn, cfg.SessionTTL)
	authHandler := auth.NewHandler(authSvc)

	apostilaSvc := apostila.NewService(dbConn)
	apostilaHandler := apostila.NewHandler(apostilaSvc)

	perfSvc := performance.NewService(
		performance.NewPostgresStore(dbConn),
		cacheStore,
		audit.NewDBLogger(dbConn),
	)
	perfHandler := performance.NewHandler(perfSvc)

	loginLimiter := NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	r.Route("/api/v1", func(api chi.Router) {
		api.With(RateLimitMiddleware(loginLimiter)).Post("/auth/login", authHandler.Login)

		api.Group(func(secure chi.Router) {
			secure.Use(authHandler.RequireAuth)
			secure.Get("/auth/me", authHandler.Me)
			secure.Post("/auth/logout", authHandler.Logout)

			secure.Get("/apostilas", apostilaHandler.List)
			secure.Post("/apostilas", apostilaHandler.Create)

			secure.Get("/performance", perfHandler.Get)
			secure.Get("/performance/export.xlsx", perfHandler.Export)
			secure.Post("/performance/simulados", perfHandler.CompleteSimulado)
			secure.Post("/performance/questoes", perfHandler.CompleteQuestao)
		})
	})

	return r
}
