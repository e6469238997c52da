package routes

import (
	"net/http"

	"github.com/fittrack/fittrack/internal/app"
	"github.com/fittrack/fittrack/internal/handler"
	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	account := handler.NewAccountHandler(app.UserService)
	goal := handler.NewGoalHandler(app.GoalService)
	progress := handler.NewProgressHandler(app.ProgressService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// Operational endpoints
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth (rate limited per IP)
	rateLimiter := middleware.RateLimitAuth(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)
	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// Account
	mux.HandleFunc("GET /api/account", middleware.RequireAuth(account.Account))
	mux.HandleFunc("POST /api/account/avatar", middleware.RequireAuth(account.UploadAvatar))
	mux.HandleFunc("DELETE /api/account/avatar", middleware.RequireAuth(account.DeleteAvatar))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Progress
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progress.List))
	mux.HandleFunc("POST /api/progress", middleware.RequireAuth(progress.Create))
	mux.HandleFunc("PUT /api/progress/{id}", middleware.RequireAuth(progress.Update))
	mux.HandleFunc("DELETE /api/progress/{id}", middleware.RequireAuth(progress.Delete))

	// Global middleware - executed in order (top to bottom). Metrics sits
	// innermost: AuthMiddleware forwards a shallow request copy, and the mux
	// records the matched pattern on whichever request it is handed, so the
	// pattern reader must share that request.
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.Metrics,
	)
}
