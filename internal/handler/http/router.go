package http

import (
	"log/slog"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the transport settings read from the environment.
type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	overtimeHandler OvertimeHandler,
	mplHandler MplHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send an Authorization header
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/break/start", attendanceHandler.StartBreak)
				r.Post("/break/end", attendanceHandler.EndBreak)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/today", attendanceHandler.Today)
				r.Get("/my", attendanceHandler.ListMine)
				r.Get("/{id}", attendanceHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Put("/{id}", attendanceHandler.AdminEdit)
					r.Patch("/{id}/visibility", attendanceHandler.SetVisibility)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Post("/", overtimeHandler.Submit)
					r.Get("/my", overtimeHandler.ListMine)
					r.Get("/{id}", overtimeHandler.Get)
					r.Put("/{id}", overtimeHandler.Edit)
					r.Post("/{id}/cancel", overtimeHandler.Cancel)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/", overtimeHandler.List)
						r.Post("/{id}/approve", overtimeHandler.Approve)
						r.Post("/{id}/reject", overtimeHandler.Reject)
					})
				})

				r.Route("/config", func(r chi.Router) {
					r.Get("/", overtimeHandler.GetConfig)
					r.With(middleware.AdminOnly).Put("/", overtimeHandler.UpdateConfig)
				})
			})

			r.Route("/mpl", func(r chi.Router) {
				r.Get("/quota", mplHandler.Quota)
				r.Get("/history", mplHandler.History)
				r.Get("/balance", mplHandler.Balance)
				r.With(middleware.AdminOnly).Post("/convert", mplHandler.Convert)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read", notificationHandler.MarkAsRead)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Delete("/{id}", notificationHandler.Delete)
				r.Get("/preferences", notificationHandler.GetPreferences)
				r.Put("/preferences", notificationHandler.UpdatePreference)
				r.Post("/sse-token", notificationHandler.GetSSEToken)
			})
		})
	})
	return r
}
