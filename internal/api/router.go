package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/api/middleware"
	"github.com/alexander-datskov/chat67/internal/handlers"
	"github.com/alexander-datskov/chat67/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, state *store.State, sessions *middleware.Sessions, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(logger)
	r.Use(limiter.Middleware)

	// CORS - same-origin browser clients plus scripted polling
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no identity required)
	r.Get("/health", h.Health)
	r.Get("/rooms", h.ListRooms)
	r.Get("/messages", h.GetMessages)
	r.Get("/online-users", h.OnlineUsers)
	r.Get("/typing-status", h.TypingStatus)
	r.Post("/check-effects", h.CheckEffects) // the ban/effect poll itself
	r.Post("/set-username", h.SetUsername)
	r.Post("/admin/login", h.AdminLogin)

	// Routes requiring an established username; hard-banned callers are
	// rejected here before any state is touched.
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireUser)
		r.Use(middleware.BanGuard(state.Moderation, logger))

		r.Post("/send", h.Send)
		r.Post("/send-gif", h.SendGif)
		r.Post("/delete-message", h.DeleteMessage)
		r.Post("/typing", h.Typing)
		r.Post("/update-active", h.UpdateActive)
		r.Post("/switch-theme", h.SwitchTheme)
		r.Post("/switch-layout", h.SwitchLayout)
		r.Post("/logout", h.Logout)
	})

	// Moderation surface
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAdmin)

		r.Post("/admin/create-room", h.CreateRoom)
		r.Post("/admin/screen-effect", h.ScreenEffect)
		r.Post("/admin/clear-effect", h.ClearEffect)
		r.Post("/admin/ban", h.Ban)
		r.Post("/admin/mass-unban", h.MassUnban)
		r.Get("/admin/active-users", h.ActiveUsers)
		r.Get("/admin/debug-info", h.DebugInfo)
		r.Post("/admin/manage-messages", h.ManageMessages)
		r.Post("/admin/message-user", h.MessageUser)
		r.Post("/admin/global-message", h.GlobalMessage)
		r.Post("/admin/force-reconnect", h.ForceReconnect)
		r.Get("/admin/export-data", h.ExportData)
	})

	return r
}
