package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/karthikvn/clinicq/internal/http/handlers"
	httpmiddleware "github.com/karthikvn/clinicq/internal/http/middleware"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger        *logging.Logger
	Booking       *handlers.BookingHandler
	Availability  *handlers.AvailabilityHandler
	Crowd         *handlers.CrowdHandler
	Notifications *handlers.NotificationsHandler
	Hospitals     *handlers.HospitalsHandler
	AdminDashboard *handlers.AdminDashboardHandler

	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Booking endpoints get their own rate limit; zero disables it.
	BookingRatePerSec float64
	BookingBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.Crowd != nil {
			public.Get("/api/crowd", cfg.Crowd.Status)
		}
		if cfg.Hospitals != nil {
			public.Mount("/api/hospitals", cfg.Hospitals.Routes())
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Patient and doctor API
	r.Route("/api", func(api chi.Router) {
		if cfg.BookingRatePerSec > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.BookingRatePerSec, cfg.BookingBurst))
		}
		if cfg.Booking != nil {
			api.Mount("/", cfg.Booking.Routes())
		}
		if cfg.Availability != nil {
			api.Put("/doctors/{doctorID}/availability", cfg.Availability.SetSelf)
		}
		if cfg.Notifications != nil {
			api.Mount("/notifications", cfg.Notifications.Routes())
		}
	})

	// Admin surface behind the staff JWT
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.AdminDashboard != nil {
			admin.Get("/dashboard", cfg.AdminDashboard.Overview)
		}
		if cfg.Availability != nil {
			admin.Put("/doctors/{doctorID}/availability", cfg.Availability.SetByAdmin)
		}
	})

	return r
}
