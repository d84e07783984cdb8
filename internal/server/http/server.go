// Package httpserver exposes the services as a JSON API under /api.
package httpserver

import (
	"net/http"
	"time"

	"github.com/and161185/lovary/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DefaultMaxFileBytes limits a single uploaded file.
const DefaultMaxFileBytes = 10 << 20

// Services bundles what the handlers call into.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Pairing       service.PairingService
	Diary         service.DiaryService
	Anniversaries service.AnniversaryService
	Photos        service.PhotoService
}

// Options tunes the transport.
type Options struct {
	CORSOrigins  []string
	UploadDir    string // served under /uploads when set
	MaxFileBytes int64
	// TrustProxyHeaders takes the client address from X-Forwarded-For/X-Real-IP.
	// Only safe behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// Server routes HTTP requests to the services.
type Server struct {
	svc    Services
	opts   Options
	log    *zap.Logger
	router chi.Router
}

// New builds the router.
func New(svc Services, opts Options, log *zap.Logger) *Server {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	s := &Server{svc: svc, opts: opts, log: log, router: chi.NewRouter()}
	s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer wraps the handler with the listener timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute, // multipart uploads
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	if s.opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(s.log))
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Couple Diary API"})
	})
	if s.opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.opts.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", s.handleMe)
				r.Put("/me", s.handleUpdateMe)
				r.Get("/search", s.handleSearch)
				r.Post("/partner-request", s.handleSendRequest)
				r.Get("/partner-requests", s.handleListRequests)
				r.Put("/partner-request/{id}/accept", s.handleAcceptRequest)
				r.Put("/partner-request/{id}/reject", s.handleRejectRequest)
				r.Post("/push-subscription", s.handlePushSubscription)
				r.Delete("/partner/disconnect", s.handleDisconnect)
				r.Delete("/account", s.handleDeleteAccount)
			})

			r.Route("/diary", func(r chi.Router) {
				r.Post("/", s.handleCreateEntry)
				r.Get("/my", s.handleMine)
				r.Get("/today", s.handleToday)
				r.Get("/partner", s.handlePartnerToday)
				r.Get("/month/{year}/{month}", s.handleMonth)
				r.Get("/date/{year}/{month}/{day}", s.handleDay)
				r.Put("/{id}", s.handleUpdateEntry)
			})

			r.Route("/anniversary", func(r chi.Router) {
				r.Post("/", s.handleSaveAnniversary)
				r.Get("/", s.handleListAnniversaries)
				r.Get("/month/{year}/{month}", s.handleMonthAnniversaries)
				r.Delete("/{id}", s.handleDeleteAnniversary)
			})

			r.Route("/photos", func(r chi.Router) {
				r.Post("/upload/{year}/{month}", s.handleUploadPhoto)
				r.Get("/{year}/{month}", s.handleGetPhoto)
			})
		})
	})
}
