package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterOptions carries the cross-cutting pieces wired around the handlers.
type RouterOptions struct {
	// Auth wraps every route except /healthz.
	Auth func(http.Handler) http.Handler
	// Logger, when set, enables per-request structured logging.
	Logger *slog.Logger
	// CORSOrigins lists allowed origins (scheme + host, no trailing slash).
	// Empty disables CORS handling.
	CORSOrigins []string
}

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: middleware and routing live here,
// everything else is delegated to the application services via Server.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Logger != nil {
		r.Use(NewRequestLogger(opts.Logger))
	}
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Debug-Subject"},
		})
		r.Use(c.Handler)
	}
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.handleCreateTrip)
		r.Get("/", s.handleListMyTrips)
		r.Post("/join", s.handleJoinTrip)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.handleGetTrip)
			r.Get("/members", s.handleListMembers)

			r.Put("/preferences", s.handleSetPreferences)
			r.Get("/preferences", s.handleGetPreferences)

			r.Post("/destinations", s.handleAddDestination)
			r.Get("/destinations", s.handleListDestinations)
			r.Put("/destinations/{destinationID}/vote", s.handleCastVote)
			r.Get("/votes", s.handleTally)

			r.Get("/estimate", s.handleEstimate)
		})
	})

	return r
}
