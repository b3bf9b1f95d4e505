package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouteOptions struct {
	CORSOrigins    []string
	RateLimitRPM   int
	RequestTimeout time.Duration
}

func (h *Handler) Routes(m *Middleware, opts RouteOptions) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(m.Timeout(opts.RequestTimeout))
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(m.CORS(opts.CORSOrigins))
	r.Use(m.RateLimit(opts.RateLimitRPM))

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Route("/v1", func(r chi.Router) {
		// Remote keyword protocol
		r.Post("/jsonrpc", h.HandleJSONRPC)

		r.Get("/keywords", h.ListKeywords)
		r.Get("/keywords/{name}", h.GetKeyword)
		r.Delete("/sessions/{id}", h.CloseSession)
	})

	return r
}
