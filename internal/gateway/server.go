package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the chi router with every route wired.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(g.countRequests)

	// Public.
	r.Get("/health", g.handleHealth())
	if g.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.opts.Metrics)
	}

	// MCP and admin share the bearer token when one is configured.
	r.Group(func(r chi.Router) {
		if g.config.BearerToken != "" {
			r.Use(authMiddleware(g.config.BearerToken, g.opts.Audit, g.counters))
		}
		r.Handle(g.config.Endpoint, g.opts.MCP)
		r.Get("/status", g.handleStatus())
		if g.opts.Journal != nil {
			r.Get("/api/journal", g.handleJournal())
		}
	})

	return r
}
