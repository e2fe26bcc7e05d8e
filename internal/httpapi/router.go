// Package httpapi wires the HTTP surface: the ingest and report endpoints,
// catalog serving, and the operational routes.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ivugurura/music-vault/internal/catalog"
)

// RouterConfig carries the route-level settings out of the main config.
type RouterConfig struct {
	AnalyticsToken   string
	IngestRatePerMin int
	MusicDir         string
}

// NewRouter assembles the chi router. CORS is global so OPTIONS preflights
// from the player origin succeed on every route.
func NewRouter(h *Handlers, cat *catalog.Catalog, cfg RouterConfig, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.LimitByIP(cfg.IngestRatePerMin, time.Minute)).
			Post("/listen", h.Ingest)
		r.Get("/listen", h.IngestStatus)

		r.With(requireBearer(cfg.AnalyticsToken, log)).Get("/stats", h.Stats)

		r.Get("/playlist", cat.ServePlaylist)
	})

	if cfg.MusicDir != "" {
		fs := http.StripPrefix("/music/", http.FileServer(http.Dir(cfg.MusicDir)))
		r.Handle("/music/*", fs)
	}

	return r
}
