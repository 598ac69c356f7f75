// Package router assembles the chi HTTP surface: the Kakao skill
// webhook, health and metrics endpoints, and a rate-limited debug
// group.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	httpmiddleware "github.com/wonpyo/jeju-chatpi/internal/http/middleware"
	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
	"github.com/wonpyo/jeju-chatpi/internal/observability/metrics"
	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// debugSearchTimeout bounds the live search smoke test.
const debugSearchTimeout = 5 * time.Second

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	SkillHandler   *dialogue.Handler
	AppConfig      *config.Config
	Knowledge      *knowledge.Store
	Searcher       *search.Client
	MetricsHandler http.Handler
	HTTPMetrics    *metrics.HTTPMetrics
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(httpmiddleware.Metrics(cfg.HTTPMetrics))
	}

	r.Get("/healthz", healthz(cfg.Knowledge))

	if cfg.SkillHandler != nil {
		r.Post("/skill", cfg.SkillHandler.Skill)
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Debug endpoints are unauthenticated but rate limited; they expose
	// only redacted config and search smoke results.
	r.Route("/debug", func(dbg chi.Router) {
		dbg.Use(httpmiddleware.RateLimit(1, 5))
		if cfg.AppConfig != nil {
			dbg.Get("/config", debugConfig(cfg.AppConfig))
		}
		if cfg.Searcher != nil {
			dbg.Get("/search", debugSearch(cfg.Searcher))
		}
		dbg.Get("/llm-latency", debugLLMLatency)
	})

	return r
}

func healthz(store *knowledge.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"status": "ok",
		}
		if store != nil {
			response["knowledge"] = store.Counts()
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func debugConfig(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg.Redacted())
	}
}

func debugLLMLatency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.SnapshotLLMLatency(nil))
}

func debugSearch(client *search.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !client.Enabled() {
			writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		query := r.URL.Query().Get("q")
		if query == "" {
			query = "제주 날씨"
		}

		ctx, cancel := context.WithTimeout(r.Context(), debugSearchTimeout)
		defer cancel()
		results := client.Search(ctx, query, 3)

		writeJSON(w, http.StatusOK, map[string]any{
			"enabled": true,
			"query":   query,
			"results": results,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
