// Package server exposes the analysis engine over HTTP: repository
// ingestion, structure analysis, search, and chat endpoints.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/repolens/repolens/internal/chat"
	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/store"
)

// Server wires the engine, store, ingestor, and chat client behind the
// HTTP API. Recently used runs stay decoded in an LRU cache so chat
// and search don't re-parse the stored payload on every request.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	ingestor *ingest.Ingestor
	chat     *chat.Client // nil when no API key is configured
	cache    *lru.Cache[string, *store.Run]
}

// New builds a Server. chatClient may be nil; chat requests then fail
// with a configuration error.
func New(cfg *config.Config, st *store.Store, ing *ingest.Ingestor, chatClient *chat.Client) (*Server, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 8
	}
	cache, err := lru.New[string, *store.Run](size)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		ingestor: ing,
		chat:     chatClient,
		cache:    cache,
	}, nil
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/structure", s.handleStructure)
		r.Get("/structure/{runID}", s.handleStructureByID)
		r.Post("/search", s.handleSearch)
		r.Post("/chat", s.handleChat)
		r.Get("/runs", s.handleListRuns)
		r.Delete("/runs/{runID}", s.handleDeleteRun)
	})
	return r
}

// requestLogger logs one line per request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start))
	})
}

// cors allows any origin; the API serves a browser frontend hosted
// elsewhere.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loadRun fetches a run from the cache or the store. A nil result with
// nil error means the id is unknown.
func (s *Server) loadRun(id string) (*store.Run, error) {
	if run, ok := s.cache.Get(id); ok {
		return run, nil
	}
	run, err := s.store.GetRun(id)
	if err != nil || run == nil {
		return nil, err
	}
	s.cache.Add(id, run)
	return run, nil
}
