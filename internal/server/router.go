package server

import (
	"net/http"

	"github.com/agentstation/tablesync/internal/server/handlers"
	"github.com/agentstation/tablesync/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.ingester, s.store, s.cache, s.logger)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// extraction
	mux.HandleFunc("POST "+prefix+"/extract", h.HandleExtract)
	mux.HandleFunc("POST "+prefix+"/export", h.HandleExport)

	// history
	mux.HandleFunc("GET "+prefix+"/history", h.HandleListHistory)
	mux.HandleFunc("POST "+prefix+"/history", h.HandleCreateHistory)
	mux.HandleFunc("DELETE "+prefix+"/history/{id}", h.HandleDeleteHistory)

	// records
	mux.HandleFunc("GET "+prefix+"/records", h.HandleListRecords)
	mux.HandleFunc("DELETE "+prefix+"/records", h.HandleClearRecords)
	mux.HandleFunc("DELETE "+prefix+"/records/{id}", h.HandleDeleteRecord)

	mux.HandleFunc("POST "+prefix+"/ingest", h.HandleIngest)
}

// applyMiddleware wraps handler with the middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logger(s.logger),
	}
	if s.config.CORSEnabled {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = s.config.CORSOrigins
		chain = append(chain, middleware.CORS(cors))
	}
	chain = append(chain, middleware.MaxBody(s.config.MaxUploadSize))

	return middleware.Chain(chain...)(handler)
}
