package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

// ServerConfig holds the configuration for the catalog server.
type ServerConfig struct {
	Host string
	Port int
	// CorpusRoot is the directory the lint endpoint scans.
	CorpusRoot string
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.CorpusRoot == "" {
		return errors.New("corpus root cannot be empty")
	}
	return nil
}

// Server serves the catalog over HTTP.
type Server struct {
	router  *mux.Router
	catalog *Catalog
	linter  *lint.Linter
	config  *ServerConfig
	server  *http.Server
}

// NewServer creates a catalog server.
func NewServer(config *ServerConfig, catalog *Catalog, linter *lint.Linter) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:  mux.NewRouter(),
		catalog: catalog,
		linter:  linter,
		config:  config,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/{name}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/lint", s.handleLint).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

// Handler exposes the router, which tests mount on a test server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]string{"status": "ok"})
}

// handleListSkills handles GET /api/skills
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to list skills", err)
		return
	}
	s.writeJSONResponse(w, map[string]any{"skills": entries, "total": len(entries)})
}

// handleGetSkill handles GET /api/skills/{name}
func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	detail, err := s.catalog.Get(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill not found: %s", name), nil)
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to load skill", err)
		return
	}
	s.writeJSONResponse(w, detail)
}

// handleLint handles GET /api/lint
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	report, err := s.linter.Run(s.config.CorpusRoot)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to lint corpus", err)
		return
	}
	s.writeJSONResponse(w, report)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.statusCode,
			"duration": time.Since(start),
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse writes a JSON response.
func (s *Server) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes an error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		logger.G(context.TODO()).WithError(err).Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":   message,
		"status":  statusCode,
		"success": false,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode error response")
	}
}

// Start starts the catalog server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	presenter.Info(fmt.Sprintf("Serving skill catalog on http://%s", address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("catalog server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop stops the catalog server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
