package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dhanuzh/dreview/internal/config"
	"github.com/Dhanuzh/dreview/internal/log"
	"github.com/Dhanuzh/dreview/internal/review"
)

const (
	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"

	maxBodyBytes = 1 << 20
	version      = "1.0"
)

// ReviewRequest is the body of POST /review.
type ReviewRequest struct {
	Code   string `json:"code"`
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// ReviewResponse mirrors the form state after a submission settles.
type ReviewResponse struct {
	Outcome  string `json:"outcome"`
	Review   string `json:"review"`
	KeyError string `json:"key_error,omitempty"`
	Notice   string `json:"notice,omitempty"`
	Loading  bool   `json:"loading"`
}

// Server is the HTTP API server
type Server struct {
	config  *config.Config
	factory review.ProviderFactory
	log     logrus.FieldLogger
	origins []glob.Glob
	mux     *http.ServeMux
	server  *http.Server
}

// New creates a new API server. A nil factory uses the OpenRouter client
// from cfg.
func New(cfg *config.Config, factory review.ProviderFactory, logger logrus.FieldLogger) *Server {
	if factory == nil {
		factory = cfg.ProviderFactory()
	}
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		config:  cfg,
		factory: factory,
		log:     logger,
		mux:     http.NewServeMux(),
	}
	for _, pattern := range cfg.Server.CORS {
		g, err := glob.Compile(pattern)
		if err != nil {
			logger.WithError(err).Warnf("ignoring CORS origin %q", pattern)
			continue
		}
		s.origins = append(s.origins, g)
	}
	s.registerRoutes()
	return s
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.requestIDMiddleware(s.logMiddleware(s.corsMiddleware(s.mux)))
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Infof("dreview API server listening on http://%s", s.config.Addr())
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /models", s.handleListModels)
	s.mux.HandleFunc("POST /review", s.handleReview)
}

// allowOrigin reports whether origin matches one of the configured patterns.
func (s *Server) allowOrigin(origin string) bool {
	for _, g := range s.origins {
		if g.Match(origin) {
			return true
		}
	}
	return false
}

// corsMiddleware allows every origin when no list is configured. List
// entries are glob patterns such as "https://*.example.com".
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	open := len(s.config.Server.CORS) == 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case open:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.allowOrigin(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderRequestID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the ID assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"elapsed":    time.Since(start).Round(time.Millisecond),
		}).Info("request")
	})
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models := review.Models()
	result := make([]map[string]interface{}, 0, len(models))
	for _, m := range models {
		result = append(result, map[string]interface{}{
			"name":    m.Name,
			"id":      m.ID,
			"default": m.ID == review.DefaultModel(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

// handleReview runs one submission on a fresh form. An empty api_key falls
// back to the server's configured key.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := req.APIKey
	if key == "" {
		key = s.config.APIKey
	}
	logger := s.log.WithField("request_id", RequestID(r.Context()))
	form := review.NewForm(s.factory,
		review.WithCode(req.Code),
		review.WithAPIKey(key),
		review.WithLogger(logger),
	)
	if req.Model != "" {
		if err := form.SelectModel(req.Model); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	outcome := form.Submit(r.Context())
	st := form.Snapshot()
	writeJSON(w, statusFor(outcome), ReviewResponse{
		Outcome:  outcome.String(),
		Review:   st.Review,
		KeyError: st.KeyError,
		Notice:   outcome.Notice(),
		Loading:  st.Loading,
	})
}

// statusFor maps a settled outcome to the response code. Outcomes that never
// reached the endpoint are client errors.
func statusFor(o review.Outcome) int {
	switch {
	case o == review.OutcomeReviewed:
		return http.StatusOK
	case o == review.OutcomeBusy:
		return http.StatusConflict
	case o.Blocked():
		return http.StatusBadRequest
	case o == review.OutcomeKeyRejected:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
