// Package server exposes the brand guard engine over HTTP: the check
// endpoint, policy CRUD backed by the store, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/brandguard/internal/engine"
	"github.com/dshills/brandguard/internal/policy"
	"github.com/dshills/brandguard/internal/schema"
	"github.com/dshills/brandguard/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port      int
	Engine    *engine.Engine
	Store     *store.Store
	Logger    *zap.Logger
	PolicyDir string // optional: watched for policy file changes
}

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	store      *store.Store
	logger     *zap.Logger
	metrics    *Metrics
	watcher    *policyWatcher
}

// New creates a server. Engine and Store are required.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("server: engine is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:  cfg.Engine,
		store:   cfg.Store,
		logger:  logger,
		metrics: NewMetrics(),
	}

	if cfg.PolicyDir != "" {
		w, err := newPolicyWatcher(cfg.PolicyDir, cfg.Store, logger)
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/guard/check", s.handleCheck)
	mux.HandleFunc("GET /api/policies/{brand}", s.handleGetPolicy)
	mux.HandleFunc("PUT /api/policies/{brand}", s.handlePutPolicy)
	mux.HandleFunc("GET /api/policies", s.handleListPolicies)
	mux.HandleFunc("GET /api/analyses", s.handleRecentAnalyses)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.watcher != nil {
		go s.watcher.run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// checkRequest is the body of POST /api/guard/check. When Brand is set, the
// stored policy for that brand replaces any inline policy.
type checkRequest struct {
	Input checkInput `json:"input"`
	Brand string     `json:"brand,omitempty"`
}

// checkInput mirrors schema.AnalysisInput with a pointer-valued policy so a
// request that carries no policy at all can be rejected rather than silently
// analyzed against the zero policy.
type checkInput struct {
	Text    string              `json:"text"`
	Role    schema.Role         `json:"role"`
	Locale  string              `json:"locale,omitempty"`
	Policy  *schema.BrandPolicy `json:"policy"`
	Context *schema.Context     `json:"context,omitempty"`
}

// checkResponse wraps the report, mirroring the original edge function shape.
type checkResponse struct {
	Report schema.Report `json:"report"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Input.Text == "" && req.Input.Role == "" {
		s.writeError(w, http.StatusBadRequest, "missing required fields: input.text and input.policy")
		return
	}
	if req.Input.Policy == nil && req.Brand == "" {
		s.writeError(w, http.StatusBadRequest, "missing required fields: input.policy or brand")
		return
	}
	if req.Input.Role == "" {
		req.Input.Role = schema.RoleUser
	}

	input := schema.AnalysisInput{
		Text:    req.Input.Text,
		Role:    req.Input.Role,
		Locale:  req.Input.Locale,
		Context: req.Input.Context,
	}
	if req.Input.Policy != nil {
		input.Policy = *req.Input.Policy
	}
	if req.Brand != "" {
		p, err := s.store.GetPolicy(r.Context(), req.Brand)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown brand %q", req.Brand))
				return
			}
			s.logger.Error("policy lookup failed", zap.String("brand", req.Brand), zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "policy lookup failed")
			return
		}
		input.Policy = p
	}
	policy.Normalize(&input.Policy)

	// Empty text is trivially compliant.
	if req.Input.Text == "" {
		s.writeJSON(w, http.StatusOK, checkResponse{Report: schema.Report{Score: 100, Findings: []schema.Finding{}}})
		return
	}

	if err := policy.ValidateInput(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("analyzing",
		zap.String("role", string(input.Role)),
		zap.Int("text_length", len(input.Text)),
		zap.String("excerpt", policy.Redact(excerpt(input.Text, 100))))

	report := s.engine.Analyze(r.Context(), input)

	outcome := "clean"
	if len(report.Findings) > 0 {
		outcome = "flagged"
	}
	s.metrics.observe(string(input.Role), outcome, report.Score, time.Since(start).Seconds())

	rec := schema.AnalysisRecord{
		ID:         uuid.NewString(),
		Brand:      req.Brand,
		Role:       input.Role,
		Score:      report.Score,
		Findings:   len(report.Findings),
		TextLength: len(input.Text),
	}
	if err := s.store.RecordAnalysis(r.Context(), rec); err != nil {
		// Metrics persistence is best effort; the report still goes out.
		s.logger.Warn("failed to record analysis", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, checkResponse{Report: report})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	brand := r.PathValue("brand")
	p, err := s.store.GetPolicy(r.Context(), brand)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown brand %q", brand))
			return
		}
		s.logger.Error("policy lookup failed", zap.String("brand", brand), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "policy lookup failed")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	brand := r.PathValue("brand")
	var p schema.BrandPolicy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.store.SavePolicy(r.Context(), brand, p); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("policy updated", zap.String("brand", brand))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	brands, err := s.store.ListBrands(r.Context())
	if err != nil {
		s.logger.Error("list brands failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "list brands failed")
		return
	}
	if brands == nil {
		brands = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"brands": brands})
}

func (s *Server) handleRecentAnalyses(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.RecentAnalyses(r.Context(), 50)
	if err != nil {
		s.logger.Error("recent analyses failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "recent analyses failed")
		return
	}
	if recs == nil {
		recs = []schema.AnalysisRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]schema.AnalysisRecord{"analyses": recs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// excerpt returns at most n bytes of text for logging.
func excerpt(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
