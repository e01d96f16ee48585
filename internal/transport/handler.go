// Package transport exposes the HTTP API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 20 << 20
	defaultEventsLimit    = 100
)

// Config tunes the HTTP handler.
type Config struct {
	MaxUploadBytes int64
	// IssuerHeader carries the issuer identity set by the authenticating proxy.
	IssuerHeader string
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string
}

// Handler serves issuance, verification and health endpoints.
type Handler struct {
	issuer   Issuer
	verifier Verifier
	records  RecordReader
	events   EventReader
	health   HealthChecker
	cfg      Config
	logger   *zap.Logger
}

// NewHandler builds a Handler. events may be nil when no audit journal is configured.
func NewHandler(
	issuer Issuer,
	verifier Verifier,
	records RecordReader,
	events EventReader,
	health HealthChecker,
	cfg Config,
	logger *zap.Logger,
) (*Handler, error) {
	if issuer == nil || verifier == nil || records == nil {
		return nil, errors.New("handler issuer, verifier and records are required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.IssuerHeader == "" {
		cfg.IssuerHeader = "X-Issuer-Identity"
	}
	return &Handler{
		issuer:   issuer,
		verifier: verifier,
		records:  records,
		events:   events,
		health:   health,
		cfg:      cfg,
		logger:   logger.Named("http"),
	}, nil
}

// Routes returns the router with all endpoints mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/certificates", h.handleIssue)
		r.Get("/certificates/{id}", h.handleGetCertificate)
		r.Get("/certificates/{id}/events", h.handleEvents)
		r.Get("/verify/{key}", h.handleVerify)
	})

	c := cors.Default()
	if len(h.cfg.AllowedOrigins) > 0 {
		c = cors.New(cors.Options{
			AllowedOrigins: h.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", h.cfg.IssuerHeader},
		})
	}
	return c.Handler(r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorResponse struct {
	Error       string `json:"error"`
	RecordID    string `json:"record_id,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
