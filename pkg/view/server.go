// Package view serves a decoded K2SH file over HTTP: a rendered HTML page
// for browsers and JSON endpoints for the file's summary and validation
// report. Adapted I/O boundary: the server receives container bytes already
// read by the caller.
package view

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/document"
	"github.com/k2shbwi/k2sh/pkg/render"
	"github.com/k2shbwi/k2sh/pkg/validate"
)

// ServerConfig holds configuration for the viewer server.
type ServerConfig struct {
	Bind string
	Port int
}

// Server exposes one K2SH file.
type Server struct {
	data []byte
	log  *zap.Logger
}

// NewServer creates a viewer over container bytes.
func NewServer(data []byte, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{data: data, log: log}
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/health", metrics.InstrumentHandler("/health", s.handleHealth))
	r.Get("/api/v1/info", metrics.InstrumentHandler("/api/v1/info", s.handleInfo))
	r.Get("/api/v1/validate", metrics.InstrumentHandler("/api/v1/validate", s.handleValidate))
	r.Get("/", metrics.InstrumentHandler("/", s.handlePage))

	return r
}

// StartServer serves until the listener fails.
func StartServer(data []byte, cfg ServerConfig, log *zap.Logger) error {
	s := NewServer(data, log)
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	s.log.Info("viewer listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendSuccess(w, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	summary, err := document.Info(s.data)
	if err != nil {
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	sendSuccess(w, summary)
}

func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request) {
	sendSuccess(w, validate.Validate(s.data))
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	doc, err := document.Decode(s.data)
	if err != nil {
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	page, err := render.NewHTML().Render(doc)
	if err != nil {
		s.log.Error("rendering page", zap.Error(err))
		sendError(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: message})
}
