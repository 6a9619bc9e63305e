package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/kjannette/portfolio-backend/internal/valuation"
)

const maxBodyBytes = 1 << 20

// Valuer computes portfolio valuations.
type Valuer interface {
	Value(ctx context.Context, req valuation.Request) (*models.ValuationResult, error)
	DefaultAnchor() models.Anchor
}

// Alerter receives operator alerts, throttled per key.
type Alerter interface {
	Alert(key, msg string) bool
}

type Options struct {
	Port        int
	CORSOrigin  string
	ProviderURL string
}

type Server struct {
	valuer      Valuer
	alerts      Alerter
	providerURL string
	httpServer  *http.Server
}

func NewServer(valuer Valuer, alerts Alerter, opts Options) *Server {
	s := &Server{
		valuer:      valuer,
		alerts:      alerts,
		providerURL: opts.ProviderURL,
	}

	mux := http.NewServeMux()

	// Portfolio routes
	mux.HandleFunc("POST /get_stocks", s.handleGetStocks)

	// Liveness
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", opts.Port),
		Handler:     requestIDMiddleware(corsMiddleware(mux, opts.CORSOrigin)),
		ReadTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Valuation: POST http://localhost%s/get_stocks\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello")
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
