package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Close is one stubbed daily close, e.g. {"2023-05-22", "172.50"}.
type Close struct {
	Date  string
	Close string
}

type rejection struct {
	code    int
	message string
}

// StubProvider serves Twelve Data style /time_series responses from memory.
// Unknown symbols are answered with code 400.
type StubProvider struct {
	srv *httptest.Server

	mu       sync.Mutex
	series   map[string][]Close
	rejected map[string]rejection
	queried  []string
	params   []map[string]string
}

// NewStubProvider starts a stub server that is closed when the test ends.
func NewStubProvider(t *testing.T) *StubProvider {
	t.Helper()

	s := &StubProvider{
		series:   make(map[string][]Close),
		rejected: make(map[string]rejection),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /time_series", s.handleTimeSeries)
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *StubProvider) URL() string { return s.srv.URL }

// AddSeries registers closes for symbol, newest first.
func (s *StubProvider) AddSeries(symbol string, closes ...Close) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[symbol] = closes
}

// Reject makes every query for symbol fail with the given provider code.
func (s *StubProvider) Reject(symbol string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[symbol] = rejection{code: code, message: message}
}

// Queried lists the symbols requested so far, in request order.
func (s *StubProvider) Queried() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queried...)
}

// LastParams returns the query parameters of the most recent request.
func (s *StubProvider) LastParams() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	return s.params[len(s.params)-1]
}

func (s *StubProvider) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")

	s.mu.Lock()
	s.queried = append(s.queried, symbol)
	params := make(map[string]string, len(q))
	for k := range q {
		params[k] = q.Get(k)
	}
	s.params = append(s.params, params)
	rej, isRejected := s.rejected[symbol]
	closes, known := s.series[symbol]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case isRejected:
		json.NewEncoder(w).Encode(map[string]any{
			"code":    rej.code,
			"message": rej.message,
			"status":  "error",
		})
	case !known:
		json.NewEncoder(w).Encode(map[string]any{
			"code":    400,
			"message": fmt.Sprintf("**symbol** %s not found", symbol),
			"status":  "error",
		})
	default:
		values := make([]map[string]string, len(closes))
		for i, c := range closes {
			values[i] = map[string]string{
				"datetime": c.Date,
				"open":     c.Close,
				"high":     c.Close,
				"low":      c.Close,
				"close":    c.Close,
				"volume":   "0",
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"meta": map[string]string{
				"symbol":   symbol,
				"interval": q.Get("interval"),
			},
			"values": values,
			"status": "ok",
		})
	}
}
