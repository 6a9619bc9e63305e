package api

import (
	"net/http"
	"net/url"
	"time"
)

type healthResponse struct {
	Status        string         `json:"status"`
	Timestamp     string         `json:"timestamp"`
	DefaultAnchor string         `json:"defaultAnchor"`
	Services      healthServices `json:"services"`
}

type healthServices struct {
	QuoteProvider string `json:"quoteProvider"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	provider := "not configured"
	if u, err := url.Parse(s.providerURL); err == nil && u.Host != "" {
		provider = u.Host
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DefaultAnchor: string(s.valuer.DefaultAnchor()),
		Services:      healthServices{QuoteProvider: provider},
	})
}
