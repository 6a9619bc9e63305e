package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kjannette/portfolio-backend/internal/external"
	"github.com/kjannette/portfolio-backend/internal/valuation"
)

// User-facing sentences clients match on.
const (
	msgInvalidSymbol = "Not a valid stock."
	msgRateLimited   = "API limit reached. Please wait a minute."
)

// Response formats of POST /get_stocks.
const (
	formatJSON   = "json"
	formatTotal  = "total"
	formatLegacy = "legacy"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

func parseFormat(r *http.Request) (string, error) {
	switch v := r.URL.Query().Get("format"); v {
	case "", formatJSON:
		return formatJSON, nil
	case formatTotal, formatLegacy:
		return v, nil
	default:
		return "", fmt.Errorf("invalid format %q, expected json|total|legacy", v)
	}
}

func (s *Server) handleGetStocks(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "validation_error", Field: "format"})
		return
	}

	var payload valuation.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		s.writeFailure(w, r, format, &valuation.ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()})
		return
	}

	req, err := payload.Request()
	if err != nil {
		s.writeFailure(w, r, format, err)
		return
	}

	result, err := s.valuer.Value(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, format, err)
		return
	}

	switch format {
	case formatTotal:
		writeText(w, http.StatusOK, result.Total())
	case formatLegacy:
		body, err := result.LegacyPayload()
		if err != nil {
			fmt.Printf("[API] %s legacy encode: %v\n", requestID(r.Context()), err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to encode result", Code: "internal"})
			return
		}
		writeRawJSON(w, http.StatusOK, body)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// classify maps a valuation error to its HTTP status and body.
func classify(err error) (int, errorResponse) {
	var (
		invalid *valuation.ValidationError
		symbol  *external.InvalidSymbolError
		noData  *valuation.PriceDataError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorResponse{Error: invalid.Error(), Code: "validation_error", Field: invalid.Field}
	case errors.As(err, &symbol):
		return http.StatusUnprocessableEntity, errorResponse{Error: msgInvalidSymbol, Code: "invalid_symbol", Symbol: symbol.Symbol}
	case errors.Is(err, external.ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: msgRateLimited, Code: "rate_limited"}
	case errors.As(err, &noData):
		return http.StatusUnprocessableEntity, errorResponse{
			Error:  fmt.Sprintf("No price data for %s in the requested range.", noData.Symbol),
			Code:   "no_price_data",
			Symbol: noData.Symbol,
		}
	default:
		return http.StatusBadGateway, errorResponse{Error: "Quote provider unavailable.", Code: "provider_unavailable"}
	}
}

// writeFailure answers with a JSON error body, or with the bare sentence for
// the text-oriented formats.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, format string, err error) {
	status, body := classify(err)
	rid := requestID(r.Context())
	fmt.Printf("[API] %s get_stocks failed (%s): %v\n", rid, body.Code, err)

	if body.Code == "rate_limited" && s.alerts != nil {
		go s.alerts.Alert(body.Code, fmt.Sprintf("Quote provider rate limit reached (request %s): %v", rid, err))
	}

	if format == formatTotal || format == formatLegacy {
		writeText(w, status, body.Error)
		return
	}
	writeJSON(w, status, body)
}
