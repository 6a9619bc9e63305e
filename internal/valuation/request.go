package valuation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Request is a validated portfolio valuation request.
type Request struct {
	StartDate time.Time
	EndDate   time.Time
	Balance   decimal.Decimal
	Holdings  []models.Holding
	Anchor    models.Anchor // empty means the service default
}

// Payload is the wire form of a request. Balance and allocations may be
// JSON numbers or numeric strings.
type Payload struct {
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	Balance          json.RawMessage `json:"balance"`
	Stocks           []StockPayload  `json:"stocks"`
	AnchorPurchaseAt string          `json:"anchorPurchaseAt,omitempty"`
}

type StockPayload struct {
	Symbol     string          `json:"symbol"`
	Allocation json.RawMessage `json:"allocation"`
}

// Request converts the payload, returning a *ValidationError for the first
// field that is missing or malformed.
func (p Payload) Request() (Request, error) {
	var req Request
	var err error

	if req.StartDate, err = parseDate("startDate", p.StartDate); err != nil {
		return Request{}, err
	}
	if req.EndDate, err = parseDate("endDate", p.EndDate); err != nil {
		return Request{}, err
	}
	if req.Balance, err = parseNumber("balance", p.Balance); err != nil {
		return Request{}, err
	}
	if p.AnchorPurchaseAt != "" {
		if req.Anchor, err = models.ParseAnchor(p.AnchorPurchaseAt); err != nil {
			return Request{}, &ValidationError{Field: "anchorPurchaseAt", Reason: "expected start or end"}
		}
	}

	if p.Stocks == nil {
		return Request{}, &ValidationError{Field: "stocks", Reason: "required"}
	}
	for i, s := range p.Stocks {
		field := fmt.Sprintf("stocks[%d]", i)
		alloc, err := parseNumber(field+".allocation", s.Allocation)
		if err != nil {
			return Request{}, err
		}
		req.Holdings = append(req.Holdings, models.Holding{
			Symbol:            strings.ToUpper(strings.TrimSpace(s.Symbol)),
			AllocationPercent: alloc,
		})
	}

	return req, req.Validate()
}

// Validate checks the semantic rules. Allocation sums are deliberately left
// to the caller.
func (r Request) Validate() error {
	if r.StartDate.IsZero() {
		return &ValidationError{Field: "startDate", Reason: "required"}
	}
	if r.EndDate.IsZero() {
		return &ValidationError{Field: "endDate", Reason: "required"}
	}
	if r.EndDate.Before(r.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "must not be before startDate"}
	}
	if !r.Balance.IsPositive() {
		return &ValidationError{Field: "balance", Reason: "must be greater than 0"}
	}
	if r.Anchor != "" && r.Anchor != models.AnchorStart && r.Anchor != models.AnchorEnd {
		return &ValidationError{Field: "anchorPurchaseAt", Reason: "expected start or end"}
	}
	if len(r.Holdings) == 0 {
		return &ValidationError{Field: "stocks", Reason: "at least one stock is required"}
	}
	for i, h := range r.Holdings {
		if h.Symbol == "" {
			return &ValidationError{Field: fmt.Sprintf("stocks[%d].symbol", i), Reason: "required"}
		}
		if h.AllocationPercent.IsNegative() || h.AllocationPercent.GreaterThan(hundred) {
			return &ValidationError{Field: fmt.Sprintf("stocks[%d].allocation", i), Reason: "must be between 0 and 100"}
		}
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "required"}
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "invalid date format, expected YYYY-MM-DD"}
	}
	return d, nil
}

func parseNumber(field string, raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, &ValidationError{Field: field, Reason: "required"}
	}

	s := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero, &ValidationError{Field: field, Reason: "must be a number"}
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return decimal.Zero, &ValidationError{Field: field, Reason: "required"}
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be a number"}
	}
	return d, nil
}
