package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// HoldingValue is the per-holding breakdown of a valuation.
type HoldingValue struct {
	Symbol            string          `json:"symbol"`
	AllocationPercent decimal.Decimal `json:"allocation"`
	PurchaseDate      string          `json:"purchaseDate"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice"`
	Quantity          decimal.Decimal `json:"quantity"`
	ValuationDate     string          `json:"valuationDate"`
	ValuationPrice    decimal.Decimal `json:"valuationPrice"`
	Value             decimal.Decimal `json:"value"`
}

type SymbolSeries struct {
	Symbol string
	Series PriceSeries
}

// SymbolSeriesMap is a symbol -> series mapping that keeps insertion order,
// including when marshaled to a JSON object.
type SymbolSeriesMap []SymbolSeries

// Set replaces the series of an existing symbol or appends a new entry.
func (m *SymbolSeriesMap) Set(symbol string, series PriceSeries) {
	for i := range *m {
		if (*m)[i].Symbol == symbol {
			(*m)[i].Series = series
			return
		}
	}
	*m = append(*m, SymbolSeries{Symbol: symbol, Series: series})
}

func (m SymbolSeriesMap) Get(symbol string) (PriceSeries, bool) {
	for _, e := range m {
		if e.Symbol == symbol {
			return e.Series, true
		}
	}
	return nil, false
}

func (m SymbolSeriesMap) Symbols() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Symbol
	}
	return out
}

func (m SymbolSeriesMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(e.Symbol)
		if err != nil {
			return nil, err
		}
		series := e.Series
		if series == nil {
			series = PriceSeries{}
		}
		val, err := json.Marshal(series)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// ValuationResult is the outcome of valuing one portfolio request.
type ValuationResult struct {
	Anchor         Anchor          `json:"anchorPurchaseAt"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Balance        decimal.Decimal `json:"balance"`
	AggregateValue decimal.Decimal `json:"-"`
	Holdings       []HoldingValue  `json:"holdings"`
	PerSymbol      SymbolSeriesMap `json:"perSymbol"`
	ComputedAt     time.Time       `json:"computedAt"`
}

// Total is the aggregate value with exactly two fractional digits.
func (r *ValuationResult) Total() string {
	return r.AggregateValue.StringFixed(2)
}

// Gain is the aggregate value minus the starting balance.
func (r *ValuationResult) Gain() decimal.Decimal {
	return r.AggregateValue.Sub(r.Balance)
}

// GainPercent is the gain relative to the starting balance, rounded to 1 digit.
func (r *ValuationResult) GainPercent() decimal.Decimal {
	if r.Balance.IsZero() {
		return decimal.Zero
	}
	return r.Gain().Div(r.Balance).Mul(decimal.NewFromInt(100)).Round(1)
}

func (r ValuationResult) MarshalJSON() ([]byte, error) {
	type alias ValuationResult
	return json.Marshal(struct {
		*alias
		AggregateValue string `json:"aggregateValue"`
	}{
		alias:          (*alias)(&r),
		AggregateValue: r.Total(),
	})
}

// LegacyPayload is the compact response shape: every symbol mapped to its
// series, plus a "value" key carrying the rounded total.
func (r *ValuationResult) LegacyPayload() ([]byte, error) {
	body, err := r.PerSymbol.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.Write(body[:len(body)-1])
	if len(r.PerSymbol) > 0 {
		b.WriteByte(',')
	}
	b.WriteString(`"value":`)
	b.WriteString(r.Total())
	b.WriteByte('}')
	return b.Bytes(), nil
}
