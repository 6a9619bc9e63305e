package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/shopspring/decimal"
)

// QuoteProvider returns daily closes for a symbol, newest first.
type QuoteProvider interface {
	FetchSeries(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error)
}

type Service struct {
	quotes QuoteProvider
	anchor models.Anchor
	now    func() time.Time
}

func NewService(quotes QuoteProvider, defaultAnchor models.Anchor) *Service {
	if defaultAnchor == "" {
		defaultAnchor = models.AnchorStart
	}
	return &Service{quotes: quotes, anchor: defaultAnchor, now: time.Now}
}

// DefaultAnchor is the anchor used when a request does not set one.
func (s *Service) DefaultAnchor() models.Anchor { return s.anchor }

// Value simulates buying every holding at the purchase-anchor close and
// valuing it at the close on the other end of the range. Holdings are
// processed one at a time in request order; the first provider or price
// error aborts the whole valuation.
func (s *Service) Value(ctx context.Context, req Request) (*models.ValuationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	anchor := req.Anchor
	if anchor == "" {
		anchor = s.anchor
	}

	result := &models.ValuationResult{
		Anchor:    anchor,
		StartDate: req.StartDate.Format(models.DateLayout),
		EndDate:   req.EndDate.Format(models.DateLayout),
		Balance:   req.Balance,
	}

	total := decimal.Zero
	for _, h := range req.Holdings {
		series, err := s.quotes.FetchSeries(ctx, h.Symbol, req.StartDate, req.EndDate)
		if err != nil {
			fmt.Printf("[VALUE] Aborted at %s: %v\n", h.Symbol, err)
			return nil, fmt.Errorf("value %s: %w", h.Symbol, err)
		}

		hv, err := valueHolding(h, req.Balance, series, anchor)
		if err != nil {
			fmt.Printf("[VALUE] Aborted at %s: %v\n", h.Symbol, err)
			return nil, err
		}

		total = total.Add(hv.Value)
		hv.Value = hv.Value.Round(2)
		result.Holdings = append(result.Holdings, hv)
		result.PerSymbol.Set(h.Symbol, series)
	}

	result.AggregateValue = total.Round(2)
	result.ComputedAt = s.now().UTC()

	fmt.Printf("[VALUE] %d holding(s) %s..%s (anchor %s): %s -> %s (%s%%)\n",
		len(req.Holdings), result.StartDate, result.EndDate, anchor,
		req.Balance.StringFixed(2), result.Total(), result.GainPercent().StringFixed(1))

	return result, nil
}

// valueHolding returns the unrounded value of one holding.
func valueHolding(h models.Holding, balance decimal.Decimal, series models.PriceSeries, anchor models.Anchor) (models.HoldingValue, error) {
	earliest, ok := series.Earliest()
	if !ok {
		return models.HoldingValue{}, &PriceDataError{Symbol: h.Symbol, Reason: "no closes in the requested range"}
	}
	latest, _ := series.Latest()

	purchase, valuation := earliest, latest
	if anchor == models.AnchorEnd {
		purchase, valuation = latest, earliest
	}
	if !purchase.Close.IsPositive() {
		return models.HoldingValue{}, &PriceDataError{
			Symbol: h.Symbol,
			Reason: fmt.Sprintf("non-positive purchase close %s on %s", purchase.Close, purchase.Date.Format(models.DateLayout)),
		}
	}

	invested := h.AllocationPercent.Mul(balance).Div(hundred)
	// quantity is reported only; value divides last to stay exact
	quantity := invested.Div(purchase.Close)

	return models.HoldingValue{
		Symbol:            h.Symbol,
		AllocationPercent: h.AllocationPercent,
		PurchaseDate:      purchase.Date.Format(models.DateLayout),
		PurchasePrice:     purchase.Close,
		Quantity:          quantity,
		ValuationDate:     valuation.Date.Format(models.DateLayout),
		ValuationPrice:    valuation.Close,
		Value:             invested.Mul(valuation.Close).Div(purchase.Close),
	}, nil
}
