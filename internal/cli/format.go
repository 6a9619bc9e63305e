package cli

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/shopspring/decimal"
)

// formatMoney displays d in the currency's own format, e.g. $1,100.00.
// Unknown currency codes fall back to "1100.00 XYZ".
func formatMoney(d decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return d.StringFixed(2) + " " + code
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

func signedMoney(d decimal.Decimal, code string) string {
	if d.IsPositive() {
		return "+" + formatMoney(d, code)
	}
	return formatMoney(d, code)
}

// valuationMarkdown renders a valuation summary and its holdings table.
func valuationMarkdown(r *models.ValuationResult, currency string) string {
	var b strings.Builder

	b.WriteString("# Portfolio valuation\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Period | %s to %s |\n", r.StartDate, r.EndDate)
	fmt.Fprintf(&b, "| Purchase anchor | %s |\n", r.Anchor)
	fmt.Fprintf(&b, "| Initial balance | %s |\n", formatMoney(r.Balance, currency))
	fmt.Fprintf(&b, "| Portfolio value | %s |\n", formatMoney(r.AggregateValue, currency))
	fmt.Fprintf(&b, "| Gain | %s (%s%%) |\n", signedMoney(r.Gain(), currency), signedPercent(r.GainPercent()))

	b.WriteString("\n## Holdings\n\n")
	b.WriteString("| Symbol | Allocation | Bought on | Buy price | Quantity | Valued on | Price | Value |\n")
	b.WriteString("|---|--:|---|--:|--:|---|--:|--:|\n")
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "| %s | %s%% | %s | %s | %s | %s | %s | %s |\n",
			h.Symbol, h.AllocationPercent.String(),
			h.PurchaseDate, formatMoney(h.PurchasePrice, currency),
			h.Quantity.Round(4).String(),
			h.ValuationDate, formatMoney(h.ValuationPrice, currency),
			formatMoney(h.Value, currency))
	}
	return b.String()
}

// seriesMarkdown renders one symbol's closes, newest first.
func seriesMarkdown(symbol string, s models.PriceSeries, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", symbol)
	if len(s) == 0 {
		b.WriteString("No closes in the requested range.\n")
		return b.String()
	}
	b.WriteString("| Date | Close |\n|---|--:|\n")
	for _, p := range s {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date.Format(models.DateLayout), formatMoney(p.Close, currency))
	}
	return b.String()
}

func signedPercent(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(1)
	}
	return d.StringFixed(1)
}
