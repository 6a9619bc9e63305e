package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Holding is one portfolio line. Allocations across holdings are not
// required to sum to 100.
type Holding struct {
	Symbol            string          `json:"symbol"`
	AllocationPercent decimal.Decimal `json:"allocation"`
}

// Anchor selects which end of the date range is the purchase date.
type Anchor string

const (
	AnchorStart Anchor = "start" // buy at the start close, value at the end close
	AnchorEnd   Anchor = "end"   // buy at the end close, value at the start close
)

func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case AnchorStart, AnchorEnd:
		return a, nil
	default:
		return "", fmt.Errorf("invalid anchor %q, expected start|end", s)
	}
}
