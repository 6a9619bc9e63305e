package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// PricePoint is one daily close. It marshals as {"2023-05-22": "172.50"}.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(p.Date.Format(DateLayout))
	if err != nil {
		return nil, err
	}
	val, err := json.Marshal(p.Close.String())
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteByte('{')
	b.Write(key)
	b.WriteByte(':')
	b.Write(val)
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var m map[string]decimal.Decimal
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("price point: expected a single date key, got %d", len(m))
	}
	for k, v := range m {
		d, err := time.Parse(DateLayout, k)
		if err != nil {
			return fmt.Errorf("price point: %w", err)
		}
		p.Date, p.Close = d, v
	}
	return nil
}

// PriceSeries is ordered newest first, as the provider returns it.
type PriceSeries []PricePoint

// Latest returns the most recent close.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[0], true
}

// Earliest returns the oldest close.
func (s PriceSeries) Earliest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}
