package valuation

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("invalid valuation request")
	ErrNoPriceData = errors.New("no price data")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PriceDataError is returned when a symbol has no usable close in the range.
type PriceDataError struct {
	Symbol string
	Reason string
}

func (e *PriceDataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
}

func (e *PriceDataError) Is(target error) bool { return target == ErrNoPriceData }
