package external

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrRateLimited         = errors.New("provider rate limit reached")
	ErrProviderUnavailable = errors.New("quote provider unavailable")
)

// InvalidSymbolError is returned when the provider rejects a symbol (code 400).
type InvalidSymbolError struct {
	Symbol  string
	Message string
}

func (e *InvalidSymbolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("invalid symbol %q", e.Symbol)
	}
	return fmt.Sprintf("invalid symbol %q: %s", e.Symbol, e.Message)
}

func (e *InvalidSymbolError) Is(target error) bool {
	return target == ErrInvalidSymbol
}
