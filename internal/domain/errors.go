package domain

import "fmt"

// ValidationError reports a malformed request. It is returned before any provider
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError reports a failed provider round-trip for one symbol: unreachable
// provider, unknown symbol, or an unparseable response.
type ProviderError struct {
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error for %s: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MissingFieldError reports an otherwise-successful provider response that omits a
// field the tool requires (notably the current price).
type MissingFieldError struct {
	Symbol string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no %s available for %s", e.Field, e.Symbol)
}
