package models

import (
	"fmt"
)

// ValidationError reports malformed or missing input.
// It is raised at the boundary and never reaches the calculator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NoDataError reports that the provider has no usable close for a symbol and window:
// unknown or delisted symbol, or a date outside the tradable history.
// It describes an absence of data, so it is never retried.
type NoDataError struct {
	Symbol string
	Reason string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no price data for %s: %s", e.Symbol, e.Reason)
}

// UpstreamUnavailableError reports a transport, timeout, status or payload failure
// while talking to the provider.
type UpstreamUnavailableError struct {
	Provider string
	Symbol   string
	Timeout  bool
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	kind := "unavailable"
	if e.Timeout {
		kind = "timed out"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s upstream %s for %s", e.Provider, kind, e.Symbol)
	}
	return fmt.Sprintf("%s upstream %s for %s: %v", e.Provider, kind, e.Symbol, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// DegenerateInputError reports inputs for which the annualized return is undefined,
// such as an investment date that is not strictly before the evaluation time.
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return "degenerate input: " + e.Reason
}
