package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownTicker = errors.New("unknown ticker")

// BackendError is a network or server failure while loading, saving or
// deleting a portfolio.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// PriceLookupError is returned when a quote cannot be found for a ticker.
type PriceLookupError struct {
	Ticker string
	Err    error
}

func (e *PriceLookupError) Error() string {
	return fmt.Sprintf("failed to get price for %s: %v", e.Ticker, e.Err)
}

func (e *PriceLookupError) Unwrap() error {
	return e.Err
}

type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to sign in: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
