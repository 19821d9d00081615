// Package resilience wraps resolution attempts in a bounded retry/timeout
// envelope and classifies failures.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// FailureClass buckets a terminal resolution error.
type FailureClass string

const (
	FailureDeadline FailureClass = "deadline"
	FailureNetwork  FailureClass = "network"
	FailureOther    FailureClass = "other"
)

// TransientError marks an error as safe to retry (429, 5xx, network
// timeout). Clients wrap such failures before returning them.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as transient with an optional HTTP status.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// Classify buckets err into the envelope's failure taxonomy. Every bucket
// is retryable; the class decides how the terminal message reads.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return FailureOther
	case errors.Is(err, context.DeadlineExceeded):
		return FailureDeadline
	case isNetwork(err):
		return FailureNetwork
	default:
		return FailureOther
	}
}

// Describe renders a terminal failure message for a SpecResult.
func Describe(err error, attempts int) string {
	return fmt.Sprintf("%s: %v (after %d attempts)", Classify(err), err, attempts)
}

func isNetwork(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped client errors lose their type; fall back to message
	// patterns.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status indicates a
// server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
