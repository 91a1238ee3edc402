package rentalapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// NetworkError means the request never produced a backend response
// (offline, DNS failure, timeout). Retryable by the user, never retried
// automatically.
type NetworkError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is a 401/403 response. It is surfaced distinctly so the host
// application can redirect to re-authentication.
type AuthError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s (status=%d)", e.Op, e.Message, e.StatusCode)
}

// ValidationError is any other 4xx. Message carries the backend-supplied
// text verbatim when present, else a generic per-operation fallback.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (status=%d)", e.Op, e.Message, e.StatusCode)
}

// ServerError is a 5xx response.
type ServerError struct {
	Op         string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: backend error, try again later (status=%d)", e.Op, e.StatusCode)
}

// backendMessage extracts the message field the backend puts in error
// bodies. Empty when the body is not the expected shape.
func backendMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func classifyStatus(op string, status int, body []byte) error {
	msg := backendMessage(body)
	switch {
	case status == 401 || status == 403:
		if msg == "" {
			msg = "authentication failed"
		}
		return &AuthError{Op: op, StatusCode: status, Message: msg}
	case status >= 400 && status < 500:
		if msg == "" {
			msg = "failed to " + op
		}
		return &ValidationError{Op: op, StatusCode: status, Message: msg}
	default:
		return &ServerError{Op: op, StatusCode: status}
	}
}

func classifyRequestError(ctx context.Context, op string, err error) error {
	if isTimeoutError(ctx, err) {
		return &NetworkError{Op: op, Timeout: true, Err: err}
	}
	if isNetworkError(err) {
		return &NetworkError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: request error: %w", op, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
