package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Upstream Errors.

	// ErrAuthFailed indicates the upstream provider rejected the credentials
	// or the sign-in flow could not be completed.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAuthLost indicates a previously authenticated upstream session is no
	// longer valid. Executors report it from Submit.
	ErrAuthLost = errors.New("authentication lost")

	// ErrUpstreamTimeout indicates the upstream provider did not answer in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrQuotaExceeded indicates the daily query quota is used up.
	ErrQuotaExceeded = errors.New("daily query quota exceeded")

	// ErrSessionLost indicates re-authentication after a lost session failed too.
	ErrSessionLost = errors.New("upstream session lost")

	// ErrSessionClosed indicates the session engine has been closed.
	ErrSessionClosed = errors.New("session closed")

	// Delivery Errors.

	// ErrSendFailed indicates a message could not be delivered to a channel.
	ErrSendFailed = errors.New("send failed")

	// ErrRateLimited indicates the delivery API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoDeliverableChannel indicates no target channel accepted the item.
	ErrNoDeliverableChannel = errors.New("no channel accepted the item")

	// Scheduling Errors.

	// ErrSessionDisabled indicates a disabled session was asked to run.
	ErrSessionDisabled = errors.New("session disabled")

	// Storage Errors.

	// ErrStorage indicates the persistent store could not serve a request.
	ErrStorage = errors.New("storage failure")
)

// AuthenticationError reports that an upstream session could not be established.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication: %v", e.Cause)
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// Is matches ErrAuthFailed.
func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthFailed }

// QuotaExceededError reports that the daily quota blocks a new query.
type QuotaExceededError struct {
	Used  int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily query quota exceeded: %d of %d used", e.Used, e.Limit)
}

// Is matches ErrQuotaExceeded.
func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// UpstreamTimeoutError reports a query that did not complete within its wait.
type UpstreamTimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("upstream did not answer within %s", e.Timeout)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Cause }

// Is matches ErrUpstreamTimeout.
func (e *UpstreamTimeoutError) Is(target error) bool { return target == ErrUpstreamTimeout }

// SessionLostError reports that the upstream session was lost and the single
// transparent retry failed as well.
type SessionLostError struct {
	Cause error
}

func (e *SessionLostError) Error() string {
	return fmt.Sprintf("upstream session lost: %v", e.Cause)
}

func (e *SessionLostError) Unwrap() error { return e.Cause }

// Is matches ErrSessionLost.
func (e *SessionLostError) Is(target error) bool { return target == ErrSessionLost }

// SendError reports a failed delivery to one channel.
type SendError struct {
	Channel string
	Cause   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Channel, e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }

// Is matches ErrSendFailed.
func (e *SendError) Is(target error) bool { return target == ErrSendFailed }

// StorageError reports a persistent store failure. It is fatal to the
// enclosing operation: callers must never read it as a cache miss.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// WrapStorage wraps a non-nil store error as a StorageError.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Cause: err}
}

// IsFatal reports whether err must end a session run early.
// Only storage failures and cancellation qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStorage) ||
		errors.Is(err, context.Canceled)
}

// Describe returns a short user-facing summary for expected error kinds.
// Unexpected errors are summarised generically so raw text stays in the logs.
func Describe(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrQuotaExceeded):
		return "daily query quota reached"
	case errors.Is(err, ErrUpstreamTimeout):
		return "upstream did not answer in time"
	case errors.Is(err, ErrSessionLost):
		return "upstream session lost"
	case errors.Is(err, ErrAuthFailed):
		return "could not sign in to upstream"
	case errors.Is(err, ErrSessionClosed):
		return "session closed"
	case errors.Is(err, ErrSessionDisabled):
		return "session disabled"
	case errors.Is(err, ErrNoDeliverableChannel):
		return "no channel accepted the item"
	case errors.Is(err, ErrSendFailed):
		return "delivery failed"
	case errors.Is(err, ErrStorage):
		return "storage unavailable"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "unexpected error (see log)"
	}
}
