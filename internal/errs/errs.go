// Package errs defines the error taxonomy shared by the store, the service
// and the transports. Transports map kinds to status codes and put the kind
// string in the error payload so callers can branch on it.
package errs

import "errors"

var (
	// ErrInvalidArgument marks a malformed request: empty account,
	// non-positive or non-numeric amount. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccountNotFound means the account exists neither in the cache nor
	// in the durable snapshot.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStoreUnavailable means the backing store could not be reached and
	// the operation provably did not apply. Safe to retry whole calls.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIndeterminate means the store call was submitted but its outcome is
	// unknown (timeout or cancellation mid-flight). Blind retry could
	// double-charge, so this is surfaced distinctly.
	ErrIndeterminate = errors.New("store outcome indeterminate")

	// ErrCorruptBalance reports a stored balance observed negative. This is
	// an invariant violation; it is logged and surfaced, never corrected.
	ErrCorruptBalance = errors.New("corrupt balance")
)

// Kind returns the wire identifier for err.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrIndeterminate):
		return "indeterminate"
	case errors.Is(err, ErrCorruptBalance):
		return "corrupt_balance"
	default:
		return "internal"
	}
}
