// Package common defines shared constants and sentinel errors used across the
// transaction service, its repositories and its transports. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("Forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Transfer validation errors. The text is returned to the caller as is.
	ErrSenderNotFound   = errors.New("Sender card not found")
	ErrReceiverNotFound = errors.New("Receiver not found")
	ErrInvalidSender    = errors.New("Invalid sender")
	ErrInvalidPayload   = errors.New("Invalid transaction payload")
	ErrSelfTransfer     = errors.New("Cannot send money to yourself")

	// Financially relevant transfer failures. The text is also stored as the
	// audit record's error reason.
	ErrInvalidPIN          = errors.New("invalid PIN")
	ErrInsufficientBalance = errors.New("Insufficient balance")
	ErrTransferFailed      = errors.New("Transaction failed")

	// Query errors.
	ErrTransactionNotFound = errors.New("Transaction not found")
)

// Kind is the coarse failure category of an error.
type Kind string

const (
	KindNone              Kind = ""
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindInvalidRequest    Kind = "invalid_request"
	KindInvalidCredential Kind = "invalid_credential"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

// KindOf classifies err. Unknown non-nil errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSenderNotFound), errors.Is(err, ErrReceiverNotFound),
		errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidSender), errors.Is(err, ErrorForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrSelfTransfer):
		return KindInvalidRequest
	case errors.Is(err, ErrInvalidPIN):
		return KindInvalidCredential
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrVersionConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// Recorded reports whether a failed transfer with this error leaves an audit
// record behind.
func Recorded(err error) bool {
	return errors.Is(err, ErrInvalidPIN) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrTransferFailed)
}
