// Package errors provides a structured error type with wrapping and metadata
package errors

// Import this package as perr

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine facing error class
// Values are stable on the wire; append only
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeUnavailable is for transient errors where retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeConflict is for state conflicts beyond duplicate keys
	ErrorCodeConflict

	// ErrorCodeUnauthorized is for missing or unknown credentials
	ErrorCodeUnauthorized

	// ErrorCodeForbidden is for authorization predicate failures
	ErrorCodeForbidden

	// ErrorCodeInvalidArgument is for well formed input with bad values
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for struct validation failures
	ErrorCodeValidation

	// ErrorCodeJSON is for malformed JSON bodies
	ErrorCodeJSON

	// ErrorCodeNotFound is for unknown request ids and other missing rows
	ErrorCodeNotFound

	// ErrorCodeDuplicateKey is for unique constraint violations
	ErrorCodeDuplicateKey

	// ErrorCodeDB is for general database errors
	ErrorCodeDB

	// ErrorCodeAlreadyProcessed is for replays against a resolved request or callback
	ErrorCodeAlreadyProcessed

	// ErrorCodeInvalidRequest is for callback ids that do not resolve to a live correlation
	ErrorCodeInvalidRequest

	// ErrorCodeZoneNotFound is for unregistered zone names and unmatched zone hashes
	ErrorCodeZoneNotFound

	// ErrorCodeInvalidProof is for oracle proofs that fail verification
	ErrorCodeInvalidProof

	// ErrorCodeDuplicateCallback is for an oracle reusing a callback id
	ErrorCodeDuplicateCallback

	// ErrorCodeDecryptionPending is for a second decryption request while one is in flight
	ErrorCodeDecryptionPending
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:           "unknown",
	ErrorCodePanic:             "panic",
	ErrorCodeUnavailable:       "unavailable",
	ErrorCodeConflict:          "conflict",
	ErrorCodeUnauthorized:      "unauthorized",
	ErrorCodeForbidden:         "forbidden",
	ErrorCodeInvalidArgument:   "invalid_argument",
	ErrorCodeValidation:        "validation",
	ErrorCodeJSON:              "json",
	ErrorCodeNotFound:          "not_found",
	ErrorCodeDuplicateKey:      "duplicate_key",
	ErrorCodeDB:                "db",
	ErrorCodeAlreadyProcessed:  "already_processed",
	ErrorCodeInvalidRequest:    "invalid_request",
	ErrorCodeZoneNotFound:      "zone_not_found",
	ErrorCodeInvalidProof:      "invalid_proof",
	ErrorCodeDuplicateCallback: "duplicate_callback",
	ErrorCodeDecryptionPending: "decryption_pending",
}

// String returns the snake case name used in logs
func (c ErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("code_%d", uint16(c))
}

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound, ErrorCodeZoneNotFound, ErrorCodeInvalidRequest:
		return http.StatusNotFound
	case ErrorCodeInvalidArgument, ErrorCodeInvalidProof:
		return http.StatusUnprocessableEntity
	case ErrorCodeDuplicateKey, ErrorCodeConflict, ErrorCodeAlreadyProcessed,
		ErrorCodeDuplicateCallback, ErrorCodeDecryptionPending:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is style checks; prefer IsCode when the message varies
var (
	ErrNotFound          = New(ErrorCodeNotFound, "not found")
	ErrAlreadyProcessed  = New(ErrorCodeAlreadyProcessed, "already processed")
	ErrInvalidRequest    = New(ErrorCodeInvalidRequest, "invalid request")
	ErrZoneNotFound      = New(ErrorCodeZoneNotFound, "zone not found")
	ErrInvalidProof      = New(ErrorCodeInvalidProof, "invalid proof")
	ErrDuplicateCallback = New(ErrorCodeDuplicateCallback, "duplicate callback")
	ErrDecryptionPending = New(ErrorCodeDecryptionPending, "decryption pending")
)

// Error is the structured error type
// msg is developer facing, code is machine facing, field and op are optional tags
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON form returned by the API
type Wire struct {
	Code    ErrorCode `json:"code"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements error
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error { return e.orig }

// Is matches another *Error by code so wrapped sentinels compare equal
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.code == t.code && t.orig == nil && t.field == "" && t.op == ""
}

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if any
func (e *Error) Op() string { return e.op }

// ToWire converts to the API payload
func (e *Error) ToWire() Wire {
	return Wire{Code: e.code, Kind: e.code.String(), Message: e.msg, Field: e.field}
}

// WireFrom converts any error to a Wire; nil gives the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Kind: ErrorCodeUnknown.String(), Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// As returns the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts an ErrorCode, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// HTTP bundles status and wire for handlers
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// WithField returns a copy of err tagged with field; foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp returns a copy of err tagged with an operation label; foreign errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// New returns an *Error with code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error wrapping orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns an *Error wrapping orig with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unauthorizedf returns an unauthorized error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Forbiddenf returns a forbidden error
func Forbiddenf(format string, a ...any) error { return Newf(ErrorCodeForbidden, format, a...) }

// Conflictf returns a conflict error
func Conflictf(format string, a ...any) error { return Newf(ErrorCodeConflict, format, a...) }

// Unavailablef returns an unavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// AlreadyProcessedf returns an already processed error
func AlreadyProcessedf(format string, a ...any) error {
	return Newf(ErrorCodeAlreadyProcessed, format, a...)
}

// InvalidRequestf returns an invalid request error
func InvalidRequestf(format string, a ...any) error {
	return Newf(ErrorCodeInvalidRequest, format, a...)
}

// ZoneNotFoundf returns a zone not found error
func ZoneNotFoundf(format string, a ...any) error { return Newf(ErrorCodeZoneNotFound, format, a...) }

// InvalidProoff returns an invalid proof error
func InvalidProoff(format string, a ...any) error { return Newf(ErrorCodeInvalidProof, format, a...) }

// DuplicateCallbackf returns a duplicate callback error
func DuplicateCallbackf(format string, a ...any) error {
	return Newf(ErrorCodeDuplicateCallback, format, a...)
}

// DecryptionPendingf returns a decryption pending error
func DecryptionPendingf(format string, a ...any) error {
	return Newf(ErrorCodeDecryptionPending, format, a...)
}
