package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyDocument      = errors.New("document contains no text")
	ErrUnreadableDocument = errors.New("document could not be read")
	ErrUnsupportedFormat  = errors.New("unsupported document format")
	ErrDocumentTooLarge   = errors.New("document too large")

	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrMalformedResponse  = errors.New("malformed service response")
)

// InputError reports a problem with the document supplied by the caller.
// It is surfaced immediately and aborts the analysis.
type InputError struct {
	Op  string
	Err error
}

func (e *InputError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// NewInputError wraps err as an InputError for operation op.
func NewInputError(op string, err error) error {
	return &InputError{Op: op, Err: err}
}

// ServiceError reports a failure of an external collaborator (explanation
// or translation service). Callers degrade instead of aborting.
type ServiceError struct {
	Service string
	Op      string
	// Status is the upstream HTTP status when one was received.
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	msg := e.Service
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could succeed.
func (e *ServiceError) Retryable() bool {
	return errors.Is(e.Err, ErrServiceUnavailable) || errors.Is(e.Err, ErrRateLimited)
}

// ScoringError reports an aggregation failure. It is surfaced immediately.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string { return "scoring: " + e.Err.Error() }

func (e *ScoringError) Unwrap() error { return e.Err }

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

func IsScoringError(err error) bool {
	var se *ScoringError
	return errors.As(err, &se)
}
