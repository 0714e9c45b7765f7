package omie

import (
	"errors"
	"fmt"
)

// Failure taxonomy for calls against the Omie API.
var (
	// ErrTimeout is returned when a call exceeds the configured bound.
	// The gateway never retries; the caller decides what a slow vendor means.
	ErrTimeout = errors.New("omie call timed out")

	// ErrTransport is returned for DNS and connection-level failures before
	// any response was received.
	ErrTransport = errors.New("omie transport failure")

	// ErrRemoteFault is returned when the vendor answered with a non-success
	// status or an embedded faultstring. The vendor's message is carried in
	// the wrapping OmieError's Details.
	ErrRemoteFault = errors.New("omie remote fault")

	// ErrMalformedResponse is returned when a response body cannot be decoded
	// into the expected page shape.
	ErrMalformedResponse = errors.New("malformed omie response")
)

// OmieError wraps a gateway or fetcher failure with the operation that
// produced it and any vendor-supplied detail.
type OmieError struct {
	// Op is the operation that failed (e.g. "Call", "ListMovements").
	Op string

	// Err is the underlying error, usually one of the sentinels above.
	Err error

	// Details carries additional context, such as the vendor's faultstring.
	Details string
}

func (e *OmieError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("omie: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("omie: %s failed: %v", e.Op, e.Err)
}

func (e *OmieError) Unwrap() error {
	return e.Err
}

// Is matches against the wrapped sentinel so errors.Is works through the
// whole fetcher/pipeline chain.
func (e *OmieError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOmieError creates an OmieError for the given operation.
func NewOmieError(op string, err error, details string) *OmieError {
	return &OmieError{Op: op, Err: err, Details: details}
}

// FaultMessage extracts the vendor's message from an ErrRemoteFault chain,
// or returns an empty string when the error is not a remote fault.
func FaultMessage(err error) string {
	var oe *OmieError
	if errors.As(err, &oe) && errors.Is(oe.Err, ErrRemoteFault) {
		return oe.Details
	}
	return ""
}
