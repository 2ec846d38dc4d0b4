// Package errors holds the calculator's coded errors. A code selects the gRPC
// status, the ErrorInfo reason and the user-facing message template.
package errors

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain on statuses produced by the calculator.
const Domain = "github.com/louisbranch/tally"

// Error is a calculator failure: an invalid key, digit or operator, an
// unknown session or history entry, or a store fault.
type Error struct {
	Code Code
	// Message is for logs and the gRPC status message; users see the text
	// rendered from Code and Metadata.
	Message string
	// Metadata fills the user message template, e.g. {"key": "Tab"}.
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// UserMessage renders the message shown to keypad users.
func (e *Error) UserMessage() string {
	return UserMessage(e.Code, e.Metadata)
}

// GRPCStatus builds the status sent to clients: the code's gRPC code, the
// internal message, an ErrorInfo carrying the code and metadata, and the
// user message as a LocalizedMessage in DefaultLocale.
func (e *Error) GRPCStatus() *status.Status {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)
	detailed, err := st.WithDetails(
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: e.Metadata,
		},
		&errdetails.LocalizedMessage{
			Locale:  DefaultLocale,
			Message: e.UserMessage(),
		},
	)
	if err != nil {
		return st
	}
	return detailed
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata attaches template values, typically the rejected input.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap keeps cause reachable through errors.Is and errors.As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
