// Package errors provides coded domain errors and their gRPC mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeInvalidKey      Code = "INVALID_KEY"
	CodeInvalidDigit    Code = "INVALID_DIGIT"
	CodeInvalidOperator Code = "INVALID_OPERATOR"
	CodeInvalidAction   Code = "INVALID_ACTION"
	CodeKeysEmpty       Code = "KEYS_EMPTY"

	// Session errors
	CodeSessionIDEmpty  Code = "SESSION_ID_EMPTY"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// History errors
	CodeHistoryEntryIDEmpty  Code = "HISTORY_ENTRY_ID_EMPTY"
	CodeHistoryEntryNotFound Code = "HISTORY_ENTRY_NOT_FOUND"
	CodeInvalidPageToken     Code = "INVALID_PAGE_TOKEN"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - bad input
	case CodeInvalidKey,
		CodeInvalidDigit,
		CodeInvalidOperator,
		CodeInvalidAction,
		CodeKeysEmpty,
		CodeSessionIDEmpty,
		CodeHistoryEntryIDEmpty,
		CodeInvalidPageToken:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeSessionNotFound,
		CodeHistoryEntryNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
