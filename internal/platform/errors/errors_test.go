package errors

import (
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{code: CodeInvalidKey, want: codes.InvalidArgument},
		{code: CodeKeysEmpty, want: codes.InvalidArgument},
		{code: CodeInvalidPageToken, want: codes.InvalidArgument},
		{code: CodeSessionNotFound, want: codes.NotFound},
		{code: CodeHistoryEntryNotFound, want: codes.NotFound},
		{code: CodeUnknown, want: codes.Internal},
		{code: Code("SOMETHING_ELSE"), want: codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Errorf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("press: %w", New(CodeInvalidKey, "bad key"))
	if !IsCode(err, CodeInvalidKey) {
		t.Fatalf("expected wrapped error to carry %s", CodeInvalidKey)
	}
	if IsCode(err, CodeSessionNotFound) {
		t.Fatal("unexpected code match")
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("GetCode(plain) = %s, want %s", got, CodeUnknown)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(CodeUnknown, "session store", cause)
	if err.Unwrap() != cause {
		t.Fatalf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if err.Error() != "session store: disk on fire" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if New(CodeKeysEmpty, "no keys to press").Error() != "no keys to press" {
		t.Fatal("unwrapped error should print its message only")
	}
}

func TestErrorIsAGRPCStatus(t *testing.T) {
	err := fmt.Errorf("press: %w", WithMetadata(CodeInvalidKey, "unknown key Tab", map[string]string{"key": "Tab"}))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected status from wrapped error %v", err)
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", st.Code(), codes.InvalidArgument)
	}
	if got := UserMessageFromStatus(err); got != `key "Tab" is not on the keypad` {
		t.Fatalf("user message = %q", got)
	}
}

func TestUserMessageTemplates(t *testing.T) {
	got := UserMessage(CodeInvalidKey, map[string]string{"key": "x"})
	if got != `key "x" is not on the keypad` {
		t.Fatalf("message = %q", got)
	}
	if got := UserMessage(Code("NOPE"), nil); got != "an unexpected error occurred" {
		t.Fatalf("fallback message = %q", got)
	}
	if got := UserMessage(CodeInvalidKey, nil); got != `key "" is not on the keypad` {
		t.Fatalf("missing metadata message = %q", got)
	}
}

func TestHandleErrorAttachesDetails(t *testing.T) {
	err := HandleError(WithMetadata(CodeInvalidKey, "unknown key x", map[string]string{"key": "x"}))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected gRPC status, got %v", err)
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", st.Code(), codes.InvalidArgument)
	}
	if st.Message() != "unknown key x" {
		t.Fatalf("message = %q", st.Message())
	}

	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.GetReason() != string(CodeInvalidKey) || info.GetDomain() != Domain {
		t.Fatalf("unexpected error info: %v", info)
	}
	if localized == nil || localized.GetLocale() != DefaultLocale {
		t.Fatalf("unexpected localized message: %v", localized)
	}

	if got := GetCode(err); got != CodeInvalidKey {
		t.Fatalf("GetCode(status) = %s, want %s", got, CodeInvalidKey)
	}
	if got := UserMessageFromStatus(err); got != `key "x" is not on the keypad` {
		t.Fatalf("user message = %q", got)
	}
}

func TestHandleErrorPassesThrough(t *testing.T) {
	if HandleError(nil) != nil {
		t.Fatal("expected nil")
	}
	original := status.Error(codes.Unavailable, "down")
	if got := HandleError(original); got != original {
		t.Fatalf("expected status error to pass through, got %v", got)
	}
	st, _ := status.FromError(HandleError(fmt.Errorf("boom")))
	if st.Code() != codes.Internal {
		t.Fatalf("code = %v, want %v", st.Code(), codes.Internal)
	}
}
