// Package metadata carries request correlation ids across gRPC calls.
package metadata

import (
	"context"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the gRPC metadata key for request correlation IDs.
const RequestIDHeader = "x-tally-request-id"

// InvocationIDHeader is the gRPC metadata key for MCP tool invocation IDs.
const InvocationIDHeader = "x-tally-invocation-id"

type contextKey string

const (
	requestIDContextKey    contextKey = "tally-request-id"
	invocationIDContextKey contextKey = "tally-invocation-id"
)

// RequestIDFromContext returns the request ID stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey).(string)
	return value
}

// InvocationIDFromContext returns the invocation ID stored in context.
func InvocationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(invocationIDContextKey).(string)
	return value
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// WithInvocationID stores the invocation ID in context.
func WithInvocationID(ctx context.Context, invocationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationIDContextKey, invocationID)
}

// OutgoingContext appends the correlation ids held in ctx to outgoing
// metadata, so the callee logs the same ids.
func OutgoingContext(ctx context.Context) context.Context {
	var pairs []string
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		pairs = append(pairs, RequestIDHeader, requestID)
	}
	if invocationID := InvocationIDFromContext(ctx); invocationID != "" {
		pairs = append(pairs, InvocationIDHeader, invocationID)
	}
	if len(pairs) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// FirstMetadataValue returns the first printable ASCII metadata value for a key.
func FirstMetadataValue(md metadata.MD, key string) string {
	for _, value := range md.Get(key) {
		if isPrintableASCII(value) {
			return value
		}
	}
	return ""
}

// UnaryServerInterceptor assigns every call a request id, echoes it in the
// response headers, tags the active span with it, logs the call, and
// converts domain errors into gRPC statuses.
func UnaryServerInterceptor(idGenerator func() (string, error)) grpc.UnaryServerInterceptor {
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		requestID := FirstMetadataValue(md, RequestIDHeader)
		if requestID == "" {
			generated, err := idGenerator()
			if err != nil {
				return nil, status.Errorf(codes.Internal, "ensure request metadata: %v", err)
			}
			requestID = generated
		}
		invocationID := FirstMetadataValue(md, InvocationIDHeader)

		ctx = WithRequestID(ctx, requestID)
		header := metadata.Pairs(RequestIDHeader, requestID)
		if invocationID != "" {
			ctx = WithInvocationID(ctx, invocationID)
			header.Set(InvocationIDHeader, invocationID)
		}
		if err := grpc.SetHeader(ctx, header); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("tally.request_id", requestID))
		if invocationID != "" {
			span.SetAttributes(attribute.String("tally.invocation_id", invocationID))
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			err = apperrors.HandleError(err)
			log.Printf("%s request_id=%s code=%s took=%s: %v", info.FullMethod, requestID, status.Code(err), time.Since(start), err)
			return nil, err
		}
		return resp, nil
	}
}

func isPrintableASCII(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}
