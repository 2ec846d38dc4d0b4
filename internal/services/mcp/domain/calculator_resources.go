package domain

import (
	"context"
	"encoding/json"
	"fmt"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

// historyResourcePageSize is the largest page the calculator service serves.
const historyResourcePageSize = 50

// HistoryResource defines the readable history of the active session.
func HistoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "calculator_history",
		Title:       "Calculator history",
		Description: "Completed calculations of the active calculator session, newest first",
		MIMEType:    "application/json",
		URI:         HistoryResourceURI,
	}
}

// HistoryResourceHandler returns the full history of the active session.
func HistoryResourceHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("calculator client is not configured")
		}
		uri := HistoryResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != HistoryResourceURI {
			return nil, mcp.ResourceNotFoundError(uri)
		}

		runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		resp, _, err := callWithSession(runCtx, sessions, "", func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.ListHistoryResponse, error) {
			return client.ListHistory(ctx, &calculatorv1.ListHistoryRequest{
				SessionID: sessionID,
				PageSize:  historyResourcePageSize,
			}, opts...)
		})
		if err != nil {
			return nil, fmt.Errorf("calculator history failed: %w", err)
		}

		data, err := json.MarshalIndent(historyResultFromResponse(resp), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal calculator history: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
