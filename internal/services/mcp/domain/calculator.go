package domain

import (
	"context"
	"fmt"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

// HistoryResourceURI names the readable history of the active session.
const HistoryResourceURI = "calculator://history"

// DisplayResult is the calculator state returned by every mutating tool.
type DisplayResult struct {
	SessionID       string `json:"session_id" jsonschema:"calculator session identifier"`
	Display         string `json:"display" jsonschema:"raw display value, e.g. 1234.5"`
	Text            string `json:"text" jsonschema:"rendered display, e.g. 1,234.5"`
	PendingOperator string `json:"pending_operator" jsonschema:"pending operator: add, subtract, multiply, divide or none"`
	AwaitingOperand bool   `json:"awaiting_operand" jsonschema:"true when the next digit starts a new operand"`
	HistoryLen      int    `json:"history_len" jsonschema:"number of retained history entries"`
}

// PressInput represents the MCP tool input for pressing keypad keys.
type PressInput struct {
	Keys []string `json:"keys" jsonschema:"key names in order, e.g. [\"1\",\"2\",\"+\",\"3\",\"Enter\"]; digits, '.', '+', '-', '*', '/', '%', F9 (sign), Backspace, Escape (clear), Enter or '='"`
}

// InputInput represents the MCP tool input for a single engine operation.
type InputInput struct {
	Action   string `json:"action" jsonschema:"one of digit, decimal_point, toggle_sign, percent, backspace, clear, operation"`
	Digit    string `json:"digit,omitempty" jsonschema:"digit 0-9 for the digit action"`
	Operator string `json:"operator,omitempty" jsonschema:"add, subtract, multiply, divide or equals for the operation action"`
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

// HistoryInput represents the MCP tool input for listing history.
type HistoryInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum entries to return (default 10, max 50)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous history call"`
}

// HistoryEntryResult is one completed calculation.
type HistoryEntryResult struct {
	ID         string `json:"id" jsonschema:"history entry identifier"`
	Expression string `json:"expression" jsonschema:"the calculation, e.g. 2 + 3"`
	Result     string `json:"result" jsonschema:"the result rounded to 10 significant digits"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC 3339 timestamp"`
}

// HistoryResult represents the MCP tool output for listing history.
type HistoryResult struct {
	Entries       []HistoryEntryResult `json:"entries" jsonschema:"entries, newest first"`
	NextPageToken string               `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
	TotalSize     int                  `json:"total_size" jsonschema:"number of retained entries"`
}

// RestoreInput represents the MCP tool input for restoring a history entry.
type RestoreInput struct {
	EntryID string `json:"entry_id" jsonschema:"history entry identifier (required)"`
}

// PressTool defines the MCP tool schema for keypad input.
func PressTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_press",
		Description: "Presses calculator keys in order and returns the resulting display. Evaluation is sequential: 2 + 3 * 4 = gives 20",
	}
}

// InputTool defines the MCP tool schema for a single engine operation.
func InputTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_input",
		Description: "Applies one calculator operation (digit, decimal point, sign, percent, backspace, clear, or an operator)",
	}
}

// DisplayTool defines the MCP tool schema for reading the display.
func DisplayTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_display",
		Description: "Returns the current calculator display",
	}
}

// HistoryTool defines the MCP tool schema for listing history.
func HistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_history",
		Description: "Lists completed calculations, newest first",
	}
}

// RestoreTool defines the MCP tool schema for restoring a history entry.
func RestoreTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_history_restore",
		Description: "Clears the calculator and puts a history entry's result on the display",
	}
}

// ClearHistoryTool defines the MCP tool schema for clearing history.
func ClearHistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_history_clear",
		Description: "Removes every history entry without touching the display",
	}
}

// ResetTool defines the MCP tool schema for starting a fresh session.
func ResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_reset",
		Description: "Discards the current calculator session, including its history, and starts a new one",
	}
}

// PressHandler executes a keypad sequence.
func PressHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[PressInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PressInput) (*mcp.CallToolResult, DisplayResult, error) {
		if len(input.Keys) == 0 {
			return nil, DisplayResult{}, fmt.Errorf("keys are required")
		}
		return sessionCall(ctx, client, sessions, notify, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.PressKeys(ctx, &calculatorv1.PressKeysRequest{SessionID: sessionID, Keys: input.Keys}, opts...)
		})
	}
}

// InputHandler executes a single engine operation.
func InputHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[InputInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InputInput) (*mcp.CallToolResult, DisplayResult, error) {
		if input.Action == "" {
			return nil, DisplayResult{}, fmt.Errorf("action is required")
		}
		return sessionCall(ctx, client, sessions, notify, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.Apply(ctx, &calculatorv1.ApplyRequest{
				SessionID: sessionID,
				Action:    input.Action,
				Digit:     input.Digit,
				Operator:  input.Operator,
			}, opts...)
		})
	}
}

// DisplayHandler reads the current display.
func DisplayHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource) mcp.ToolHandlerFor[EmptyInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, DisplayResult, error) {
		return sessionCall(ctx, client, sessions, nil, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.GetDisplay(ctx, &calculatorv1.GetDisplayRequest{SessionID: sessionID}, opts...)
		})
	}
}

// HistoryHandler lists history entries.
func HistoryHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryResult, error) {
		if client == nil {
			return nil, HistoryResult{}, fmt.Errorf("calculator client is not configured")
		}
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, HistoryResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		resp, meta, err := callWithSession(runCtx, sessions, invocationID, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.ListHistoryResponse, error) {
			return client.ListHistory(ctx, &calculatorv1.ListHistoryRequest{
				SessionID: sessionID,
				PageSize:  int32(input.PageSize),
				PageToken: input.PageToken,
			}, opts...)
		})
		if err != nil {
			return nil, HistoryResult{}, fmt.Errorf("calculator history failed: %w", err)
		}
		return CallToolResultWithMetadata(meta), historyResultFromResponse(resp), nil
	}
}

// RestoreHandler restores a history entry onto the display.
func RestoreHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[RestoreInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RestoreInput) (*mcp.CallToolResult, DisplayResult, error) {
		if input.EntryID == "" {
			return nil, DisplayResult{}, fmt.Errorf("entry_id is required")
		}
		return sessionCall(ctx, client, sessions, notify, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.RestoreHistory(ctx, &calculatorv1.RestoreHistoryRequest{SessionID: sessionID, EntryID: input.EntryID}, opts...)
		})
	}
}

// ClearHistoryHandler removes every history entry.
func ClearHistoryHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[EmptyInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, DisplayResult, error) {
		return sessionCall(ctx, client, sessions, notify, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.ClearHistory(ctx, &calculatorv1.ClearHistoryRequest{SessionID: sessionID}, opts...)
		})
	}
}

// ResetHandler closes the active session and opens a new one.
func ResetHandler(client calculatorv1.CalculatorServiceClient, sessions *SessionSource, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[EmptyInput, DisplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, DisplayResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()
		if err := sessions.Close(runCtx); err != nil {
			return nil, DisplayResult{}, err
		}
		return sessionCall(ctx, client, sessions, notify, func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error) {
			return client.GetDisplay(ctx, &calculatorv1.GetDisplayRequest{SessionID: sessionID}, opts...)
		})
	}
}

// sessionCall runs a session-scoped call and converts its response. A
// successful call notifies subscribers that the history resource may have
// changed.
func sessionCall(
	ctx context.Context,
	client calculatorv1.CalculatorServiceClient,
	sessions *SessionSource,
	notify ResourceUpdateNotifier,
	call func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*calculatorv1.SessionResponse, error),
) (*mcp.CallToolResult, DisplayResult, error) {
	if client == nil {
		return nil, DisplayResult{}, fmt.Errorf("calculator client is not configured")
	}
	invocationID, err := NewInvocationID()
	if err != nil {
		return nil, DisplayResult{}, fmt.Errorf("generate invocation id: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
	defer cancel()

	resp, meta, err := callWithSession(runCtx, sessions, invocationID, call)
	if err != nil {
		return nil, DisplayResult{}, fmt.Errorf("calculator call failed: %w", err)
	}

	NotifyResourceUpdates(ctx, notify, HistoryResourceURI)
	return CallToolResultWithMetadata(meta), displayResultFromSession(resp.Session), nil
}

func displayResultFromSession(session calculatorv1.Session) DisplayResult {
	return DisplayResult{
		SessionID:       session.ID,
		Display:         session.Display,
		Text:            session.Text,
		PendingOperator: session.PendingOperator,
		AwaitingOperand: session.AwaitingOperand,
		HistoryLen:      session.HistoryLen,
	}
}

func historyResultFromResponse(resp *calculatorv1.ListHistoryResponse) HistoryResult {
	result := HistoryResult{
		Entries:       make([]HistoryEntryResult, 0, len(resp.Entries)),
		NextPageToken: resp.NextPageToken,
		TotalSize:     resp.TotalSize,
	}
	for _, entry := range resp.Entries {
		result.Entries = append(result.Entries, HistoryEntryResult{
			ID:         entry.ID,
			Expression: entry.Expression,
			Result:     entry.Result,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return result
}
