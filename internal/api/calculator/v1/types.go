package calculatorv1

// Session is the externally visible state of one calculator session.
type Session struct {
	ID string `json:"id"`
	// Display is the raw engine display, e.g. "1234.5".
	Display string `json:"display"`
	// Text is the rendered display, e.g. "1,234.5".
	Text            string `json:"text"`
	PendingOperator string `json:"pending_operator"`
	AwaitingOperand bool   `json:"awaiting_operand"`
	HistoryLen      int    `json:"history_len"`
}

// HistoryEntry is one completed calculation.
type HistoryEntry struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	// CreatedAt is an RFC 3339 timestamp.
	CreatedAt string `json:"created_at"`
}

type CreateSessionRequest struct{}

type SessionResponse struct {
	Session Session `json:"session"`
}

type CloseSessionRequest struct {
	SessionID string `json:"session_id"`
}

type CloseSessionResponse struct{}

// ApplyRequest runs one engine operation. Action is one of digit,
// decimal_point, toggle_sign, percent, backspace, clear, operation,
// restore_history or clear_history.
type ApplyRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	// Digit is required for the digit action.
	Digit string `json:"digit,omitempty"`
	// Operator is add, subtract, multiply, divide or equals for the
	// operation action.
	Operator string `json:"operator,omitempty"`
	// EntryID is required for the restore_history action.
	EntryID string `json:"entry_id,omitempty"`
}

// PressKeysRequest applies a keypad sequence.
type PressKeysRequest struct {
	SessionID string   `json:"session_id"`
	Keys      []string `json:"keys"`
}

type GetDisplayRequest struct {
	SessionID string `json:"session_id"`
}

type ListHistoryRequest struct {
	SessionID string `json:"session_id"`
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

type ListHistoryResponse struct {
	Entries       []HistoryEntry `json:"entries"`
	NextPageToken string         `json:"next_page_token,omitempty"`
	TotalSize     int            `json:"total_size"`
}

type RestoreHistoryRequest struct {
	SessionID string `json:"session_id"`
	EntryID   string `json:"entry_id"`
}

type ClearHistoryRequest struct {
	SessionID string `json:"session_id"`
}
