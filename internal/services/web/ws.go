package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/tally/internal/core/history"
	"github.com/louisbranch/tally/internal/keypad"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/session"
	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 4 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
	maxKeysPerFrame        = 256

	// errorCodeInvalidArgument is reported for malformed frames.
	errorCodeInvalidArgument = "INVALID_ARGUMENT"
	// errorCodeRateLimited is reported before closing a flooding connection.
	errorCodeRateLimited = "RESOURCE_EXHAUSTED"
)

// Frame types exchanged on /ws.
const (
	framePress        = "calc.press"
	frameState        = "calc.state"
	frameHistory      = "calc.history"
	frameRestore      = "calc.restore"
	frameHistoryClear = "calc.history.clear"
	frameError        = "calc.error"
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type pressPayload struct {
	Keys []string `json:"keys"`
}

type restorePayload struct {
	EntryID string `json:"entry_id"`
}

type statePayload struct {
	Display         string `json:"display"`
	Text            string `json:"text"`
	PendingOperator string `json:"pending_operator"`
	AwaitingOperand bool   `json:"awaiting_operand"`
	HistoryLen      int    `json:"history_len"`
}

type historyEntry struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	CreatedAt  string `json:"created_at"`
}

type historyPayload struct {
	Entries []historyEntry `json:"entries"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// handleWSConn serves one keypad connection. Each connection owns its own
// calculator session, discarded when the connection closes.
func handleWSConn(conn *websocket.Conn, deps handlerDeps) {
	defer func() {
		_ = conn.Close()
	}()

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}

	calc := session.New(deps.sessionOptions()...)
	if deps.metrics != nil {
		deps.metrics.SessionOpened()
		defer deps.metrics.SessionClosed()
	}

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))
	_ = peer.writeFrame(stateFrame("", calc.Snapshot()))

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "", errorCodeInvalidArgument, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, frame.RequestID, errorCodeInvalidArgument, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, frame.RequestID, errorCodeRateLimited, "rate limit exceeded")
			return
		}

		switch frame.Type {
		case framePress:
			handlePressFrame(ctx, calc, peer, frame)
		case frameState:
			_ = peer.writeFrame(stateFrame(frame.RequestID, calc.Snapshot()))
		case frameHistory:
			_ = peer.writeFrame(historyFrame(frame.RequestID, calc.History()))
		case frameRestore:
			handleRestoreFrame(ctx, calc, peer, frame)
		case frameHistoryClear:
			_ = peer.writeFrame(stateFrame(frame.RequestID, calc.ClearHistory(ctx)))
		default:
			_ = writeWSError(peer, frame.RequestID, errorCodeInvalidArgument, "unsupported frame type")
		}
	}
}

func handlePressFrame(ctx context.Context, calc *session.Session, peer *wsPeer, frame wsFrame) {
	var payload pressPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, frame.RequestID, errorCodeInvalidArgument, "invalid press payload")
		return
	}
	if len(payload.Keys) > maxKeysPerFrame {
		_ = writeWSError(peer, frame.RequestID, errorCodeInvalidArgument, "too many keys")
		return
	}

	snap, err := keypad.Press(ctx, calc, payload.Keys...)
	if err != nil {
		writeDomainError(peer, frame.RequestID, err)
		return
	}
	_ = peer.writeFrame(stateFrame(frame.RequestID, snap))
}

func handleRestoreFrame(ctx context.Context, calc *session.Session, peer *wsPeer, frame wsFrame) {
	var payload restorePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, frame.RequestID, errorCodeInvalidArgument, "invalid restore payload")
		return
	}
	entryID := strings.TrimSpace(payload.EntryID)
	if entryID == "" {
		writeDomainError(peer, frame.RequestID, apperrors.New(apperrors.CodeHistoryEntryIDEmpty, "entry_id is required"))
		return
	}

	snap, err := calc.RestoreFromHistory(ctx, entryID)
	if err != nil {
		writeDomainError(peer, frame.RequestID, err)
		return
	}
	_ = peer.writeFrame(stateFrame(frame.RequestID, snap))
}

func stateFrame(requestID string, snap session.Snapshot) wsFrame {
	return wsFrame{
		Type:      frameState,
		RequestID: requestID,
		Payload: mustJSON(statePayload{
			Display:         snap.Display,
			Text:            snap.Text,
			PendingOperator: snap.Pending.String(),
			AwaitingOperand: snap.AwaitingOperand,
			HistoryLen:      snap.HistoryLen,
		}),
	}
}

func historyFrame(requestID string, entries []history.Entry) wsFrame {
	payload := historyPayload{Entries: make([]historyEntry, 0, len(entries))}
	for _, entry := range entries {
		payload.Entries = append(payload.Entries, historyEntry{
			ID:         entry.ID,
			Expression: entry.Expression,
			Result:     entry.Result,
			CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return wsFrame{Type: frameHistory, RequestID: requestID, Payload: mustJSON(payload)}
}

// writeDomainError reports a coded error with its user-facing message.
func writeDomainError(peer *wsPeer, requestID string, err error) {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		log.Printf("web: unexpected calculator error: %v", err)
	}
	_ = writeWSError(peer, requestID, string(code), apperrors.UserMessage(code, apperrors.GetMetadata(err)))
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      frameError,
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{Code: code, Message: message},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
