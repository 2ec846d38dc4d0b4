package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/tally/internal/platform/metrics"
	"golang.org/x/net/websocket"
)

type wsTestFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsTestErrorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	return dialWSWithHandler(t, NewHandler(metrics.New()))
}

func dialWSWithHandler(t *testing.T, handler http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	greeting := readFrame(t, conn)
	if greeting.Type != frameState {
		t.Fatalf("greeting type = %q, want %q", greeting.Type, frameState)
	}
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := json.NewEncoder(conn).Encode(frame); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	if err := json.NewDecoder(conn).Decode(&got); err != nil {
		t.Fatalf("decode server frame: %v", err)
	}
	return got
}

func decodeState(t *testing.T, frame wsTestFrame) statePayload {
	t.Helper()
	if frame.Type != frameState {
		t.Fatalf("frame type = %q, want %q (payload %s)", frame.Type, frameState, frame.Payload)
	}
	var state statePayload
	if err := json.Unmarshal(frame.Payload, &state); err != nil {
		t.Fatalf("decode state payload: %v", err)
	}
	return state
}

func decodeError(t *testing.T, frame wsTestFrame) wsTestErrorPayload {
	t.Helper()
	if frame.Type != frameError {
		t.Fatalf("frame type = %q, want %q", frame.Type, frameError)
	}
	var payload wsTestErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload
}

func press(t *testing.T, conn *websocket.Conn, requestID string, keys ...string) wsTestFrame {
	t.Helper()
	writeFrame(t, conn, map[string]any{
		"type":       framePress,
		"request_id": requestID,
		"payload":    map[string]any{"keys": keys},
	})
	return readFrame(t, conn)
}

func TestWebSocketGreetsWithInitialState(t *testing.T) {
	srv := httptest.NewServer(NewHandler(nil))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	state := decodeState(t, readFrame(t, conn))
	if state.Display != "0" || state.Text != "0" || state.PendingOperator != "none" {
		t.Fatalf("initial state = %+v", state)
	}
}

func TestWebSocketPressEvaluatesSequentially(t *testing.T) {
	conn := dialWS(t)

	got := press(t, conn, "req-1", "2", "+", "3", "*", "4", "Enter")
	if got.RequestID != "req-1" {
		t.Fatalf("request id = %q, want req-1", got.RequestID)
	}
	state := decodeState(t, got)
	if state.Display != "20" || state.HistoryLen != 2 {
		t.Fatalf("state = %+v, want display 20 with 2 entries", state)
	}
}

func TestWebSocketPressRendersGrouping(t *testing.T) {
	conn := dialWS(t)

	state := decodeState(t, press(t, conn, "req-1", "1", "2", "3", "4", "5", "6", "7", ".", "8", "9"))
	if state.Text != "1,234,567.89" {
		t.Fatalf("text = %q, want 1,234,567.89", state.Text)
	}
}

func TestWebSocketPressRejectsUnknownKey(t *testing.T) {
	conn := dialWS(t)
	press(t, conn, "req-1", "5")

	payload := decodeError(t, press(t, conn, "req-2", "7", "Tab"))
	if payload.Error.Code != "INVALID_KEY" {
		t.Fatalf("code = %q, want INVALID_KEY", payload.Error.Code)
	}
	if payload.Error.Message != `key "Tab" is not on the keypad` {
		t.Fatalf("message = %q", payload.Error.Message)
	}

	writeFrame(t, conn, map[string]any{"type": frameState, "request_id": "req-3"})
	if state := decodeState(t, readFrame(t, conn)); state.Display != "5" {
		t.Fatalf("display after rejected keys = %q, want 5", state.Display)
	}
}

func TestWebSocketHistoryRestoreAndClear(t *testing.T) {
	conn := dialWS(t)
	press(t, conn, "req-1", "2", "+", "3", "=")
	press(t, conn, "req-2", "9", "/", "0", "=")

	writeFrame(t, conn, map[string]any{"type": frameHistory, "request_id": "req-3"})
	got := readFrame(t, conn)
	if got.Type != frameHistory {
		t.Fatalf("frame type = %q, want %q", got.Type, frameHistory)
	}
	var history historyPayload
	if err := json.Unmarshal(got.Payload, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(history.Entries))
	}
	if history.Entries[0].Expression != "5 ÷ 0" || history.Entries[0].Result != "0" {
		t.Fatalf("newest entry = %+v", history.Entries[0])
	}
	if history.Entries[1].Expression != "2 + 3" || history.Entries[1].Result != "5" {
		t.Fatalf("oldest entry = %+v", history.Entries[1])
	}

	writeFrame(t, conn, map[string]any{
		"type":       frameRestore,
		"request_id": "req-4",
		"payload":    map[string]any{"entry_id": history.Entries[1].ID},
	})
	if state := decodeState(t, readFrame(t, conn)); state.Display != "5" || state.PendingOperator != "none" {
		t.Fatalf("restored state = %+v", state)
	}

	writeFrame(t, conn, map[string]any{
		"type":       frameRestore,
		"request_id": "req-5",
		"payload":    map[string]any{"entry_id": "missing"},
	})
	if payload := decodeError(t, readFrame(t, conn)); payload.Error.Code != "HISTORY_ENTRY_NOT_FOUND" {
		t.Fatalf("code = %q, want HISTORY_ENTRY_NOT_FOUND", payload.Error.Code)
	}

	writeFrame(t, conn, map[string]any{"type": frameHistoryClear, "request_id": "req-6"})
	if state := decodeState(t, readFrame(t, conn)); state.HistoryLen != 0 || state.Display != "5" {
		t.Fatalf("state after clear = %+v", state)
	}
}

func TestWebSocketRestoreRequiresEntryID(t *testing.T) {
	conn := dialWS(t)
	writeFrame(t, conn, map[string]any{
		"type":       frameRestore,
		"request_id": "req-1",
		"payload":    map[string]any{"entry_id": "  "},
	})
	if payload := decodeError(t, readFrame(t, conn)); payload.Error.Code != "HISTORY_ENTRY_ID_EMPTY" {
		t.Fatalf("code = %q, want HISTORY_ENTRY_ID_EMPTY", payload.Error.Code)
	}
}

func TestWebSocketUnknownTypeReturnsError(t *testing.T) {
	conn := dialWS(t)
	writeFrame(t, conn, map[string]any{"type": "calc.unknown", "request_id": "req-1"})

	got := readFrame(t, conn)
	payload := decodeError(t, got)
	if got.RequestID != "req-1" || payload.Error.Code != errorCodeInvalidArgument {
		t.Fatalf("error frame = %+v (%+v)", got, payload)
	}
}

func TestWebSocketInvalidPayloadReturnsError(t *testing.T) {
	conn := dialWS(t)
	writeFrame(t, conn, map[string]any{"type": framePress, "request_id": "req-1", "payload": "keys"})

	if payload := decodeError(t, readFrame(t, conn)); payload.Error.Message != "invalid press payload" {
		t.Fatalf("message = %q", payload.Error.Message)
	}
}

func TestWebSocketPressWithoutKeys(t *testing.T) {
	conn := dialWS(t)
	if payload := decodeError(t, press(t, conn, "req-1")); payload.Error.Code != "KEYS_EMPTY" {
		t.Fatalf("code = %q, want KEYS_EMPTY", payload.Error.Code)
	}
}
