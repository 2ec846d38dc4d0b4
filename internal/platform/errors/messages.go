package errors

import (
	"bytes"
	"text/template"
)

// messages holds the user-facing en-US text for each code. Templates read
// values from Error.Metadata.
var messages = map[Code]string{
	CodeUnknown:              "an unexpected error occurred",
	CodeInvalidKey:           `key "{{.key}}" is not on the keypad`,
	CodeInvalidDigit:         `"{{.digit}}" is not a single decimal digit`,
	CodeInvalidOperator:      `operator "{{.operator}}" is not supported`,
	CodeInvalidAction:        `action "{{.action}}" is not supported`,
	CodeKeysEmpty:            "at least one key is required",
	CodeSessionIDEmpty:       "session id is required",
	CodeSessionNotFound:      "calculator session not found",
	CodeHistoryEntryIDEmpty:  "history entry id is required",
	CodeHistoryEntryNotFound: "history entry not found",
	CodeInvalidPageToken:     "page token is invalid",
}

// UserMessage renders the user-facing message for a code.
func UserMessage(code Code, metadata map[string]string) string {
	text, ok := messages[code]
	if !ok {
		text = messages[CodeUnknown]
	}
	tmpl, err := template.New(string(code)).Option("missingkey=zero").Parse(text)
	if err != nil {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}
