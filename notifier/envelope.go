package notifier

import (
	"bytes"
	"encoding/json"
	"time"
)

// Defaults used when an error carries no code or message.
const (
	UnknownErrorCode    = "UNKNOWN_ERROR"
	UnknownErrorMessage = "An unknown error occurred"
)

// Envelope is the normalized result delivered to the web layer.
type Envelope struct {
	Success   bool            `json:"success"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody is the error member of a failed Envelope.
type ErrorBody struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	Details         string `json:"details,omitempty"`
	Troubleshooting string `json:"troubleshooting,omitempty"`
	ConsoleURL      string `json:"consoleUrl,omitempty"`
}

// SuccessEnvelope wraps payload. A JSON object or array payload is embedded
// as is; anything else is embedded as a JSON string. An empty payload
// produces no data member.
func SuccessEnvelope(ts time.Time, payload string) Envelope {
	return Envelope{
		Success:   true,
		Timestamp: ts.UnixMilli(),
		Data:      dataValue(payload),
	}
}

// ErrorEnvelope builds a failed envelope, filling in default code and message.
func ErrorEnvelope(ts time.Time, code, message, details string) Envelope {
	if code == "" {
		code = UnknownErrorCode
	}
	if message == "" {
		message = UnknownErrorMessage
	}
	return Envelope{
		Success:   false,
		Timestamp: ts.UnixMilli(),
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func dataValue(payload string) json.RawMessage {
	if payload == "" {
		return nil
	}
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(payload)
	return quoted
}

// Marshal renders the envelope. It cannot fail for envelopes built by this
// package; a failure still yields a well-formed error envelope.
func (e Envelope) Marshal() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		fallback, _ := json.Marshal(ErrorEnvelope(time.UnixMilli(e.Timestamp), "ERROR_INTERNAL", "Failed to encode result", ""))
		return fallback
	}
	return b
}
