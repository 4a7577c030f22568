package notifier

import (
	"encoding/json"
	"sync"

	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// RecordingHost is a WebViewHost that runs posted functions in order on the
// caller's goroutine and records every evaluated script.
type RecordingHost struct {
	mu      sync.Mutex
	ui      sync.Mutex
	scripts []string
}

var _ interfaces.WebViewHost = (*RecordingHost)(nil)

// Post runs fn. Posted functions never run concurrently with each other.
func (h *RecordingHost) Post(fn func()) {
	h.ui.Lock()
	defer h.ui.Unlock()
	fn()
}

func (h *RecordingHost) EvaluateScript(script string) {
	h.mu.Lock()
	h.scripts = append(h.scripts, script)
	h.mu.Unlock()
}

// Scripts returns the evaluated scripts.
func (h *RecordingHost) Scripts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.scripts))
	copy(out, h.scripts)
	return out
}

// Drain returns and forgets the evaluated scripts.
func (h *RecordingHost) Drain() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.scripts
	h.scripts = nil
	return out
}

// Event is one recorded function call.
type Event struct {
	Function string          `json:"function"`
	Payload  json.RawMessage `json:"payload"`
}

// Events decodes the recorded scripts. Scripts not built by Script are skipped.
func Events(scripts []string) []Event {
	events := make([]Event, 0, len(scripts))
	for _, s := range scripts {
		fn, payload, ok := ParseScript(s)
		if !ok {
			continue
		}
		events = append(events, Event{Function: fn, Payload: payload})
	}
	return events
}

// Envelopes returns the result envelopes among the recorded scripts.
func (h *RecordingHost) Envelopes() []Envelope {
	var out []Envelope
	for _, ev := range Events(h.Scripts()) {
		if ev.Function != ResultFunction {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(ev.Payload, &env); err == nil {
			out = append(out, env)
		}
	}
	return out
}

// Payloads returns the payloads emitted to fn.
func (h *RecordingHost) Payloads(fn string) []json.RawMessage {
	var out []json.RawMessage
	for _, ev := range Events(h.Scripts()) {
		if ev.Function == fn {
			out = append(out, ev.Payload)
		}
	}
	return out
}
