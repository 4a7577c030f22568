package httpserver

import (
	"time"

	"github.com/accruesavings/wallet-provisioning/notifier"
)

// PlatformResult is a deferred platform result injected by the caller.
type PlatformResult struct {
	RequestCode int            `json:"requestCode"`
	ResultCode  int            `json:"resultCode"`
	Extras      map[string]any `json:"extras,omitempty"`
}

// PlatformResultResponse reports whether a flow of the session took the result.
type PlatformResultResponse struct {
	Delivered bool `json:"delivered"`
}

// EventsResponse carries the script calls made by the session.
type EventsResponse struct {
	Events []notifier.Event `json:"events"`
}

// PendingAttempt is the JSON form of the attempt awaiting a platform result.
type PendingAttempt struct {
	ID             string    `json:"id"`
	RequestCode    int       `json:"requestCode"`
	StartedAt      time.Time `json:"startedAt"`
	LastFourDigits string    `json:"lastFourDigits,omitempty"`
}

// SessionState describes the orchestrator of the session.
type SessionState struct {
	State    string          `json:"state"`
	Pending  *PendingAttempt `json:"pending"`
	TestMode bool            `json:"testMode"`
}

// TestModeRequest reconfigures the simulated platform. Nil fields are left
// unchanged.
type TestModeRequest struct {
	Enabled      *bool   `json:"enabled,omitempty"`
	MockSuccess  *bool   `json:"mockSuccess,omitempty"`
	DelayMillis  *int64  `json:"delayMs,omitempty"`
	ErrorCode    *string `json:"errorCode,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}
