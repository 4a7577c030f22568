package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/accruesavings/wallet-provisioning/bridge"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/notifier"
	"github.com/accruesavings/wallet-provisioning/orchestrator"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/go-chi/chi/v5"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Session is the provisioning session the handler drives.
type Session interface {
	Dispatch(ctx context.Context, raw string) error
	HandleActivityResult(requestCode, resultCode int, extras interfaces.ResultExtras) bool
	State() orchestrator.State
	Pending() (interfaces.PendingAttempt, bool)
	TestMode() *testmode.Config
}

// EventSource yields the scripts evaluated since the last call.
type EventSource interface {
	Drain() []string
}

// Handler serves the bridge API of one session.
type Handler struct {
	session Session
	events  EventSource
	log     *slog.Logger
}

// NewHandler creates a handler for session. events is the web view host the
// session notifies through.
func NewHandler(session Session, events EventSource, log *slog.Logger) *Handler {
	return &Handler{
		session: session,
		events:  events,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/bridge/message", h.HandleBridgeMessage)
	r.Get("/api/bridge/events", h.HandleEvents)
	r.Post("/api/platform/result", h.HandlePlatformResult)
	r.Get("/api/session/state", h.HandleSessionState)
	r.Post("/api/session/testmode", h.HandleTestMode)
}

// HandleBridgeMessage dispatches the request body as a posted bridge message.
//
// URL format: POST /api/bridge/message
//
// Responses:
//   - 202 when the message was dispatched; its answers appear as events
//   - 400 when the body is not a JSON object
//   - 404 when no route exists for the key
func (h *Handler) HandleBridgeMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.log.Error("Failed to read request body", "err", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	err = h.session.Dispatch(r.Context(), string(body))
	switch {
	case errors.Is(err, bridge.ErrMalformedMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, bridge.ErrUnknownKey):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("Bridge dispatch failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleEvents drains the script calls the session made.
//
// URL format: GET /api/bridge/events
//
// Response: JSON, see EventsResponse
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, EventsResponse{Events: notifier.Events(h.events.Drain())})
}

// HandlePlatformResult delivers a deferred platform result to the session.
//
// URL format: POST /api/platform/result
//
// Request body: JSON, see PlatformResult
//
// Response: JSON, see PlatformResultResponse. A result no flow owns is
// answered with delivered=false.
func (h *Handler) HandlePlatformResult(w http.ResponseWriter, r *http.Request) {
	var req PlatformResult
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		h.log.Error("Failed to decode platform result", "err", err)
		http.Error(w, "Invalid platform result", http.StatusBadRequest)
		return
	}

	delivered := h.session.HandleActivityResult(req.RequestCode, req.ResultCode, interfaces.ResultExtras(req.Extras))
	h.log.Info("Platform result injected", "requestCode", req.RequestCode, "resultCode", req.ResultCode, "delivered", delivered)
	h.writeJSON(w, http.StatusOK, PlatformResultResponse{Delivered: delivered})
}

// HandleSessionState reports the orchestrator state.
//
// URL format: GET /api/session/state
func (h *Handler) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sessionState())
}

func (h *Handler) sessionState() SessionState {
	resp := SessionState{
		State:    h.session.State().String(),
		TestMode: h.session.TestMode().Enabled(),
	}
	if p, ok := h.session.Pending(); ok {
		resp.Pending = &PendingAttempt{
			ID:             p.ID,
			RequestCode:    p.RequestCode,
			StartedAt:      p.StartedAt,
			LastFourDigits: p.LastFourDigits,
		}
	}
	return resp
}

// HandleTestMode reconfigures the simulated platform.
//
// URL format: POST /api/session/testmode
//
// Request body: JSON, see TestModeRequest
//
// Response: JSON, see SessionState
func (h *Handler) HandleTestMode(w http.ResponseWriter, r *http.Request) {
	var req TestModeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Invalid test mode request", http.StatusBadRequest)
		return
	}
	if req.DelayMillis != nil && *req.DelayMillis < 0 {
		http.Error(w, "delayMs must not be negative", http.StatusBadRequest)
		return
	}

	cfg := h.session.TestMode()
	if req.Enabled != nil || req.MockSuccess != nil {
		enabled := cfg.Enabled()
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		mockSuccess := cfg.MockSuccess()
		if req.MockSuccess != nil {
			mockSuccess = *req.MockSuccess
		}
		cfg.SetTestMode(enabled, mockSuccess)
	}
	if req.DelayMillis != nil {
		cfg.SetDelay(time.Duration(*req.DelayMillis) * time.Millisecond)
	}
	if req.ErrorCode != nil || req.ErrorMessage != nil {
		code, message := cfg.ErrorCode(), cfg.ErrorMessage()
		if req.ErrorCode != nil {
			code = *req.ErrorCode
		}
		if req.ErrorMessage != nil {
			message = *req.ErrorMessage
		}
		cfg.SetError(code, message)
	}
	h.log.Info("Test mode updated", "enabled", cfg.Enabled(), "mockSuccess", cfg.MockSuccess(), "delay", cfg.Delay())
	h.writeJSON(w, http.StatusOK, h.sessionState())
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
