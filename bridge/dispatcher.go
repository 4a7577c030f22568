package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Action is a host application action triggered from the web page.
type Action int

const (
	ActionSignInButtonClicked Action = iota + 1
	ActionRegisterButtonClicked
	ActionProvisioningRequested
)

func (a Action) String() string {
	switch a {
	case ActionSignInButtonClicked:
		return "SignInButtonClicked"
	case ActionRegisterButtonClicked:
		return "RegisterButtonClicked"
	case ActionProvisioningRequested:
		return "GoogleWalletProvisioningRequested"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ActionHandler receives host actions.
type ActionHandler interface {
	HandleAction(ctx context.Context, a Action)
}

// ActionFuncs adapts plain functions to an ActionHandler. Nil fields are
// skipped.
type ActionFuncs struct {
	SignInButtonClicked   func()
	RegisterButtonClicked func()
	ProvisioningRequested func()
}

func (f ActionFuncs) HandleAction(ctx context.Context, a Action) {
	var fn func()
	switch a {
	case ActionSignInButtonClicked:
		fn = f.SignInButtonClicked
	case ActionRegisterButtonClicked:
		fn = f.RegisterButtonClicked
	case ActionProvisioningRequested:
		fn = f.ProvisioningRequested
	}
	if fn != nil {
		fn()
	}
}

// Session serves the provisioning keys.
type Session interface {
	// RequestTokenGeneration sends the device descriptor to the page so it
	// can generate the provisioning token. data is the message's data member.
	RequestTokenGeneration(ctx context.Context, data json.RawMessage)
	// StartPushProvisioning starts an attempt for the raw message.
	StartPushProvisioning(ctx context.Context, rawJSON string)
	// SendWalletInformation replies with the active wallet id.
	SendWalletInformation(ctx context.Context)
	// SendEligibility replies with the device eligibility.
	SendEligibility(ctx context.Context, automatic bool)
}

// Dispatcher routes inbound messages by key.
type Dispatcher struct {
	log     *slog.Logger
	session Session
	actions ActionHandler
}

// NewDispatcher creates a dispatcher. actions may be nil when the host
// handles no button keys.
func NewDispatcher(log *slog.Logger, session Session, actions ActionHandler) *Dispatcher {
	return &Dispatcher{
		log:     log,
		session: session,
		actions: actions,
	}
}

// Dispatch decodes and routes one posted message.
//
// Returns:
//   - ErrMalformedMessage when the message is not a JSON object
//   - ErrUnknownKey when no route exists for the key
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) error {
	m, err := ParseMessage(raw)
	if err != nil {
		d.log.Error("failed to parse bridge message", "err", err)
		return err
	}
	log := d.log.With("key", m.Key)
	log.Info("bridge message received")

	switch m.Key {
	case KeySignInButtonClicked:
		d.action(ctx, ActionSignInButtonClicked)
	case KeyRegisterButtonClicked:
		d.action(ctx, ActionRegisterButtonClicked)
	case KeyIsSupportedRequested:
		d.session.SendEligibility(ctx, false)
	case KeyProvisioningRequested:
		d.action(ctx, ActionProvisioningRequested)
		d.session.RequestTokenGeneration(ctx, m.Data)
	case KeyProvisioningResponse:
		d.session.StartPushProvisioning(ctx, m.Raw)
	case KeyWalletInformationRequested:
		d.session.SendWalletInformation(ctx)
	default:
		log.Warn("unknown bridge message")
		return fmt.Errorf("%w: %q", ErrUnknownKey, m.Key)
	}
	return nil
}

func (d *Dispatcher) action(ctx context.Context, a Action) {
	if d.actions == nil {
		d.log.Debug("no host action handler", "action", a.String())
		return
	}
	d.actions.HandleAction(ctx, a)
}
