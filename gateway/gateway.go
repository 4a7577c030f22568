// Package gateway wraps the platform tokenization client behind a typed API
// whose availability checks never fail.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/testmode"
)

// Tokenized is the answer of the de-duplication check.
type Tokenized int

const (
	TokenizedUnknown Tokenized = iota
	NotTokenized
	AlreadyTokenized
)

func (t Tokenized) String() string {
	switch t {
	case NotTokenized:
		return "false"
	case AlreadyTokenized:
		return "true"
	default:
		return "unknown"
	}
}

// Gateway is the only component that talks to the tokenization client.
//
// While the simulator is active every query is answered by it instead and
// the client is never called.
type Gateway struct {
	log    *slog.Logger
	client interfaces.TokenizationClient
	device interfaces.DeviceCapabilities
	sim    *testmode.Simulator
}

// NewGateway creates a gateway. client may be nil when the platform client
// could not be created; every query then degrades as for an unavailable
// platform. device and sim are optional.
func NewGateway(log *slog.Logger, client interfaces.TokenizationClient, device interfaces.DeviceCapabilities, sim *testmode.Simulator) *Gateway {
	return &Gateway{
		log:    log,
		client: client,
		device: device,
		sim:    sim,
	}
}

// Client returns the wrapped client, or nil.
func (g *Gateway) Client() interfaces.TokenizationClient {
	return g.client
}

// Device returns the device capabilities, or nil.
func (g *Gateway) Device() interfaces.DeviceCapabilities {
	return g.device
}

// diagnose logs the platform failure with a hint for the well known cases.
func (g *Gateway) diagnose(op string, err error) {
	switch {
	case errors.Is(err, interfaces.ErrUnsupportedOperation):
		g.log.Warn("operation not supported on this device", "op", op, "err", err)
	case IsPackageNotVerified(err):
		g.log.Error("package verification failed, the app is not registered with the wallet console", "op", op, "err", err)
	case errors.Is(err, interfaces.ErrNoActiveWallet):
		g.log.Warn("no active wallet", "op", op, "err", err)
	default:
		if code, ok := interfaces.StatusCode(err); ok && code == interfaces.StatusAttestationError {
			g.log.Error("device attestation failed", "op", op, "err", err)
			return
		}
		g.log.Error("platform call failed", "op", op, "err", err)
	}
}

// IsPackageNotVerified reports whether err is the platform refusing an
// unregistered calling package.
func IsPackageNotVerified(err error) bool {
	return err != nil && strings.Contains(err.Error(), interfaces.PackageNotVerifiedMessage)
}

// IsTokenizationAvailable reports whether tap-to-pay is usable. Any failure,
// including an unsupported operation, yields false.
func (g *Gateway) IsTokenizationAvailable(ctx context.Context) bool {
	if g.sim.Active() {
		return g.sim.IsTokenizationAvailable(ctx)
	}
	if g.client == nil {
		g.log.Warn("tokenization client is not available")
		return false
	}
	env, err := g.client.GetEnvironment(ctx)
	if err != nil {
		g.diagnose("GetEnvironment", err)
		return false
	}
	g.log.Debug("tokenization available", "environment", env)
	return true
}

// IsWalletAvailable reports whether an active wallet exists.
func (g *Gateway) IsWalletAvailable(ctx context.Context) bool {
	if g.sim.Active() {
		return g.sim.IsWalletAvailable(ctx)
	}
	_, err := g.GetActiveWalletID(ctx)
	return err == nil
}

// GetActiveWalletID returns the active wallet id.
//
// Returns:
//   - interfaces.ErrClientUnavailable when no client is bound or the platform is unavailable
//   - interfaces.ErrNoActiveWallet when the device has no wallet
//   - the wrapped platform error otherwise
func (g *Gateway) GetActiveWalletID(ctx context.Context) (string, error) {
	if g.sim.Active() {
		return g.sim.GetActiveWalletID(ctx)
	}
	if g.client == nil {
		return "", interfaces.ErrClientUnavailable
	}
	id, err := g.client.GetActiveWalletID(ctx)
	if err != nil {
		g.diagnose("GetActiveWalletID", err)
		return "", fmt.Errorf("failed to get active wallet id: %w", err)
	}
	if id == "" {
		g.log.Warn("empty wallet id returned")
		return "", interfaces.ErrNoActiveWallet
	}
	return id, nil
}

// GetStableHardwareID returns the wallet-scoped device id. When the platform
// call is unsupported or returns nothing, the secondary OS-level id is used.
func (g *Gateway) GetStableHardwareID(ctx context.Context) (string, error) {
	if g.sim.Active() {
		return g.sim.GetStableHardwareID(ctx)
	}
	var primaryErr error
	if g.client == nil {
		primaryErr = interfaces.ErrClientUnavailable
	} else {
		id, err := g.client.GetStableHardwareID(ctx)
		switch {
		case err == nil && id != "":
			return id, nil
		case err == nil:
			primaryErr = errors.New("empty hardware id returned")
		default:
			g.diagnose("GetStableHardwareID", err)
			primaryErr = err
		}
	}
	if g.device == nil {
		return "", fmt.Errorf("%w: %w", interfaces.ErrHardwareIDUnavailable, primaryErr)
	}
	id, err := g.device.SecondaryHardwareID()
	if err != nil || id == "" {
		g.log.Error("secondary hardware id unavailable", "err", err)
		return "", fmt.Errorf("%w: %w", interfaces.ErrHardwareIDUnavailable, primaryErr)
	}
	g.log.Debug("using secondary hardware id", "primaryErr", primaryErr)
	return id, nil
}

// Tokenize launches the platform push provisioning flow. It returns once the
// flow is started; the outcome arrives later as a deferred result tagged
// with requestCode.
func (g *Gateway) Tokenize(activity interfaces.Activity, req *interfaces.ProvisioningRequest, requestCode int) error {
	if g.client == nil {
		return interfaces.ErrClientUnavailable
	}
	if activity == nil || activity.IsFinishing() {
		return interfaces.ErrLauncherUnavailable
	}
	if req == nil {
		return fmt.Errorf("%w: nil provisioning request", interfaces.ErrInvalidArgument)
	}
	if err := g.client.PushTokenize(activity, req, requestCode); err != nil {
		g.diagnose("PushTokenize", err)
		return fmt.Errorf("failed to launch push provisioning: %w", err)
	}
	g.log.Info("push provisioning launched", "requestCode", requestCode, "network", req.Network.String(), "lastDigits", req.LastFourDigits)
	return nil
}

// IsAlreadyTokenized checks whether the card is already in the wallet. Any
// failure yields TokenizedUnknown.
func (g *Gateway) IsAlreadyTokenized(ctx context.Context, req *interfaces.ProvisioningRequest) Tokenized {
	if g.sim.Active() {
		tokenized, err := g.sim.IsAlreadyTokenized(ctx)
		if err != nil {
			return TokenizedUnknown
		}
		return boolToTokenized(tokenized)
	}
	if g.client == nil || req == nil || req.LastFourDigits == "" {
		return TokenizedUnknown
	}
	tokenized, err := g.client.IsTokenized(ctx, interfaces.TokenizedQuery{
		LastFourDigits:       req.LastFourDigits,
		Network:              req.Network,
		TokenServiceProvider: req.TokenServiceProvider,
	})
	if err != nil {
		g.diagnose("IsTokenized", err)
		return TokenizedUnknown
	}
	return boolToTokenized(tokenized)
}

func boolToTokenized(b bool) Tokenized {
	if b {
		return AlreadyTokenized
	}
	return NotTokenized
}
