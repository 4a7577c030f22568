package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// GetEnvironment returns the platform environment name.
func (g *Gateway) GetEnvironment(ctx context.Context) (string, error) {
	if g.sim.Active() {
		return g.sim.GetEnvironment(ctx)
	}
	if g.client == nil {
		return "", interfaces.ErrClientUnavailable
	}
	env, err := g.client.GetEnvironment(ctx)
	if err != nil {
		g.diagnose("GetEnvironment", err)
		return "", fmt.Errorf("failed to get environment: %w", err)
	}
	return env, nil
}

// IsDefaultWallet reports whether the wallet is the default payment app.
// Unsupported devices report false.
func (g *Gateway) IsDefaultWallet(ctx context.Context) (bool, error) {
	if g.sim.Active() {
		return g.sim.IsDefaultWallet(ctx)
	}
	if g.client == nil {
		return false, interfaces.ErrClientUnavailable
	}
	ok, err := g.client.IsDefaultWallet(ctx)
	if errors.Is(err, interfaces.ErrUnsupportedOperation) {
		g.diagnose("IsDefaultWallet", err)
		return false, nil
	}
	if err != nil {
		g.diagnose("IsDefaultWallet", err)
		return false, fmt.Errorf("failed to check default wallet: %w", err)
	}
	return ok, nil
}

// ListTokens returns the tokens in the active wallet. Unsupported devices
// report an empty wallet.
func (g *Gateway) ListTokens(ctx context.Context) ([]interfaces.TokenInfo, error) {
	if g.sim.Active() {
		return g.sim.ListTokens(ctx)
	}
	if g.client == nil {
		return nil, interfaces.ErrClientUnavailable
	}
	tokens, err := g.client.ListTokens(ctx)
	if errors.Is(err, interfaces.ErrUnsupportedOperation) {
		g.diagnose("ListTokens", err)
		return []interfaces.TokenInfo{}, nil
	}
	if err != nil {
		g.diagnose("ListTokens", err)
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// GetTokenStatus returns the platform state of one token.
func (g *Gateway) GetTokenStatus(ctx context.Context, tsp interfaces.TokenServiceProvider, tokenReferenceID string) (interfaces.TokenStatus, error) {
	if tokenReferenceID == "" {
		return interfaces.TokenStatus{}, fmt.Errorf("%w: empty token reference id", interfaces.ErrInvalidArgument)
	}
	if g.sim.Active() {
		return g.sim.GetTokenStatus(ctx, tokenReferenceID)
	}
	if g.client == nil {
		return interfaces.TokenStatus{}, interfaces.ErrClientUnavailable
	}
	status, err := g.client.GetTokenStatus(ctx, tsp, tokenReferenceID)
	if err != nil {
		g.diagnose("GetTokenStatus", err)
		return interfaces.TokenStatus{}, fmt.Errorf("failed to get token status: %w", err)
	}
	return status, nil
}

func (g *Gateway) checkLauncher(activity interfaces.Activity) error {
	if g.client == nil && !g.sim.Active() {
		return interfaces.ErrClientUnavailable
	}
	if activity == nil || activity.IsFinishing() {
		return interfaces.ErrLauncherUnavailable
	}
	return nil
}

// ViewToken opens the wallet on the given token. While the simulator is
// active the flow is simulated and its result delivered under requestCode.
func (g *Gateway) ViewToken(activity interfaces.Activity, tsp interfaces.TokenServiceProvider, tokenReferenceID string, requestCode int) error {
	if err := g.checkLauncher(activity); err != nil {
		return err
	}
	if g.sim.Active() {
		g.sim.LaunchFlow("ViewToken", requestCode)
		return nil
	}
	if err := g.client.ViewToken(activity, tsp, tokenReferenceID, requestCode); err != nil {
		g.diagnose("ViewToken", err)
		return fmt.Errorf("failed to view token: %w", err)
	}
	return nil
}

// CreateWallet launches the wallet creation flow.
func (g *Gateway) CreateWallet(activity interfaces.Activity, requestCode int) error {
	if err := g.checkLauncher(activity); err != nil {
		return err
	}
	if g.sim.Active() {
		g.sim.LaunchFlow("CreateWallet", requestCode)
		return nil
	}
	if err := g.client.CreateWallet(activity, requestCode); err != nil {
		g.diagnose("CreateWallet", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// SetDefaultWallet asks the user to make the wallet the default payment app.
func (g *Gateway) SetDefaultWallet(activity interfaces.Activity, requestCode int) error {
	if err := g.checkLauncher(activity); err != nil {
		return err
	}
	if g.sim.Active() {
		g.sim.LaunchFlow("RequestSelectDefaultWallet", requestCode)
		return nil
	}
	if err := g.client.RequestSelectDefaultWallet(activity, requestCode); err != nil {
		g.diagnose("RequestSelectDefaultWallet", err)
		return fmt.Errorf("failed to request default wallet: %w", err)
	}
	return nil
}

// WatchDataChanges installs fn as the platform data change listener.
func (g *Gateway) WatchDataChanges(fn func()) error {
	if g.client == nil {
		return interfaces.ErrClientUnavailable
	}
	if err := g.client.RegisterDataChangedListener(fn); err != nil {
		g.diagnose("RegisterDataChangedListener", err)
		return fmt.Errorf("failed to register data change listener: %w", err)
	}
	return nil
}

// StopDataChanges removes the data change listener.
func (g *Gateway) StopDataChanges() {
	if g.client == nil {
		return
	}
	if err := g.client.RemoveDataChangedListener(); err != nil {
		g.log.Warn("failed to remove data change listener", "err", err)
	}
}
