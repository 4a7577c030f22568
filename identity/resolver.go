// Package identity combines the stable hardware id and the active wallet id
// into a device descriptor.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"golang.org/x/sync/errgroup"
)

// Platform is the part of the gateway the resolver needs.
type Platform interface {
	GetActiveWalletID(ctx context.Context) (string, error)
	GetStableHardwareID(ctx context.Context) (string, error)
}

// WalletIDSource is an alternative source of the wallet account id, consulted
// in order when the platform has no active wallet.
type WalletIDSource interface {
	Name() string
	WalletAccountID(ctx context.Context) (string, error)
}

// Resolver resolves the DeviceDescriptor of one session. Only the hardware
// id is cached; the wallet account is read on every Resolve.
type Resolver struct {
	log      *slog.Logger
	platform Platform
	device   interfaces.DeviceCapabilities
	sources  []WalletIDSource

	mu         sync.Mutex
	hardwareID string
	cached     *interfaces.DeviceDescriptor
}

// NewResolver creates a resolver. device may be nil, in which case the
// descriptor reports a phone with an unknown os version.
func NewResolver(log *slog.Logger, platform Platform, device interfaces.DeviceCapabilities, fallbacks ...WalletIDSource) *Resolver {
	return &Resolver{
		log:      log,
		platform: platform,
		device:   device,
		sources:  fallbacks,
	}
}

// Resolve returns the device descriptor. The wallet account id is queried
// each time, concurrently with the hardware id when that is not cached yet;
// both must succeed. A wallet account change yields a new descriptor, the
// previous one is never modified.
func (r *Resolver) Resolve(ctx context.Context) (interfaces.DeviceDescriptor, error) {
	r.mu.Lock()
	hardwareID := r.hardwareID
	r.mu.Unlock()

	var walletID string
	g, gctx := errgroup.WithContext(ctx)
	if hardwareID == "" {
		g.Go(func() error {
			id, err := r.platform.GetStableHardwareID(gctx)
			if err != nil {
				return fmt.Errorf("failed to resolve hardware id: %w", err)
			}
			hardwareID = id
			return nil
		})
	}
	g.Go(func() error {
		id, err := r.walletAccountID(gctx)
		if err != nil {
			return fmt.Errorf("failed to resolve wallet account id: %w", err)
		}
		walletID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		r.log.Warn("device descriptor unavailable", "err", err)
		return interfaces.DeviceDescriptor{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hardwareID == "" {
		r.hardwareID = hardwareID
	}
	if r.cached != nil && r.cached.StableHardwareID == r.hardwareID {
		if r.cached.WalletAccountID != walletID {
			r.log.Info("wallet account changed, rebuilding device descriptor")
			d := r.cached.WithWalletAccount(walletID)
			r.cached = &d
		}
		return *r.cached, nil
	}

	d := interfaces.DeviceDescriptor{
		StableHardwareID: r.hardwareID,
		DeviceClass:      r.deviceClass(),
		OSVersionLabel:   r.osVersion(),
		WalletAccountID:  walletID,
	}
	r.cached = &d
	r.log.Debug("device descriptor resolved", "deviceType", d.DeviceClass.String())
	return d, nil
}

func (r *Resolver) walletAccountID(ctx context.Context) (string, error) {
	id, err := r.platform.GetActiveWalletID(ctx)
	if err == nil {
		return id, nil
	}
	errs := []error{err}
	for _, src := range r.sources {
		alt, srcErr := src.WalletAccountID(ctx)
		if srcErr == nil && alt != "" {
			r.log.Info("using fallback wallet account id", "source", src.Name())
			return alt, nil
		}
		if srcErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), srcErr))
		}
	}
	return "", errors.Join(errs...)
}

// Fallback returns the degraded descriptor for informational calls. It must
// never be used to tokenize a card; IsFallback reports true for it.
func (r *Resolver) Fallback() interfaces.DeviceDescriptor {
	return interfaces.DeviceDescriptor{
		StableHardwareID: interfaces.UnknownHardwareID,
		DeviceClass:      interfaces.DevicePhone,
		OSVersionLabel:   r.osVersion(),
		WalletAccountID:  "",
	}
}

// Cached returns the last resolved descriptor without querying the
// platform. Its wallet account may be stale.
func (r *Resolver) Cached() (interfaces.DeviceDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		return interfaces.DeviceDescriptor{}, false
	}
	return *r.cached, true
}

// ClearCache drops the cached hardware id and descriptor.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.hardwareID = ""
	r.cached = nil
	r.mu.Unlock()
}

func (r *Resolver) deviceClass() interfaces.DeviceClass {
	if r.device == nil {
		return interfaces.DevicePhone
	}
	return r.device.DeviceClass()
}

func (r *Resolver) osVersion() string {
	if r.device == nil || r.device.OSVersionLabel() == "" {
		return "unknown"
	}
	return r.device.OSVersionLabel()
}
