package provisioning

import (
	"context"
	"strings"
	"time"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/notifier"
	"golang.org/x/sync/errgroup"
)

// EnvironmentInfoTimeout bounds GetEnvironmentInfo.
const EnvironmentInfoTimeout = 5 * time.Second

// Eligibility is the answer to the is-supported request.
type Eligibility struct {
	IsSupported bool   `json:"isSupported"`
	Details     string `json:"details"`
}

// CheckEligibility decides whether cards can be added to the wallet on this
// device. Every check runs and contributes a line to Details.
func (s *SDK) CheckEligibility(ctx context.Context) Eligibility {
	if s.sim.Active() {
		ok := s.gateway.IsTokenizationAvailable(ctx)
		return Eligibility{IsSupported: ok, Details: "Test mode enabled"}
	}

	var details []string
	eligible := true
	if device := s.gateway.Device(); device != nil {
		if device.IsEmulator() {
			eligible = false
			details = append(details, "Device is an emulator - Google Wallet requires a real device")
		}
		switch device.NFCStatus() {
		case interfaces.NFCNotSupported:
			eligible = false
			details = append(details, "Device does not support NFC")
		case interfaces.NFCDisabled:
			eligible = false
			details = append(details, "NFC is disabled - please enable in device settings")
		case interfaces.NFCEnabled:
			details = append(details, "NFC is enabled")
		}
		if device.PlayServicesAvailable() {
			details = append(details, "Google Play Services available")
		} else {
			eligible = false
			details = append(details, "Google Play Services not available")
		}
	}
	if s.gateway.IsTokenizationAvailable(ctx) {
		details = append(details, "TapAndPay API available")
	} else {
		eligible = false
		details = append(details, "TapAndPay API not available")
	}

	e := Eligibility{IsSupported: eligible, Details: strings.Join(details, "; ")}
	s.log.Debug("eligibility check complete", "eligible", e.IsSupported, "details", e.Details)
	return e
}

type eligibilityResponse struct {
	Eligibility
	Timestamp int64 `json:"timestamp"`
	Automatic bool  `json:"automatic"`
}

// SendEligibility answers the page's is-supported request. automatic marks
// checks the session ran on its own.
func (s *SDK) SendEligibility(ctx context.Context, automatic bool) {
	e := s.CheckEligibility(ctx)
	s.notifier.EmitJSON(notifier.IsSupportedFunction, eligibilityResponse{
		Eligibility: e,
		Timestamp:   s.notifier.Now().UnixMilli(),
		Automatic:   automatic,
	})
}

// EnvironmentInfo describes the wallet environment of the device.
type EnvironmentInfo struct {
	Environment     string `json:"environment"`
	IsDefaultWallet bool   `json:"isGooglePayDefault"`
	NFCStatus       string `json:"nfcStatus"`
	HardwareID      string `json:"hardwareId,omitempty"`
	WalletID        string `json:"walletId,omitempty"`
}

// GetEnvironmentInfo collects the environment in parallel. Parts that fail
// or do not answer within EnvironmentInfoTimeout are left empty, except the
// environment name, which becomes UNKNOWN, and the hardware id, which is
// taken from the fallback descriptor.
func (s *SDK) GetEnvironmentInfo(ctx context.Context) EnvironmentInfo {
	ctx, cancel := context.WithTimeout(ctx, EnvironmentInfoTimeout)
	defer cancel()

	info := EnvironmentInfo{NFCStatus: interfaces.NFCNotSupported.String()}
	if device := s.gateway.Device(); device != nil {
		info.NFCStatus = device.NFCStatus().String()
	}

	var g errgroup.Group
	g.Go(func() error {
		env, err := s.gateway.GetEnvironment(ctx)
		if err != nil {
			s.log.Debug("environment unavailable", "err", err)
			return nil
		}
		info.Environment = env
		return nil
	})
	g.Go(func() error {
		isDefault, err := s.gateway.IsDefaultWallet(ctx)
		if err != nil {
			s.log.Debug("default wallet state unavailable", "err", err)
			return nil
		}
		info.IsDefaultWallet = isDefault
		return nil
	})
	g.Go(func() error {
		id, err := s.gateway.GetStableHardwareID(ctx)
		if err != nil {
			s.log.Debug("hardware id unavailable", "err", err)
			info.HardwareID = s.identity.Fallback().StableHardwareID
			return nil
		}
		info.HardwareID = id
		return nil
	})
	g.Go(func() error {
		id, err := s.gateway.GetActiveWalletID(ctx)
		if err != nil {
			s.log.Debug("wallet id unavailable", "err", err)
			return nil
		}
		info.WalletID = id
		return nil
	})
	_ = g.Wait()

	if info.Environment == "" {
		info.Environment = "UNKNOWN"
	}
	return info
}

type walletInfoError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// WalletInfo is the answer to the wallet information request.
type WalletInfo struct {
	Success        bool             `json:"success"`
	ActiveWalletID string           `json:"activeWalletId,omitempty"`
	Timestamp      int64            `json:"timestamp,omitempty"`
	Error          *walletInfoError `json:"error,omitempty"`
}

// GetWalletInfo returns the active wallet id, or a WALLET_ID_ERROR answer.
func (s *SDK) GetWalletInfo(ctx context.Context) WalletInfo {
	now := s.notifier.Now().UnixMilli()
	id, err := s.gateway.GetActiveWalletID(ctx)
	if err != nil {
		s.log.Warn("failed to get active wallet id", "err", err)
		return WalletInfo{
			Success: false,
			Error: &walletInfoError{
				Code:      interfaces.ErrorWalletID,
				Message:   "Failed to get active wallet ID",
				Timestamp: now,
			},
		}
	}
	return WalletInfo{Success: true, ActiveWalletID: id, Timestamp: now}
}

// SendWalletInformation answers the page's wallet information request.
func (s *SDK) SendWalletInformation(ctx context.Context) {
	s.notifier.EmitJSON(notifier.WalletInformationFunction, s.GetWalletInfo(ctx))
}
