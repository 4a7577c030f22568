package provisioning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/accruesavings/wallet-provisioning/bridge"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/notifier"
)

// DeviceInfo is the device descriptor as the page receives it before
// generating the provisioning token.
type DeviceInfo struct {
	DeviceID               string `json:"deviceId"`
	DeviceType             string `json:"deviceType"`
	ProvisioningAppVersion string `json:"provisioningAppVersion"`
	WalletAccountID        string `json:"walletAccountId"`
	// MockedData echoes the request data when it carried a tokenId.
	MockedData json.RawMessage `json:"mockedData,omitempty"`
}

func deviceInfoFrom(d interfaces.DeviceDescriptor) *DeviceInfo {
	return &DeviceInfo{
		DeviceID:               d.StableHardwareID,
		DeviceType:             d.DeviceClass.String(),
		ProvisioningAppVersion: d.OSVersionLabel,
		WalletAccountID:        d.WalletAccountID,
	}
}

// DeviceInfo resolves the device descriptor of the session.
func (s *SDK) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	if s.sim.Active() {
		d, err := s.sim.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		return deviceInfoFrom(d), nil
	}
	d, err := s.identity.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device info: %w", err)
	}
	return deviceInfoFrom(d), nil
}

// GetDeviceInfo resolves the device descriptor in the background and hands
// it to callback, or nil when it is unavailable.
func (s *SDK) GetDeviceInfo(ctx context.Context, callback func(*DeviceInfo)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		info, err := s.DeviceInfo(ctx)
		if err != nil {
			s.log.Warn("device info unavailable", "err", err)
			callback(nil)
			return
		}
		callback(info)
	}()
}

// IsTokenizationAvailable probes the platform in the background and hands
// the answer to callback.
func (s *SDK) IsTokenizationAvailable(ctx context.Context, callback func(bool)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		callback(s.gateway.IsTokenizationAvailable(ctx))
	}()
}

// RequestTokenGeneration sends the device info to the page so it can
// generate the provisioning token. data is the data member of the request.
func (s *SDK) RequestTokenGeneration(ctx context.Context, data json.RawMessage) {
	info, err := s.DeviceInfo(ctx)
	if err != nil {
		s.log.Error("cannot send device info", "err", err)
		s.notifier.NotifyError(interfaces.ErrorDeviceInfoUnavailable,
			"Device info is null, cannot proceed with provisioning request.", "")
		return
	}
	if (bridge.Message{Data: data}).DataHasField("tokenId") {
		info.MockedData = data
		s.log.Info("added mocked data to device info")
	}
	s.log.Info("sending device info to web", "deviceType", info.DeviceType)
	s.notifier.EmitJSON(notifier.GenerateTokenFunction, info)
}
