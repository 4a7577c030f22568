package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/accruesavings/wallet-provisioning/gateway"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticSource struct {
	id  string
	err error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) WalletAccountID(ctx context.Context) (string, error) {
	return s.id, s.err
}

func TestResolveCachesHardwareID(t *testing.T) {
	client := new(gateway.MockClient)
	client.On("GetStableHardwareID", mock.Anything).Return("hw-1", nil).Once()
	client.On("GetActiveWalletID", mock.Anything).Return("wallet-1", nil).Twice()
	device := testmode.NewFakeDevice()
	device.Class = interfaces.DeviceTablet
	g := gateway.NewGateway(testLogger(), client, device, nil)
	r := NewResolver(testLogger(), g, device)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, interfaces.DeviceDescriptor{
		StableHardwareID: "hw-1",
		DeviceClass:      interfaces.DeviceTablet,
		OSVersionLabel:   "14",
		WalletAccountID:  "wallet-1",
	}, d)

	// The hardware id is served from the cache, the wallet id is queried again.
	again, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d, again)
	client.AssertExpectations(t)

	r.ClearCache()
	_, ok := r.Cached()
	assert.False(t, ok)
}

func TestResolveRebuildsOnWalletChange(t *testing.T) {
	client := testmode.NewFakeClient("wallet-1", "hw-1")
	g := gateway.NewGateway(testLogger(), client, nil, nil)
	r := NewResolver(testLogger(), g, nil)

	before, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", before.WalletAccountID)

	client.SetWalletID("wallet-2")
	after, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wallet-2", after.WalletAccountID)
	assert.Equal(t, before.StableHardwareID, after.StableHardwareID)
	assert.Equal(t, before.WithWalletAccount("wallet-2"), after)

	// The earlier descriptor is a value and keeps its account.
	assert.Equal(t, "wallet-1", before.WalletAccountID)
	cached, ok := r.Cached()
	require.True(t, ok)
	assert.Equal(t, after, cached)

	// Losing the wallet fails resolution instead of serving the old account.
	client.SetWalletID("")
	_, err = r.Resolve(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrNoActiveWallet)
}

func TestResolveFailsWhenEitherLookupFails(t *testing.T) {
	client := new(gateway.MockClient)
	client.On("GetStableHardwareID", mock.Anything).Return("hw-1", nil)
	client.On("GetActiveWalletID", mock.Anything).Return("", &interfaces.StatusError{Code: interfaces.StatusNoActiveWallet, Message: "none"})
	g := gateway.NewGateway(testLogger(), client, nil, nil)
	r := NewResolver(testLogger(), g, nil)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrNoActiveWallet)
	_, ok := r.Cached()
	assert.False(t, ok)
}

func TestResolveUsesWalletFallbackChain(t *testing.T) {
	client := new(gateway.MockClient)
	client.On("GetStableHardwareID", mock.Anything).Return("hw-1", nil)
	client.On("GetActiveWalletID", mock.Anything).Return("", interfaces.ErrUnsupportedOperation)
	g := gateway.NewGateway(testLogger(), client, nil, nil)
	r := NewResolver(testLogger(), g, nil,
		staticSource{err: errors.New("not signed in")},
		staticSource{id: "account@example.com"},
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "account@example.com", d.WalletAccountID)
	assert.Equal(t, interfaces.DevicePhone, d.DeviceClass)
	assert.Equal(t, "unknown", d.OSVersionLabel)
}

func TestFallbackDescriptor(t *testing.T) {
	r := NewResolver(testLogger(), gateway.NewGateway(testLogger(), nil, nil, nil), nil)

	d := r.Fallback()
	assert.Equal(t, interfaces.UnknownHardwareID, d.StableHardwareID)
	assert.Equal(t, interfaces.DevicePhone, d.DeviceClass)
	assert.True(t, d.IsFallback())
	assert.Equal(t, "MOBILE_PHONE", d.DeviceClass.String())
}
