package gateway

import (
	"context"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockClient mocks the interfaces.TokenizationClient interface
type MockClient struct {
	mock.Mock
}

var _ interfaces.TokenizationClient = (*MockClient)(nil)

// GetEnvironment mocks the GetEnvironment method
func (m *MockClient) GetEnvironment(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// GetActiveWalletID mocks the GetActiveWalletID method
func (m *MockClient) GetActiveWalletID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// GetStableHardwareID mocks the GetStableHardwareID method
func (m *MockClient) GetStableHardwareID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// IsTokenized mocks the IsTokenized method
func (m *MockClient) IsTokenized(ctx context.Context, query interfaces.TokenizedQuery) (bool, error) {
	args := m.Called(ctx, query)
	return args.Bool(0), args.Error(1)
}

// IsDefaultWallet mocks the IsDefaultWallet method
func (m *MockClient) IsDefaultWallet(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// ListTokens mocks the ListTokens method
func (m *MockClient) ListTokens(ctx context.Context) ([]interfaces.TokenInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]interfaces.TokenInfo), args.Error(1)
}

// GetTokenStatus mocks the GetTokenStatus method
func (m *MockClient) GetTokenStatus(ctx context.Context, tsp interfaces.TokenServiceProvider, tokenReferenceID string) (interfaces.TokenStatus, error) {
	args := m.Called(ctx, tsp, tokenReferenceID)
	return args.Get(0).(interfaces.TokenStatus), args.Error(1)
}

// PushTokenize mocks the PushTokenize method
func (m *MockClient) PushTokenize(activity interfaces.Activity, req *interfaces.ProvisioningRequest, requestCode int) error {
	args := m.Called(activity, req, requestCode)
	return args.Error(0)
}

// CreateWallet mocks the CreateWallet method
func (m *MockClient) CreateWallet(activity interfaces.Activity, requestCode int) error {
	args := m.Called(activity, requestCode)
	return args.Error(0)
}

// ViewToken mocks the ViewToken method
func (m *MockClient) ViewToken(activity interfaces.Activity, tsp interfaces.TokenServiceProvider, tokenReferenceID string, requestCode int) error {
	args := m.Called(activity, tsp, tokenReferenceID, requestCode)
	return args.Error(0)
}

// RequestSelectDefaultWallet mocks the RequestSelectDefaultWallet method
func (m *MockClient) RequestSelectDefaultWallet(activity interfaces.Activity, requestCode int) error {
	args := m.Called(activity, requestCode)
	return args.Error(0)
}

// RegisterDataChangedListener mocks the RegisterDataChangedListener method
func (m *MockClient) RegisterDataChangedListener(listener func()) error {
	args := m.Called(listener)
	return args.Error(0)
}

// RemoveDataChangedListener mocks the RemoveDataChangedListener method
func (m *MockClient) RemoveDataChangedListener() error {
	args := m.Called()
	return args.Error(0)
}
