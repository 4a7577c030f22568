package testmode

import (
	"context"
	"sync"

	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// Launch kinds recorded by FakeClient.
const (
	LaunchPushTokenize  = "pushTokenize"
	LaunchCreateWallet  = "createWallet"
	LaunchViewToken     = "viewToken"
	LaunchSelectDefault = "selectDefaultWallet"
)

// Launch is one platform UI flow started through FakeClient.
type Launch struct {
	Kind             string
	RequestCode      int
	Request          *interfaces.ProvisioningRequest
	TokenReferenceID string
}

// FakeClient is an in-memory interfaces.TokenizationClient.
type FakeClient struct {
	mu sync.Mutex

	environment   string
	walletID      string
	hardwareID    string
	defaultWallet bool
	tokens        []interfaces.TokenInfo
	failures      map[string]error
	launches      []Launch
	listener      func()
}

var _ interfaces.TokenizationClient = (*FakeClient)(nil)

// NewFakeClient returns a client for a device with an active wallet and no tokens.
func NewFakeClient(walletID, hardwareID string) *FakeClient {
	return &FakeClient{
		environment:   "SANDBOX",
		walletID:      walletID,
		hardwareID:    hardwareID,
		defaultWallet: true,
		failures:      make(map[string]error),
	}
}

// FailWith makes the named method return err. A nil err clears the failure.
// Method names are the interface method names, e.g. "GetActiveWalletID".
func (c *FakeClient) FailWith(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, method)
		return
	}
	c.failures[method] = err
}

func (c *FakeClient) failure(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[method]
}

// SetWalletID replaces the active wallet id. An empty id means no wallet.
func (c *FakeClient) SetWalletID(id string) {
	c.mu.Lock()
	c.walletID = id
	c.mu.Unlock()
}

// AddToken puts a token in the wallet and fires the data change listener.
func (c *FakeClient) AddToken(t interfaces.TokenInfo) {
	c.mu.Lock()
	c.tokens = append(c.tokens, t)
	listener := c.listener
	c.mu.Unlock()
	if listener != nil {
		listener()
	}
}

// Launches returns the platform flows started so far.
func (c *FakeClient) Launches() []Launch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Launch, len(c.launches))
	copy(out, c.launches)
	return out
}

// LastLaunch returns the most recent platform flow.
func (c *FakeClient) LastLaunch() (Launch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.launches) == 0 {
		return Launch{}, false
	}
	return c.launches[len(c.launches)-1], true
}

func (c *FakeClient) GetEnvironment(ctx context.Context) (string, error) {
	if err := c.failure("GetEnvironment"); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.environment, nil
}

func (c *FakeClient) GetActiveWalletID(ctx context.Context) (string, error) {
	if err := c.failure("GetActiveWalletID"); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.walletID == "" {
		return "", &interfaces.StatusError{Code: interfaces.StatusNoActiveWallet, Message: "TAP_AND_PAY_NO_ACTIVE_WALLET"}
	}
	return c.walletID, nil
}

func (c *FakeClient) GetStableHardwareID(ctx context.Context) (string, error) {
	if err := c.failure("GetStableHardwareID"); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hardwareID, nil
}

func (c *FakeClient) IsTokenized(ctx context.Context, q interfaces.TokenizedQuery) (bool, error) {
	if err := c.failure("IsTokenized"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tokens {
		if t.FPANLastFour == q.LastFourDigits && t.Network == q.Network && t.TokenServiceProvider == q.TokenServiceProvider {
			return true, nil
		}
	}
	return false, nil
}

func (c *FakeClient) IsDefaultWallet(ctx context.Context) (bool, error) {
	if err := c.failure("IsDefaultWallet"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultWallet, nil
}

func (c *FakeClient) ListTokens(ctx context.Context) ([]interfaces.TokenInfo, error) {
	if err := c.failure("ListTokens"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interfaces.TokenInfo, len(c.tokens))
	copy(out, c.tokens)
	return out, nil
}

func (c *FakeClient) GetTokenStatus(ctx context.Context, tsp interfaces.TokenServiceProvider, tokenReferenceID string) (interfaces.TokenStatus, error) {
	if err := c.failure("GetTokenStatus"); err != nil {
		return interfaces.TokenStatus{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tokens {
		if t.IssuerTokenID == tokenReferenceID && t.TokenServiceProvider == tsp {
			return interfaces.TokenStatus{TokenReferenceID: tokenReferenceID, State: t.TokenState}, nil
		}
	}
	return interfaces.TokenStatus{}, &interfaces.StatusError{Code: interfaces.StatusTokenNotFound, Message: "token not found"}
}

func (c *FakeClient) launch(method string, activity interfaces.Activity, l Launch) error {
	if err := c.failure(method); err != nil {
		return err
	}
	if activity == nil || activity.IsFinishing() {
		return interfaces.ErrLauncherUnavailable
	}
	c.mu.Lock()
	c.launches = append(c.launches, l)
	c.mu.Unlock()
	return nil
}

func (c *FakeClient) PushTokenize(activity interfaces.Activity, req *interfaces.ProvisioningRequest, requestCode int) error {
	return c.launch("PushTokenize", activity, Launch{Kind: LaunchPushTokenize, RequestCode: requestCode, Request: req})
}

func (c *FakeClient) CreateWallet(activity interfaces.Activity, requestCode int) error {
	return c.launch("CreateWallet", activity, Launch{Kind: LaunchCreateWallet, RequestCode: requestCode})
}

func (c *FakeClient) ViewToken(activity interfaces.Activity, tsp interfaces.TokenServiceProvider, tokenReferenceID string, requestCode int) error {
	return c.launch("ViewToken", activity, Launch{Kind: LaunchViewToken, RequestCode: requestCode, TokenReferenceID: tokenReferenceID})
}

func (c *FakeClient) RequestSelectDefaultWallet(activity interfaces.Activity, requestCode int) error {
	return c.launch("RequestSelectDefaultWallet", activity, Launch{Kind: LaunchSelectDefault, RequestCode: requestCode})
}

func (c *FakeClient) RegisterDataChangedListener(listener func()) error {
	if err := c.failure("RegisterDataChangedListener"); err != nil {
		return err
	}
	c.mu.Lock()
	c.listener = listener
	c.mu.Unlock()
	return nil
}

func (c *FakeClient) RemoveDataChangedListener() error {
	c.mu.Lock()
	c.listener = nil
	c.mu.Unlock()
	return nil
}

// FakeActivity is an Activity whose finishing state can be toggled.
type FakeActivity struct {
	mu        sync.Mutex
	finishing bool
}

func (a *FakeActivity) IsFinishing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finishing
}

// Finish marks the activity as finishing.
func (a *FakeActivity) Finish() {
	a.mu.Lock()
	a.finishing = true
	a.mu.Unlock()
}

// FakeDevice is a DeviceCapabilities with fixed answers.
type FakeDevice struct {
	Emulator     bool
	NFC          interfaces.NFCStatus
	PlayServices bool
	Class        interfaces.DeviceClass
	OSVersion    string
	SecondaryID  string
}

// NewFakeDevice returns a capable phone.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{
		NFC:          interfaces.NFCEnabled,
		PlayServices: true,
		Class:        interfaces.DevicePhone,
		OSVersion:    "14",
		SecondaryID:  "android-id-fake",
	}
}

func (d *FakeDevice) IsEmulator() bool                    { return d.Emulator }
func (d *FakeDevice) NFCStatus() interfaces.NFCStatus     { return d.NFC }
func (d *FakeDevice) PlayServicesAvailable() bool         { return d.PlayServices }
func (d *FakeDevice) DeviceClass() interfaces.DeviceClass { return d.Class }
func (d *FakeDevice) OSVersionLabel() string              { return d.OSVersion }

func (d *FakeDevice) SecondaryHardwareID() (string, error) {
	if d.SecondaryID == "" {
		return "", interfaces.ErrHardwareIDUnavailable
	}
	return d.SecondaryID, nil
}
