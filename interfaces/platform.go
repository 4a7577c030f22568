package interfaces

import "context"

// Activity is the host screen that launches platform-owned UI flows and
// receives their deferred results.
type Activity interface {
	// IsFinishing reports whether the host is being torn down. Platform flows
	// must not be launched on a finishing host.
	IsFinishing() bool
}

// TokenizedQuery identifies a card for the de-duplication check.
type TokenizedQuery struct {
	LastFourDigits       string
	Network              CardNetwork
	TokenServiceProvider TokenServiceProvider
}

// TokenizationClient is the platform's tap-to-pay client.
//
// Calls that query state take a context and may block until the platform
// answers. Calls that launch a platform UI flow return as soon as the flow is
// started; their outcome arrives later through the host's deferred result
// channel tagged with the supplied request code.
type TokenizationClient interface {
	// GetEnvironment returns the platform environment name (PROD, SANDBOX, ...).
	GetEnvironment(ctx context.Context) (string, error)
	// GetActiveWalletID returns the active wallet id or a *StatusError.
	GetActiveWalletID(ctx context.Context) (string, error)
	// GetStableHardwareID returns the wallet-scoped device id.
	GetStableHardwareID(ctx context.Context) (string, error)
	// IsTokenized reports whether a matching card is already in the wallet.
	IsTokenized(ctx context.Context, query TokenizedQuery) (bool, error)
	// IsDefaultWallet reports whether the wallet is the default NFC payment app.
	IsDefaultWallet(ctx context.Context) (bool, error)
	// ListTokens returns every token in the active wallet.
	ListTokens(ctx context.Context) ([]TokenInfo, error)
	// GetTokenStatus returns the state of one token.
	GetTokenStatus(ctx context.Context, tsp TokenServiceProvider, tokenReferenceID string) (TokenStatus, error)

	// PushTokenize launches the push provisioning flow.
	PushTokenize(activity Activity, req *ProvisioningRequest, requestCode int) error
	// CreateWallet launches the wallet creation flow.
	CreateWallet(activity Activity, requestCode int) error
	// ViewToken opens the wallet on the given token.
	ViewToken(activity Activity, tsp TokenServiceProvider, tokenReferenceID string, requestCode int) error
	// RequestSelectDefaultWallet asks the user to make the wallet the default NFC app.
	RequestSelectDefaultWallet(activity Activity, requestCode int) error

	// RegisterDataChangedListener installs the single data change listener.
	RegisterDataChangedListener(listener func()) error
	// RemoveDataChangedListener uninstalls the data change listener.
	RemoveDataChangedListener() error
}

// DeviceCapabilities exposes device facts collected outside the provisioning core.
type DeviceCapabilities interface {
	IsEmulator() bool
	NFCStatus() NFCStatus
	PlayServicesAvailable() bool
	DeviceClass() DeviceClass
	OSVersionLabel() string
	// SecondaryHardwareID is the OS-level device id used when the wallet
	// hardware id cannot be obtained.
	SecondaryHardwareID() (string, error)
}

// WebViewHost is the embedded web view the bridge talks to.
type WebViewHost interface {
	// Post schedules fn on the web view's UI context.
	Post(fn func())
	// EvaluateScript runs script in the page. It must only be called from a
	// function passed to Post.
	EvaluateScript(script string)
}

// ResultExtras are the key/value extras attached to a deferred platform result.
type ResultExtras map[string]any

// String returns the string value stored under key.
func (e ResultExtras) String(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e[key].(string)
	return v, ok && v != ""
}

// Status returns the platform status object attached to the result, if any.
// The status may be stored as a PlatformStatus value, a pointer to one, or a
// decoded JSON object with statusCode/statusMessage fields.
func (e ResultExtras) Status() (*PlatformStatus, bool) {
	if e == nil {
		return nil, false
	}
	switch s := e[ExtraStatus].(type) {
	case PlatformStatus:
		return &s, true
	case *PlatformStatus:
		return s, s != nil
	case map[string]any:
		status := &PlatformStatus{}
		if msg, ok := s["statusMessage"].(string); ok {
			status.Message = msg
		}
		switch code := s["statusCode"].(type) {
		case float64:
			status.Code = int(code)
		case int:
			status.Code = code
		}
		return status, true
	}
	return nil, false
}

// PlatformStatus is the status object the platform attaches to failed results.
type PlatformStatus struct {
	Code    int    `json:"statusCode"`
	Message string `json:"statusMessage"`
}

// Keys and values of deferred platform results.
const (
	ExtraIssuerTokenID = "extra_issuer_token_id"
	ExtraErrorMessage  = "error_message"
	ExtraErrorCode     = "error_code"
	ExtraStatus        = "status"

	ResultOK       = -1
	ResultCanceled = 0
)

// Platform status codes.
const (
	StatusNoActiveWallet    = 15002
	StatusTokenNotFound     = 15003
	StatusInvalidTokenState = 15004
	StatusAttestationError  = 15005
	StatusUnavailable       = 15009
)
