package interfaces

import (
	"strings"
	"time"
)

// DeviceClass is the form factor reported to the token service provider.
type DeviceClass int

const (
	DevicePhone DeviceClass = iota
	DeviceTablet
	DeviceWatch
)

// String returns the wire name expected by the web layer.
func (c DeviceClass) String() string {
	switch c {
	case DeviceTablet:
		return "TABLET"
	case DeviceWatch:
		return "WATCH"
	default:
		return "MOBILE_PHONE"
	}
}

// DeviceDescriptor identifies the device and wallet account a card is bound to.
// It is never mutated; a wallet account change produces a new descriptor.
type DeviceDescriptor struct {
	StableHardwareID string
	DeviceClass      DeviceClass
	OSVersionLabel   string
	WalletAccountID  string
}

// WithWalletAccount returns a copy of the descriptor bound to another wallet account.
func (d DeviceDescriptor) WithWalletAccount(walletAccountID string) DeviceDescriptor {
	d.WalletAccountID = walletAccountID
	return d
}

// UnknownHardwareID is the hardware id carried by degraded descriptors.
const UnknownHardwareID = "unknown"

// IsFallback reports whether the descriptor was built without a real hardware id.
func (d DeviceDescriptor) IsFallback() bool {
	return d.StableHardwareID == "" || d.StableHardwareID == UnknownHardwareID
}

// CardNetwork mirrors the platform card network constants.
type CardNetwork int

const (
	CardNetworkAmex       CardNetwork = 1
	CardNetworkDiscover   CardNetwork = 2
	CardNetworkMastercard CardNetwork = 3
	CardNetworkVisa       CardNetwork = 4
	CardNetworkInterac    CardNetwork = 5
	CardNetworkEftpos     CardNetwork = 7
)

func (n CardNetwork) String() string {
	switch n {
	case CardNetworkAmex:
		return "AMEX"
	case CardNetworkDiscover:
		return "DISCOVER"
	case CardNetworkMastercard:
		return "MASTERCARD"
	case CardNetworkVisa:
		return "VISA"
	case CardNetworkInterac:
		return "INTERAC"
	case CardNetworkEftpos:
		return "EFTPOS"
	default:
		return "UNKNOWN"
	}
}

// TokenServiceProvider mirrors the platform token provider constants.
type TokenServiceProvider int

const (
	TokenProviderAmex       TokenServiceProvider = 2
	TokenProviderMastercard TokenServiceProvider = 3
	TokenProviderVisa       TokenServiceProvider = 4
	TokenProviderDiscover   TokenServiceProvider = 5
	TokenProviderEftpos     TokenServiceProvider = 6
	TokenProviderInterac    TokenServiceProvider = 7
	TokenProviderOberthur   TokenServiceProvider = 8
	TokenProviderPaypal     TokenServiceProvider = 9
)

func (p TokenServiceProvider) String() string {
	switch p {
	case TokenProviderAmex:
		return "TOKEN_PROVIDER_AMEX"
	case TokenProviderMastercard:
		return "TOKEN_PROVIDER_MASTERCARD"
	case TokenProviderVisa:
		return "TOKEN_PROVIDER_VISA"
	case TokenProviderDiscover:
		return "TOKEN_PROVIDER_DISCOVER"
	case TokenProviderEftpos:
		return "TOKEN_PROVIDER_EFTPOS"
	case TokenProviderInterac:
		return "TOKEN_PROVIDER_INTERAC"
	case TokenProviderOberthur:
		return "TOKEN_PROVIDER_OBERTHUR"
	case TokenProviderPaypal:
		return "TOKEN_PROVIDER_PAYPAL"
	default:
		return "TOKEN_PROVIDER_UNKNOWN"
	}
}

// Address is a billing/user address. Every field is optional and absent
// fields are empty strings.
type Address struct {
	Name               string `json:"name"`
	Address1           string `json:"address1"`
	Address2           string `json:"address2"`
	Locality           string `json:"locality"`
	AdministrativeArea string `json:"administrativeArea"`
	CountryCode        string `json:"countryCode"`
	PostalCode         string `json:"postalCode"`
	PhoneNumber        string `json:"phoneNumber"`
}

// IsZero reports whether no address field was provided.
func (a Address) IsZero() bool {
	return a == Address{}
}

// ProvisioningRequest is the structured form of one inbound push-provisioning
// payload. It is built once by the translator and handed to the platform.
type ProvisioningRequest struct {
	OpaquePaymentCard    []byte
	Network              CardNetwork
	TokenServiceProvider TokenServiceProvider
	LastFourDigits       string
	DisplayName          string
	BillingAddress       *Address

	// CardToken is the issuer-side card reference, when the web layer sent one.
	CardToken string
}

// PendingAttempt correlates a deferred platform result with the attempt that
// launched the platform flow.
type PendingAttempt struct {
	ID             string
	RequestCode    int
	StartedAt      time.Time
	LastFourDigits string
}

// NFCStatus is the state of the NFC adapter.
type NFCStatus int

const (
	NFCNotSupported NFCStatus = iota
	NFCDisabled
	NFCEnabled
)

func (s NFCStatus) String() string {
	switch s {
	case NFCDisabled:
		return "DISABLED"
	case NFCEnabled:
		return "ENABLED"
	default:
		return "NOT_SUPPORTED"
	}
}

// TokenInfo describes a token already present in the wallet.
type TokenInfo struct {
	IssuerTokenID        string               `json:"issuerTokenId"`
	Network              CardNetwork          `json:"network"`
	TokenServiceProvider TokenServiceProvider `json:"tokenServiceProvider"`
	FPANLastFour         string               `json:"fpanLastFour"`
	TokenState           TokenState           `json:"tokenState"`
}

// DisplayName returns a short label for the token.
func (t TokenInfo) DisplayName() string {
	last := t.FPANLastFour
	if last == "" && len(t.IssuerTokenID) >= 4 {
		last = t.IssuerTokenID[len(t.IssuerTokenID)-4:]
	}
	if last == "" {
		last = "****"
	}
	return "Card ending in " + last
}

// TokenState is the platform token lifecycle state.
type TokenState int

const (
	TokenStateUntokenized TokenState = iota
	TokenStatePending
	TokenStateNeedsIdentityVerification
	TokenStatePendingProvisioning
	TokenStateActive
	TokenStateFelicaPendingProvisioning
	TokenStateSuspended
	TokenStateDeactivated
)

func (s TokenState) String() string {
	switch s {
	case TokenStateUntokenized:
		return "UNTOKENIZED"
	case TokenStatePending:
		return "PENDING"
	case TokenStateNeedsIdentityVerification:
		return "NEEDS_IDENTITY_VERIFICATION"
	case TokenStatePendingProvisioning:
		return "PENDING_PROVISIONING"
	case TokenStateActive:
		return "ACTIVE"
	case TokenStateFelicaPendingProvisioning:
		return "FELICA_PENDING_PROVISIONING"
	case TokenStateSuspended:
		return "SUSPENDED"
	case TokenStateDeactivated:
		return "DEACTIVATED"
	default:
		return "UNKNOWN"
	}
}

// Description returns the user-facing description of the state.
func (s TokenState) Description() string {
	switch s {
	case TokenStateUntokenized:
		return "Card not added to Google Pay"
	case TokenStatePending:
		return "Card addition in progress"
	case TokenStateNeedsIdentityVerification:
		return "Verification required"
	case TokenStatePendingProvisioning:
		return "Provisioning in progress"
	case TokenStateActive:
		return "Card ready for payments"
	case TokenStateFelicaPendingProvisioning:
		return "FeliCa provisioning in progress"
	case TokenStateSuspended:
		return "Card temporarily suspended"
	case TokenStateDeactivated:
		return "Card deactivated"
	default:
		return "Unknown status"
	}
}

// NeedsVerification reports whether the user must complete a verification flow.
func (s TokenState) NeedsVerification() bool {
	return strings.Contains(strings.ToLower(s.Description()), "verification")
}

// TokenStatus is the platform's view of one token.
type TokenStatus struct {
	TokenReferenceID string
	State            TokenState
	IsSelected       bool
}
