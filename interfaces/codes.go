package interfaces

// Error codes delivered to the web layer.
const (
	ErrorDeviceNotSupported      = "ERROR_DEVICE_NOT_SUPPORTED"
	ErrorNoActiveWallet          = "ERROR_TAP_AND_PAY_NO_ACTIVE_WALLET"
	ErrorTokenNotFound           = "ERROR_TAP_AND_PAY_TOKEN_NOT_FOUND"
	ErrorInvalidTokenState       = "ERROR_TAP_AND_PAY_INVALID_TOKEN_STATE"
	ErrorAttestation             = "ERROR_TAP_AND_PAY_ATTESTATION_ERROR"
	ErrorTapAndPayUnavailable    = "ERROR_TAP_AND_PAY_UNAVAILABLE"
	ErrorCardAlreadyProvisioned  = "ERROR_CARD_ALREADY_PROVISIONED"
	ErrorUserCancelled           = "ERROR_USER_CANCELLED"
	ErrorPushProvisioningFailed  = "ERROR_PUSH_PROVISIONING_FAILED"
	ErrorProvisioningInProgress  = "ERROR_PROVISIONING_IN_PROGRESS"
	ErrorProvisioningTimeout     = "ERROR_PROVISIONING_TIMEOUT"
	ErrorParsingResponse         = "ERROR_PARSING_RESPONSE"
	ErrorInvalidProvisioningData = "ERROR_INVALID_PROVISIONING_DATA"
	ErrorUnsupportedNetwork      = "ERROR_UNSUPPORTED_NETWORK"
	ErrorLauncherUnavailable     = "ERROR_LAUNCHER_UNAVAILABLE"
	ErrorActivityNotAvailable    = "ERROR_ACTIVITY_NOT_AVAILABLE"
	ErrorSecurityException       = "ERROR_SECURITY_EXCEPTION"
	ErrorPackageNotVerified      = "ERROR_PACKAGE_NOT_VERIFIED"
	ErrorInternal                = "ERROR_INTERNAL"
	ErrorDeviceInfo              = "DEVICE_INFO_ERROR"
	ErrorDeviceInfoUnavailable   = "ERROR_DEVICE_INFO_UNAVAILABLE"
	ErrorWalletID                = "WALLET_ID_ERROR"
	ErrorEnvironmentCheck        = "ENVIRONMENT_CHECK_ERROR"
	ErrorTokenList               = "TOKEN_LIST_ERROR"
	ErrorTokenStatus             = "TOKEN_STATUS_ERROR"
	ErrorViewToken               = "VIEW_TOKEN_ERROR"
	ErrorCreateWallet            = "CREATE_WALLET_ERROR"
	ErrorSetDefaultWallet        = "SET_DEFAULT_WALLET_ERROR"
	ErrorNotDefaultWallet        = "ERROR_GOOGLE_PAY_NOT_DEFAULT"
	ErrorWalletCreationFailed    = "ERROR_WALLET_CREATION_FAILED"
	ErrorParsing                 = "PARSING_ERROR"
	ErrorNotInitialized          = "ERROR_NOT_INITIALIZED"
)

// Messages that accompany the codes above when no better message is available.
const (
	MessageUserCancelled        = "User cancelled provisioning"
	MessageAttestation          = "Device attestation failed"
	MessageProvisioningFailed   = "Provisioning failed"
	MessageAlreadyProvisioned   = "Card is already added to Google Pay"
	MessageTapAndPayUnavailable = "TapAndPay not available"
	MessageNoActiveWallet       = "No active wallet found"
	MessageCardAdded            = "Card added successfully"
	MessageParsingError         = "Failed to parse error information"
	MessageInProgress           = "A provisioning attempt is already in progress"
	MessageTimeout              = "Timed out waiting for the platform result"
	MessageLauncherUnavailable  = "Platform flow launcher not available"

	// PackageNotVerifiedMessage is the platform message for an unregistered caller.
	PackageNotVerifiedMessage = "Calling package not verified"
)
