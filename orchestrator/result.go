package orchestrator

import (
	"errors"
	"fmt"

	"github.com/accruesavings/wallet-provisioning/gateway"
	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// InterpretResult maps a deferred push provisioning result to its outcome.
func InterpretResult(resultCode int, extras interfaces.ResultExtras) interfaces.Outcome {
	switch resultCode {
	case interfaces.ResultOK:
		tokenID, _ := extras.String(interfaces.ExtraIssuerTokenID)
		return interfaces.Success{TokenReferenceID: tokenID, Message: interfaces.MessageCardAdded}
	case interfaces.ResultCanceled:
		return interfaces.UserCancelled{}
	case interfaces.StatusAttestationError:
		return interfaces.PlatformError{Code: interfaces.ErrorAttestation, Message: interfaces.MessageAttestation}
	}

	code := interfaces.ErrorPushProvisioningFailed
	message := interfaces.MessageProvisioningFailed
	if m, ok := extras.String(interfaces.ExtraErrorMessage); ok {
		message = m
	}
	if c, ok := extras.String(interfaces.ExtraErrorCode); ok {
		code = c
	}
	if status, ok := extras.Status(); ok {
		if status.Code == interfaces.StatusAttestationError {
			return interfaces.PlatformError{Code: interfaces.ErrorAttestation, Message: interfaces.MessageAttestation}
		}
		if status.Message != "" {
			message = status.Message
		}
	}
	return interfaces.PlatformError{
		Code:    code,
		Message: message,
		Details: fmt.Sprintf("Result code: %d", resultCode),
	}
}

// ClassifyError maps a platform call failure to a PlatformError. A
// PlatformError in the chain is returned as is. Failures without a
// dedicated code get fallbackCode and fallbackMessage with the error text
// as details.
func ClassifyError(err error, fallbackCode, fallbackMessage string) interfaces.PlatformError {
	var platformErr *interfaces.PlatformError
	switch {
	case err == nil:
		return interfaces.PlatformError{Code: fallbackCode, Message: fallbackMessage}
	case errors.As(err, &platformErr):
		return *platformErr
	case gateway.IsPackageNotVerified(err):
		return interfaces.PlatformError{Code: interfaces.ErrorPackageNotVerified, Message: interfaces.PackageNotVerifiedMessage, Details: err.Error()}
	case errors.Is(err, interfaces.ErrLauncherUnavailable):
		return interfaces.PlatformError{Code: interfaces.ErrorLauncherUnavailable, Message: interfaces.MessageLauncherUnavailable}
	case errors.Is(err, interfaces.ErrNoActiveWallet):
		return interfaces.PlatformError{Code: interfaces.ErrorNoActiveWallet, Message: interfaces.MessageNoActiveWallet}
	case errors.Is(err, interfaces.ErrClientUnavailable):
		return interfaces.PlatformError{Code: interfaces.ErrorTapAndPayUnavailable, Message: interfaces.MessageTapAndPayUnavailable}
	case errors.Is(err, interfaces.ErrSecurity):
		return interfaces.PlatformError{Code: interfaces.ErrorSecurityException, Message: "Security exception", Details: err.Error()}
	case errors.Is(err, interfaces.ErrUnsupportedOperation):
		return interfaces.PlatformError{Code: interfaces.ErrorDeviceNotSupported, Message: "Operation not supported on this device", Details: err.Error()}
	}
	if code, ok := interfaces.StatusCode(err); ok {
		switch code {
		case interfaces.StatusAttestationError:
			return interfaces.PlatformError{Code: interfaces.ErrorAttestation, Message: interfaces.MessageAttestation}
		case interfaces.StatusTokenNotFound:
			return interfaces.PlatformError{Code: interfaces.ErrorTokenNotFound, Message: "Token not found", Details: err.Error()}
		case interfaces.StatusInvalidTokenState:
			return interfaces.PlatformError{Code: interfaces.ErrorInvalidTokenState, Message: "Invalid token state", Details: err.Error()}
		}
	}
	return interfaces.PlatformError{Code: fallbackCode, Message: fallbackMessage, Details: err.Error()}
}
