package orchestrator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestInterpretResult(t *testing.T) {
	tests := []struct {
		name       string
		resultCode int
		extras     interfaces.ResultExtras
		want       interfaces.Outcome
	}{
		{
			name:       "ok without token id",
			resultCode: interfaces.ResultOK,
			want:       interfaces.Success{Message: interfaces.MessageCardAdded},
		},
		{
			name:       "ok with token id",
			resultCode: interfaces.ResultOK,
			extras:     interfaces.ResultExtras{interfaces.ExtraIssuerTokenID: "t-1"},
			want:       interfaces.Success{TokenReferenceID: "t-1", Message: interfaces.MessageCardAdded},
		},
		{
			name:       "cancelled",
			resultCode: interfaces.ResultCanceled,
			want:       interfaces.UserCancelled{},
		},
		{
			name:       "attestation result code",
			resultCode: interfaces.StatusAttestationError,
			want:       interfaces.PlatformError{Code: interfaces.ErrorAttestation, Message: interfaces.MessageAttestation},
		},
		{
			name:       "attestation status extra",
			resultCode: 1,
			extras:     interfaces.ResultExtras{interfaces.ExtraStatus: interfaces.PlatformStatus{Code: interfaces.StatusAttestationError}},
			want:       interfaces.PlatformError{Code: interfaces.ErrorAttestation, Message: interfaces.MessageAttestation},
		},
		{
			name:       "nothing extractable",
			resultCode: 7,
			want:       interfaces.PlatformError{Code: interfaces.ErrorPushProvisioningFailed, Message: interfaces.MessageProvisioningFailed, Details: "Result code: 7"},
		},
		{
			name:       "error extras",
			resultCode: 2,
			extras: interfaces.ResultExtras{
				interfaces.ExtraErrorMessage: "card declined",
				interfaces.ExtraErrorCode:    "ISSUER_DECLINED",
			},
			want: interfaces.PlatformError{Code: "ISSUER_DECLINED", Message: "card declined", Details: "Result code: 2"},
		},
		{
			name:       "status message wins",
			resultCode: 3,
			extras: interfaces.ResultExtras{
				interfaces.ExtraErrorMessage: "generic",
				interfaces.ExtraStatus:       map[string]any{"statusCode": float64(15009), "statusMessage": "TapAndPay unavailable"},
			},
			want: interfaces.PlatformError{Code: interfaces.ErrorPushProvisioningFailed, Message: "TapAndPay unavailable", Details: "Result code: 3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretResult(tt.resultCode, tt.extras))
		})
	}
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, interfaces.ErrorLauncherUnavailable, ClassifyError(interfaces.ErrLauncherUnavailable, "X", "x").Code)
	assert.Equal(t, interfaces.ErrorTapAndPayUnavailable, ClassifyError(interfaces.ErrClientUnavailable, "X", "x").Code)
	assert.Equal(t, interfaces.ErrorSecurityException, ClassifyError(interfaces.ErrSecurity, "X", "x").Code)
	assert.Equal(t, interfaces.ErrorPackageNotVerified,
		ClassifyError(&interfaces.StatusError{Code: interfaces.StatusUnavailable, Message: interfaces.PackageNotVerifiedMessage}, "X", "x").Code)
	assert.Equal(t, interfaces.ErrorNoActiveWallet,
		ClassifyError(&interfaces.StatusError{Code: interfaces.StatusNoActiveWallet}, "X", "x").Code)
	assert.Equal(t, interfaces.ErrorTokenNotFound,
		ClassifyError(&interfaces.StatusError{Code: interfaces.StatusTokenNotFound}, "X", "x").Code)

	simulated := &interfaces.PlatformError{Code: "ERROR_MOCK", Message: "mock", Details: "d"}
	assert.Equal(t, *simulated, ClassifyError(fmt.Errorf("failed to list tokens: %w", simulated), "X", "x"))

	got := ClassifyError(errors.New("boom"), "ERROR_FALLBACK", "fallback")
	assert.Equal(t, interfaces.PlatformError{Code: "ERROR_FALLBACK", Message: "fallback", Details: "boom"}, got)
}
