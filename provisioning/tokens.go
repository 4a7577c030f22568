package provisioning

import (
	"context"
	"encoding/json"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/orchestrator"
)

type tokenEntry struct {
	TokenID              string `json:"tokenId"`
	IssuerTokenID        string `json:"issuerTokenId"`
	Network              int    `json:"network"`
	TokenServiceProvider int    `json:"tokenServiceProvider"`
	DisplayName          string `json:"displayName"`
}

// ListTokens returns the tokens in the active wallet and reports them to
// the page as {"tokens": [...]}.
func (s *SDK) ListTokens(ctx context.Context) ([]interfaces.TokenInfo, error) {
	tokens, err := s.gateway.ListTokens(ctx)
	if err != nil {
		s.notifyFailure(err, interfaces.ErrorTokenList, "Failed to list tokens")
		return nil, err
	}
	entries := make([]tokenEntry, 0, len(tokens))
	for _, t := range tokens {
		entries = append(entries, tokenEntry{
			TokenID:              t.IssuerTokenID,
			IssuerTokenID:        t.IssuerTokenID,
			Network:              int(t.Network),
			TokenServiceProvider: int(t.TokenServiceProvider),
			DisplayName:          t.DisplayName(),
		})
	}
	s.log.Debug("listed tokens", "count", len(entries))
	s.notifySuccessJSON(map[string]any{"tokens": entries})
	return tokens, nil
}

// TokenStatusReport is the page's view of one token.
type TokenStatusReport struct {
	TokenID          string `json:"tokenId"`
	TokenState       int    `json:"tokenState"`
	StateDescription string `json:"tokenStateDescription"`
	IsActive         bool   `json:"isActive"`
	CanMakePayments  bool   `json:"canMakePayments"`
}

// GetTokenStatus looks one token up and reports it as {"tokenStatus": {...}}.
func (s *SDK) GetTokenStatus(ctx context.Context, tsp interfaces.TokenServiceProvider, tokenReferenceID string) (TokenStatusReport, error) {
	status, err := s.gateway.GetTokenStatus(ctx, tsp, tokenReferenceID)
	if err != nil {
		s.notifyFailure(err, interfaces.ErrorTokenStatus, "Token status unavailable")
		return TokenStatusReport{}, err
	}
	active := status.State == interfaces.TokenStateActive
	report := TokenStatusReport{
		TokenID:          tokenReferenceID,
		TokenState:       int(status.State),
		StateDescription: status.State.Description(),
		IsActive:         active,
		CanMakePayments:  active,
	}
	s.notifySuccessJSON(map[string]any{"tokenStatus": report})
	return report, nil
}

// CheckAndActivateToken opens the wallet on the token when it waits for
// user verification. It reports whether the token is active or the
// verification flow was launched.
func (s *SDK) CheckAndActivateToken(ctx context.Context, tsp interfaces.TokenServiceProvider, tokenReferenceID string) (bool, error) {
	report, err := s.GetTokenStatus(ctx, tsp, tokenReferenceID)
	if err != nil {
		return false, err
	}
	if report.IsActive || !interfaces.TokenState(report.TokenState).NeedsVerification() {
		return report.IsActive, nil
	}
	if err := s.ViewToken(tsp, tokenReferenceID); err != nil {
		return false, err
	}
	return true, nil
}

// ViewToken opens the wallet on the token. The result arrives through
// HandleActivityResult with RequestCodeViewToken.
func (s *SDK) ViewToken(tsp interfaces.TokenServiceProvider, tokenReferenceID string) error {
	if err := s.gateway.ViewToken(s.currentActivity(), tsp, tokenReferenceID, RequestCodeViewToken); err != nil {
		s.notifyFailure(err, interfaces.ErrorViewToken, "Failed to open token")
		return err
	}
	return nil
}

// CreateWallet launches wallet creation. The result arrives through
// HandleActivityResult with RequestCodeCreateWallet.
func (s *SDK) CreateWallet() error {
	activity := s.currentActivity()
	if activity == nil {
		s.notifier.NotifyError(interfaces.ErrorActivityNotAvailable, "Activity not available for wallet creation", "")
		return interfaces.ErrLauncherUnavailable
	}
	if err := s.gateway.CreateWallet(activity, RequestCodeCreateWallet); err != nil {
		s.notifyFailure(err, interfaces.ErrorCreateWallet, "Failed to create wallet")
		return err
	}
	return nil
}

// SetDefaultWallet asks the user to make the wallet the default payment
// app. The result arrives through HandleActivityResult with
// RequestCodeSetDefaultWallet.
func (s *SDK) SetDefaultWallet() error {
	activity := s.currentActivity()
	if activity == nil {
		s.notifier.NotifyError(interfaces.ErrorActivityNotAvailable, "Activity not available to set default wallet", "")
		return interfaces.ErrLauncherUnavailable
	}
	if err := s.gateway.SetDefaultWallet(activity, RequestCodeSetDefaultWallet); err != nil {
		s.notifyFailure(err, interfaces.ErrorSetDefaultWallet, "Failed to set default wallet")
		return err
	}
	return nil
}

func (s *SDK) handleSetDefaultWalletResult(resultCode int) {
	switch resultCode {
	case interfaces.ResultOK:
		s.log.Info("wallet set as default")
		s.notifySuccessJSON(map[string]string{"message": "Google Pay set as default wallet"})
	case interfaces.ResultCanceled:
		s.notifier.NotifyError(interfaces.ErrorUserCancelled, "User cancelled setting default wallet", "")
	default:
		s.log.Warn("unexpected default wallet result", "resultCode", resultCode)
		s.notifier.NotifyError(interfaces.ErrorNotDefaultWallet, "Failed to set Google Pay as default", "")
	}
}

func (s *SDK) handleCreateWalletResult(resultCode int) {
	switch resultCode {
	case interfaces.ResultOK:
		s.log.Info("wallet created")
		s.notifySuccessJSON(map[string]string{"message": "Google Pay wallet created successfully"})
	case interfaces.ResultCanceled:
		s.notifier.NotifyError(interfaces.ErrorUserCancelled, "User cancelled wallet creation", "")
	default:
		s.log.Error("wallet creation failed", "resultCode", resultCode)
		s.notifier.NotifyError(interfaces.ErrorWalletCreationFailed, "Failed to create Google Pay wallet", "")
	}
}

// A cancelled token view is the normal way to leave it and is not reported.
func (s *SDK) handleViewTokenResult(resultCode int) {
	switch resultCode {
	case interfaces.ResultOK:
		s.notifySuccessJSON(map[string]string{"message": "Token management completed"})
	case interfaces.ResultCanceled:
		s.log.Debug("token view closed")
	default:
		s.log.Warn("unexpected token view result", "resultCode", resultCode)
	}
}

func (s *SDK) notifySuccessJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode result", "err", err)
		s.notifier.NotifyError(interfaces.ErrorInternal, "Failed to encode result", err.Error())
		return
	}
	s.notifier.NotifySuccess(string(b))
}

func (s *SDK) notifyFailure(err error, code, message string) {
	s.log.Error(message, "err", err)
	s.notifier.NotifyOutcome(orchestrator.ClassifyError(err, code, message))
}
