package testmode

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// MockErrorDetails is attached to every simulated failure.
const MockErrorDetails = "Mock error for testing"

// MockOSVersion is the os version label of simulated device descriptors.
const MockOSVersion = "1.0.0-mock"

// MockEnvironment is the environment name of the simulated platform.
const MockEnvironment = "SANDBOX"

// MockLastFourDigits are the card digits of the simulated wallet token.
const MockLastFourDigits = "4242"

// Reporter receives simulated failures. The notifier satisfies it.
type Reporter interface {
	NotifyError(code, message, details string)
}

// ResultSink receives the deferred results of simulated platform flows.
type ResultSink func(requestCode, resultCode int, extras interfaces.ResultExtras) bool

// Simulator answers gateway and orchestrator calls from Config.
type Simulator struct {
	log      *slog.Logger
	cfg      *Config
	reporter Reporter

	mu          sync.Mutex
	sink        ResultSink
	flowCtx     context.Context
	cancelFlows context.CancelFunc
}

// NewSimulator creates a simulator. reporter may be nil, in which case
// simulated failures are only returned, never reported.
func NewSimulator(log *slog.Logger, cfg *Config, reporter Reporter) *Simulator {
	return &Simulator{
		log:      log,
		cfg:      cfg,
		reporter: reporter,
	}
}

// Config returns the configuration the simulator reads.
func (s *Simulator) Config() *Config {
	return s.cfg
}

// Active reports whether platform calls should be answered by the simulator.
func (s *Simulator) Active() bool {
	return s != nil && s.cfg.MockAPIs()
}

// wait blocks for the configured delay or until ctx is done.
func (s *Simulator) wait(ctx context.Context) error {
	d := s.cfg.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulator) failure() *interfaces.PlatformError {
	return &interfaces.PlatformError{
		Code:    s.cfg.ErrorCode(),
		Message: s.cfg.ErrorMessage(),
		Details: MockErrorDetails,
	}
}

func (s *Simulator) reportFailure() {
	if s.reporter == nil {
		return
	}
	f := s.failure()
	s.reporter.NotifyError(f.Code, f.Message, f.Details)
}

func (s *Simulator) check(ctx context.Context, op string) bool {
	if err := s.wait(ctx); err != nil {
		s.log.Debug("test mode: mocked call abandoned", "op", op, "err", err)
		return false
	}
	ok := s.cfg.MockSuccess()
	s.log.Debug("test mode: mocked check", "op", op, "result", ok)
	if !ok {
		s.reportFailure()
	}
	return ok
}

// IsTokenizationAvailable mirrors the gateway availability check.
func (s *Simulator) IsTokenizationAvailable(ctx context.Context) bool {
	return s.check(ctx, "IsTokenizationAvailable")
}

// IsWalletAvailable mirrors the gateway wallet check.
func (s *Simulator) IsWalletAvailable(ctx context.Context) bool {
	return s.check(ctx, "IsWalletAvailable")
}

func (s *Simulator) mockID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, rand.Intn(10000))
}

func (s *Simulator) lookup(ctx context.Context, op, prefix string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	if !s.cfg.MockSuccess() {
		s.log.Debug("test mode: mocked lookup failed", "op", op)
		s.reportFailure()
		return "", s.failure()
	}
	return s.mockID(prefix), nil
}

// GetActiveWalletID mirrors the gateway wallet id lookup.
func (s *Simulator) GetActiveWalletID(ctx context.Context) (string, error) {
	return s.lookup(ctx, "GetActiveWalletID", "mock-wallet-account-id")
}

// GetStableHardwareID mirrors the gateway hardware id lookup.
func (s *Simulator) GetStableHardwareID(ctx context.Context) (string, error) {
	return s.lookup(ctx, "GetStableHardwareID", "mock-hardware-id")
}

// IsAlreadyTokenized mirrors the de-duplication check. Simulated cards are
// never already in the wallet.
func (s *Simulator) IsAlreadyTokenized(ctx context.Context) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return false, nil
}

// Resolve mirrors the identity resolver.
func (s *Simulator) Resolve(ctx context.Context) (interfaces.DeviceDescriptor, error) {
	if err := s.wait(ctx); err != nil {
		return interfaces.DeviceDescriptor{}, err
	}
	d := interfaces.DeviceDescriptor{
		StableHardwareID: s.mockID("mock-hardware-id"),
		DeviceClass:      interfaces.DevicePhone,
		OSVersionLabel:   MockOSVersion,
		WalletAccountID:  s.mockID("mock-wallet-account-id"),
	}
	if !s.cfg.MockSuccess() {
		s.reportFailure()
	}
	return d, nil
}

func (s *Simulator) query(ctx context.Context, op string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if !s.cfg.MockSuccess() {
		s.log.Debug("test mode: mocked query failed", "op", op)
		return s.failure()
	}
	return nil
}

// GetEnvironment mirrors the environment lookup.
func (s *Simulator) GetEnvironment(ctx context.Context) (string, error) {
	if err := s.query(ctx, "GetEnvironment"); err != nil {
		return "", err
	}
	return MockEnvironment, nil
}

// IsDefaultWallet mirrors the default wallet check.
func (s *Simulator) IsDefaultWallet(ctx context.Context) (bool, error) {
	if err := s.query(ctx, "IsDefaultWallet"); err != nil {
		return false, err
	}
	return true, nil
}

// ListTokens mirrors the token listing with one active Visa token.
func (s *Simulator) ListTokens(ctx context.Context) ([]interfaces.TokenInfo, error) {
	if err := s.query(ctx, "ListTokens"); err != nil {
		return nil, err
	}
	return []interfaces.TokenInfo{{
		IssuerTokenID:        s.mockID("mock-token-reference"),
		Network:              interfaces.CardNetworkVisa,
		TokenServiceProvider: interfaces.TokenProviderVisa,
		FPANLastFour:         MockLastFourDigits,
		TokenState:           interfaces.TokenStateActive,
	}}, nil
}

// GetTokenStatus mirrors the token status lookup. Every simulated token is
// active.
func (s *Simulator) GetTokenStatus(ctx context.Context, tokenReferenceID string) (interfaces.TokenStatus, error) {
	if err := s.query(ctx, "GetTokenStatus"); err != nil {
		return interfaces.TokenStatus{}, err
	}
	return interfaces.TokenStatus{TokenReferenceID: tokenReferenceID, State: interfaces.TokenStateActive}, nil
}

// SetResultSink installs the receiver of simulated flow results.
func (s *Simulator) SetResultSink(sink ResultSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// LaunchFlow mirrors the launch of a deferred platform flow such as wallet
// creation. After the configured delay the result is handed to the sink
// under requestCode: OK when mocks succeed, cancelled otherwise.
func (s *Simulator) LaunchFlow(op string, requestCode int) {
	s.mu.Lock()
	if s.flowCtx == nil {
		s.flowCtx, s.cancelFlows = context.WithCancel(context.Background())
	}
	ctx, sink := s.flowCtx, s.sink
	s.mu.Unlock()

	s.log.Info("test mode: simulated platform flow started", "op", op, "requestCode", requestCode)
	go func() {
		if err := s.wait(ctx); err != nil {
			s.log.Debug("test mode: simulated platform flow abandoned", "op", op, "err", err)
			return
		}
		resultCode := interfaces.ResultOK
		if !s.cfg.MockSuccess() {
			resultCode = interfaces.ResultCanceled
		}
		s.log.Info("test mode: simulated platform flow finished", "op", op, "requestCode", requestCode, "resultCode", resultCode)
		if sink != nil {
			sink(requestCode, resultCode, nil)
		}
	}()
}

// CancelFlows abandons every simulated flow still waiting for its delay.
func (s *Simulator) CancelFlows() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFlows != nil {
		s.cancelFlows()
	}
	s.flowCtx, s.cancelFlows = nil, nil
}

// Provision mirrors a complete provisioning attempt, from eligibility to the
// deferred platform result, and returns its outcome.
func (s *Simulator) Provision(ctx context.Context, req *interfaces.ProvisioningRequest) interfaces.Outcome {
	if err := s.wait(ctx); err != nil {
		return interfaces.InternalError{Message: "mocked provisioning abandoned", Err: err}
	}
	if !s.cfg.MockSuccess() {
		s.log.Info("test mode: push provisioning failed")
		return *s.failure()
	}
	ref := s.mockID("mock-token-reference")
	if req != nil && req.LastFourDigits != "" {
		ref = ref + "-" + req.LastFourDigits
	}
	s.log.Info("test mode: push provisioning succeeded", "tokenReferenceId", ref)
	return interfaces.Success{
		TokenReferenceID: ref,
		Message:          interfaces.MessageCardAdded,
	}
}
