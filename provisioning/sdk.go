package provisioning

import (
	"context"
	"log/slog"
	"sync"

	"github.com/accruesavings/wallet-provisioning/bridge"
	"github.com/accruesavings/wallet-provisioning/gateway"
	"github.com/accruesavings/wallet-provisioning/identity"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/notifier"
	"github.com/accruesavings/wallet-provisioning/orchestrator"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/accruesavings/wallet-provisioning/translator"
)

// Request codes of the platform flows other than push provisioning.
const (
	RequestCodeSetDefaultWallet = 1005
	RequestCodeCreateWallet     = 1006
	RequestCodeViewToken        = 1007
)

// Config configures an SDK session.
type Config struct {
	Orchestrator orchestrator.Config
	Translator   translator.Options
	// TestMode is shared with the caller so it can be toggled while the
	// session runs. A nil TestMode gets a disabled default.
	TestMode *testmode.Config
	// WalletFallbacks are consulted when the platform has no wallet id.
	WalletFallbacks []identity.WalletIDSource
}

// SDK is one provisioning session.
type SDK struct {
	log *slog.Logger

	testMode   *testmode.Config
	notifier   *notifier.Notifier
	sim        *testmode.Simulator
	gateway    *gateway.Gateway
	identity   *identity.Resolver
	orch       *orchestrator.Orchestrator
	dispatcher *bridge.Dispatcher

	mu          sync.Mutex
	activity    interfaces.Activity
	initialized bool
}

var _ bridge.Session = (*SDK)(nil)

// NewSDK wires a session around the platform client. client may be nil when
// the platform client could not be created. actions receives the host
// button keys and may be nil.
func NewSDK(log *slog.Logger, client interfaces.TokenizationClient, device interfaces.DeviceCapabilities, cfg Config, actions bridge.ActionHandler) *SDK {
	tm := cfg.TestMode
	if tm == nil {
		tm = testmode.NewConfig()
	}
	n := notifier.NewNotifier(log, nil)
	sim := testmode.NewSimulator(log, tm, n)
	gw := gateway.NewGateway(log, client, device, sim)
	resolver := identity.NewResolver(log, gw, device, cfg.WalletFallbacks...)
	tr := translator.NewTranslator(log, cfg.Translator)

	s := &SDK{
		log:      log,
		testMode: tm,
		notifier: n,
		sim:      sim,
		gateway:  gw,
		identity: resolver,
		orch:     orchestrator.NewOrchestrator(log, cfg.Orchestrator, gw, resolver, tr, n, sim),
	}
	s.dispatcher = bridge.NewDispatcher(log, s, actions)
	sim.SetResultSink(s.HandleActivityResult)
	return s
}

// TestMode returns the session's test mode configuration.
func (s *SDK) TestMode() *testmode.Config {
	return s.testMode
}

// Orchestrator returns the session's orchestrator.
func (s *SDK) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}

// State returns the orchestrator state.
func (s *SDK) State() orchestrator.State {
	return s.orch.State()
}

// Pending returns the attempt awaiting a platform result, if any.
func (s *SDK) Pending() (interfaces.PendingAttempt, bool) {
	return s.orch.Pending()
}

// Notifier returns the session's notifier.
func (s *SDK) Notifier() *notifier.Notifier {
	return s.notifier
}

// SetObserver installs an observer of provisioning attempts.
func (s *SDK) SetObserver(obs orchestrator.Observer) {
	s.orch.SetObserver(obs)
}

// Initialize binds the session to the activity that launches platform flows
// and to the web view that receives events. It also starts forwarding
// platform data changes to the page.
func (s *SDK) Initialize(activity interfaces.Activity, host interfaces.WebViewHost) {
	s.mu.Lock()
	s.activity = activity
	s.initialized = true
	s.mu.Unlock()

	s.notifier.Bind(host)
	s.orch.SetActivity(activity)

	if s.gateway.Client() == nil {
		s.log.Warn("tokenization client unavailable, provisioning will fail until test mode is enabled")
		s.notifier.NotifyError(interfaces.ErrorTapAndPayUnavailable,
			"TapAndPay initialization failed. Check device compatibility and Google Pay setup.", "")
		return
	}
	if err := s.gateway.WatchDataChanges(s.onDataChanged); err != nil {
		s.log.Warn("failed to register data change listener", "err", err)
	}
	s.log.Info("provisioning initialized")
}

// onDataChanged forgets the device descriptor, whose wallet account may
// have changed, and tells the page.
func (s *SDK) onDataChanged() {
	s.identity.ClearCache()
	s.notifier.NotifyDataChanged()
}

func (s *SDK) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *SDK) currentActivity() interfaces.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity
}

// Dispatch routes one message posted by the web page.
func (s *SDK) Dispatch(ctx context.Context, raw string) error {
	return s.dispatcher.Dispatch(ctx, raw)
}

// StartPushProvisioning starts an attempt for the raw provisioning response
// posted by the page. The outcome is reported through the notifier.
func (s *SDK) StartPushProvisioning(ctx context.Context, rawJSON string) {
	if !s.isInitialized() {
		s.log.Error("push provisioning requested before initialization")
		s.notifier.NotifyError(interfaces.ErrorNotInitialized, "Provisioning is not initialized", "")
		return
	}
	s.orch.StartProvisioning(ctx, rawJSON)
}

// HandleActivityResult routes a deferred platform result by request code.
// It reports false when no flow of this session owns the code.
func (s *SDK) HandleActivityResult(requestCode, resultCode int, extras interfaces.ResultExtras) bool {
	s.log.Debug("handling activity result", "requestCode", requestCode, "resultCode", resultCode)
	switch {
	case s.orch.OwnsRequestCode(requestCode):
		return s.orch.DeliverPlatformResult(requestCode, resultCode, extras)
	case requestCode == RequestCodeSetDefaultWallet:
		s.handleSetDefaultWalletResult(resultCode)
	case requestCode == RequestCodeCreateWallet:
		s.handleCreateWalletResult(resultCode)
	case requestCode == RequestCodeViewToken:
		s.handleViewTokenResult(resultCode)
	default:
		s.log.Warn("unhandled activity result", "requestCode", requestCode)
		return false
	}
	return true
}

// Cleanup abandons the pending attempt, stops data change forwarding and
// unbinds the activity and the web view.
func (s *SDK) Cleanup() {
	s.log.Info("cleaning up provisioning session")
	s.gateway.StopDataChanges()
	s.sim.CancelFlows()
	s.orch.Cleanup()
	s.notifier.Bind(nil)

	s.mu.Lock()
	s.activity = nil
	s.initialized = false
	s.mu.Unlock()
}
