package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/accruesavings/wallet-provisioning/gateway"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/accruesavings/wallet-provisioning/translator"
	"github.com/google/uuid"
)

// State of the orchestrator.
type State int32

const (
	Idle State = iota
	CheckingEligibility
	Translating
	CheckingDuplicate
	AwaitingPlatformResult
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case CheckingEligibility:
		return "CheckingEligibility"
	case Translating:
		return "Translating"
	case CheckingDuplicate:
		return "CheckingDuplicate"
	case AwaitingPlatformResult:
		return "AwaitingPlatformResult"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	DefaultAwaitTimeout    = 10 * time.Minute
	DefaultCheckTimeout    = 30 * time.Second
	DefaultRequestCodeBase = 2000
	RequestCodeRange       = 1000
)

// Config tunes an Orchestrator. Zero fields take the defaults.
type Config struct {
	// AwaitTimeout bounds the wait for the platform result. A negative
	// value disables the timeout.
	AwaitTimeout time.Duration
	// CheckTimeout bounds the eligibility and de-duplication checks.
	CheckTimeout time.Duration
	// RequestCodeBase is the first request code of the push provisioning range.
	RequestCodeBase int
}

func (c Config) withDefaults() Config {
	if c.AwaitTimeout == 0 {
		c.AwaitTimeout = DefaultAwaitTimeout
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = DefaultCheckTimeout
	}
	if c.RequestCodeBase <= 0 {
		c.RequestCodeBase = DefaultRequestCodeBase
	}
	return c
}

// Platform is the part of the gateway the orchestrator drives.
type Platform interface {
	IsTokenizationAvailable(ctx context.Context) bool
	IsWalletAvailable(ctx context.Context) bool
	IsAlreadyTokenized(ctx context.Context, req *interfaces.ProvisioningRequest) gateway.Tokenized
	Tokenize(activity interfaces.Activity, req *interfaces.ProvisioningRequest, requestCode int) error
}

// Identity resolves the device descriptor an attempt is bound to.
type Identity interface {
	Resolve(ctx context.Context) (interfaces.DeviceDescriptor, error)
	ClearCache()
}

// Reporter receives the outcome of every attempt.
type Reporter interface {
	NotifyOutcome(o interfaces.Outcome)
}

// Observer is told about attempt starts and outcomes. Requests rejected
// before an attempt started are reported through AttemptRejected only.
type Observer interface {
	AttemptStarted()
	AttemptFinished(o interfaces.Outcome, elapsed time.Duration)
	AttemptRejected(o interfaces.Outcome)
}

// Orchestrator owns the single provisioning attempt of one session.
type Orchestrator struct {
	log        *slog.Logger
	cfg        Config
	platform   Platform
	identity   Identity
	translator *translator.Translator
	reporter   Reporter
	sim        *testmode.Simulator
	observer   Observer

	mu        sync.Mutex
	state     State
	activity  interfaces.Activity
	attemptID string
	startedAt time.Time
	pending   *interfaces.PendingAttempt
	timer     *time.Timer
	cancelSim context.CancelFunc
	seq       int
}

// NewOrchestrator creates an orchestrator. identity, sim and the observer
// are optional.
func NewOrchestrator(log *slog.Logger, cfg Config, platform Platform, identity Identity, tr *translator.Translator, reporter Reporter, sim *testmode.Simulator) *Orchestrator {
	return &Orchestrator{
		log:        log,
		cfg:        cfg.withDefaults(),
		platform:   platform,
		identity:   identity,
		translator: tr,
		reporter:   reporter,
		sim:        sim,
	}
}

// SetObserver installs the attempt observer.
func (o *Orchestrator) SetObserver(obs Observer) {
	o.mu.Lock()
	o.observer = obs
	o.mu.Unlock()
}

// SetActivity binds the host that launches platform flows.
func (o *Orchestrator) SetActivity(a interfaces.Activity) {
	o.mu.Lock()
	o.activity = a
	o.mu.Unlock()
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Pending returns the attempt awaiting a platform result, if any.
func (o *Orchestrator) Pending() (interfaces.PendingAttempt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return interfaces.PendingAttempt{}, false
	}
	return *o.pending, true
}

// OwnsRequestCode reports whether code belongs to the push provisioning range.
func (o *Orchestrator) OwnsRequestCode(code int) bool {
	return code >= o.cfg.RequestCodeBase && code < o.cfg.RequestCodeBase+RequestCodeRange
}

// StartProvisioning runs one attempt for the raw web payload up to the
// launch of the platform flow. It blocks on the eligibility and
// de-duplication checks but never waits for the platform result.
//
// Returns:
//   - the pending attempt and true when the platform flow was launched
//   - false when the attempt already ended; its outcome has been reported
func (o *Orchestrator) StartProvisioning(ctx context.Context, rawJSON string) (interfaces.PendingAttempt, bool) {
	o.mu.Lock()
	if o.state != Idle {
		state := o.state
		o.mu.Unlock()
		o.log.Warn("rejecting provisioning request, another attempt is in progress", "state", state.String())
		o.reject(interfaces.PlatformError{
			Code:    interfaces.ErrorProvisioningInProgress,
			Message: interfaces.MessageInProgress,
			Details: "State: " + state.String(),
		})
		return interfaces.PendingAttempt{}, false
	}
	id := uuid.NewString()
	o.attemptID = id
	o.startedAt = time.Now()
	o.state = CheckingEligibility
	observer := o.observer
	o.mu.Unlock()

	if observer != nil {
		observer.AttemptStarted()
	}
	log := o.log.With("attemptId", id)
	simulated := o.sim.Active()

	checkCtx, cancel := context.WithTimeout(ctx, o.cfg.CheckTimeout)
	defer cancel()

	if simulated {
		log.Info("test mode: skipping eligibility checks")
	} else if outcome := o.checkEligibility(checkCtx, log); outcome != nil {
		o.end(id, outcome)
		return interfaces.PendingAttempt{}, false
	}

	if !o.advance(id, Translating) {
		return interfaces.PendingAttempt{}, false
	}
	req, err := o.translator.Parse(rawJSON)
	if err != nil {
		var verr *interfaces.ValidationError
		if !errors.As(err, &verr) {
			verr = &interfaces.ValidationError{Code: interfaces.ErrorParsingResponse, Message: err.Error()}
		}
		log.Warn("provisioning payload rejected", "code", verr.Code, "err", err)
		o.end(id, *verr)
		return interfaces.PendingAttempt{}, false
	}

	if !o.advance(id, CheckingDuplicate) {
		return interfaces.PendingAttempt{}, false
	}
	if !simulated {
		dup := o.platform.IsAlreadyTokenized(checkCtx, req)
		log.Debug("duplicate check", "tokenized", dup.String())
		if dup == gateway.AlreadyTokenized {
			o.end(id, interfaces.PlatformError{
				Code:    interfaces.ErrorCardAlreadyProvisioned,
				Message: interfaces.MessageAlreadyProvisioned,
			})
			return interfaces.PendingAttempt{}, false
		}
	}

	o.mu.Lock()
	if o.attemptID != id {
		o.mu.Unlock()
		return interfaces.PendingAttempt{}, false
	}
	o.seq++
	attempt := interfaces.PendingAttempt{
		ID:             id,
		RequestCode:    o.cfg.RequestCodeBase + o.seq%RequestCodeRange,
		StartedAt:      o.startedAt,
		LastFourDigits: req.LastFourDigits,
	}
	o.pending = &attempt
	o.state = AwaitingPlatformResult
	activity := o.activity
	if o.cfg.AwaitTimeout > 0 {
		o.timer = time.AfterFunc(o.cfg.AwaitTimeout, func() { o.expire(id) })
	}
	var simCtx context.Context
	if simulated {
		simCtx, o.cancelSim = context.WithCancel(context.Background())
	}
	o.mu.Unlock()

	if simulated {
		go func() {
			o.end(id, o.sim.Provision(simCtx, req))
		}()
		log.Info("test mode: simulated platform flow started", "requestCode", attempt.RequestCode)
		return attempt, true
	}

	if err := o.platform.Tokenize(activity, req, attempt.RequestCode); err != nil {
		log.Error("failed to launch push provisioning", "err", err)
		o.end(id, ClassifyError(err, interfaces.ErrorPushProvisioningFailed, "Failed to start push provisioning"))
		return interfaces.PendingAttempt{}, false
	}
	log.Info("awaiting platform result", "requestCode", attempt.RequestCode)
	return attempt, true
}

func (o *Orchestrator) checkEligibility(ctx context.Context, log *slog.Logger) interfaces.Outcome {
	if !o.platform.IsTokenizationAvailable(ctx) {
		log.Warn("tokenization not available")
		return interfaces.PlatformError{Code: interfaces.ErrorDeviceNotSupported, Message: interfaces.MessageTapAndPayUnavailable}
	}
	if !o.platform.IsWalletAvailable(ctx) {
		log.Warn("no active wallet")
		return interfaces.PlatformError{Code: interfaces.ErrorNoActiveWallet, Message: interfaces.MessageNoActiveWallet}
	}
	if o.identity == nil {
		return nil
	}
	if _, err := o.identity.Resolve(ctx); err != nil {
		log.Warn("device identity unavailable", "err", err)
		if errors.Is(err, interfaces.ErrNoActiveWallet) {
			return interfaces.PlatformError{Code: interfaces.ErrorNoActiveWallet, Message: interfaces.MessageNoActiveWallet}
		}
		return interfaces.PlatformError{Code: interfaces.ErrorDeviceNotSupported, Message: "Device identity unavailable", Details: err.Error()}
	}
	return nil
}

// advance moves attempt id to state s. It fails when the attempt was
// abandoned by Cleanup.
func (o *Orchestrator) advance(id string, s State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attemptID != id {
		return false
	}
	o.state = s
	return true
}

// DeliverPlatformResult hands the deferred platform result to the pending
// attempt. A result whose request code does not match the pending attempt
// is dropped and false is returned.
func (o *Orchestrator) DeliverPlatformResult(requestCode, resultCode int, extras interfaces.ResultExtras) bool {
	o.mu.Lock()
	p := o.pending
	if p == nil || p.RequestCode != requestCode {
		o.mu.Unlock()
		o.log.Warn("dropping stale platform result", "requestCode", requestCode, "resultCode", resultCode)
		return false
	}
	id := p.ID
	o.mu.Unlock()

	o.log.Info("platform result received", "attemptId", id, "requestCode", requestCode, "resultCode", resultCode)
	return o.end(id, InterpretResult(resultCode, extras))
}

func (o *Orchestrator) expire(id string) {
	if o.end(id, interfaces.PlatformError{
		Code:    interfaces.ErrorProvisioningTimeout,
		Message: interfaces.MessageTimeout,
		Details: "Waited " + o.cfg.AwaitTimeout.String(),
	}) {
		o.log.Warn("provisioning attempt timed out", "attemptId", id)
	}
}

// end finishes attempt id with outcome. It reports false when id is no
// longer the current attempt.
func (o *Orchestrator) end(id string, outcome interfaces.Outcome) bool {
	o.mu.Lock()
	if o.attemptID != id {
		o.mu.Unlock()
		o.log.Debug("dropping outcome of finished attempt", "attemptId", id)
		return false
	}
	elapsed := time.Since(o.startedAt)
	o.resetLocked()
	o.mu.Unlock()

	o.deliver(outcome, elapsed)
	return true
}

func (o *Orchestrator) resetLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.cancelSim != nil {
		o.cancelSim()
		o.cancelSim = nil
	}
	o.attemptID = ""
	o.pending = nil
	o.state = Idle
}

func (o *Orchestrator) deliver(outcome interfaces.Outcome, elapsed time.Duration) {
	if observer := o.currentObserver(); observer != nil {
		observer.AttemptFinished(outcome, elapsed)
	}
	o.reporter.NotifyOutcome(outcome)
}

// reject reports the outcome of a request that never became an attempt.
func (o *Orchestrator) reject(outcome interfaces.Outcome) {
	if observer := o.currentObserver(); observer != nil {
		observer.AttemptRejected(outcome)
	}
	o.reporter.NotifyOutcome(outcome)
}

func (o *Orchestrator) currentObserver() Observer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.observer
}

// Cleanup abandons any attempt without reporting it, unbinds the host and
// drops the cached device descriptor.
func (o *Orchestrator) Cleanup() {
	o.mu.Lock()
	if o.attemptID != "" {
		o.log.Info("abandoning provisioning attempt", "attemptId", o.attemptID, "state", o.state.String())
	}
	o.resetLocked()
	o.activity = nil
	o.mu.Unlock()

	if o.identity != nil {
		o.identity.ClearCache()
	}
}
