package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/accruesavings/wallet-provisioning/gateway"
	"github.com/accruesavings/wallet-provisioning/identity"
	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/accruesavings/wallet-provisioning/notifier"
	"github.com/accruesavings/wallet-provisioning/testmode"
	"github.com/accruesavings/wallet-provisioning/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{"data":{"pushTokenizeRequestData":{"opaquePaymentCard":"aGVsbG8=","network":"Visa","lastDigits":"1234"}}}`

type fixture struct {
	client   *testmode.FakeClient
	device   *testmode.FakeDevice
	host     *notifier.RecordingHost
	testMode *testmode.Config
	activity *testmode.FakeActivity
	observer *recordingObserver
	orch     *Orchestrator
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	outcomes []interfaces.Outcome
	rejected []interfaces.Outcome
}

func (r *recordingObserver) AttemptStarted() {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recordingObserver) AttemptFinished(o interfaces.Outcome, elapsed time.Duration) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

func (r *recordingObserver) AttemptRejected(o interfaces.Outcome) {
	r.mu.Lock()
	r.rejected = append(r.rejected, o)
	r.mu.Unlock()
}

func (r *recordingObserver) rejections() []interfaces.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interfaces.Outcome(nil), r.rejected...)
}

func (r *recordingObserver) snapshot() (int, []interfaces.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started, append([]interfaces.Outcome(nil), r.outcomes...)
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	host := &notifier.RecordingHost{}
	n := notifier.NewNotifier(log, host)
	tm := testmode.NewConfig()
	tm.SetDelay(10 * time.Millisecond)
	sim := testmode.NewSimulator(log, tm, n)

	client := testmode.NewFakeClient("wallet-1", "hw-1")
	device := testmode.NewFakeDevice()
	gw := gateway.NewGateway(log, client, device, sim)
	resolver := identity.NewResolver(log, gw, device)
	tr := translator.NewTranslator(log, translator.Options{})

	f := &fixture{
		client:   client,
		device:   device,
		host:     host,
		testMode: tm,
		activity: &testmode.FakeActivity{},
		observer: &recordingObserver{},
	}
	f.orch = NewOrchestrator(log, cfg, gw, resolver, tr, n, sim)
	f.orch.SetActivity(f.activity)
	f.orch.SetObserver(f.observer)
	t.Cleanup(f.orch.Cleanup)
	return f
}

func (f *fixture) lastError(t *testing.T) *notifier.ErrorBody {
	t.Helper()
	envs := f.host.Envelopes()
	require.NotEmpty(t, envs)
	last := envs[len(envs)-1]
	require.False(t, last.Success)
	return last.Error
}

func TestProvisioningSuccess(t *testing.T) {
	f := newFixture(t, Config{})

	attempt, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)
	assert.Equal(t, AwaitingPlatformResult, f.orch.State())
	assert.True(t, f.orch.OwnsRequestCode(attempt.RequestCode))
	assert.NotEmpty(t, attempt.ID)
	assert.Equal(t, "1234", attempt.LastFourDigits)

	pending, ok := f.orch.Pending()
	require.True(t, ok)
	assert.Equal(t, attempt, pending)

	launch, ok := f.client.LastLaunch()
	require.True(t, ok)
	assert.Equal(t, testmode.LaunchPushTokenize, launch.Kind)
	assert.Equal(t, attempt.RequestCode, launch.RequestCode)
	assert.Equal(t, []byte("hello"), launch.Request.OpaquePaymentCard)
	assert.Equal(t, interfaces.CardNetworkVisa, launch.Request.Network)

	// Nothing is reported until the platform answers.
	assert.Empty(t, f.host.Envelopes())

	delivered := f.orch.DeliverPlatformResult(attempt.RequestCode, interfaces.ResultOK, interfaces.ResultExtras{
		interfaces.ExtraIssuerTokenID: "issuer-token-1",
	})
	require.True(t, delivered)
	assert.Equal(t, Idle, f.orch.State())
	_, ok = f.orch.Pending()
	assert.False(t, ok)

	payloads := f.host.Payloads(notifier.ResultFunction)
	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"success":true,"message":"Card added successfully","tokenReferenceId":"issuer-token-1"}`, string(f.host.Envelopes()[0].Data))

	started, outcomes := f.observer.snapshot()
	assert.Equal(t, 1, started)
	assert.Equal(t, []interfaces.Outcome{interfaces.Success{TokenReferenceID: "issuer-token-1", Message: interfaces.MessageCardAdded}}, outcomes)
}

func TestProvisioningUserCancelled(t *testing.T) {
	f := newFixture(t, Config{})

	attempt, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)
	require.True(t, f.orch.DeliverPlatformResult(attempt.RequestCode, interfaces.ResultCanceled, nil))

	payloads := f.host.Payloads(notifier.ResultFunction)
	require.Len(t, payloads, 1)
	env := f.host.Envelopes()[0]
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, &notifier.ErrorBody{Code: "ERROR_USER_CANCELLED", Message: "User cancelled provisioning"}, env.Error)
}

func TestEligibilityFailures(t *testing.T) {
	t.Run("tokenization unavailable", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.FailWith("GetEnvironment", interfaces.ErrUnsupportedOperation)

		_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
		require.False(t, ok)
		assert.Equal(t, interfaces.ErrorDeviceNotSupported, f.lastError(t).Code)
		assert.Equal(t, Idle, f.orch.State())
		assert.Empty(t, f.client.Launches())
	})

	t.Run("no active wallet", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.SetWalletID("")

		_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
		require.False(t, ok)
		assert.Equal(t, interfaces.ErrorNoActiveWallet, f.lastError(t).Code)
	})

	t.Run("device identity unavailable", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.FailWith("GetStableHardwareID", interfaces.ErrUnsupportedOperation)
		f.device.SecondaryID = ""

		_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
		require.False(t, ok)
		assert.Equal(t, interfaces.ErrorDeviceNotSupported, f.lastError(t).Code)
		assert.Empty(t, f.client.Launches())
	})
}

func TestInvalidPayload(t *testing.T) {
	f := newFixture(t, Config{})

	_, ok := f.orch.StartProvisioning(context.Background(), `{"data":{"pushTokenizeRequestData":{"network":"VISA"}}}`)
	require.False(t, ok)
	assert.Equal(t, interfaces.ErrorInvalidProvisioningData, f.lastError(t).Code)

	_, ok = f.orch.StartProvisioning(context.Background(), `{{{`)
	require.False(t, ok)
	assert.Equal(t, interfaces.ErrorParsingResponse, f.lastError(t).Code)
	assert.Equal(t, Idle, f.orch.State())
}

func TestAlreadyProvisioned(t *testing.T) {
	f := newFixture(t, Config{})
	f.client.AddToken(interfaces.TokenInfo{
		IssuerTokenID:        "existing",
		Network:              interfaces.CardNetworkVisa,
		TokenServiceProvider: interfaces.TokenProviderVisa,
		FPANLastFour:         "1234",
		TokenState:           interfaces.TokenStateActive,
	})

	_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.False(t, ok)
	errBody := f.lastError(t)
	assert.Equal(t, interfaces.ErrorCardAlreadyProvisioned, errBody.Code)
	assert.Equal(t, interfaces.MessageAlreadyProvisioned, errBody.Message)
	assert.Empty(t, f.client.Launches())
}

func TestLauncherUnavailable(t *testing.T) {
	f := newFixture(t, Config{})
	f.orch.SetActivity(nil)

	_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.False(t, ok)
	assert.Equal(t, interfaces.ErrorLauncherUnavailable, f.lastError(t).Code)
	assert.Equal(t, Idle, f.orch.State())
	_, ok = f.orch.Pending()
	assert.False(t, ok)
}

func TestNoCrossTalkBetweenAttempts(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	a, ok := f.orch.StartProvisioning(ctx, validPayload)
	require.True(t, ok)

	// B arrives while A is outstanding and is rejected; A keeps its slot.
	_, ok = f.orch.StartProvisioning(ctx, validPayload)
	require.False(t, ok)
	assert.Equal(t, interfaces.ErrorProvisioningInProgress, f.lastError(t).Code)
	pending, ok := f.orch.Pending()
	require.True(t, ok)
	assert.Equal(t, a.ID, pending.ID)
	started, outcomes := f.observer.snapshot()
	assert.Equal(t, 1, started)
	assert.Empty(t, outcomes)
	require.Len(t, f.observer.rejections(), 1)
	assert.Equal(t, interfaces.ErrorProvisioningInProgress, interfaces.OutcomeCode(f.observer.rejections()[0]))

	// A result for a code that is not A's is dropped.
	assert.False(t, f.orch.DeliverPlatformResult(a.RequestCode+1, interfaces.ResultOK, nil))
	assert.Equal(t, AwaitingPlatformResult, f.orch.State())

	require.True(t, f.orch.DeliverPlatformResult(a.RequestCode, interfaces.ResultOK, interfaces.ResultExtras{
		interfaces.ExtraIssuerTokenID: "token-a",
	}))

	b, ok := f.orch.StartProvisioning(ctx, validPayload)
	require.True(t, ok)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.RequestCode, b.RequestCode)

	// A late duplicate of A's result must not complete B.
	assert.False(t, f.orch.DeliverPlatformResult(a.RequestCode, interfaces.ResultCanceled, nil))
	pending, ok = f.orch.Pending()
	require.True(t, ok)
	assert.Equal(t, b.ID, pending.ID)

	require.True(t, f.orch.DeliverPlatformResult(b.RequestCode, interfaces.ResultOK, interfaces.ResultExtras{
		interfaces.ExtraIssuerTokenID: "token-b",
	}))

	var tokens []string
	for _, env := range f.host.Envelopes() {
		if env.Success {
			tokens = append(tokens, string(env.Data))
		}
	}
	require.Len(t, tokens, 2)
	assert.Contains(t, tokens[0], "token-a")
	assert.Contains(t, tokens[1], "token-b")
}

func TestAwaitTimeout(t *testing.T) {
	f := newFixture(t, Config{AwaitTimeout: 20 * time.Millisecond})

	attempt, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return len(f.host.Envelopes()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Idle, f.orch.State())
	assert.Equal(t, interfaces.ErrorProvisioningTimeout, f.lastError(t).Code)

	assert.False(t, f.orch.DeliverPlatformResult(attempt.RequestCode, interfaces.ResultOK, nil))
	assert.Len(t, f.host.Envelopes(), 1)
}

func TestCleanupAbandonsAttempt(t *testing.T) {
	f := newFixture(t, Config{})

	attempt, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)

	f.orch.Cleanup()
	assert.Equal(t, Idle, f.orch.State())
	assert.False(t, f.orch.DeliverPlatformResult(attempt.RequestCode, interfaces.ResultOK, nil))
	assert.Empty(t, f.host.Envelopes())
}

func TestTestModeSuccess(t *testing.T) {
	const delay = 150 * time.Millisecond
	f := newFixture(t, Config{})
	f.testMode.SetTestMode(true, true)
	f.testMode.SetDelay(delay)
	f.client.FailWith("GetEnvironment", interfaces.ErrUnsupportedOperation)

	start := time.Now()
	_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)
	assert.Empty(t, f.client.Launches())

	// Nothing is reported before the simulated platform answers.
	assert.Never(t, func() bool {
		return len(f.host.Envelopes()) > 0
	}, delay/2, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(f.host.Envelopes()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	env := f.host.Envelopes()[0]
	assert.GreaterOrEqual(t, env.Timestamp-start.UnixMilli(), delay.Milliseconds())
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "mock-token-reference-")
	assert.Contains(t, string(env.Data), interfaces.MessageCardAdded)
	assert.Equal(t, Idle, f.orch.State())
}

func TestTestModeFailure(t *testing.T) {
	const delay = 150 * time.Millisecond
	f := newFixture(t, Config{})
	f.testMode.SetTestMode(true, false)
	f.testMode.SetDelay(delay)
	f.testMode.SetError("ERROR_MOCK_DECLINED", "Mock declined")

	start := time.Now()
	_, ok := f.orch.StartProvisioning(context.Background(), validPayload)
	require.True(t, ok)
	assert.Equal(t, AwaitingPlatformResult, f.orch.State())
	assert.Empty(t, f.host.Envelopes())

	require.Eventually(t, func() bool {
		return len(f.host.Envelopes()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), delay)
	assert.GreaterOrEqual(t, f.host.Envelopes()[0].Timestamp-start.UnixMilli(), delay.Milliseconds())

	assert.Equal(t, &notifier.ErrorBody{
		Code:    "ERROR_MOCK_DECLINED",
		Message: "Mock declined",
		Details: testmode.MockErrorDetails,
	}, f.lastError(t))
	assert.Empty(t, f.client.Launches())
}
