package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.UnixMilli(1700000000123)

func newTestNotifier() (*Notifier, *RecordingHost) {
	host := &RecordingHost{}
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)), host)
	n.now = func() time.Time { return fixedTime }
	return n, host
}

func TestNotifySuccessPayloadShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		data    string
	}{
		{"object", `{"message":"ok"}`, `{"message":"ok"}`},
		{"array", `[1,2]`, `[1,2]`},
		{"plain string", `done`, `"done"`},
		{"number stays a string", `42`, `"42"`},
		{"broken object stays a string", `{"a":`, `"{\"a\":"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, host := newTestNotifier()
			n.NotifySuccess(tt.payload)

			envs := host.Envelopes()
			require.Len(t, envs, 1)
			assert.True(t, envs[0].Success)
			assert.Equal(t, fixedTime.UnixMilli(), envs[0].Timestamp)
			assert.JSONEq(t, tt.data, string(envs[0].Data))
			assert.Nil(t, envs[0].Error)
		})
	}
}

func TestNotifyError(t *testing.T) {
	n, host := newTestNotifier()
	n.NotifyError("ERROR_X", "went wrong", "")
	n.NotifyError("", "", "more")

	payloads := host.Payloads(ResultFunction)
	require.Len(t, payloads, 2)
	assert.JSONEq(t, `{"success":false,"timestamp":1700000000123,"error":{"code":"ERROR_X","message":"went wrong"}}`, string(payloads[0]))
	assert.JSONEq(t, `{"success":false,"timestamp":1700000000123,"error":{"code":"UNKNOWN_ERROR","message":"An unknown error occurred","details":"more"}}`, string(payloads[1]))
}

func TestNotifyErrorJSON(t *testing.T) {
	n, host := newTestNotifier()
	n.NotifyErrorJSON(`{"code":"ERROR_Y","message":"m","details":"d"}`)
	n.NotifyErrorJSON(`not json`)

	envs := host.Envelopes()
	require.Len(t, envs, 2)
	assert.Equal(t, &ErrorBody{Code: "ERROR_Y", Message: "m", Details: "d"}, envs[0].Error)
	assert.Equal(t, &ErrorBody{Code: interfaces.ErrorParsing, Message: interfaces.MessageParsingError, Details: "not json"}, envs[1].Error)
}

func TestNotifyOutcome(t *testing.T) {
	n, host := newTestNotifier()
	n.NotifyOutcome(interfaces.UserCancelled{})
	n.NotifyOutcome(interfaces.Success{TokenReferenceID: "tok-1"})
	n.NotifyOutcome(interfaces.ValidationError{Code: interfaces.ErrorInvalidProvisioningData, Message: "Missing opaquePaymentCard"})
	n.NotifyOutcome(interfaces.PlatformError{Code: interfaces.ErrorPackageNotVerified, Message: interfaces.PackageNotVerifiedMessage})

	payloads := host.Payloads(ResultFunction)
	require.Len(t, payloads, 4)
	assert.JSONEq(t, `{"success":false,"timestamp":1700000000123,"error":{"code":"ERROR_USER_CANCELLED","message":"User cancelled provisioning"}}`, string(payloads[0]))
	assert.JSONEq(t, `{"success":true,"timestamp":1700000000123,"data":{"success":true,"message":"Card added successfully","tokenReferenceId":"tok-1"}}`, string(payloads[1]))

	envs := host.Envelopes()
	assert.Equal(t, interfaces.ErrorInvalidProvisioningData, envs[2].Error.Code)
	assert.Equal(t, interfaces.ErrorPackageNotVerified, envs[3].Error.Code)
	assert.NotEmpty(t, envs[3].Error.Troubleshooting)
	assert.Equal(t, packageNotVerifiedConsoleURL, envs[3].Error.ConsoleURL)
}

func TestScriptRoundTrip(t *testing.T) {
	payload := []byte(`{"a":"b"}`)
	script := Script(ResultFunction, payload)
	assert.Equal(t, "if (typeof window !== \"undefined\" && typeof window?.[\"googleWalletProvisioningResult\"] === \"function\") {\n"+
		"    window?.[\"googleWalletProvisioningResult\"]?.({\"a\":\"b\"});\n}", script)

	fn, got, ok := ParseScript(script)
	require.True(t, ok)
	assert.Equal(t, ResultFunction, fn)
	assert.Equal(t, payload, got)

	_, _, ok = ParseScript("console.log(1)")
	assert.False(t, ok)
}

func TestEmitAliasesAndDataChanged(t *testing.T) {
	n, host := newTestNotifier()
	n.Emit("AccrueTabPressed", []byte(`{}`))
	n.NotifyDataChanged()

	events := Events(host.Scripts())
	require.Len(t, events, 2)
	assert.Equal(t, GoToHomeScreenFunction, events[0].Function)
	assert.Equal(t, DataChangedEvent, events[1].Function)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(events[1].Payload, &body))
	assert.Equal(t, fixedTime.UnixMilli(), body["timestamp"])
}

func TestUnboundNotifierDrops(t *testing.T) {
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	n.NotifyError("ERROR_X", "m", "")

	host := &RecordingHost{}
	n.Bind(host)
	n.NotifyError("ERROR_Y", "m", "")
	require.Len(t, host.Envelopes(), 1)
	assert.Equal(t, "ERROR_Y", host.Envelopes()[0].Error.Code)
}

func TestConcurrentNotify(t *testing.T) {
	n, host := newTestNotifier()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.NotifySuccess(`{"ok":true}`)
		}()
	}
	wg.Wait()

	envs := host.Envelopes()
	assert.Len(t, envs, 50)
	for _, env := range envs {
		assert.True(t, env.Success)
	}
}
