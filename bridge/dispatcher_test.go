package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	arg    string
}

type recordingSession struct {
	mu    sync.Mutex
	calls []call
}

func (s *recordingSession) record(method, arg string) {
	s.mu.Lock()
	s.calls = append(s.calls, call{method, arg})
	s.mu.Unlock()
}

func (s *recordingSession) RequestTokenGeneration(ctx context.Context, data json.RawMessage) {
	s.record("RequestTokenGeneration", string(data))
}

func (s *recordingSession) StartPushProvisioning(ctx context.Context, rawJSON string) {
	s.record("StartPushProvisioning", rawJSON)
}

func (s *recordingSession) SendWalletInformation(ctx context.Context) {
	s.record("SendWalletInformation", "")
}

func (s *recordingSession) SendEligibility(ctx context.Context, automatic bool) {
	if automatic {
		s.record("SendEligibility", "automatic")
		return
	}
	s.record("SendEligibility", "manual")
}

func newTestDispatcher(actions ActionHandler) (*Dispatcher, *recordingSession) {
	session := &recordingSession{}
	return NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), session, actions), session
}

func TestParseMessage(t *testing.T) {
	m, err := ParseMessage(`{"key":"AccrueWallet::GoogleProvisioningResponse","data":{"pushTokenizeRequestData":{"opaquePaymentCard":"aGVsbG8="}},"extra":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, KeyProvisioningResponse, m.Key)
	assert.JSONEq(t, `{"pushTokenizeRequestData":{"opaquePaymentCard":"aGVsbG8="}}`, string(m.Data))

	m, err = ParseMessage(`{"data":null}`)
	require.NoError(t, err)
	assert.Empty(t, m.Key)
	assert.Nil(t, m.Data)

	m, err = ParseMessage(`{"key":42}`)
	require.NoError(t, err)
	assert.Empty(t, m.Key)

	for _, raw := range []string{``, `not json`, `[1,2]`, `"key"`, `{"key":`} {
		_, err := ParseMessage(raw)
		assert.ErrorIs(t, err, ErrMalformedMessage, raw)
	}
}

func TestDataHasField(t *testing.T) {
	m, err := ParseMessage(`{"key":"k","data":{"tokenId":"t-1","other":{"tokenId":1}}}`)
	require.NoError(t, err)
	assert.True(t, m.DataHasField("tokenId"))
	assert.False(t, m.DataHasField("missing"))

	m, err = ParseMessage(`{"key":"k","data":"tokenId"}`)
	require.NoError(t, err)
	assert.False(t, m.DataHasField("tokenId"))
}

func TestDispatchProvisioningKeys(t *testing.T) {
	d, session := newTestDispatcher(nil)
	ctx := context.Background()

	response := `{"key":"AccrueWallet::GoogleProvisioningResponse","data":{"pushTokenizeRequestData":{"opaquePaymentCard":"aGVsbG8="}}}`
	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::GoogleWalletProvisioningRequested","data":{"tokenId":"t-1"}}`))
	require.NoError(t, d.Dispatch(ctx, response))
	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::GoogleWalletProvisioningWalletInformationRequested"}`))
	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::GoogleWalletProvisioningIsSupportedRequested"}`))

	assert.Equal(t, []call{
		{"RequestTokenGeneration", `{"tokenId":"t-1"}`},
		{"StartPushProvisioning", response},
		{"SendWalletInformation", ""},
		{"SendEligibility", "manual"},
	}, session.calls)
}

func TestDispatchHostActions(t *testing.T) {
	var got []Action
	actions := ActionFuncs{
		SignInButtonClicked:   func() { got = append(got, ActionSignInButtonClicked) },
		ProvisioningRequested: func() { got = append(got, ActionProvisioningRequested) },
	}
	d, session := newTestDispatcher(actions)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::SignInButtonClicked"}`))
	// No register handler installed.
	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::RegisterButtonClicked"}`))
	require.NoError(t, d.Dispatch(ctx, `{"key":"AccrueWallet::GoogleWalletProvisioningRequested"}`))

	assert.Equal(t, []Action{ActionSignInButtonClicked, ActionProvisioningRequested}, got)
	require.Len(t, session.calls, 1)
	assert.Equal(t, "RequestTokenGeneration", session.calls[0].method)
}

func TestDispatchRejects(t *testing.T) {
	d, session := newTestDispatcher(nil)
	ctx := context.Background()

	assert.ErrorIs(t, d.Dispatch(ctx, `{"key":"AccrueWallet::Unknown"}`), ErrUnknownKey)
	assert.ErrorIs(t, d.Dispatch(ctx, `{"key":""}`), ErrUnknownKey)
	assert.ErrorIs(t, d.Dispatch(ctx, `{oops`), ErrMalformedMessage)
	assert.Empty(t, session.calls)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "SignInButtonClicked", ActionSignInButtonClicked.String())
	assert.Equal(t, "Action(99)", Action(99).String())
}
