package notifier

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/accruesavings/wallet-provisioning/interfaces"
)

// Well-known global functions of the web layer.
const (
	ResultFunction            = "googleWalletProvisioningResult"
	GenerateTokenFunction     = "generateGoogleWalletProvisioningToken"
	WalletInformationFunction = "googleWalletProvisioningWalletInformationResponse"
	IsSupportedFunction       = "googleWalletProvisioningIsSupportedResponse"
	DataChangedEvent          = "googlePayDataChanged"
	GoToHomeScreenFunction    = "__GO_TO_HOME_SCREEN"
)

// eventAliases maps native event names to the function the page exposes.
var eventAliases = map[string]string{
	"AccrueTabPressed":               GoToHomeScreenFunction,
	"googleWalletProvisioningResult": ResultFunction,
}

const (
	packageNotVerifiedTroubleshooting = "Google Pay package verification failed. Register the app package " +
		"with the Google Pay & Wallet Console, complete the business profile and submit the " +
		"integration for approval. Until then use the TEST environment and sample cards."
	packageNotVerifiedConsoleURL = "https://console.developers.google.com/"
)

// Notifier renders outcomes and events and delivers them to the web view.
type Notifier struct {
	log *slog.Logger
	now func() time.Time

	mu   sync.RWMutex
	host interfaces.WebViewHost
}

// NewNotifier creates a notifier. host may be nil and bound later with Bind.
func NewNotifier(log *slog.Logger, host interfaces.WebViewHost) *Notifier {
	return &Notifier{
		log:  log,
		now:  time.Now,
		host: host,
	}
}

// Bind replaces the web view host. A nil host detaches the notifier.
func (n *Notifier) Bind(host interfaces.WebViewHost) {
	n.mu.Lock()
	n.host = host
	n.mu.Unlock()
}

// Now returns the notifier's clock reading.
func (n *Notifier) Now() time.Time {
	return n.now()
}

// NotifySuccess delivers a success envelope carrying payload.
func (n *Notifier) NotifySuccess(payload string) {
	n.deliver(SuccessEnvelope(n.now(), payload))
}

// NotifyError delivers an error envelope.
func (n *Notifier) NotifyError(code, message, details string) {
	env := ErrorEnvelope(n.now(), code, message, details)
	if code == interfaces.ErrorPackageNotVerified {
		n.log.Error("package not verified for tokenization", "details", details)
		env.Error.Troubleshooting = packageNotVerifiedTroubleshooting
		env.Error.ConsoleURL = packageNotVerifiedConsoleURL
	}
	n.deliver(env)
}

// NotifyErrorJSON re-delivers a serialized error object with code, message
// and details fields. Input that cannot be parsed is delivered as a
// PARSING_ERROR envelope carrying the raw input as details.
func (n *Notifier) NotifyErrorJSON(errorJSON string) {
	var body struct {
		Code    *string `json:"code"`
		Message *string `json:"message"`
		Details *string `json:"details"`
	}
	if err := json.Unmarshal([]byte(errorJSON), &body); err != nil {
		n.log.Warn("failed to parse error JSON", "err", err)
		n.NotifyError(interfaces.ErrorParsing, interfaces.MessageParsingError, errorJSON)
		return
	}
	var code, message, details string
	if body.Code != nil {
		code = *body.Code
	}
	if body.Message != nil {
		message = *body.Message
	}
	if body.Details != nil {
		details = *body.Details
	}
	n.NotifyError(code, message, details)
}

// NotifyOutcome delivers the envelope of a provisioning outcome.
func (n *Notifier) NotifyOutcome(o interfaces.Outcome) {
	switch v := o.(type) {
	case interfaces.Success:
		n.NotifySuccess(string(SuccessPayload(v)))
	case interfaces.UserCancelled:
		n.NotifyError(interfaces.ErrorUserCancelled, interfaces.MessageUserCancelled, "")
	case interfaces.PlatformError:
		n.NotifyError(v.Code, v.Message, v.Details)
	case interfaces.ValidationError:
		n.NotifyError(v.Code, v.Message, "")
	case interfaces.InternalError:
		details := ""
		if v.Err != nil {
			details = v.Err.Error()
		}
		n.NotifyError(interfaces.ErrorInternal, v.Message, details)
	default:
		n.log.Error("unknown outcome type", "outcome", o)
		n.NotifyError(interfaces.ErrorInternal, "Unknown provisioning outcome", "")
	}
}

// SuccessPayload is the data member delivered for a successful tokenization.
func SuccessPayload(s interfaces.Success) []byte {
	msg := s.Message
	if msg == "" {
		msg = interfaces.MessageCardAdded
	}
	payload := struct {
		Success          bool   `json:"success"`
		Message          string `json:"message"`
		TokenReferenceID string `json:"tokenReferenceId,omitempty"`
	}{true, msg, s.TokenReferenceID}
	b, _ := json.Marshal(payload)
	return b
}

func (n *Notifier) deliver(env Envelope) {
	if !env.Success {
		n.log.Info("delivering provisioning error", "code", env.Error.Code, "message", env.Error.Message)
	} else {
		n.log.Info("delivering provisioning success")
	}
	n.Emit(ResultFunction, env.Marshal())
}

// Emit calls the global function fn with payload. payload must be valid JSON.
func (n *Notifier) Emit(fn string, payload []byte) {
	if alias, ok := eventAliases[fn]; ok {
		fn = alias
	}
	n.mu.RLock()
	host := n.host
	n.mu.RUnlock()
	if host == nil {
		n.log.Warn("no web view bound, dropping event", "function", fn)
		return
	}
	script := Script(fn, payload)
	host.Post(func() {
		host.EvaluateScript(script)
	})
}

// EmitJSON marshals v and emits it to fn.
func (n *Notifier) EmitJSON(fn string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		n.log.Error("failed to encode event", "function", fn, "err", err)
		return
	}
	n.Emit(fn, b)
}

// NotifyDataChanged tells the page that the wallet contents changed.
func (n *Notifier) NotifyDataChanged() {
	n.EmitJSON(DataChangedEvent, map[string]int64{"timestamp": n.now().UnixMilli()})
}
