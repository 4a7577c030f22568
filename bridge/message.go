package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-faster/jx"
)

// HandlerName is the name the script bridge is registered under.
const HandlerName = "AccrueWallet"

// Message keys posted by the web page.
const (
	KeyProvisioningRequested      = HandlerName + "::GoogleWalletProvisioningRequested"
	KeyProvisioningResponse       = HandlerName + "::GoogleProvisioningResponse"
	KeyWalletInformationRequested = HandlerName + "::GoogleWalletProvisioningWalletInformationRequested"
	KeyIsSupportedRequested       = HandlerName + "::GoogleWalletProvisioningIsSupportedRequested"
	KeySignInButtonClicked        = HandlerName + "::SignInButtonClicked"
	KeyRegisterButtonClicked      = HandlerName + "::RegisterButtonClicked"
)

var (
	ErrMalformedMessage = errors.New("malformed bridge message")
	ErrUnknownKey       = errors.New("unknown bridge message key")
)

// Message is one decoded inbound bridge message.
type Message struct {
	Key string
	// Data is the raw "data" member, nil when absent or null.
	Data json.RawMessage
	// Raw is the message exactly as posted.
	Raw string
}

// ParseMessage decodes a posted message. A missing or non-string key
// decodes as the empty key.
func ParseMessage(raw string) (Message, error) {
	b := []byte(raw)
	if !jx.Valid(b) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrMalformedMessage)
	}
	d := jx.DecodeBytes(b)
	if d.Next() != jx.Object {
		return Message{}, fmt.Errorf("%w: not a JSON object", ErrMalformedMessage)
	}

	m := Message{Raw: raw}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "key":
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			m.Key = s
			return nil
		case "data":
			if d.Next() == jx.Null {
				return d.Skip()
			}
			r, err := d.Raw()
			if err != nil {
				return err
			}
			m.Data = append(json.RawMessage(nil), r...)
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return m, nil
}

// DataHasField reports whether Data is an object with the named member.
func (m Message) DataHasField(name string) bool {
	if len(m.Data) == 0 {
		return false
	}
	d := jx.DecodeBytes(m.Data)
	if d.Next() != jx.Object {
		return false
	}
	found := false
	_ = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) == name {
			found = true
		}
		return d.Skip()
	})
	return found
}
