package translator

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/go-faster/jx"
)

// DefaultDisplayName is used when the payload carries no display name.
const DefaultDisplayName = "Card"

// Options configures a Translator.
type Options struct {
	// Strict rejects unrecognized network and provider names instead of
	// mapping them to Visa.
	Strict bool
	// DisplayName overrides DefaultDisplayName.
	DisplayName string
}

// Translator parses inbound provisioning payloads.
type Translator struct {
	log  *slog.Logger
	opts Options
}

func NewTranslator(log *slog.Logger, opts Options) *Translator {
	if opts.DisplayName == "" {
		opts.DisplayName = DefaultDisplayName
	}
	return &Translator{log: log, opts: opts}
}

var errNotObject = errors.New("expected JSON object")

// pushData is the flat field set of pushTokenizeRequestData.
type pushData struct {
	opaquePaymentCard string
	network           string
	tsp               string
	lastDigits        string
	displayName       string
	address           *interfaces.Address
}

func invalid(code, message string) error {
	return &interfaces.ValidationError{Code: code, Message: message}
}

// Parse decodes raw into a provisioning request. Every failure is returned
// as a *interfaces.ValidationError.
func (t *Translator) Parse(raw string) (*interfaces.ProvisioningRequest, error) {
	buf := []byte(raw)
	if !jx.Valid(buf) {
		t.log.Warn("provisioning payload is not valid JSON", "length", len(raw))
		return nil, invalid(interfaces.ErrorParsingResponse, "Failed to parse push provisioning response")
	}
	d := jx.DecodeBytes(buf)
	if d.Next() != jx.Object {
		return nil, invalid(interfaces.ErrorParsingResponse, "Provisioning payload must be a JSON object")
	}

	var (
		rawPush   []byte
		cardToken string
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "data":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				switch string(key) {
				case "pushTokenizeRequestData":
					r, err := d.Raw()
					rawPush = bytes.Clone(r)
					return err
				case "cardToken":
					s, err := scalar(d)
					cardToken = s
					return err
				default:
					return d.Skip()
				}
			})
		case "pushTokenizeRequestData":
			// Older payloads carry the card data at the top level.
			if rawPush != nil {
				return d.Skip()
			}
			r, err := d.Raw()
			rawPush = bytes.Clone(r)
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		t.log.Warn("failed to decode provisioning payload", "err", err)
		return nil, invalid(interfaces.ErrorParsingResponse, "Failed to parse push provisioning response")
	}
	if rawPush == nil {
		return nil, invalid(interfaces.ErrorInvalidProvisioningData, "Missing pushTokenizeRequestData")
	}

	pd, err := decodePushData(rawPush)
	if err != nil {
		t.log.Warn("failed to decode pushTokenizeRequestData", "err", err)
		return nil, invalid(interfaces.ErrorInvalidProvisioningData, "Malformed pushTokenizeRequestData")
	}
	if strings.TrimSpace(pd.opaquePaymentCard) == "" {
		return nil, invalid(interfaces.ErrorInvalidProvisioningData, "Missing opaquePaymentCard")
	}

	network, err := t.MapNetwork(pd.network)
	if err != nil {
		return nil, err
	}
	tsp, err := t.MapTokenServiceProvider(pd.tsp, network)
	if err != nil {
		return nil, err
	}
	displayName := pd.displayName
	if displayName == "" {
		displayName = t.opts.DisplayName
	}

	return &interfaces.ProvisioningRequest{
		OpaquePaymentCard:    t.DecodeOpaquePaymentCard(pd.opaquePaymentCard),
		Network:              network,
		TokenServiceProvider: tsp,
		LastFourDigits:       pd.lastDigits,
		DisplayName:          displayName,
		BillingAddress:       pd.address,
		CardToken:            cardToken,
	}, nil
}

func decodePushData(raw []byte) (pushData, error) {
	var pd pushData
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Object {
		return pd, errNotObject
	}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "opaquePaymentCard":
			pd.opaquePaymentCard, err = scalar(d)
		case "network", "cardNetwork":
			pd.network, err = scalar(d)
		case "tokenServiceProvider", "tspProvider":
			pd.tsp, err = scalar(d)
		case "lastDigits", "lastFourDigits":
			pd.lastDigits, err = scalar(d)
		case "displayName":
			pd.displayName, err = scalar(d)
		case "userAddress", "billingAddress":
			pd.address, err = decodeAddress(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return pd, err
}

func decodeAddress(d *jx.Decoder) (*interfaces.Address, error) {
	if d.Next() != jx.Object {
		return nil, d.Skip()
	}
	var a interfaces.Address
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			a.Name, err = scalar(d)
		case "address1":
			a.Address1, err = scalar(d)
		case "address2":
			a.Address2, err = scalar(d)
		case "locality", "city":
			a.Locality, err = scalar(d)
		case "administrativeArea", "state":
			a.AdministrativeArea, err = scalar(d)
		case "countryCode", "country":
			a.CountryCode, err = scalar(d)
		case "postalCode":
			a.PostalCode, err = scalar(d)
		case "phoneNumber", "phone":
			a.PhoneNumber, err = scalar(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scalar reads the next value as a string. Null, objects and arrays read as "".
func scalar(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		return string(n), err
	case jx.Bool:
		b, err := d.Bool()
		return strconv.FormatBool(b), err
	case jx.Null:
		return "", d.Null()
	default:
		return "", d.Skip()
	}
}

// DecodeOpaquePaymentCard decodes the opaque payment card field. Base64 with
// and without padding is tried first; anything else is taken as the raw
// UTF-8 bytes of s. It never fails and returns an empty buffer for "".
func (t *Translator) DecodeOpaquePaymentCard(s string) []byte {
	if s == "" {
		return []byte{}
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if compact == "" {
		t.log.Warn("opaque payment card is blank")
		return []byte{}
	}
	if b, err := base64.StdEncoding.DecodeString(compact); err == nil {
		return b
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "=")); err == nil {
		return b
	}
	t.log.Warn("opaque payment card is not base64, using raw bytes", "length", len(s))
	return []byte(s)
}

// MapNetwork maps a network name to the platform constant. An empty name
// maps to Visa.
func (t *Translator) MapNetwork(name string) (interfaces.CardNetwork, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "VISA":
		return interfaces.CardNetworkVisa, nil
	case "MASTERCARD", "MASTER":
		return interfaces.CardNetworkMastercard, nil
	case "AMEX", "AMERICAN_EXPRESS":
		return interfaces.CardNetworkAmex, nil
	case "DISCOVER":
		return interfaces.CardNetworkDiscover, nil
	}
	if t.opts.Strict {
		return 0, invalid(interfaces.ErrorUnsupportedNetwork, "Unsupported card network: "+name)
	}
	t.log.Warn("unrecognized card network, defaulting to VISA", "network", name)
	return interfaces.CardNetworkVisa, nil
}

// MapTokenServiceProvider maps a provider name to the platform constant. An
// empty name yields the provider of the card network.
func (t *Translator) MapTokenServiceProvider(name string, network interfaces.CardNetwork) (interfaces.TokenServiceProvider, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return providerForNetwork(network), nil
	case "TOKEN_PROVIDER_VISA", "VISA":
		return interfaces.TokenProviderVisa, nil
	case "TOKEN_PROVIDER_MASTERCARD", "MASTERCARD":
		return interfaces.TokenProviderMastercard, nil
	case "TOKEN_PROVIDER_AMEX", "AMEX":
		return interfaces.TokenProviderAmex, nil
	case "TOKEN_PROVIDER_DISCOVER", "DISCOVER":
		return interfaces.TokenProviderDiscover, nil
	}
	if t.opts.Strict {
		return 0, invalid(interfaces.ErrorUnsupportedNetwork, "Unsupported token service provider: "+name)
	}
	t.log.Warn("unrecognized token service provider, defaulting to VISA", "tokenServiceProvider", name)
	return interfaces.TokenProviderVisa, nil
}

func providerForNetwork(n interfaces.CardNetwork) interfaces.TokenServiceProvider {
	switch n {
	case interfaces.CardNetworkMastercard:
		return interfaces.TokenProviderMastercard
	case interfaces.CardNetworkAmex:
		return interfaces.TokenProviderAmex
	case interfaces.CardNetworkDiscover:
		return interfaces.TokenProviderDiscover
	default:
		return interfaces.TokenProviderVisa
	}
}
