package translator

import (
	"encoding/base64"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/go-faster/jx"
)

// EncodePayload renders req in the current payload shape. Parse(EncodePayload(req))
// yields req again, with the opaque card re-encoded as base64.
func EncodePayload(req *interfaces.ProvisioningRequest) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("data", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("pushTokenizeRequestData", func(e *jx.Encoder) {
					encodePushData(e, req)
				})
				if req.CardToken != "" {
					e.Field("cardToken", func(e *jx.Encoder) { e.Str(req.CardToken) })
				}
			})
		})
	})
	return e.Bytes()
}

func encodePushData(e *jx.Encoder, req *interfaces.ProvisioningRequest) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("opaquePaymentCard", func(e *jx.Encoder) {
			e.Str(base64.StdEncoding.EncodeToString(req.OpaquePaymentCard))
		})
		e.Field("network", func(e *jx.Encoder) { e.Str(req.Network.String()) })
		e.Field("tokenServiceProvider", func(e *jx.Encoder) { e.Str(req.TokenServiceProvider.String()) })
		if req.LastFourDigits != "" {
			e.Field("lastDigits", func(e *jx.Encoder) { e.Str(req.LastFourDigits) })
		}
		if req.DisplayName != "" {
			e.Field("displayName", func(e *jx.Encoder) { e.Str(req.DisplayName) })
		}
		if a := req.BillingAddress; a != nil {
			e.Field("userAddress", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for _, f := range []struct{ k, v string }{
						{"name", a.Name},
						{"address1", a.Address1},
						{"address2", a.Address2},
						{"locality", a.Locality},
						{"administrativeArea", a.AdministrativeArea},
						{"countryCode", a.CountryCode},
						{"postalCode", a.PostalCode},
						{"phoneNumber", a.PhoneNumber},
					} {
						e.Field(f.k, func(e *jx.Encoder) { e.Str(f.v) })
					}
				})
			})
		}
	})
}
