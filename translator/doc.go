// Package translator turns the push provisioning payload sent by the web
// layer into an interfaces.ProvisioningRequest.
//
// The web layer has shipped two payload shapes over time. The current one
// nests the card data under data.pushTokenizeRequestData:
//
//	{"data":{"pushTokenizeRequestData":{"opaquePaymentCard":"...","network":"VISA",
//	  "tokenServiceProvider":"TOKEN_PROVIDER_VISA","lastDigits":"1234",
//	  "displayName":"Card","userAddress":{...}},"cardToken":"..."}}
//
// The older one puts pushTokenizeRequestData at the top level and names the
// provider field tspProvider. Address objects come either with the platform
// field names (locality, administrativeArea, countryCode, phoneNumber) or
// with the web form names (city, state, country, phone). Parse accepts all of
// them.
//
// Only opaquePaymentCard is required. Every other field is optional and an
// absent field becomes an empty string, never an error. Scalar fields sent as
// numbers or booleans are read as their literal text.
//
// Network and provider names are matched case-insensitively. Unknown names
// map to Visa and are logged, unless Options.Strict is set, in which case
// they are rejected with ERROR_UNSUPPORTED_NETWORK.
package translator
