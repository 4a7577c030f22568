// Package notifier delivers results and events to the embedded web layer.
//
// Every provisioning outcome is rendered as one JSON envelope:
//
//	{"success":true,"timestamp":1700000000000,"data":{...}}
//	{"success":false,"timestamp":1700000000000,"error":{"code":"...","message":"...","details":"..."}}
//
// and handed to the well-known global function googleWalletProvisioningResult.
// Other events (device info, wallet info, eligibility, data changes) are
// delivered with Emit to their own functions.
//
// Delivery always goes through WebViewHost.Post, so Notify* and Emit may be
// called from any goroutine. A call made before a host is bound is logged and
// dropped.
package notifier
