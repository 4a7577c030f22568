// Package main (cmd/bridge-sim) hosts one provisioning session over HTTP so
// the embedded web layer can be exercised without a device.
//
// The session runs against an in-memory tokenization client. Scripts the SDK
// evaluates in the web view are queued and served on GET /api/bridge/events,
// and deferred platform results are injected with POST /api/platform/result.
//
// Example usage:
//
//	bridge-sim --listen-addr=127.0.0.1:8080 \
//	    --wallet-id=wallet-1 \
//	    --test-mode --mock-delay-ms=500
package main
