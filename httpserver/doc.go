/*
Package httpserver hosts one provisioning session over HTTP so the embedded
web layer can be exercised without a device.

The server stands in for both sides of the native bridge. The web layer, or
a test driving it, posts bridge messages exactly as the page would post
them to the script bridge, and reads back the script calls the session
made. A second endpoint plays the platform: it delivers the deferred result
of a platform flow the session launched.

# Bridge API

	POST /api/bridge/message    inbound bridge message, the raw JSON the page posts
	GET  /api/bridge/events     drains the script calls made since the last read
	POST /api/platform/result   {"requestCode":2001,"resultCode":-1,"extras":{...}}
	GET  /api/session/state     orchestrator state and pending attempt
	POST /api/session/testmode  toggles the simulated platform

Events are returned as {"events":[{"function":"...","payload":{...}}]}. The
payload is the single JSON argument the page function received.

# Operations

  - /livez and /readyz probes
  - /drain and /undrain flip readiness so a load balancer stops routing
  - /debug/pprof when EnablePprof is set
  - Prometheus metrics on MetricsAddr when it is set

BridgeClient is the matching Go client.
*/
package httpserver
