/*
Package provisioning is the entry point a host embeds to give its web view
wallet push provisioning.

An SDK owns one session: the gateway over the platform tokenization client,
the identity resolver, the orchestrator with its single pending attempt,
the notifier bound to the web view and the bridge dispatcher. The host
calls Initialize once the web view and the activity exist, forwards every
posted bridge message to Dispatch and every deferred platform result to
HandleActivityResult, and calls Cleanup when the web view goes away.

Platform flows are told apart by request code:

	push provisioning    orchestrator.Config.RequestCodeBase + [0, 1000)
	set default wallet   1005
	create wallet        1006
	view token           1007

Every answer reaches the page as a script call. Provisioning outcomes and
token management results use the unified googleWalletProvisioningResult
envelope; device info, eligibility and wallet information have their own
functions.
*/
package provisioning
