/*
Package bridge decodes the messages the embedded web page posts to the native
side and dispatches them.

Every inbound message is a JSON object with a "key" discriminator and an
optional "data" member:

	{"key": "AccrueWallet::GoogleProvisioningResponse", "data": {...}}

Provisioning keys are routed to a Session, which is the provisioning SDK in
production. Button keys are routed to the host application through an
ActionHandler supplied at construction. Unknown keys are logged and ignored.

Nothing is returned to the page from this package. Replies, when a key
has one, are emitted by the Session through the notifier.
*/
package bridge
