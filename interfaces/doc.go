// Package interfaces defines the data model and the platform boundary of the
// wallet push-provisioning core, separating interface definitions from
// implementations.
//
// # Platform Interfaces
//
// TokenizationClient: the wallet tokenization service of the device, covering
// environment and wallet lookups, de-duplication checks, token listing and the
// launchers of deferred platform flows (push tokenize, create wallet, view
// token, select default wallet).
//
// DeviceCapabilities: static facts about the device such as NFC status,
// emulator detection and the secondary hardware id.
//
// Activity: the host screen that platform flows are launched from.
//
// WebViewHost: evaluates scripts inside the embedded web content.
//
// # Data Model
//
//   - DeviceDescriptor: identity of the device and its wallet account
//   - ProvisioningRequest and Address: a decoded push provisioning request
//   - PendingAttempt: the attempt awaiting a deferred platform result
//   - Outcome: Success, UserCancelled, PlatformError, ValidationError or
//     InternalError
//
// # Errors
//
// Sentinel errors and StatusError carry platform failures; codes.go holds the
// stable error codes and messages sent to the web layer.
package interfaces
