// Package orchestrator sequences one push provisioning attempt and correlates
// the deferred platform result with it.
//
// An attempt moves through
//
//	Idle -> CheckingEligibility -> Translating -> CheckingDuplicate -> AwaitingPlatformResult -> Idle
//
// and every path back to Idle delivers exactly one interfaces.Outcome to the
// Reporter. Eligibility requires tokenization to be available, an active
// wallet, and a real device descriptor; a fallback descriptor never reaches
// the tokenize call. While test mode mocks the platform, eligibility and
// de-duplication are skipped and the simulator produces the outcome.
//
// Only one attempt exists at a time. A StartProvisioning call made while
// another attempt is in any non-Idle state is rejected with
// ERROR_PROVISIONING_IN_PROGRESS and the running attempt is left untouched.
//
// Each launched attempt holds a PendingAttempt carrying a correlation id and
// a request code drawn from a dedicated range. DeliverPlatformResult drops
// any result whose request code does not match the slot, so a late result of
// an earlier attempt can never complete a later one. An attempt that gets no
// result within Config.AwaitTimeout ends with ERROR_PROVISIONING_TIMEOUT.
package orchestrator
