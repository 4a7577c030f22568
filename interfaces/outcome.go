package interfaces

// Outcome is the terminal result of one provisioning attempt. It is one of
// Success, UserCancelled, PlatformError, ValidationError or InternalError.
type Outcome interface {
	outcome()
}

// Success is a completed tokenization.
type Success struct {
	TokenReferenceID string
	Message          string
}

// UserCancelled is the user backing out of the platform flow.
type UserCancelled struct{}

// PlatformError is a wallet or tokenization platform failure.
type PlatformError struct {
	Code    string
	Message string
	Details string
}

// ValidationError is a malformed or incomplete inbound payload.
type ValidationError struct {
	Code    string
	Message string
}

// InternalError is an unexpected failure during orchestration.
type InternalError struct {
	Message string
	Err     error
}

func (Success) outcome()         {}
func (UserCancelled) outcome()   {}
func (PlatformError) outcome()   {}
func (ValidationError) outcome() {}
func (InternalError) outcome()   {}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *PlatformError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// OutcomeCode returns the wire error code of an outcome, or "" for Success.
func OutcomeCode(o Outcome) string {
	switch v := o.(type) {
	case UserCancelled:
		return ErrorUserCancelled
	case PlatformError:
		return v.Code
	case ValidationError:
		return v.Code
	case InternalError:
		return ErrorInternal
	default:
		return ""
	}
}
