package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned by platform calls that do not exist
	// on this device or platform build.
	ErrUnsupportedOperation = errors.New("operation not supported on this device")

	// ErrClientUnavailable is returned when no tokenization client is bound.
	ErrClientUnavailable = errors.New("tokenization client unavailable")

	// ErrNoActiveWallet is returned when the device has no active wallet.
	ErrNoActiveWallet = errors.New("no active wallet")

	// ErrHardwareIDUnavailable is returned when neither the wallet hardware id
	// nor the secondary OS id can be read.
	ErrHardwareIDUnavailable = errors.New("stable hardware id unavailable")

	// ErrLauncherUnavailable is returned when there is no host to launch a platform flow from.
	ErrLauncherUnavailable = errors.New("platform flow launcher unavailable")

	// ErrSecurity is returned when the platform refuses the caller.
	ErrSecurity = errors.New("security exception")

	ErrInvalidArgument = errors.New("invalid argument")
)

// StatusError is a platform failure carrying a numeric status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform status %d: %s", e.Code, e.Message)
}

// Is matches the sentinel errors that correspond to well known status codes.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNoActiveWallet:
		return e.Code == StatusNoActiveWallet
	case ErrClientUnavailable:
		return e.Code == StatusUnavailable
	}
	return false
}

// StatusCode returns the platform status code carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
