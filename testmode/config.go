package testmode

import (
	"time"

	"go.uber.org/atomic"
)

// Defaults applied by NewConfig.
const (
	DefaultDelay        = 1500 * time.Millisecond
	DefaultErrorCode    = "ERROR_TEST_MODE_FAILURE"
	DefaultErrorMessage = "Simulated provisioning failure"
)

// Config holds the test-mode switches of one session. The zero value is not
// usable; create it with NewConfig.
type Config struct {
	enabled      *atomic.Bool
	mockAPIs     *atomic.Bool
	mockSuccess  *atomic.Bool
	delay        *atomic.Duration
	errorCode    *atomic.String
	errorMessage *atomic.String
}

// NewConfig returns a disabled configuration with default mock settings.
func NewConfig() *Config {
	return &Config{
		enabled:      atomic.NewBool(false),
		mockAPIs:     atomic.NewBool(false),
		mockSuccess:  atomic.NewBool(true),
		delay:        atomic.NewDuration(DefaultDelay),
		errorCode:    atomic.NewString(DefaultErrorCode),
		errorMessage: atomic.NewString(DefaultErrorMessage),
	}
}

// SetTestMode enables or disables test mode. Enabling it also mocks every
// platform API; mockSuccess selects whether mocked operations succeed.
func (c *Config) SetTestMode(enabled, mockSuccess bool) {
	c.enabled.Store(enabled)
	c.mockAPIs.Store(enabled)
	c.mockSuccess.Store(mockSuccess)
}

// Enabled reports whether test mode is on.
func (c *Config) Enabled() bool {
	return c != nil && c.enabled.Load()
}

// MockAPIs reports whether platform calls are replaced by the simulator.
func (c *Config) MockAPIs() bool {
	return c.Enabled() && c.mockAPIs.Load()
}

// SetMockAPIs keeps test mode on but routes platform calls to the real client
// when mock is false.
func (c *Config) SetMockAPIs(mock bool) {
	c.mockAPIs.Store(mock)
}

// MockSuccess reports whether mocked operations succeed.
func (c *Config) MockSuccess() bool {
	return c.mockSuccess.Load()
}

func (c *Config) Delay() time.Duration {
	return c.delay.Load()
}

// SetDelay sets the latency injected before every mocked result.
func (c *Config) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.delay.Store(d)
}

func (c *Config) ErrorCode() string {
	return c.errorCode.Load()
}

func (c *Config) ErrorMessage() string {
	return c.errorMessage.Load()
}

// SetError sets the error reported by failing mocked operations. Empty values
// keep the current setting.
func (c *Config) SetError(code, message string) {
	if code != "" {
		c.errorCode.Store(code)
	}
	if message != "" {
		c.errorMessage.Store(message)
	}
}
