package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines timeout values for the application's timeout hierarchy
//
// Timeout Hierarchy (from outermost to innermost):
//
//	Caller / CLI command (60s)
//	  Service Layer (50s)
//	    External API (30s, card network)
//	      Single retry attempt (10s)
//
// Each layer completes before its parent times out, preventing cascading
// timeout failures.
type TimeoutConfig struct {
	Command time.Duration // Overall command timeout (default: 60s)

	Service time.Duration // Service operation timeout (default: 50s)

	ExternalAPI time.Duration // Card network calls (default: 30s)
	SingleRetry time.Duration // Individual retry attempt (default: 10s)

	// Database timeouts are set on the pgx pool, listed here for
	// documentation only:
	// SimpleQuery:  2s  - ID lookups, single row operations
	// ComplexQuery: 5s  - JOINs, filters, aggregations
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:     60 * time.Second,
		Service:     50 * time.Second,
		ExternalAPI: 30 * time.Second,
		SingleRetry: 10 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:     5 * time.Second,
		Service:     4 * time.Second,
		ExternalAPI: 2 * time.Second,
		SingleRetry: 1 * time.Second,
	}
}

// CommandContext creates a context with timeout for a top-level command
func (tc *TimeoutConfig) CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Command)
}

// ServiceContext creates a context with timeout for service layer operations
func (tc *TimeoutConfig) ServiceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Service)
}

// ExternalAPIContext creates a context for card network calls
func (tc *TimeoutConfig) ExternalAPIContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ExternalAPI)
}

// RetryAttemptContext creates a context for a single retry attempt
func (tc *TimeoutConfig) RetryAttemptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.SingleRetry)
}
