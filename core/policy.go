package core

import "time"

// RetryPolicy controls how many times a dispatch re-invokes the same agent
// after a failure and how long it waits between attempts. It is injected
// into each coordination policy so tests can substitute a zero-delay policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Backoff returns the wait before the given retry (1-based attempt
	// number of the call that just failed). A nil Backoff means no wait.
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt with a doubling
// delay starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return 500 * time.Millisecond << (attempt - 1)
		},
	}
}

// NoRetry performs a single attempt.
func NoRetry() RetryPolicy { return RetryPolicy{MaxAttempts: 1} }

// ConstantBackoff returns a policy with a fixed delay between attempts.
// A zero delay yields a deterministic, wait-free policy for tests.
func ConstantBackoff(attempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return delay },
	}
}

// Attempts returns the effective attempt count (at least 1).
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait before retrying after the given failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}
