package retry

import (
	"context"
	"time"

	"github.com/flowsend/aegis/internal/core/errs"
	"github.com/flowsend/aegis/internal/metrics"
)

// Policy defines retry behavior for one call domain.
type Policy struct {
	Domain          string
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64

	// OnRetry is invoked synchronously before each backoff sleep, with the
	// attempt number (1-based) and the classified error. Optional.
	OnRetry func(attempt int, err error)
}

// Fixed per-domain presets. Callers pick one of these rather than inventing
// ad hoc policies.
var (
	// ProviderAPIPolicy covers calls to the external messaging provider.
	ProviderAPIPolicy = Policy{
		Domain:          "provider_api",
		MaxRetries:      5,
		InitialDelay:    2 * time.Second,
		MaxDelay:        60 * time.Second,
		BackoffMultiple: 2.5,
	}

	// AIInferencePolicy covers AI assistant calls, which are expensive enough
	// that a short budget is preferred over hammering the service.
	AIInferencePolicy = Policy{
		Domain:          "ai_inference",
		MaxRetries:      2,
		InitialDelay:    1 * time.Second,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}

	// DatabasePolicy covers database operations.
	DatabasePolicy = Policy{
		Domain:          "database",
		MaxRetries:      3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
)

// throttleMultiple is applied instead of the policy multiplier when the
// provider signals throttling. Throttling responses need a steeper back-off
// than generic transient failures.
const throttleMultiple = 3.0

// Work is a unit of fallible work executed under a retry policy.
type Work func(ctx context.Context) (any, error)

// Do executes work under exponential backoff. Non-retryable and
// provider-permanent errors abort immediately without burning the remaining
// budget. The returned error is always the last classified error so callers
// can inspect its kind.
func Do(ctx context.Context, policy Policy, work Work) (any, error) {
	delay := policy.InitialDelay

	for attempt := 0; ; attempt++ {
		result, err := work(ctx)
		if err == nil {
			return result, nil
		}

		appErr := errs.Classify(err)

		if attempt == policy.MaxRetries {
			metrics.RetriesExhaustedTotal.WithLabelValues(policy.Domain).Inc()
			return nil, appErr
		}

		category := appErr.ProviderCategory()
		if !appErr.Retryable() || category == errs.ProviderPermanent {
			return nil, appErr
		}

		// Throttling bumps the delay before sleeping; generic transient
		// failures sleep first and grow the delay for the next round.
		throttled := category == errs.ProviderThrottling
		if throttled {
			delay = nextDelay(delay, true, policy)
		}

		metrics.RetryAttemptsTotal.WithLabelValues(policy.Domain, appErr.Code).Inc()
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, appErr)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		if !throttled {
			delay = nextDelay(delay, false, policy)
		}
	}
}

// nextDelay grows the backoff delay, capped at the policy maximum.
func nextDelay(current time.Duration, throttled bool, policy Policy) time.Duration {
	multiple := policy.BackoffMultiple
	if throttled {
		multiple = throttleMultiple
	}
	next := time.Duration(float64(current) * multiple)
	if next > policy.MaxDelay {
		next = policy.MaxDelay
	}
	return next
}
