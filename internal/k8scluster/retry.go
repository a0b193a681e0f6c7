package k8scluster

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
)

const (
	retryMaxAttempts       = 3
	retryPerAttemptTimeout = 5 * time.Second
	retryInitialInterval   = 100 * time.Millisecond
	retryMaxInterval       = 400 * time.Millisecond
)

func newRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// retryResult captures how the retry loop ended, for callers that want to
// report a RetrySummary diagnostic on a late success.
type retryResult[T any] struct {
	value    T
	attempts int
}

// terminalError marks an error that is already a fully classified, final
// outcome (a rejected selector, a stale resource resolution) rather than
// a retryable-or-not transport condition: the retry loop must stop and
// hand it back unwrapped so the caller above can act on the specific
// classification instead of a generic RetryExhausted.
type terminalError struct {
	err error
}

func (t *terminalError) Error() string { return t.err.Error() }
func (t *terminalError) Unwrap() error { return t.err }

// terminal wraps err so runWithRetry stops immediately and returns err
// itself, bypassing both further attempts and RetryExhausted wrapping.
func terminal(err error) error { return &terminalError{err: err} }

// runWithRetry executes attempt up to retryMaxAttempts times, per spec
// §4.4.4: each attempt gets its own 5s timeout, backoff doubles from
// 100ms capped at 400ms, and a non-retryable classification stops the
// loop immediately regardless of attempts remaining.
func runWithRetry[T any](ctx context.Context, stage string, attempt func(ctx context.Context) (T, error)) (retryResult[T], error) {
	var zero T
	b := newRetryBackoff()

	var lastErr error
	finalKind := kqlerrors.RetryErrorOther

	for attempts := 1; attempts <= retryMaxAttempts; attempts++ {
		attemptCtx, cancel := context.WithTimeout(ctx, retryPerAttemptTimeout)
		result, err := attempt(attemptCtx)
		cancel()

		if err == nil {
			return retryResult[T]{value: result, attempts: attempts}, nil
		}

		var term *terminalError
		if errors.As(err, &term) {
			return retryResult[T]{value: zero, attempts: attempts}, term.err
		}

		lastErr = err
		retryable, kind := classifyTransportError(attemptCtx, err)
		finalKind = kind

		if !retryable {
			// No retry has happened yet: surface the classified error
			// itself (e.g. ListFailed) instead of a RetryExhausted
			// wrapper. NonRetryable is reserved for reporting that a
			// retry occurred before the loop gave up, per spec §4.4.4.
			if attempts == 1 {
				return retryResult[T]{value: zero, attempts: attempts}, lastErr
			}
			return retryResult[T]{value: zero, attempts: attempts}, &kqlerrors.K8sError{
				Kind:       kqlerrors.RetryExhausted,
				Stage:      stage,
				Attempts:   attempts,
				StopReason: kqlerrors.NonRetryable,
				FinalError: kind,
				Source:     lastErr,
			}
		}

		if attempts == retryMaxAttempts {
			break
		}

		timer := time.NewTimer(b.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return retryResult[T]{value: zero, attempts: attempts}, &kqlerrors.K8sError{
				Kind:       kqlerrors.RetryExhausted,
				Stage:      stage,
				Attempts:   attempts,
				StopReason: kqlerrors.RetryCapReached,
				FinalError: kind,
				Source:     ctx.Err(),
			}
		case <-timer.C:
		}
	}

	return retryResult[T]{value: zero, attempts: retryMaxAttempts}, &kqlerrors.K8sError{
		Kind:       kqlerrors.RetryExhausted,
		Stage:      stage,
		Attempts:   retryMaxAttempts,
		StopReason: kqlerrors.RetryCapReached,
		FinalError: finalKind,
		Source:     lastErr,
	}
}

// classifyTransportError maps a raw client-go/API error to the spec
// §4.4.5 retryable/non-retryable split: context deadline exceeded is a
// RequestTimeout; HTTP 429 or >=500 API statuses are retryable transport
// errors; anything else with an APIStatus is a non-retryable API error;
// otherwise fall back to matching connect-class error text, same
// approach the original implementation used for its own transport errors.
func classifyTransportError(ctx context.Context, err error) (retryable bool, kind kqlerrors.RetryErrorKind) {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return true, kqlerrors.RetryErrorTimeout
	}

	var statusErr apierrors.APIStatus
	if errors.As(err, &statusErr) {
		code := statusErr.Status().Code
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return true, kqlerrors.RetryErrorOther
		}
		return false, kqlerrors.RetryErrorOther
	}

	if isAPIUnreachableErrorMessage(err.Error()) {
		return true, kqlerrors.RetryErrorApiUnreachable
	}

	return false, kqlerrors.RetryErrorOther
}

// isAPIUnreachableErrorMessage recognizes connect-class transport failures
// by message text, the same way the original implementation did, extended
// with the phrasing Go's net package and client-go actually produce.
func isAPIUnreachableErrorMessage(message string) bool {
	needles := []string{
		"client error (Connect)",
		"Unable to connect",
		"connection refused",
		"no such host",
		"i/o timeout",
		"dial tcp",
	}
	for _, needle := range needles {
		if strings.Contains(message, needle) {
			return true
		}
	}
	return false
}
