package retry

import (
	"context"
	"gcpctl/internal/resource"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"net/http"
	"time"
)

// Policy describes how often and how long a failing call is retried. The delay before
// retry n (0-based) is BaseDelay * Exponent^n, capped at MaxDelay when set.
type Policy struct {
	BaseDelay   time.Duration
	Exponent    float64
	MaxAttempts int
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries every error.
	Retryable func(error) bool
}

// DependencyPolicy retries creates whose referenced resources are not visible yet.
var DependencyPolicy = Policy{
	BaseDelay:   time.Second,
	Exponent:    1.2,
	MaxAttempts: 10,
	Retryable:   IsNotFound,
}

var ErrNotReady = errors.New("resource not ready")

// newTimer is replaced in tests to observe delays without sleeping. A nil timer makes
// backoff use a real one.
var newTimer = func() backoff.Timer { return nil }

func IsNotFound(err error) bool {
	if resource.IsNotFound(err) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) backOff() backoff.BackOff {
	exponent := p.Exponent
	if exponent < 1 {
		exponent = 1
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 24 * time.Hour
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          exponent,
		MaxInterval:         maxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(p.attempts()-1))
}

// Do calls fn until it succeeds, fails with an error the policy does not retry, or the
// attempts run out. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0
	operation := func() error {
		attempt++
		res, err := fn(ctx)
		if err != nil {
			if p.Retryable != nil && !p.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = res
		return nil
	}
	notify := func(err error, delay time.Duration) {
		log.Debug().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("retrying")
	}

	b := backoff.WithContext(p.backOff(), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, b, notify, newTimer()); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Wrap returns fn with retries applied.
func Wrap[T any](p Policy, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, p, fn)
	}
}

// FetchUntil polls fetch until present accepts the result. A result that is not present
// yet counts as ErrNotReady, which the policy should treat as retryable.
func FetchUntil(ctx context.Context, p Policy, fetch func(context.Context) (resource.Remote, error), present func(resource.Remote) bool) (resource.Remote, error) {
	return Do(ctx, p, func(ctx context.Context) (resource.Remote, error) {
		r, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if !present(r) {
			return nil, errors.Wrapf(ErrNotReady, "%s", r.Name())
		}
		return r, nil
	})
}

// NotReadyOrNotFound is the usual predicate for FetchUntil.
func NotReadyOrNotFound(err error) bool {
	return errors.Is(err, ErrNotReady) || IsNotFound(err)
}
