package retry

import (
	"context"
	"gcpctl/internal/resource"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"testing"
	"time"
)

type recordingTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	r.c = make(chan time.Time, 1)
	r.c <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time {
	return r.c
}

func useRecordingTimer(t *testing.T) *recordingTimer {
	timer := &recordingTimer{}
	previous := newTimer
	newTimer = func() backoff.Timer { return timer }
	t.Cleanup(func() { newTimer = previous })
	return timer
}

var errNotFound = &googleapi.Error{Code: 404, Message: "not found"}

func failing(n int, err error) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(ctx context.Context) (string, error) {
		calls++
		if calls <= n {
			return "", err
		}
		return "ok", nil
	}, &calls
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	for _, failures := range []int{0, 1, 3, 5} {
		timer := useRecordingTimer(t)
		fn, calls := failing(failures, errNotFound)
		p := Policy{BaseDelay: time.Second, Exponent: 1.2, MaxAttempts: failures + 1, Retryable: IsNotFound}

		res, err := Do(context.Background(), p, fn)
		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Equal(t, failures+1, *calls)
		require.Len(t, timer.delays, failures)
		for i := 1; i < len(timer.delays); i++ {
			assert.Greater(t, timer.delays[i], timer.delays[i-1])
		}
	}
}

func TestDoDelaysFollowExponent(t *testing.T) {
	timer := useRecordingTimer(t)
	fn, _ := failing(3, errNotFound)
	p := Policy{BaseDelay: time.Second, Exponent: 2, MaxAttempts: 4}

	_, err := Do(context.Background(), p, fn)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, timer.delays)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	timer := useRecordingTimer(t)
	fn, calls := failing(10, errNotFound)
	p := Policy{BaseDelay: time.Millisecond, Exponent: 1.5, MaxAttempts: 3, Retryable: IsNotFound}

	_, err := Do(context.Background(), p, fn)
	assert.Equal(t, errNotFound, err)
	assert.Equal(t, 3, *calls)
	assert.Len(t, timer.delays, 2)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	timer := useRecordingTimer(t)
	denied := &googleapi.Error{Code: 403, Message: "forbidden"}
	fn, calls := failing(1, denied)

	_, err := Do(context.Background(), DependencyPolicy, fn)
	assert.Equal(t, denied, err)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, timer.delays)
}

func TestWrap(t *testing.T) {
	useRecordingTimer(t)
	fn, calls := failing(2, errors.Wrap(resource.ErrNotFound, "url map"))
	wrapped := Wrap(DependencyPolicy, fn)

	res, err := wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, *calls)
}

func TestFetchUntil(t *testing.T) {
	timer := useRecordingTimer(t)
	polls := 0
	fetch := func(ctx context.Context) (resource.Remote, error) {
		polls++
		r := resource.Remote{"name": "lb-ip"}
		if polls == 3 {
			r["address"] = "34.1.2.3"
		}
		return r, nil
	}
	p := Policy{BaseDelay: time.Second, Exponent: 1.5, MaxAttempts: 20, Retryable: NotReadyOrNotFound}

	r, err := FetchUntil(context.Background(), p, fetch, func(r resource.Remote) bool {
		return r.String("address") != ""
	})
	require.NoError(t, err)
	assert.Equal(t, "34.1.2.3", r.String("address"))
	assert.Equal(t, []time.Duration{time.Second, 1500 * time.Millisecond}, timer.delays)
}

func TestFetchUntilGivesUp(t *testing.T) {
	useRecordingTimer(t)
	p := Policy{Exponent: 1, MaxAttempts: 2, Retryable: NotReadyOrNotFound}

	_, err := FetchUntil(context.Background(), p, func(ctx context.Context) (resource.Remote, error) {
		return resource.Remote{"name": "lb-ip"}, nil
	}, func(r resource.Remote) bool { return false })
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(errNotFound))
	assert.True(t, IsNotFound(errors.Wrap(errNotFound, "get firewall")))
	assert.True(t, IsNotFound(errors.Wrap(resource.ErrNotFound, "zone")))
	assert.False(t, IsNotFound(&googleapi.Error{Code: 409}))
	assert.False(t, IsNotFound(errors.New("boom")))
}
