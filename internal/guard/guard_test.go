package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move past the cooldown without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(threshold, 30*time.Second)
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb, _ := newTestBreaker(3)
	assert.NoError(t, cb.Allow("league.match.score_updated"))
	assert.Equal(t, CircuitClosed, cb.State("league.match.score_updated"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2)

	cb.RecordFailure("topic-a")
	assert.NoError(t, cb.Allow("topic-a"))
	cb.RecordFailure("topic-a")

	err := cb.Allow("topic-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, CircuitOpen, cb.State("topic-a"))

	// other keys are unaffected
	assert.NoError(t, cb.Allow("topic-b"))
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb, _ := newTestBreaker(2)

	cb.RecordFailure("topic-a")
	cb.RecordSuccess("topic-a")
	cb.RecordFailure("topic-a")

	assert.NoError(t, cb.Allow("topic-a"))
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	t.Run("probe success closes", func(t *testing.T) {
		cb, clock := newTestBreaker(1)
		cb.RecordFailure("topic-a")
		require.Error(t, cb.Allow("topic-a"))

		clock.advance(31 * time.Second)
		require.NoError(t, cb.Allow("topic-a"))
		assert.Equal(t, CircuitHalfOpen, cb.State("topic-a"))

		cb.RecordSuccess("topic-a")
		assert.Equal(t, CircuitClosed, cb.State("topic-a"))
	})

	t.Run("probe failure reopens", func(t *testing.T) {
		cb, clock := newTestBreaker(3)
		for i := 0; i < 3; i++ {
			cb.RecordFailure("topic-a")
		}
		clock.advance(time.Minute)
		require.NoError(t, cb.Allow("topic-a"))

		cb.RecordFailure("topic-a")
		assert.Equal(t, CircuitOpen, cb.State("topic-a"))
		assert.Error(t, cb.Allow("topic-a"))
	})
}

type flakyPublisher struct {
	err   error
	calls int
}

func (p *flakyPublisher) Publish(context.Context, string, []byte, []byte) error {
	p.calls++
	return p.err
}

func TestBreakerPublisher(t *testing.T) {
	ctx := context.Background()
	cb, clock := newTestBreaker(2)
	next := &flakyPublisher{err: errors.New("broker down")}
	pub := NewBreakerPublisher(next, cb)

	assert.Error(t, pub.Publish(ctx, "t", nil, nil))
	assert.Error(t, pub.Publish(ctx, "t", nil, nil))

	err := pub.Publish(ctx, "t", nil, nil)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, 2, next.calls, "open circuit must not reach the broker")

	next.err = nil
	clock.advance(time.Minute)
	require.NoError(t, pub.Publish(ctx, "t", nil, nil))
	assert.Equal(t, CircuitClosed, cb.State("t"))
	assert.Equal(t, 3, next.calls)
}

func TestBreakerPublisher_CancelledContextIsNotAFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cb, _ := newTestBreaker(1)
	pub := NewBreakerPublisher(&flakyPublisher{err: context.Canceled}, cb)

	assert.Error(t, pub.Publish(ctx, "t", nil, nil))
	assert.Equal(t, CircuitClosed, cb.State("t"))
}
