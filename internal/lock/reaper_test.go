package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	cutoffs []time.Time
	expired int64
	err     error
}

func (s *stubSweeper) ExpireStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.expired, s.err
}

func TestSweepPurgesExpiredLocks(t *testing.T) {
	m, _, clk := newTestManager(t, time.Minute)
	r := NewReaper(m, time.Second, clk, nil, 0)

	_, err := m.Acquire(context.Background(), 1, []uint64{10, 11}, "sess-a")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	r.Sweep(context.Background())
	assert.Equal(t, 0, m.LiveCount())
}

func TestSweepExpiresStalePending(t *testing.T) {
	m, _, clk := newTestManager(t, time.Minute)
	sweeper := &stubSweeper{expired: 2}
	r := NewReaper(m, time.Second, clk, sweeper, 15*time.Minute)

	r.Sweep(context.Background())

	require.Len(t, sweeper.cutoffs, 1)
	assert.Equal(t, clk.Now().Add(-15*time.Minute), sweeper.cutoffs[0])
}

func TestSweepSkipsPendingWhenDisabled(t *testing.T) {
	m, _, clk := newTestManager(t, time.Minute)
	sweeper := &stubSweeper{}

	// A zero TTL disables the stale-pending policy even with a sweeper
	// wired in.
	r := NewReaper(m, time.Second, clk, sweeper, 0)
	r.Sweep(context.Background())
	assert.Empty(t, sweeper.cutoffs)

	// A nil sweeper is tolerated regardless of the TTL.
	r = NewReaper(m, time.Second, clk, nil, 15*time.Minute)
	r.Sweep(context.Background())
}

func TestSweepSurvivesSweeperError(t *testing.T) {
	m, _, clk := newTestManager(t, time.Minute)
	sweeper := &stubSweeper{err: errors.New("db down")}
	r := NewReaper(m, time.Second, clk, sweeper, 15*time.Minute)

	// Errors are logged and swallowed; the next tick retries.
	r.Sweep(context.Background())
	r.Sweep(context.Background())
	assert.Len(t, sweeper.cutoffs, 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m, _, clk := newTestManager(t, time.Minute)
	r := NewReaper(m, time.Millisecond, clk, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
}
