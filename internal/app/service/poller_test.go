package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"crypto_dashboard/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RefreshKeepsDataOnFailure(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			return []string{"bitcoin", "ethereum"}, nil
		}
		return nil, errors.New("rate limited")
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())

	state := p.Refresh(context.Background())
	require.True(t, state.HasData)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, state.Data)
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
	updated := state.UpdatedAt

	state = p.Refresh(context.Background())
	assert.True(t, state.HasData)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, state.Data, "previous snapshot must survive a failed cycle")
	assert.Equal(t, "rate limited", state.Error)
	assert.False(t, state.Loading)
	assert.Equal(t, updated, state.UpdatedAt)
}

func TestPoller_ErrorClearedOnNextSuccess(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			return 0, errors.New("boom")
		}
		return int(n), nil
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())

	state := p.Refresh(context.Background())
	assert.False(t, state.HasData)
	assert.Equal(t, "boom", state.Error)

	state = p.Refresh(context.Background())
	assert.True(t, state.HasData)
	assert.Equal(t, 2, state.Data)
	assert.Empty(t, state.Error)
}

func TestPoller_StartFetchesImmediatelyAndOnTick(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}
	p := NewPoller("test", fetch, 20*time.Millisecond, logger.NewNop())
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return p.State().HasData }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StartTwiceIsNoop(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())
	p.Start(context.Background())
	p.Start(context.Background())

	assert.Eventually(t, func() bool { return p.State().HasData }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoller_LoadingWhileFetchInFlight(t *testing.T) {
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return p.State().Loading }, time.Second, 5*time.Millisecond)
	close(release)
	assert.Eventually(t, func() bool {
		s := p.State()
		return s.HasData && !s.Loading
	}, time.Second, 5*time.Millisecond)
}

func TestPoller_NoMutationAfterStop(t *testing.T) {
	started := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())
	p.Start(context.Background())

	<-started
	p.Stop()
	p.Wait()

	state := p.State()
	assert.False(t, state.HasData)
	assert.Empty(t, state.Data)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestPoller_StopCancelsInFlightFetch(t *testing.T) {
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	}
	p := NewPoller("test", fetch, time.Hour, logger.NewNop())
	p.Start(context.Background())

	assert.Eventually(t, func() bool { return p.State().Loading }, time.Second, 5*time.Millisecond)
	p.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch was not cancelled")
	}
}

func TestPoller_StopBeforeStart(t *testing.T) {
	p := NewPoller("test", func(ctx context.Context) (int, error) { return 1, nil }, time.Hour, logger.NewNop())
	assert.NotPanics(t, p.Stop)
}

func TestPoller_OverlappingCyclesApplyInCompletionOrder(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int32, error) {
		n := calls.Add(1)
		switch {
		case n == 1:
			<-release
			return n, nil
		case n <= 3:
			return n, nil
		default:
			<-ctx.Done()
			return 0, ctx.Err()
		}
	}
	p := NewPoller("test", fetch, 10*time.Millisecond, logger.NewNop())
	p.Start(context.Background())

	require.Eventually(t, func() bool {
		s := p.State()
		return s.HasData && s.Data == 3
	}, time.Second, 2*time.Millisecond)
	state := p.State()
	assert.True(t, state.Loading, "loading stays true while the first cycle is pending")

	close(release)
	require.Eventually(t, func() bool { return p.State().Data == 1 }, time.Second, 2*time.Millisecond,
		"the late first result overwrites newer data")

	p.Stop()
	p.Wait()
	state = p.State()
	assert.Equal(t, int32(1), state.Data)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}
