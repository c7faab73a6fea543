package service

import (
	"context"
	"sync"
	"time"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/metrics"
)

// FetchFunc fetches one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller keeps a snapshot fresh by calling fetch immediately and then on every tick.
//
// Cycles are not coordinated: a slow fetch does not delay the next tick, and results
// are applied in completion order. Stop cancels the ticker and every in-flight fetch,
// and no cycle mutates the state after Stop has returned.
type Poller[T any] struct {
	name     string
	fetch    FetchFunc[T]
	interval time.Duration
	logger   port.Logger

	mu         sync.Mutex
	state      entity.PollState[T]
	inFlight   int
	generation uint64
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	settled    chan struct{}
	hasSettled bool
	wg         sync.WaitGroup
}

// NewPoller creates a stopped poller.
func NewPoller[T any](name string, fetch FetchFunc[T], interval time.Duration, l port.Logger) *Poller[T] {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		logger:   l.With("poller", name),
		settled:  make(chan struct{}),
	}
}

// Name returns the poller name used in logs and metrics.
func (p *Poller[T]) Name() string { return p.name }

// Start runs a cycle immediately and then one per interval until Stop or ctx is done.
// Calling Start on a running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	gen := p.generation
	done := p.done
	p.mu.Unlock()

	metrics.ActivePollers.Inc()
	p.logger.Debug("Poller started", "interval", p.interval.String())

	p.launch(runCtx, gen)
	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.launch(runCtx, gen)
			}
		}
	}()
}

// Refresh runs one cycle synchronously and returns the resulting state.
// It does not require the poller to be started.
func (p *Poller[T]) Refresh(ctx context.Context) entity.PollState[T] {
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()

	p.wg.Add(1)
	p.cycle(ctx, gen)
	return p.State()
}

// Stop cancels the ticker and in-flight fetches. Late results are discarded.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.generation++
		p.mu.Unlock()
		return
	}
	p.running = false
	p.generation++
	p.inFlight = 0
	p.state.Loading = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
	metrics.ActivePollers.Dec()
	p.logger.Debug("Poller stopped")
}

// Wait blocks until every cycle launched so far has finished.
func (p *Poller[T]) Wait() {
	p.wg.Wait()
}

// Running reports whether the poller has been started and not stopped.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Await blocks until the first cycle has completed or ctx is done, then returns the state.
func (p *Poller[T]) Await(ctx context.Context) entity.PollState[T] {
	select {
	case <-p.settled:
	case <-ctx.Done():
	}
	return p.State()
}

// State returns a copy of the current state.
func (p *Poller[T]) State() entity.PollState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller[T]) launch(ctx context.Context, gen uint64) {
	p.wg.Add(1)
	go p.cycle(ctx, gen)
}

// cycle is one fetch-and-apply iteration. The caller has already called wg.Add.
func (p *Poller[T]) cycle(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.inFlight++
	p.state.Loading = true
	p.mu.Unlock()

	start := time.Now()
	data, err := p.fetch(ctx)
	metrics.PollDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		metrics.PollCycles.WithLabelValues(p.name, "discarded").Inc()
		return
	}

	p.inFlight--
	p.state.Loading = p.inFlight > 0
	if !p.hasSettled {
		p.hasSettled = true
		close(p.settled)
	}

	if err != nil {
		p.state.Error = err.Error()
		metrics.PollCycles.WithLabelValues(p.name, "error").Inc()
		p.logger.Warn("Poll cycle failed, keeping previous snapshot", "error", err, "hasData", p.state.HasData)
		return
	}

	p.state.Data = data
	p.state.HasData = true
	p.state.Error = ""
	p.state.UpdatedAt = time.Now().UTC()
	metrics.PollCycles.WithLabelValues(p.name, "success").Inc()
	p.logger.Debug("Poll cycle succeeded")
}
