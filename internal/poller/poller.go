// Package poller runs a function periodically with a start/stop lifecycle.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Func is one poll. Its error is logged and never stops the poller.
type Func func(ctx context.Context) error

// Poller calls a Func once on start and then every interval.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
	logger   zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New returns a stopped Poller.
func New(name string, interval time.Duration, fn Func, logger zerolog.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger.With().Str("poller", name).Logger(),
	}
}

// Name returns the poller name.
func (p *Poller) Name() string { return p.name }

// Running reports whether the poller is started.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

// Start launches the poll loop. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.cancel = cancel
	p.done = done
	p.running = true

	go func() {
		defer close(done)
		p.loop(runCtx)
	}()

	p.logger.Debug().Dur("interval", p.interval).Msg("poller started")
}

// Stop cancels the loop and waits for the current poll to return. Stopping a
// stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		return
	}

	cancel, done := p.cancel, p.done
	p.running = false
	p.cancel = nil
	p.done = nil

	p.mu.Unlock()

	cancel()
	<-done

	p.logger.Debug().Msg("poller stopped")
}

// Run starts the poller and blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()

	return nil
}

func (p *Poller) loop(ctx context.Context) {
	p.tick(ctx)

	if p.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if err := p.fn(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("poll failed")
	}
}
