package gameserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickManager drives registered tick callbacks at a fixed cadence.
// Callbacks run sequentially on the manager's goroutine in registration order,
// so game state touched only from callbacks needs no further locking.
//
// Invariant: all callbacks are invoked at most once per tick; the tick
// counter is strictly increasing.
type TickManager struct {
	interval time.Duration
	maxTicks int64
	logger   *zap.Logger

	mu    sync.Mutex
	order []string
	ticks map[string]func(tick int64)
	tick  int64

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewTickManager returns a manager that fires ticks every interval. When
// maxTicks > 0 the manager stops on its own after that many ticks.
//
// Precondition: interval must be > 0; maxTicks >= 0; logger must be non-nil.
func NewTickManager(interval time.Duration, maxTicks int64, logger *zap.Logger) *TickManager {
	if interval <= 0 {
		panic("gameserver.NewTickManager: interval must be > 0")
	}
	if logger == nil {
		panic("gameserver.NewTickManager: logger must not be nil")
	}
	return &TickManager{
		interval: interval,
		maxTicks: maxTicks,
		logger:   logger,
		ticks:    make(map[string]func(int64)),
		stopped:  make(chan struct{}),
	}
}

// RegisterTick registers a callback under id. Replaces any existing callback
// while keeping its position.
func (z *TickManager) RegisterTick(id string, fn func(tick int64)) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, exists := z.ticks[id]; !exists {
		z.order = append(z.order, id)
	}
	z.ticks[id] = fn
}

// Unregister removes the tick callback for id.
func (z *TickManager) Unregister(id string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, exists := z.ticks[id]; !exists {
		return
	}
	delete(z.ticks, id)
	for i, o := range z.order {
		if o == id {
			z.order = append(z.order[:i], z.order[i+1:]...)
			break
		}
	}
}

// Ticks returns the number of ticks completed.
func (z *TickManager) Ticks() int64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.tick
}

// Step runs one tick synchronously and returns its number (starting at 1).
func (z *TickManager) Step() int64 {
	z.mu.Lock()
	z.tick++
	tick := z.tick
	callbacks := make([]func(int64), 0, len(z.order))
	for _, id := range z.order {
		callbacks = append(callbacks, z.ticks[id])
	}
	z.mu.Unlock()

	for _, fn := range callbacks {
		fn(tick)
	}
	return tick
}

// Start runs the tick loop until ctx is cancelled, Stop is called, or
// maxTicks is reached.
//
// Postcondition: Returns nil; no callback runs after Start returns.
func (z *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(z.interval)
	defer ticker.Stop()
	z.logger.Info("tick loop started",
		zap.Duration("interval", z.interval),
		zap.Int64("max_ticks", z.maxTicks),
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-z.stopped:
			return nil
		case <-ticker.C:
			if tick := z.Step(); z.maxTicks > 0 && tick >= z.maxTicks {
				z.logger.Info("tick limit reached", zap.Int64("ticks", tick))
				return nil
			}
		}
	}
}

// Stop ends the tick loop. Idempotent.
func (z *TickManager) Stop() {
	z.stopOnce.Do(func() { close(z.stopped) })
}
