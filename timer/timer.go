// timer/timer.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package timer runs callbacks periodically or once in a goroutine that
// can be stopped at any time.
package timer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tpanel/tpanel/log"
)

var (
	ErrRunning     = errors.New("Timer is already running")
	ErrBadInterval = errors.New("Timer interval must be positive")
)

// Callback is called on every tick; n counts the calls, starting at 1.
// ctx is canceled when the timer is stopped.
type Callback func(ctx context.Context, n uint64)

type Timer struct {
	mu        sync.Mutex
	interval  time.Duration
	once      bool
	immediate bool
	callback  Callback
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   atomic.Bool
	lg        *log.Logger
}

// New returns a stopped timer. If once is set, the callback is called a
// single time after the interval has elapsed.
func New(interval time.Duration, once bool, cb Callback, lg *log.Logger) *Timer {
	return &Timer{
		interval: interval,
		once:     once,
		callback: cb,
		lg:       lg,
	}
}

func (t *Timer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// SetInterval changes the interval; it takes effect the next time the
// timer is started.
func (t *Timer) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
}

// SetImmediate makes the first call happen as soon as the timer starts
// instead of after the first interval. It takes effect the next time the
// timer is started.
func (t *Timer) SetImmediate(immediate bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.immediate = immediate
}

func (t *Timer) Running() bool {
	return t.running.Load()
}

// Start starts the timer goroutine. Starting a running timer is an error.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interval <= 0 {
		t.lg.Warnf("%s: not starting timer", t.interval)
		return ErrBadInterval
	}
	if !t.running.CompareAndSwap(false, true) {
		t.lg.Debug("timer already running")
		return ErrRunning
	}

	if t.cancel != nil {
		// Left over from a one-shot run that finished by itself.
		t.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go t.run(ctx, t.interval, t.once, t.immediate)
	return nil
}

func (t *Timer) run(ctx context.Context, interval time.Duration, once, immediate bool) {
	defer t.wg.Done()
	defer t.running.Store(false)
	defer t.lg.CatchAndReportCrash()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := uint64(1); ; n++ {
		if n > 1 || !immediate {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}

		t.callback(ctx, n)
		if once {
			return
		}
	}
}

// Stop cancels the timer and waits until its goroutine has exited. A
// callback that is running is allowed to finish.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}
