// button/animation.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"context"
	"sync/atomic"
	"time"
)

// animationStopTimeout bounds how long StopAnimation waits for the
// animation goroutine to exit.
var animationStopTimeout = 2 * time.Second

const defaultAnimationStep = 100 * time.Millisecond

type animation struct {
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

type animationStep struct {
	instance int
	wait     time.Duration
}

// StartAnimation cycles through all instances until StopAnimation is
// called: upwards with the button's up time per step and, if the button
// has a down time, back down again. A running animation is left alone.
func (b *Button) StartAnimation() {
	b.mu.Lock()
	if b.anim.running.Load() {
		b.mu.Unlock()
		b.lg.Debug("animation already running")
		return
	}

	n := len(b.def.Instances)
	if n < 2 {
		b.mu.Unlock()
		return
	}
	up := b.def.AnimateUp
	if up <= 0 {
		up = defaultAnimationStep
	}
	var steps []animationStep
	for i := range n {
		steps = append(steps, animationStep{instance: i, wait: up})
	}
	if down := b.def.AnimateDown; down > 0 {
		for i := n - 2; i > 0; i-- {
			steps = append(steps, animationStep{instance: i, wait: down})
		}
	}
	b.startLocked(steps, true)
	b.mu.Unlock()
}

// StartAnimationRange steps once from instance from to instance to
// (1-based, inclusive, in either direction) with step time d and stays
// on the last one. A running animation is stopped first.
func (b *Button) StartAnimationRange(from, to int, d time.Duration) error {
	b.StopAnimation()

	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.def.Instances)
	if from < 1 || from > n || to < 1 || to > n {
		return ErrInvalidInstance
	}
	if d <= 0 {
		d = defaultAnimationStep
	}

	dir := 1
	if to < from {
		dir = -1
	}
	var steps []animationStep
	for i := from; ; i += dir {
		steps = append(steps, animationStep{instance: i - 1, wait: d})
		if i == to {
			break
		}
	}
	b.startLocked(steps, false)
	return nil
}

func (b *Button) startLocked(steps []animationStep, loop bool) {
	if b.anim.cancel != nil {
		// A finished one-shot animation.
		b.anim.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.anim.cancel, b.anim.done = cancel, done
	b.anim.running.Store(true)

	go b.runAnimation(ctx, steps, loop, done)
}

func (b *Button) runAnimation(ctx context.Context, steps []animationStep, loop bool, done chan struct{}) {
	defer close(done)
	defer b.anim.running.Store(false)
	defer b.lg.CatchAndReportCrash()

	for i := 0; ; i++ {
		if i == len(steps) {
			if !loop {
				return
			}
			i = 0
		}

		if err := b.SetActive(steps[i].instance); err != nil {
			b.lg.Warnf("animation: %v", err)
			return
		}

		t := time.NewTimer(steps[i].wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// StopAnimation cancels a running animation and waits for it to finish.
func (b *Button) StopAnimation() {
	b.mu.Lock()
	cancel, done := b.anim.cancel, b.anim.done
	b.anim.cancel, b.anim.done = nil, nil
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
	case <-time.After(animationStopTimeout):
		b.lg.Warn("animation did not stop in time")
	}
}

func (b *Button) Animating() bool {
	return b.anim.running.Load()
}
