// timer/timer_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timer

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPeriodic(t *testing.T) {
	var calls atomic.Uint64
	tm := New(time.Millisecond, false, func(ctx context.Context, n uint64) { calls.Store(n) }, nil)

	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	if err := tm.Start(); !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", err)
	}
	waitFor(t, func() bool { return calls.Load() >= 3 })

	tm.Stop()
	if tm.Running() {
		t.Errorf("expected timer to be stopped")
	}
	n := calls.Load()
	time.Sleep(5 * time.Millisecond)
	if calls.Load() != n {
		t.Errorf("expected no calls after Stop")
	}

	// Stopped timers can be started again.
	if err := tm.Start(); err != nil {
		t.Errorf("expected restart to succeed, got %v", err)
	}
	tm.Stop()
}

func TestOnce(t *testing.T) {
	var calls atomic.Int32
	tm := New(time.Millisecond, true, func(ctx context.Context, n uint64) { calls.Add(1) }, nil)
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !tm.Running() })
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
	tm.Stop()
}

func TestStopIsPrompt(t *testing.T) {
	tm := New(time.Hour, false, func(ctx context.Context, n uint64) {}, nil)
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	tm.Stop()
	if d := time.Since(start); d > time.Second {
		t.Errorf("expected Stop not to wait for the interval, took %s", d)
	}
}

func TestBadInterval(t *testing.T) {
	tm := New(0, false, func(ctx context.Context, n uint64) {}, nil)
	if err := tm.Start(); !errors.Is(err, ErrBadInterval) {
		t.Errorf("expected ErrBadInterval, got %v", err)
	}
	tm.Stop()
}

func TestImmediate(t *testing.T) {
	var calls atomic.Uint64
	tm := New(time.Hour, false, func(ctx context.Context, n uint64) { calls.Store(n) }, nil)
	tm.SetImmediate(true)
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
	if !tm.Running() {
		t.Errorf("expected timer to keep running after the first call")
	}
	tm.Stop()

	calls.Store(0)
	tm = New(time.Hour, true, func(ctx context.Context, n uint64) { calls.Add(1) }, nil)
	tm.SetImmediate(true)
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !tm.Running() })
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
	tm.Stop()
}

type testFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *testFetcher) Fetch(ctx context.Context, url, user, password string) (image.Image, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestImageRefresh(t *testing.T) {
	f := &testFetcher{}
	var images atomic.Int32
	r := NewImageRefresh("http://camera/snap.jpg", "u", "p", time.Millisecond, false, f,
		func(img image.Image) { images.Add(1) }, nil)

	if r.URL() != "http://camera/snap.jpg" {
		t.Errorf("unexpected URL %q", r.URL())
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return images.Load() >= 2 })
	r.Stop()

	f = &testFetcher{err: errors.New("offline")}
	images.Store(0)
	r = NewImageRefresh("http://camera/snap.jpg", "", "", time.Millisecond, true, f,
		func(img image.Image) { images.Add(1) }, nil)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !r.Running() })
	if f.calls.Load() != 1 || images.Load() != 0 {
		t.Errorf("expected one failed fetch and no image, got %d / %d", f.calls.Load(), images.Load())
	}

	// The first image does not wait for the interval.
	f = &testFetcher{}
	images.Store(0)
	r = NewImageRefresh("http://camera/snap.jpg", "", "", time.Hour, false, f,
		func(img image.Image) { images.Add(1) }, nil)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return images.Load() == 1 })
	r.Stop()
	if f.calls.Load() != 1 {
		t.Errorf("expected a single fetch, got %d", f.calls.Load())
	}
}
