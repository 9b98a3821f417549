// queue/queue.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package queue implements the hand-off of display events from the
// goroutines that render buttons and pages to the GUI.
package queue

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/iancoleman/orderedmap"

	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/util"
)

// Queue holds pending display events in the order they were last
// updated. Adding an event replaces any pending event with the same
// handle and kind and moves it to the end, so the consumer only ever sees
// the latest state of an object. No order is guaranteed between events of
// different handles beyond that.
//
// All methods may be called concurrently.
type Queue struct {
	mu      util.LoggingMutex
	entries *orderedmap.OrderedMap // key(handle, kind) -> Event
	deleted map[uint32]bool

	ready      chan struct{}
	lastPop    time.Time
	warnedLong bool
	done       chan struct{}
	destroy    sync.Once
	lg         *log.Logger
}

// monitorInterval and longQueue are variables so tests can change them.
var (
	monitorInterval = 5 * time.Second
	longQueue       = 1000
)

func New(lg *log.Logger) *Queue {
	q := &Queue{
		entries: orderedmap.New(),
		deleted: make(map[uint32]bool),
		ready:   make(chan struct{}, 1),
		lastPop: time.Now(),
		done:    make(chan struct{}),
		lg:      lg,
	}
	go q.monitor()
	return q
}

func key(handle uint32, kind Kind) string {
	return strconv.FormatUint(uint64(handle), 16) + ":" + strconv.Itoa(int(kind))
}

// monitor warns if the queue keeps growing without being drained.
func (q *Queue) monitor() {
	defer q.lg.CatchAndReportCrash()

	tick := time.NewTicker(monitorInterval)
	defer tick.Stop()

	for {
		select {
		case <-q.done:
			return
		case <-tick.C:
		}

		q.mu.Lock(q.lg)
		n := len(q.entries.Keys())
		if n > longQueue && !q.warnedLong {
			q.lg.Warn("Long emission queue", slog.Int("length", n),
				slog.Duration("since_last_pop", time.Since(q.lastPop)))
			q.warnedLong = true
		} else if n <= longQueue {
			q.warnedLong = false
		}
		q.mu.Unlock(q.lg)
	}
}

// Destroy stops the monitor goroutine. Calling it again has no effect.
func (q *Queue) Destroy() {
	q.destroy.Do(func() { close(q.done) })
}

// Ready returns a channel that receives a value after events have been
// added. A single notification may stand for several events.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Add queues ev, replacing a pending event with the same handle and
// kind. Adding anything but a drop event for a handle clears a deletion
// mark set with MarkDrop.
func (q *Queue) Add(ev Event) {
	q.mu.Lock(q.lg)
	k := key(ev.Handle(), ev.Kind())
	// Delete first so that the entry moves to the end.
	q.entries.Delete(k)
	q.entries.Set(k, ev)
	if kind := ev.Kind(); kind != KindDropPage && kind != KindDropSubpage {
		delete(q.deleted, ev.Handle())
	}
	q.mu.Unlock(q.lg)

	q.lg.Debug("queued event", slog.String("kind", ev.Kind().String()), slog.Any("event", ev))

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue) Len() int {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)
	return len(q.entries.Keys())
}

// Peek returns the oldest event without removing it.
func (q *Queue) Peek() (Event, bool) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	keys := q.entries.Keys()
	if len(keys) == 0 {
		return nil, false
	}
	v, _ := q.entries.Get(keys[0])
	return v.(Event), true
}

// Pop removes and returns the oldest event.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	keys := q.entries.Keys()
	if len(keys) == 0 {
		return nil, false
	}
	v, _ := q.entries.Get(keys[0])
	q.entries.Delete(keys[0])
	q.lastPop = time.Now()
	return v.(Event), true
}

// Drain removes and returns all pending events, oldest first.
func (q *Queue) Drain() []Event {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	keys := q.entries.Keys()
	evs := make([]Event, 0, len(keys))
	for _, k := range keys {
		v, _ := q.entries.Get(k)
		evs = append(evs, v.(Event))
	}
	q.entries = orderedmap.New()
	q.lastPop = time.Now()
	return evs
}

// Next returns the oldest event of the given kind without removing it;
// the caller removes it with Remove, DropHandle or DropType once it has
// been handled.
func (q *Queue) Next(kind Kind) (Event, bool) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	for _, k := range q.entries.Keys() {
		v, _ := q.entries.Get(k)
		if ev := v.(Event); ev.Kind() == kind {
			return ev, true
		}
	}
	return nil, false
}

func next[T Event](q *Queue, kind Kind) (T, bool) {
	ev, ok := q.Next(kind)
	if !ok {
		var zero T
		return zero, false
	}
	return ev.(T), true
}

func (q *Queue) NextButton() (ButtonEvent, bool) {
	return next[ButtonEvent](q, KindButton)
}

func (q *Queue) NextPage() (PageEvent, bool) {
	return next[PageEvent](q, KindPage)
}

func (q *Queue) NextSubpage() (SubpageEvent, bool) {
	return next[SubpageEvent](q, KindSubpage)
}

func (q *Queue) NextBackground() (BackgroundEvent, bool) {
	return next[BackgroundEvent](q, KindBackground)
}

func (q *Queue) NextVideo() (VideoEvent, bool) {
	return next[VideoEvent](q, KindVideo)
}

func (q *Queue) NextInText() (InTextEvent, bool) {
	return next[InTextEvent](q, KindInText)
}

func (q *Queue) NextListbox() (ListboxEvent, bool) {
	return next[ListboxEvent](q, KindListbox)
}

func (q *Queue) NextDropPage() (DropPageEvent, bool) {
	return next[DropPageEvent](q, KindDropPage)
}

func (q *Queue) NextDropSubpage() (DropSubpageEvent, bool) {
	return next[DropSubpageEvent](q, KindDropSubpage)
}

func (q *Queue) NextSurfaceReset() (SurfaceResetEvent, bool) {
	return next[SurfaceResetEvent](q, KindSurfaceReset)
}

// Remove deletes the pending event for handle and kind.
func (q *Queue) Remove(handle uint32, kind Kind) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)
	q.entries.Delete(key(handle, kind))
}

// DropHandle deletes all pending events of handle.
func (q *Queue) DropHandle(handle uint32) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	for _, k := range slices.Clone(q.entries.Keys()) {
		v, _ := q.entries.Get(k)
		if v.(Event).Handle() == handle {
			q.entries.Delete(k)
		}
	}
}

// DropType deletes all pending events of the given kind.
func (q *Queue) DropType(kind Kind) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)

	for _, k := range slices.Clone(q.entries.Keys()) {
		v, _ := q.entries.Get(k)
		if v.(Event).Kind() == kind {
			q.entries.Delete(k)
		}
	}
}

// MarkDrop marks handle as deleted without touching the pending events;
// consumers check IsDeleted before displaying an event.
func (q *Queue) MarkDrop(handle uint32) {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)
	q.deleted[handle] = true
}

func (q *Queue) IsDeleted(handle uint32) bool {
	q.mu.Lock(q.lg)
	defer q.mu.Unlock(q.lg)
	return q.deleted[handle]
}
