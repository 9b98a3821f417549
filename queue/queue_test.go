// queue/queue_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package queue

import (
	"sync"
	"testing"

	"github.com/tpanel/tpanel/bitmap"
)

func TestDeduplication(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	first := bitmap.New(nil, 1, 1, 4)
	second := bitmap.New(nil, 2, 2, 4)
	q.Add(ButtonEvent{ID: 1, Bitmap: first})
	q.Add(ButtonEvent{ID: 1, Bitmap: second})

	if q.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", q.Len())
	}
	ev, ok := q.NextButton()
	if !ok || ev.Bitmap != second {
		t.Errorf("expected the most recent event to be kept")
	}
}

func TestOrdering(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	q.Add(ButtonEvent{ID: 1})
	q.Add(PageEvent{ID: 1})
	q.Add(ButtonEvent{ID: 2})
	// Replacing moves the event to the end.
	q.Add(ButtonEvent{ID: 1, Left: 5})

	var got []Event
	for {
		ev, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, ev)
	}

	want := []Event{PageEvent{ID: 1}, ButtonEvent{ID: 2}, ButtonEvent{ID: 1, Left: 5}}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if _, ok := q.Peek(); ok {
		t.Errorf("expected empty queue")
	}
}

func TestNextDoesNotDequeue(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	q.Add(PageEvent{ID: 0x10000})
	q.Add(VideoEvent{ID: 5, URL: "rtsp://x"})
	q.Add(VideoEvent{ID: 6, URL: "rtsp://y"})

	v, ok := q.NextVideo()
	if !ok || v.ID != 5 {
		t.Errorf("expected first video event, got %+v", v)
	}
	if v, _ := q.NextVideo(); v.ID != 5 {
		t.Errorf("expected Next not to remove the event")
	}
	q.Remove(5, KindVideo)
	if v, _ := q.NextVideo(); v.ID != 6 {
		t.Errorf("expected second video event, got %+v", v)
	}
	if _, ok := q.NextListbox(); ok {
		t.Errorf("expected no listbox event")
	}
	if ev, ok := q.Peek(); !ok || ev.Kind() != KindPage {
		t.Errorf("expected page event at the front")
	}
}

func TestDrop(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	q.Add(ButtonEvent{ID: 1})
	q.Add(VideoEvent{ID: 1})
	q.Add(ButtonEvent{ID: 2})
	q.Add(ButtonEvent{ID: 3})
	q.Add(SurfaceResetEvent{})

	q.DropHandle(1)
	if q.Len() != 3 {
		t.Errorf("expected 3 entries after DropHandle, got %d", q.Len())
	}
	q.DropType(KindButton)
	if q.Len() != 1 {
		t.Errorf("expected 1 entry after DropType, got %d", q.Len())
	}
	if _, ok := q.NextSurfaceReset(); !ok {
		t.Errorf("expected surface reset to remain")
	}
}

func TestMarkDrop(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	q.Add(SubpageEvent{ID: 0x20000})
	q.MarkDrop(0x20000)
	if !q.IsDeleted(0x20000) || q.IsDeleted(0x30000) {
		t.Errorf("unexpected deletion marks")
	}
	if q.Len() != 1 {
		t.Errorf("expected MarkDrop not to remove events")
	}

	q.Add(DropSubpageEvent{ID: 0x20000})
	if !q.IsDeleted(0x20000) {
		t.Errorf("expected drop events to keep the mark")
	}
	q.Add(SubpageEvent{ID: 0x20000})
	if q.IsDeleted(0x20000) {
		t.Errorf("expected showing the subpage again to clear the mark")
	}
}

func TestReadyAndConcurrency(t *testing.T) {
	q := New(nil)
	defer q.Destroy()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				q.Add(ButtonEvent{ID: uint32(i), Left: j})
			}
		}()
	}
	wg.Wait()

	select {
	case <-q.Ready():
	default:
		t.Errorf("expected a ready notification")
	}
	evs := q.Drain()
	if len(evs) != 8 {
		t.Errorf("expected one event per handle, got %d", len(evs))
	}
	for _, ev := range evs {
		if ev.(ButtonEvent).Left != 99 {
			t.Errorf("expected latest event, got %+v", ev)
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected drained queue")
	}
}

func TestDestroyTwice(t *testing.T) {
	q := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Destroy()
		}()
	}
	wg.Wait()
	q.Destroy()

	select {
	case <-q.done:
	default:
		t.Errorf("expected the monitor to be stopped")
	}

	// Events can still be queued and drained after Destroy.
	q.Add(ButtonEvent{ID: 3})
	if ev, ok := q.NextButton(); !ok || ev.ID != 3 {
		t.Errorf("expected button 3 after Destroy, got %v %v", ev.ID, ok)
	}
}
