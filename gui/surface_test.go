// gui/surface_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gui

import (
	"image"
	"image/color"
	"testing"

	"github.com/tpanel/tpanel/bitmap"
	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/queue"
)

func solid(w, h int, c color.RGBA) *bitmap.Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return bitmap.FromImage(img)
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	black = color.RGBA{A: 255}
)

const (
	page1 = 1 << 16
	page2 = 2 << 16
	popup = 500 << 16
)

func TestSurfaceButtons(t *testing.T) {
	s := NewSurface(40, 40, nil)
	s.Apply(queue.PageEvent{ID: page1, Width: 40, Height: 40}, nil)
	s.Apply(queue.ButtonEvent{ID: page1 | 1, Parent: page1, Bitmap: solid(10, 10, red), Left: 0, Top: 0}, nil)
	s.Apply(queue.ButtonEvent{ID: page1 | 2, Parent: page1, Bitmap: solid(10, 10, green), Left: 5, Top: 5}, nil)

	img := s.Compose()
	for _, test := range []struct {
		x, y   int
		expect color.RGBA
	}{
		{1, 1, red},
		{7, 7, green},
		{20, 20, black},
	} {
		if c := img.RGBAAt(test.x, test.y); c != test.expect {
			t.Errorf("(%d,%d): expected %v, got %v", test.x, test.y, test.expect, c)
		}
	}

	// Updating a button keeps its stacking position.
	s.Apply(queue.ButtonEvent{ID: page1 | 1, Parent: page1, Bitmap: solid(10, 10, red)}, nil)
	if c := s.Compose().RGBAAt(7, 7); c != green {
		t.Errorf("expected button 2 to stay on top, got %v", c)
	}

	s.Apply(queue.ButtonEvent{ID: page1 | 2, Parent: page1}, nil)
	if c := s.Compose().RGBAAt(7, 7); c != red {
		t.Errorf("expected removed button to uncover button 1, got %v", c)
	}

	s.Apply(queue.PageEvent{ID: page2}, nil)
	if s.Page() != page2 {
		t.Errorf("expected page 2, got %x", s.Page())
	}
	if c := s.Compose().RGBAAt(1, 1); c != black {
		t.Errorf("expected buttons of page 1 to be gone, got %v", c)
	}
}

func TestSurfacePopups(t *testing.T) {
	s := NewSurface(40, 40, nil)
	s.Apply(queue.PageEvent{ID: page1}, nil)
	s.Apply(queue.BackgroundEvent{ID: page1, Color: colors.Color{B: 255, A: 255}}, nil)
	s.Apply(queue.SubpageEvent{ID: popup, Parent: page1,
		Geometry: queue.Geometry{Left: 20, Top: 20, Width: 10, Height: 10}, Opacity: 255}, nil)
	// The button is larger than the popup and is clipped to it.
	s.Apply(queue.ButtonEvent{ID: popup | 1, Parent: popup, Bitmap: solid(15, 15, red)}, nil)

	img := s.Compose()
	if c := img.RGBAAt(25, 25); c != red {
		t.Errorf("expected popup button at (25,25), got %v", c)
	}
	if c := img.RGBAAt(32, 32); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("expected page background outside of the popup, got %v", c)
	}

	s.Apply(queue.DropSubpageEvent{ID: popup, Parent: page1}, nil)
	if c := s.Compose().RGBAAt(25, 25); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("expected popup to be gone, got %v", c)
	}

	// Events for a dropped popup are ignored.
	deleted := func(h uint32) bool { return h == popup }
	s.Apply(queue.SubpageEvent{ID: popup, Parent: page1,
		Geometry: queue.Geometry{Left: 20, Top: 20, Width: 10, Height: 10}}, deleted)
	s.Apply(queue.ButtonEvent{ID: popup | 1, Parent: popup, Bitmap: solid(10, 10, red)}, deleted)
	if c := s.Compose().RGBAAt(25, 25); c == red {
		t.Errorf("expected events of a deleted popup to be ignored")
	}
}

func TestSurfaceWidgets(t *testing.T) {
	s := NewSurface(100, 60, nil)
	s.Apply(queue.PageEvent{ID: page1}, nil)
	s.Apply(queue.InTextEvent{ID: page1 | 1, Parent: page1,
		Geometry: queue.Geometry{Left: 0, Top: 0, Width: 100, Height: 20}, Text: "hello"}, nil)
	s.Apply(queue.VideoEvent{ID: page1 | 2, Parent: page1,
		Geometry: queue.Geometry{Left: 0, Top: 30, Width: 100, Height: 30}, URL: "rtsp://camera"}, nil)

	img := s.Compose()
	if c := img.RGBAAt(90, 18); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected input line background, got %v", c)
	}
	dark := 0
	for x := range 40 {
		for y := range 20 {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Errorf("expected text in the input line")
	}
	if c := img.RGBAAt(50, 45); c != black {
		t.Errorf("expected black video area, got %v", c)
	}

	s.Apply(queue.SurfaceResetEvent{}, nil)
	if s.Page() != 0 {
		t.Errorf("expected reset to clear the page")
	}
	if c := s.Compose().RGBAAt(90, 18); c != black {
		t.Errorf("expected empty display after reset, got %v", c)
	}
}
