// button/click.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"image"
	"math"
	"slices"

	"github.com/tpanel/tpanel/util"
)

// Hit reports whether the page position (x, y) lies on a visible,
// non-transparent pixel of the button.
func (b *Button) Hit(x, y int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hitLocked(x, y)
}

func (b *Button) hitLocked(x, y int) bool {
	if !b.visible || !image.Pt(x, y).In(b.Bounds()) {
		return false
	}
	if img := b.last.Image(); img != nil {
		lx, ly := x-b.def.Left, y-b.def.Top
		if image.Pt(lx, ly).In(img.Rect) && img.RGBAAt(lx, ly).A == 0 {
			return false
		}
	}
	return true
}

func (b *Button) levelFromFraction(f float64) int {
	f = util.Clamp(f, 0, 1)
	return b.def.RangeLow + int(math.Round(f*float64(b.def.RangeHigh-b.def.RangeLow)))
}

// DoClick handles a press or release at page position (x, y). A press
// only counts if it hits the button; the release is delivered to the
// button that saw the press, wherever it happens. It returns whether the
// button handled the event.
func (b *Button) DoClick(x, y int, pressed bool) bool {
	b.mu.Lock()
	if pressed {
		if !b.hitLocked(x, y) {
			b.mu.Unlock()
			return false
		}
	} else if !b.pressed {
		b.mu.Unlock()
		return false
	}
	b.pressed = pressed

	lx := util.Clamp(x-b.def.Left, 0, max(b.def.Width-1, 0))
	ly := util.Clamp(y-b.def.Top, 0, max(b.def.Height-1, 0))

	var redraw bool
	var sends []levelSend
	switch b.def.Type {
	case Bargraph, MultistateBargraph:
		if pressed {
			lvl := b.levelAtLocked(lx, ly)
			redraw = lvl != b.states.LastLevel
			b.states.LastLevel = lvl
			sends = b.levelSendsLocked(lvl, 0, false)
		}
	case Joystick:
		if pressed {
			fx := float64(lx) / float64(max(b.def.Width-1, 1))
			fy := float64(b.def.Height-1-ly) / float64(max(b.def.Height-1, 1))
			if b.def.Inverted {
				fy = 1 - fy
			}
			jx, jy := b.levelFromFraction(fx), b.levelFromFraction(fy)
			redraw = jx != b.states.LastJoyX || jy != b.states.LastJoyY
			b.states.LastJoyX, b.states.LastJoyY = jx, jy
			sends = b.levelSendsLocked(jx, jy, true)
		}
	default:
		if b.def.Feedback == FeedbackMomentary && len(b.def.Instances) > 1 {
			active := util.Select(pressed, 1, 0)
			redraw = active != b.active
			b.active = active
		}
	}

	press := slices.Clone(b.press)
	level := b.level
	channel, handle := b.def.Channel, b.Handle()
	b.mu.Unlock()

	if redraw {
		if err := b.Draw(); err != nil {
			b.lg.Warnf("redraw after click: %v", err)
		}
	}
	if level != nil {
		for _, s := range sends {
			level(s.port, s.level, s.value)
		}
	}
	for _, f := range press {
		f(channel, handle, pressed)
	}
	return true
}
