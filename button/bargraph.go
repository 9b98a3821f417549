// button/bargraph.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"image"
	"image/draw"
	"math"

	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/util"
)

// fractionLocked maps level to [0,1] within the button's range.
func (b *Button) fractionLocked(level int) float64 {
	lo, hi := b.def.RangeLow, b.def.RangeHigh
	if hi == lo {
		return 0
	}
	return util.Clamp(float64(level-lo)/float64(hi-lo), 0, 1)
}

func (b *Button) clampLevelLocked(level int) int {
	lo, hi := b.def.RangeLow, b.def.RangeHigh
	if lo > hi {
		lo, hi = hi, lo
	}
	return util.Clamp(level, lo, hi)
}

// composeBargraphLocked draws the "off" instance and copies the part of
// the "on" instance that corresponds to level over it. Horizontal
// bargraphs fill from the left, vertical ones from the bottom; inverted
// bargraphs from the opposite side.
func (b *Button) composeBargraphLocked(level int) (*image.RGBA, error) {
	off, err := b.composeLocked(0)
	if err != nil || len(b.def.Instances) < 2 {
		return off, err
	}
	on, err := b.composeLocked(1)
	if err != nil {
		return nil, err
	}

	w, h := b.def.Width, b.def.Height
	f := b.fractionLocked(level)
	var r image.Rectangle
	if b.def.Horizontal {
		fw := int(math.Round(f * float64(w)))
		r = util.Select(b.def.Inverted, image.Rect(w-fw, 0, w, h), image.Rect(0, 0, fw, h))
	} else {
		fh := int(math.Round(f * float64(h)))
		r = util.Select(b.def.Inverted, image.Rect(0, 0, w, fh), image.Rect(0, h-fh, w, h))
	}
	draw.Draw(off, r, on, r.Min, draw.Src)
	return off, nil
}

// multistateIndexLocked returns the instance a multi-state bargraph
// shows for level: the range is split evenly over the instances.
func (b *Button) multistateIndexLocked(level int) int {
	n := len(b.def.Instances)
	if n <= 1 {
		return 0
	}
	idx := int(math.Round(b.fractionLocked(level) * float64(n-1)))
	if b.def.Inverted {
		idx = n - 1 - idx
	}
	return util.Clamp(idx, 0, n-1)
}

// composeJoystickLocked draws instance 0 with a cursor at the position
// given by the two levels. The cursor is the icon of instance 1 if there
// is one and a cross in the border colour otherwise.
func (b *Button) composeJoystickLocked(x, y int) (*image.RGBA, error) {
	img, err := b.composeLocked(0)
	if err != nil {
		return nil, err
	}

	w, h := b.def.Width, b.def.Height
	cx := int(math.Round(b.fractionLocked(x) * float64(w-1)))
	cy := int(math.Round(b.fractionLocked(y) * float64(h-1)))
	if !b.def.Inverted {
		cy = h - 1 - cy
	}

	if len(b.def.Instances) > 1 && b.def.Instances[1].Icon != "" {
		if icon := b.loadImage(b.def.Instances[1].Icon); icon != nil {
			ib := icon.Bounds()
			r := image.Rect(0, 0, ib.Dx(), ib.Dy()).Add(image.Pt(cx-ib.Dx()/2, cy-ib.Dy()/2))
			draw.Draw(img, r, icon, ib.Min, draw.Over)
			return img, nil
		}
	}

	c := b.color(b.def.Instances[0].BorderColor)
	if c.IsTransparent() {
		c = colors.Black
	}
	const arm = 4
	for d := -arm; d <= arm; d++ {
		img.Set(cx+d, cy, c)
		img.Set(cx, cy+d, c)
	}
	return img, nil
}

// levelAtLocked converts a position inside the button into a level.
func (b *Button) levelAtLocked(x, y int) int {
	w, h := b.def.Width, b.def.Height
	var f float64
	if b.def.Horizontal {
		f = float64(x) / float64(max(w-1, 1))
	} else {
		f = float64(h-1-y) / float64(max(h-1, 1))
	}
	if b.def.Inverted {
		f = 1 - f
	}
	f = util.Clamp(f, 0, 1)
	return b.def.RangeLow + int(math.Round(f*float64(b.def.RangeHigh-b.def.RangeLow)))
}

// SetLevel sets the level of a bargraph or multi-state bargraph and
// redraws it if it is visible.
func (b *Button) SetLevel(level int) error {
	b.mu.Lock()
	if b.def.Type != Bargraph && b.def.Type != MultistateBargraph {
		b.mu.Unlock()
		return ErrNotBargraph
	}
	level = b.clampLevelLocked(level)
	changed := level != b.states.LastLevel
	b.states.LastLevel = level
	if b.def.Type == MultistateBargraph {
		b.active = b.multistateIndexLocked(level)
	}
	visible := b.visible
	b.mu.Unlock()

	if changed && visible {
		return b.Draw()
	}
	return nil
}

func (b *Button) Level() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states.LastLevel
}

// SetJoystick sets the cursor position of a joystick.
func (b *Button) SetJoystick(x, y int) error {
	b.mu.Lock()
	if b.def.Type != Joystick {
		b.mu.Unlock()
		return ErrNotBargraph
	}
	x, y = b.clampLevelLocked(x), b.clampLevelLocked(y)
	changed := x != b.states.LastJoyX || y != b.states.LastJoyY
	b.states.LastJoyX, b.states.LastJoyY = x, y
	visible := b.visible
	b.mu.Unlock()

	if changed && visible {
		return b.Draw()
	}
	return nil
}

type levelSend struct {
	port, level, value int
}

// levelSendsLocked records the levels a click produced and returns
// those that differ from what was sent before. Joysticks report their Y
// axis on the level following the X level.
func (b *Button) levelSendsLocked(x, y int, joystick bool) []levelSend {
	var sends []levelSend
	if x != b.states.LastSendLevelX {
		b.states.LastSendLevelX = x
		sends = append(sends, levelSend{b.def.LevelPort, b.def.Level, x})
	}
	if joystick && y != b.states.LastSendLevelY {
		b.states.LastSendLevelY = y
		sends = append(sends, levelSend{b.def.LevelPort, b.def.Level + 1, y})
	}
	return sends
}
