// button/effects.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/tpanel/tpanel/colors"
)

// drawTextEffect draws the effect for the text whose coverage is given by
// mask. The text itself is drawn afterwards by the caller.
func drawTextEffect(dst *image.RGBA, mask *image.Alpha, p effectParams, c colors.Color) {
	paint := func(m *image.Alpha, dx, dy int) {
		r := dst.Rect.Add(image.Pt(dx, dy))
		draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, m, m.Rect.Min, draw.Over)
	}

	if p.glow > 0 {
		paint(boxBlur(dilate(mask, p.glow/2), p.glow), 0, 0)
	}
	if p.shadow > 0 {
		s := mask
		if p.outline > 0 {
			s = dilate(s, p.outline)
		}
		if p.blur > 0 {
			s = boxBlur(s, p.blur)
		}
		paint(s, p.shadow, p.shadow)
	}
	if p.outline > 0 {
		paint(dilate(mask, p.outline), 0, 0)
	}
}

// dilate grows the coverage of m by r pixels in every direction, taking
// the maximum over a square neighbourhood. Both passes are separable.
func dilate(m *image.Alpha, r int) *image.Alpha {
	if r <= 0 {
		return m
	}
	return separable(m, r, func(vals []uint8) uint8 {
		var mx uint8
		for _, v := range vals {
			mx = max(mx, v)
		}
		return mx
	})
}

// boxBlur averages m over a square of radius r.
func boxBlur(m *image.Alpha, r int) *image.Alpha {
	if r <= 0 {
		return m
	}
	return separable(m, r, func(vals []uint8) uint8 {
		sum := 0
		for _, v := range vals {
			sum += int(v)
		}
		return uint8(sum / len(vals))
	})
}

// separable applies f to the 2r+1 neighbourhood of each pixel, first
// horizontally and then vertically. Pixels outside of m count as 0.
func separable(m *image.Alpha, r int, f func([]uint8) uint8) *image.Alpha {
	b := m.Rect
	vals := make([]uint8, 2*r+1)

	tmp := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			for i := -r; i <= r; i++ {
				vals[i+r] = alphaAt(m, x+i, y)
			}
			tmp.SetAlpha(x, y, color.Alpha{A: f(vals)})
		}
	}

	out := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			for i := -r; i <= r; i++ {
				vals[i+r] = alphaAt(tmp, x, y+i)
			}
			out.SetAlpha(x, y, color.Alpha{A: f(vals)})
		}
	}
	return out
}

func alphaAt(m *image.Alpha, x, y int) uint8 {
	if !(image.Point{x, y}.In(m.Rect)) {
		return 0
	}
	return m.Pix[m.PixOffset(x, y)]
}
