// colors/color.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package colors

import (
	"fmt"
	"image/color"

	"github.com/tpanel/tpanel/util"
)

// Color is a non-premultiplied RGBA colour with 8 bits per channel.
type Color struct {
	R, G, B, A uint8
}

var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 0xff}
	White       = Color{0xff, 0xff, 0xff, 0xff}
)

// FromPacked unpacks a colour stored as 0xRRGGBBAA.
func FromPacked(p uint32) Color {
	return Color{R: uint8(p >> 24), G: uint8(p >> 16), B: uint8(p >> 8), A: uint8(p)}
}

func (c Color) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any image colour to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

func (c Color) IsTransparent() bool {
	return c.A == 0
}

// SetAlpha returns c with its alpha replaced by a, clamped to [0,255].
func SetAlpha(c Color, a int) Color {
	c.A = util.ClampByte(a)
	return c
}

// SetAlphaThreshold lowers the alpha of c to a; it never raises it.
func SetAlphaThreshold(c Color, a int) Color {
	if na := util.ClampByte(a); na < c.A {
		c.A = na
	}
	return c
}

// AverageAlpha combines two opacities by averaging them; it is used to
// stack a button's opacity on top of the opacity it inherits from its
// page or the panel.
func AverageAlpha(a, b int) uint8 {
	return util.ClampByte((util.Clamp(a, 0, 255) + util.Clamp(b, 0, 255)) / 2)
}

// Blend draws src over dst (source-over compositing) and returns the
// result.
func Blend(dst, src Color) Color {
	if src.A == 0xff || dst.A == 0 {
		return src
	}
	if src.A == 0 {
		return dst
	}

	sa := int(src.A)
	da := int(dst.A) * (255 - sa) / 255
	oa := sa + da
	mix := func(s, d uint8) uint8 {
		return uint8((int(s)*sa + int(d)*da) / oa)
	}
	return Color{R: mix(src.R, dst.R), G: mix(src.G, dst.G), B: mix(src.B, dst.B), A: uint8(oa)}
}
