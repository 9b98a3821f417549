// button/draw.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/util"
)

// composeLocked draws instance idx into a new image, layer by layer in
// the button's draw order.
func (b *Button) composeLocked(idx int) (*image.RGBA, error) {
	if idx < 0 || idx >= len(b.def.Instances) {
		return nil, ErrInvalidInstance
	}
	in := &b.def.Instances[idx]
	img := image.NewRGBA(image.Rect(0, 0, b.def.Width, b.def.Height))

	bd, ok := parseBorder(in.BorderStyle)
	if !ok {
		b.lg.Debugf("%s: unknown border style", in.BorderStyle)
	}

	for _, l := range b.drawOrder {
		switch l {
		case LayerFill:
			b.drawFill(img, in, bd)
		case LayerBitmap:
			b.drawImage(img, in.Bitmap, in.BitmapJustify, in.BitmapX, in.BitmapY)
		case LayerIcon:
			b.drawImage(img, in.Icon, in.IconJustify, in.IconX, in.IconY)
		case LayerText:
			b.drawText(img, in)
		case LayerBorder:
			b.drawBorder(img, in, bd)
		}
	}

	if bd.radius > 0 {
		clipRounded(img, bd.radius)
	}
	applyOpacity(img, b.opacityLocked(in))
	return img, nil
}

func (b *Button) color(str string) colors.Color {
	if str == "" {
		return colors.Transparent
	}
	if b.env.Colors == nil {
		b.lg.Errorf("%s: no colour resolver configured", str)
		return colors.Transparent
	}
	return b.env.Colors.AMXColor(str)
}

// opacityLocked stacks the instance opacity on the opacity inherited from
// the page.
func (b *Button) opacityLocked(in *Instance) int {
	if b.env.Opacity == nil {
		return util.Clamp(in.Opacity, 0, 255)
	}
	return int(colors.AverageAlpha(in.Opacity, b.env.Opacity(b.Parent())))
}

func (b *Button) drawFill(img *image.RGBA, in *Instance, bd border) {
	fill := b.color(in.FillColor)
	if in.ChameleonImage != "" {
		if mask := b.loadImage(in.ChameleonImage); mask != nil {
			drawChameleon(img, mask, fill, b.color(in.BorderColor))
			return
		}
	}
	if !fill.IsTransparent() {
		draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Over)
	}
}

func (b *Button) loadImage(name string) image.Image {
	if b.env.Images == nil {
		b.lg.Warnf("%s: no image source configured", name)
		return nil
	}
	src, err := b.env.Images.Image(name)
	if err != nil {
		b.lg.Warnf("%s: %v", name, err)
		return nil
	}
	return src
}

func (b *Button) drawImage(img *image.RGBA, name string, j Justification, x, y int) {
	if name == "" {
		return
	}
	src := b.loadImage(name)
	if src == nil {
		return
	}

	sr := src.Bounds()
	px, py := justify(j, img.Rect.Dx(), img.Rect.Dy(), sr.Dx(), sr.Dy(), x, y)
	draw.Draw(img, image.Rect(px, py, px+sr.Dx(), py+sr.Dy()), src, sr.Min, draw.Over)
}

// drawChameleon colours mask with two colours: the red channel of the
// mask weights the fill colour, the green channel the border colour, and
// the mask's alpha is kept.
func drawChameleon(img *image.RGBA, mask image.Image, fill, border colors.Color) {
	r := img.Rect.Intersect(mask.Bounds().Sub(mask.Bounds().Min))
	mo := mask.Bounds().Min
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := colors.FromColor(mask.At(x+mo.X, y+mo.Y))
			if m.A == 0 {
				continue
			}
			mix := func(f, b uint8) uint8 {
				return util.ClampByte((int(f)*int(m.R) + int(b)*int(m.G)) / 255)
			}
			c := colors.Color{
				R: mix(fill.R, border.R),
				G: mix(fill.G, border.G),
				B: mix(fill.B, border.B),
				A: util.ClampByte(int(m.A) * int(mix(fill.A, border.A)) / 255),
			}
			dst := colors.FromColor(img.At(x, y))
			img.Set(x, y, colors.Blend(dst, c))
		}
	}
}

func (b *Button) drawBorder(img *image.RGBA, in *Instance, bd border) {
	if bd.kind == borderNone || bd.width <= 0 {
		return
	}
	c := b.color(in.BorderColor)
	w, h := img.Rect.Dx(), img.Rect.Dy()

	switch bd.kind {
	case borderLine:
		strokeRounded(img, 0, bd.width, bd.radius, c)
	case borderFrame:
		strokeRounded(img, 0, bd.width/3, bd.radius, c)
		strokeRounded(img, bd.width-bd.width/3, bd.width/3, bd.radius, c)
	case borderBevelRaised, borderBevelInset:
		light := colors.ColorRange(c, bd.width, 96, colors.DirDarkLight)
		dark := colors.ColorRange(c, bd.width, 96, colors.DirLightDark)
		if bd.kind == borderBevelInset {
			light, dark = dark, light
		}
		for i := 0; i < bd.width && 2*i < w && 2*i < h; i++ {
			lc := light[util.Clamp(bd.width-1-i, 0, len(light)-1)]
			dc := dark[util.Clamp(i, 0, len(dark)-1)]
			for x := i; x < w-i; x++ {
				img.Set(x, i, lc)
				img.Set(x, h-1-i, dc)
			}
			for y := i + 1; y < h-1-i; y++ {
				img.Set(i, y, lc)
				img.Set(w-1-i, y, dc)
			}
		}
	}
}

// insideRounded reports whether pixel (x, y) lies inside the rectangle
// (w, h) shrunk by inset, with corners of the given radius.
func insideRounded(x, y, w, h, inset, radius int) bool {
	if x < inset || y < inset || x >= w-inset || y >= h-inset {
		return false
	}
	r := radius - inset
	if r <= 0 {
		return true
	}

	cx, cy := float64(x)+0.5, float64(y)+0.5
	left, right := float64(inset+r), float64(w-inset-r)
	top, bottom := float64(inset+r), float64(h-inset-r)
	var dx, dy float64
	switch {
	case cx < left:
		dx = left - cx
	case cx > right:
		dx = cx - right
	}
	switch {
	case cy < top:
		dy = top - cy
	case cy > bottom:
		dy = cy - bottom
	}
	return math.Hypot(dx, dy) <= float64(r)
}

func strokeRounded(img *image.RGBA, inset, width, radius int, c colors.Color) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if insideRounded(x, y, w, h, inset, radius) && !insideRounded(x, y, w, h, inset+width, radius) {
				img.Set(x, y, colors.Blend(colors.FromColor(img.At(x, y)), c))
			}
		}
	}
}

// clipRounded clears everything outside of the rounded rectangle.
func clipRounded(img *image.RGBA, radius int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !insideRounded(x, y, w, h, 0, radius) {
				img.SetRGBA(x, y, color.RGBA{})
			}
		}
	}
}

// applyOpacity scales all channels of the premultiplied image.
func applyOpacity(img *image.RGBA, opacity int) {
	if opacity >= 255 {
		return
	}
	for i, v := range img.Pix {
		img.Pix[i] = uint8(int(v) * opacity / 255)
	}
}
