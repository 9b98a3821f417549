// button/text.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tpanel/tpanel/colors"
)

func (b *Button) face(in *Instance) font.Face {
	if b.env.Fonts != nil {
		if f := b.env.Fonts.Face(in.FontIndex, in.FontSize); f != nil {
			return f
		}
	}
	return basicfont.Face7x13
}

func (b *Button) drawText(img *image.RGBA, in *Instance) {
	if in.Text == "" {
		return
	}

	face := b.face(in)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	lines := layoutText(face, in.Text, w, in.WordWrap, in.Orientation)

	m := face.Metrics()
	lineHeight := m.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = (m.Ascent + m.Descent).Ceil()
	}
	blockW := 0
	widths := make([]int, len(lines))
	for i, l := range lines {
		widths[i] = font.MeasureString(face, l).Ceil()
		blockW = max(blockW, widths[i])
	}
	blockH := len(lines) * lineHeight

	px, py := justify(in.TextJustify, w, h, blockW, blockH, in.TextX, in.TextY)

	mask := image.NewAlpha(img.Rect)
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for i, l := range lines {
		// Lines are aligned within the block the same way the block is
		// aligned within the button.
		lx := px
		switch justifyColumn(in.TextJustify) {
		case 1:
			lx += (blockW - widths[i]) / 2
		case 2:
			lx += blockW - widths[i]
		}
		d.Dot = fixed.P(lx, py+i*lineHeight+m.Ascent.Ceil())
		d.DrawString(l)
	}

	ec := colors.Black
	if in.EffectColor != "" {
		ec = b.color(in.EffectColor)
	}
	drawTextEffect(img, mask, in.TextEffect.params(), ec)

	tc := b.color(in.TextColor)
	if in.TextColor == "" {
		tc = colors.Black
	}
	draw.DrawMask(img, img.Rect, image.NewUniform(tc), image.Point{}, mask, image.Point{}, draw.Over)
}

func justifyColumn(j Justification) int {
	if j <= JustifyAbsolute || j > JustifyBottomRight {
		return 0
	}
	return int(j-1) % 3
}

// layoutText splits text into the lines that are drawn. Explicit line
// breaks are always honoured; with wrap set, lines are broken at spaces
// so they fit into width, and words that are wider than the button are
// broken between characters. Vertical text has one character per line.
func layoutText(face font.Face, text string, width int, wrap bool, o TextOrientation) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if o == TextVertical {
		var lines []string
		for _, r := range text {
			if r != '\n' {
				lines = append(lines, string(r))
			}
		}
		return lines
	}

	paragraphs := strings.Split(text, "\n")
	if !wrap || width <= 0 {
		return paragraphs
	}

	fits := func(s string) bool { return font.MeasureString(face, s).Ceil() <= width }

	var lines []string
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if fits(cand) {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			// Break words that do not fit on a line of their own.
			for !fits(w) {
				n := 1
				rs := []rune(w)
				for n < len(rs) && fits(string(rs[:n+1])) {
					n++
				}
				lines = append(lines, string(rs[:n]))
				w = string(rs[n:])
			}
			cur = w
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}
