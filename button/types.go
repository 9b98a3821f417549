// button/types.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"strconv"
	"strings"
)

// Feedback determines how a button's active instance follows its
// channel.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackChannel
	FeedbackInvertedChannel
	FeedbackAlwaysOn
	FeedbackMomentary
	FeedbackBlink
)

func (f Feedback) String() string {
	names := [...]string{"none", "channel", "inverted channel", "always on", "momentary", "blink"}
	if f < 0 || int(f) >= len(names) {
		return "Feedback(" + strconv.Itoa(int(f)) + ")"
	}
	return names[f]
}

///////////////////////////////////////////////////////////////////////////
// Text effects

// Effect is a text effect as numbered in panel files: 1-4 are outlines,
// 5-8 glows, 9-32 soft, medium and hard drop shadows with offsets 1-8 and
// 33-56 the same drop shadows combined with an outline.
type Effect int

const (
	EffectNone Effect = 0

	EffectOutlineS Effect = 1
	EffectOutlineX Effect = 4
	EffectGlowS    Effect = 5
	EffectGlowX    Effect = 8

	EffectSoftShadow   Effect = 9
	EffectMediumShadow Effect = 17
	EffectHardShadow   Effect = 25

	EffectSoftShadowOutline   Effect = 33
	EffectMediumShadowOutline Effect = 41
	EffectHardShadowOutline   Effect = 49

	effectLast Effect = 56
)

// effectParams are the pixel sizes an effect is rendered with. Zero
// values mean the corresponding part of the effect is not drawn.
type effectParams struct {
	outline int // dilation radius
	glow    int // dilation + blur radius
	shadow  int // offset to the lower right
	blur    int // shadow blur radius
}

func (e Effect) params() effectParams {
	switch {
	case e <= EffectNone || e > effectLast:
		return effectParams{}
	case e <= EffectOutlineX:
		return effectParams{outline: int(e - EffectOutlineS + 1)}
	case e <= EffectGlowX:
		return effectParams{glow: 2 * int(e-EffectGlowS+1)}
	}

	outline := 0
	s := e
	if s >= EffectSoftShadowOutline {
		outline = 1
		s -= EffectSoftShadowOutline - EffectSoftShadow
	}

	offset := int(s-EffectSoftShadow)%8 + 1
	var blur int
	switch {
	case s < EffectMediumShadow:
		blur = 3
	case s < EffectHardShadow:
		blur = 1
	}
	return effectParams{outline: outline, shadow: offset, blur: blur}
}

func (e Effect) String() string {
	sizes := [...]string{"S", "M", "L", "X"}
	switch {
	case e == EffectNone:
		return "none"
	case e < EffectNone || e > effectLast:
		return "unknown"
	case e <= EffectOutlineX:
		return "outline-" + sizes[e-EffectOutlineS]
	case e <= EffectGlowX:
		return "glow-" + sizes[e-EffectGlowS]
	}

	families := [...]string{"soft", "medium", "hard"}
	idx := int(e - EffectSoftShadow)
	suffix := ""
	if e >= EffectSoftShadowOutline {
		idx -= int(EffectSoftShadowOutline - EffectSoftShadow)
		suffix = " with outline"
	}
	return families[idx/8] + " drop shadow " + strconv.Itoa(idx%8+1) + suffix
}

///////////////////////////////////////////////////////////////////////////
// Borders

type borderKind int

const (
	borderNone borderKind = iota
	borderLine
	borderFrame
	borderBevelRaised
	borderBevelInset
)

// border describes how a named border style is drawn.
type border struct {
	kind   borderKind
	width  int
	radius int
}

// parseBorder maps the border names used in panel files to a border.
// Names are case-insensitive; unknown names draw no border.
func parseBorder(name string) (border, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "none":
		return border{}, true
	case "single line":
		return border{kind: borderLine, width: 1}, true
	case "double line":
		return border{kind: borderLine, width: 2}, true
	case "quad line":
		return border{kind: borderLine, width: 4}, true
	case "picture frame":
		return border{kind: borderFrame, width: 6}, true
	}

	if strings.HasPrefix(n, "circle ") {
		d, err := strconv.Atoi(strings.TrimPrefix(n, "circle "))
		if err != nil || d <= 0 {
			return border{}, false
		}
		return border{kind: borderLine, width: 2, radius: d / 2}, true
	}

	for _, b := range []struct {
		prefix string
		kind   borderKind
	}{{"bevel raised", borderBevelRaised}, {"bevel inset", borderBevelInset}} {
		if rest, ok := strings.CutPrefix(n, b.prefix); ok {
			w := 2
			switch strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "-")) {
			case "m":
				w = 4
			case "l":
				w = 6
			case "", "s":
			default:
				return border{}, false
			}
			return border{kind: b.kind, width: w}, true
		}
	}
	return border{}, false
}

///////////////////////////////////////////////////////////////////////////
// Draw order

// Layer is one step of composing a button instance.
type Layer int

const (
	LayerFill Layer = iota + 1
	LayerBitmap
	LayerIcon
	LayerText
	LayerBorder
)

func (l Layer) String() string {
	names := [...]string{"?", "fill", "bitmap", "icon", "text", "border"}
	if l < 0 || int(l) >= len(names) {
		return "Layer(" + strconv.Itoa(int(l)) + ")"
	}
	return names[l]
}

// DefaultDrawOrder is used when a button has no or an invalid draw order.
var DefaultDrawOrder = [5]Layer{LayerFill, LayerBitmap, LayerIcon, LayerText, LayerBorder}

// ParseDrawOrder parses a draw order of the form "0102030405": five
// two-digit layer codes, each layer exactly once. The default order is
// returned together with false if s is not a valid order.
func ParseDrawOrder(s string) ([5]Layer, bool) {
	if len(s) != 10 {
		return DefaultDrawOrder, false
	}

	var order [5]Layer
	var seen [6]bool
	for i := range order {
		v, err := strconv.Atoi(s[2*i : 2*i+2])
		if err != nil || v < int(LayerFill) || v > int(LayerBorder) || seen[v] {
			return DefaultDrawOrder, false
		}
		seen[v] = true
		order[i] = Layer(v)
	}
	return order, true
}
