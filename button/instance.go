// button/instance.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

// Justification positions a bitmap, icon or text block inside the
// button. JustifyAbsolute uses the explicit X/Y offsets; the others
// anchor at one of nine points.
type Justification int

const (
	JustifyAbsolute Justification = iota
	JustifyTopLeft
	JustifyTopCenter
	JustifyTopRight
	JustifyCenterLeft
	JustifyCenter
	JustifyCenterRight
	JustifyBottomLeft
	JustifyBottomCenter
	JustifyBottomRight
)

// justify returns the top-left position of an inner box of size (iw, ih)
// inside an outer box of size (w, h).
func justify(j Justification, w, h, iw, ih, x, y int) (int, int) {
	if j == JustifyAbsolute {
		return x, y
	}
	if j < JustifyAbsolute || j > JustifyBottomRight {
		j = JustifyCenter
	}

	col := int(j-1) % 3
	row := int(j-1) / 3

	var px, py int
	switch col {
	case 1:
		px = (w - iw) / 2
	case 2:
		px = w - iw
	}
	switch row {
	case 1:
		py = (h - ih) / 2
	case 2:
		py = h - ih
	}
	return px, py
}

type TextOrientation int

const (
	TextHorizontal TextOrientation = iota
	// TextVertical draws one character per line.
	TextVertical
)

// Instance is one visual state of a button. Colours are AMX colour
// strings and are resolved when the instance is drawn; image names refer
// to panel resources.
type Instance struct {
	Number int `json:"number" msgpack:"n"`

	BorderStyle string `json:"border_style,omitempty" msgpack:"bs"`
	BorderColor string `json:"border_color,omitempty" msgpack:"cb"`
	FillColor   string `json:"fill_color,omitempty" msgpack:"cf"`
	TextColor   string `json:"text_color,omitempty" msgpack:"ct"`
	EffectColor string `json:"effect_color,omitempty" msgpack:"ec"`

	// ChameleonImage is the mask whose red and green channels are
	// coloured with the fill and border colours.
	ChameleonImage string        `json:"chameleon_image,omitempty" msgpack:"mi"`
	Bitmap         string        `json:"bitmap,omitempty" msgpack:"bm"`
	BitmapJustify  Justification `json:"bitmap_justify,omitempty" msgpack:"jb"`
	BitmapX        int           `json:"bitmap_x,omitempty" msgpack:"bx"`
	BitmapY        int           `json:"bitmap_y,omitempty" msgpack:"by"`

	Icon        string        `json:"icon,omitempty" msgpack:"ii"`
	IconJustify Justification `json:"icon_justify,omitempty" msgpack:"ji"`
	IconX       int           `json:"icon_x,omitempty" msgpack:"ix"`
	IconY       int           `json:"icon_y,omitempty" msgpack:"iy"`

	Text        string          `json:"text,omitempty" msgpack:"te"`
	TextJustify Justification   `json:"text_justify,omitempty" msgpack:"jt"`
	TextX       int             `json:"text_x,omitempty" msgpack:"tx"`
	TextY       int             `json:"text_y,omitempty" msgpack:"ty"`
	WordWrap    bool            `json:"word_wrap,omitempty" msgpack:"ww"`
	TextEffect  Effect          `json:"text_effect,omitempty" msgpack:"et"`
	Orientation TextOrientation `json:"orientation,omitempty" msgpack:"to"`
	FontIndex   int             `json:"font_index,omitempty" msgpack:"fi"`
	FontSize    float64         `json:"font_size,omitempty" msgpack:"fs"`

	// Opacity is 0 (transparent) to 255 (opaque).
	Opacity int    `json:"opacity" msgpack:"oo"`
	Sound   string `json:"sound,omitempty" msgpack:"sd"`

	Video *VideoSource `json:"video,omitempty" msgpack:"vi"`
}

// MakeInstance returns an instance with the defaults a panel file implies
// when attributes are omitted.
func MakeInstance(number int) Instance {
	return Instance{
		Number:        number,
		BitmapJustify: JustifyCenter,
		IconJustify:   JustifyCenter,
		TextJustify:   JustifyCenter,
		Opacity:       255,
	}
}
