// bitmap/bitmap.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package bitmap provides a raw pixel buffer whose size is fixed when it is
// created. The geometry (width, height, bytes per line and bytes per pixel)
// can be changed afterwards, but only as long as the new geometry still
// fits the buffer; this keeps consumers from reading or writing outside of
// it.
package bitmap

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"log/slog"

	"github.com/tpanel/tpanel/log"
)

// DefaultPixelSize is the number of bytes per pixel of an RGBA bitmap.
const DefaultPixelSize = 4

var ErrGeometry = errors.New("Bitmap geometry exceeds buffer size")

type Bitmap struct {
	buf       []byte
	width     int
	height    int
	pixline   int
	pixelSize int

	lg *log.Logger
}

// New allocates a bitmap of width*height*pixelSize bytes and copies data
// into it. If data is shorter than the buffer the rest is zero.
func New(data []byte, width, height, pixelSize int) *Bitmap {
	if width < 0 || height < 0 || pixelSize < 1 {
		return &Bitmap{pixelSize: DefaultPixelSize}
	}

	b := &Bitmap{
		buf:       make([]byte, width*height*pixelSize),
		width:     width,
		height:    height,
		pixline:   width * pixelSize,
		pixelSize: pixelSize,
	}
	copy(b.buf, data)
	return b
}

// NewRaw stores a copy of data without any geometry; the dimensions have
// to be set with SetSize before the bitmap is valid.
func NewRaw(data []byte) *Bitmap {
	return &Bitmap{
		buf:       bytes.Clone(data),
		pixelSize: DefaultPixelSize,
	}
}

// FromImage returns an RGBA bitmap holding the pixels of img.
func FromImage(img image.Image) *Bitmap {
	r := img.Bounds()
	b := New(nil, r.Dx(), r.Dy(), DefaultPixelSize)
	dst := &image.RGBA{Pix: b.buf, Stride: b.pixline, Rect: image.Rect(0, 0, r.Dx(), r.Dy())}
	draw.Draw(dst, dst.Rect, img, r.Min, draw.Src)
	return b
}

// SetLogger sets the logger used to report rejected geometry changes.
func (b *Bitmap) SetLogger(lg *log.Logger) {
	b.lg = lg
}

func (b *Bitmap) Width() int     { return b.width }
func (b *Bitmap) Height() int    { return b.height }
func (b *Bitmap) Pixline() int   { return b.pixline }
func (b *Bitmap) PixelSize() int { return b.pixelSize }
func (b *Bitmap) Size() int      { return len(b.buf) }

// Data returns the underlying buffer; it is not a copy.
func (b *Bitmap) Data() []byte { return b.buf }

// IsValid reports whether the bitmap has a buffer and its geometry is
// consistent with it.
func (b *Bitmap) IsValid() bool {
	if b == nil || b.buf == nil {
		return false
	}
	return b.width*b.pixelSize == b.pixline && b.pixline*b.height <= len(b.buf)
}

// fits checks a prospective geometry against the allocated buffer.
func (b *Bitmap) fits(width, height, pixline int) bool {
	return width >= 0 && height >= 0 && pixline >= 0 && pixline*height <= len(b.buf)
}

func (b *Bitmap) reject(op string, args ...any) error {
	b.lg.Error("rejected bitmap geometry", append([]any{slog.String("op", op), slog.Int("size", len(b.buf))}, args...)...)
	return ErrGeometry
}

func (b *Bitmap) SetWidth(width int) error {
	pixline := width * b.pixelSize
	if !b.fits(width, b.height, pixline) {
		return b.reject("SetWidth", slog.Int("width", width))
	}
	b.width = width
	b.pixline = pixline
	return nil
}

func (b *Bitmap) SetHeight(height int) error {
	if !b.fits(b.width, height, b.pixline) {
		return b.reject("SetHeight", slog.Int("height", height))
	}
	b.height = height
	return nil
}

// SetPixline sets the number of bytes per line; the width follows from it.
func (b *Bitmap) SetPixline(pixline int) error {
	if pixline%b.pixelSize != 0 || !b.fits(pixline/b.pixelSize, b.height, pixline) {
		return b.reject("SetPixline", slog.Int("pixline", pixline))
	}
	b.pixline = pixline
	b.width = pixline / b.pixelSize
	return nil
}

func (b *Bitmap) SetPixelSize(pixelSize int) error {
	if pixelSize < 1 || !b.fits(b.width, b.height, b.width*pixelSize) {
		return b.reject("SetPixelSize", slog.Int("pixel_size", pixelSize))
	}
	b.pixelSize = pixelSize
	b.pixline = b.width * pixelSize
	return nil
}

func (b *Bitmap) SetSize(width, height int) error {
	pixline := width * b.pixelSize
	if !b.fits(width, height, pixline) {
		return b.reject("SetSize", slog.Int("width", width), slog.Int("height", height))
	}
	b.width = width
	b.height = height
	b.pixline = pixline
	return nil
}

// Clear releases the buffer and resets the geometry.
func (b *Bitmap) Clear() {
	b.buf = nil
	b.width = 0
	b.height = 0
	b.pixline = 0
	b.pixelSize = DefaultPixelSize
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	if b == nil {
		return nil
	}
	c := *b
	c.buf = bytes.Clone(b.buf)
	return &c
}

// Equal reports whether both bitmaps have the same geometry and contents.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && b.pixline == o.pixline &&
		b.pixelSize == o.pixelSize && bytes.Equal(b.buf, o.buf)
}

// Image returns an *image.RGBA sharing the bitmap's buffer. It returns nil
// unless the bitmap is a valid 4-byte-per-pixel bitmap.
func (b *Bitmap) Image() *image.RGBA {
	if !b.IsValid() || b.pixelSize != DefaultPixelSize {
		return nil
	}
	return &image.RGBA{
		Pix:    b.buf[:b.pixline*b.height],
		Stride: b.pixline,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}
