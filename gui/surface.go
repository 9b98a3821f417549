// gui/surface.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package gui keeps the state of the display as it is described by the
// events of the queue and composes it into a single image.
package gui

import (
	"cmp"
	"image"
	"image/color"
	"log/slog"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tpanel/tpanel/bitmap"
	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/queue"
)

type item struct {
	seq    uint64
	parent uint32
	left   int
	top    int
	bitmap *bitmap.Bitmap
	ev     queue.Event // video, input line and listbox events
}

type subpage struct {
	id      uint32
	geom    queue.Geometry
	opacity int
}

type background struct {
	color  colors.Color
	bitmap *bitmap.Bitmap
}

// Surface is the content of the display: the current page, the popups on
// top of it and the buttons of both.
type Surface struct {
	width, height int

	page        uint32
	subpages    []subpage // bottom to top
	items       map[uint32]item
	backgrounds map[uint32]background
	seq         uint64

	lg *log.Logger
}

func NewSurface(width, height int, lg *log.Logger) *Surface {
	s := &Surface{width: width, height: height, lg: lg}
	s.reset()
	return s
}

func (s *Surface) reset() {
	s.page = 0
	s.subpages = nil
	s.items = make(map[uint32]item)
	s.backgrounds = make(map[uint32]background)
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

func (s *Surface) Page() uint32 {
	return s.page
}

// Apply updates the surface with ev. Events of objects on a page or popup
// that has been dropped are ignored.
func (s *Surface) Apply(ev queue.Event, deleted func(handle uint32) bool) {
	skip := func(h uint32) bool { return deleted != nil && deleted(h) }

	switch e := ev.(type) {
	case queue.ButtonEvent:
		if e.Bitmap == nil {
			delete(s.items, e.ID)
		} else if !skip(e.Parent) {
			s.setItem(e.ID, item{parent: e.Parent, left: e.Left, top: e.Top, bitmap: e.Bitmap})
		}
	case queue.VideoEvent:
		if !skip(e.Parent) {
			s.setItem(e.ID, item{parent: e.Parent, left: e.Left, top: e.Top, ev: e})
		}
	case queue.InTextEvent:
		if !skip(e.Parent) {
			s.setItem(e.ID, item{parent: e.Parent, left: e.Left, top: e.Top, ev: e})
		}
	case queue.ListboxEvent:
		if !skip(e.Parent) {
			s.setItem(e.ID, item{parent: e.Parent, left: e.Left, top: e.Top, ev: e})
		}

	case queue.PageEvent:
		if s.page != 0 && s.page != e.ID {
			s.dropChildren(s.page)
		}
		s.page = e.ID
		if e.Width > 0 && e.Height > 0 && (e.Width != s.width || e.Height != s.height) {
			s.lg.Debug("page size differs from the display", slog.Int("width", e.Width),
				slog.Int("height", e.Height))
		}
	case queue.SubpageEvent:
		if skip(e.ID) {
			return
		}
		s.subpages = slices.DeleteFunc(s.subpages, func(sp subpage) bool { return sp.id == e.ID })
		s.subpages = append(s.subpages, subpage{id: e.ID, geom: e.Geometry, opacity: e.Opacity})
	case queue.BackgroundEvent:
		s.backgrounds[e.ID] = background{color: e.Color, bitmap: e.Bitmap}

	case queue.DropPageEvent:
		s.dropChildren(e.ID)
		delete(s.backgrounds, e.ID)
		if s.page == e.ID {
			s.page = 0
		}
	case queue.DropSubpageEvent:
		s.dropChildren(e.ID)
		delete(s.backgrounds, e.ID)
		s.subpages = slices.DeleteFunc(s.subpages, func(sp subpage) bool { return sp.id == e.ID })
	case queue.SurfaceResetEvent:
		s.reset()
	}
}

// setItem stores an object; objects keep their stacking position when
// they are updated.
func (s *Surface) setItem(id uint32, it item) {
	if old, ok := s.items[id]; ok {
		it.seq = old.seq
	} else {
		s.seq++
		it.seq = s.seq
	}
	s.items[id] = it
}

func (s *Surface) dropChildren(parent uint32) {
	for id, it := range s.items {
		if it.parent == parent {
			delete(s.items, id)
		}
	}
}

// Compose draws the surface.
func (s *Surface) Compose() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(img, img.Rect, image.NewUniform(color.Black), image.Point{}, draw.Src)

	if s.page != 0 {
		s.drawBackground(img, s.page, img.Rect, 255)
		s.drawChildren(img, s.page, img.Rect)
	}
	for _, sp := range s.subpages {
		r := image.Rect(sp.geom.Left, sp.geom.Top, sp.geom.Left+sp.geom.Width, sp.geom.Top+sp.geom.Height)
		s.drawBackground(img, sp.id, r, sp.opacity)
		s.drawChildren(img, sp.id, r)
	}
	return img
}

func (s *Surface) drawBackground(img *image.RGBA, id uint32, r image.Rectangle, opacity int) {
	bg, ok := s.backgrounds[id]
	if !ok {
		return
	}
	c := bg.color
	if opacity > 0 && opacity < 255 {
		c = colors.SetAlpha(c, int(c.A)*opacity/255)
	}
	if !c.IsTransparent() {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
	}
	if src := bg.bitmap.Image(); src != nil {
		draw.Draw(img, r, src, src.Rect.Min, draw.Over)
	}
}

// drawChildren draws the objects of parent into r; their positions are
// relative to r.
func (s *Surface) drawChildren(img *image.RGBA, parent uint32, r image.Rectangle) {
	var children []item
	for _, it := range s.items {
		if it.parent == parent {
			children = append(children, it)
		}
	}
	slices.SortFunc(children, func(a, b item) int { return cmp.Compare(a.seq, b.seq) })

	dst := img.SubImage(r).(*image.RGBA)
	for _, it := range children {
		at := r.Min.Add(image.Pt(it.left, it.top))
		switch e := it.ev.(type) {
		case nil:
			if src := it.bitmap.Image(); src != nil {
				draw.Draw(dst, src.Rect.Add(at), src, src.Rect.Min, draw.Over)
			}
		case queue.VideoEvent:
			// Video is not decoded; its area is kept black.
			draw.Draw(dst, image.Rect(0, 0, e.Width, e.Height).Add(at), image.NewUniform(color.Black),
				image.Point{}, draw.Src)
		case queue.InTextEvent:
			box := image.Rect(0, 0, e.Width, e.Height).Add(at)
			draw.Draw(dst, box, image.NewUniform(color.White), image.Point{}, draw.Src)
			drawLines(dst, box, []string{e.Text})
		case queue.ListboxEvent:
			box := image.Rect(0, 0, e.Width, e.Height).Add(at)
			draw.Draw(dst, box, image.NewUniform(color.White), image.Point{}, draw.Src)
			drawLines(dst, box, e.Entries)
		}
	}
}

// drawLines writes lines of text into box, one per line, as far as they
// fit.
func drawLines(dst *image.RGBA, box image.Rectangle, lines []string) {
	face := basicfont.Face7x13
	m := face.Metrics()
	lineHeight := m.Height.Ceil()

	d := font.Drawer{
		Dst:  dst.SubImage(box).(*image.RGBA),
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, l := range lines {
		y := box.Min.Y + 2 + i*lineHeight
		if y+lineHeight > box.Max.Y {
			break
		}
		d.Dot = fixed.P(box.Min.X+2, y+m.Ascent.Ceil())
		d.DrawString(l)
	}
}
