// queue/event.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package queue

import (
	"log/slog"

	"github.com/tpanel/tpanel/bitmap"
	"github.com/tpanel/tpanel/colors"
)

type Kind int

const (
	KindButton Kind = iota
	KindPage
	KindSubpage
	KindBackground
	KindVideo
	KindInText
	KindListbox
	KindDropPage
	KindDropSubpage
	KindSurfaceReset
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindPage:
		return "page"
	case KindSubpage:
		return "subpage"
	case KindBackground:
		return "background"
	case KindVideo:
		return "video"
	case KindInText:
		return "input text"
	case KindListbox:
		return "listbox"
	case KindDropPage:
		return "drop page"
	case KindDropSubpage:
		return "drop subpage"
	case KindSurfaceReset:
		return "surface reset"
	default:
		return "unknown"
	}
}

// Event is one of the event types below. The queue holds at most one
// event per handle and kind.
type Event interface {
	Handle() uint32
	Kind() Kind
	isEvent()
}

// Geometry is the position and size of an object on its parent.
type Geometry struct {
	Left, Top     int
	Width, Height int
}

// ButtonEvent carries a composed button bitmap. A nil Bitmap removes the
// button from the display.
type ButtonEvent struct {
	ID, Parent uint32
	Bitmap     *bitmap.Bitmap
	Left, Top  int
}

type PageEvent struct {
	ID            uint32
	Width, Height int
}

type SubpageEvent struct {
	ID, Parent uint32
	Geometry
	Opacity int
}

type BackgroundEvent struct {
	ID     uint32
	Bitmap *bitmap.Bitmap
	Color  colors.Color
}

type VideoEvent struct {
	ID, Parent uint32
	Geometry
	URL, User, Password string
}

// InTextEvent shows a text input line for a text input button.
type InTextEvent struct {
	ID, Parent uint32
	Geometry
	Text string
}

type ListboxEvent struct {
	ID, Parent uint32
	Geometry
	Entries []string
}

type DropPageEvent struct {
	ID uint32
}

type DropSubpageEvent struct {
	ID, Parent uint32
}

// SurfaceResetEvent clears the whole display.
type SurfaceResetEvent struct{}

func (e ButtonEvent) Handle() uint32       { return e.ID }
func (e PageEvent) Handle() uint32         { return e.ID }
func (e SubpageEvent) Handle() uint32      { return e.ID }
func (e BackgroundEvent) Handle() uint32   { return e.ID }
func (e VideoEvent) Handle() uint32        { return e.ID }
func (e InTextEvent) Handle() uint32       { return e.ID }
func (e ListboxEvent) Handle() uint32      { return e.ID }
func (e DropPageEvent) Handle() uint32     { return e.ID }
func (e DropSubpageEvent) Handle() uint32  { return e.ID }
func (e SurfaceResetEvent) Handle() uint32 { return 0 }

func (ButtonEvent) Kind() Kind       { return KindButton }
func (PageEvent) Kind() Kind         { return KindPage }
func (SubpageEvent) Kind() Kind      { return KindSubpage }
func (BackgroundEvent) Kind() Kind   { return KindBackground }
func (VideoEvent) Kind() Kind        { return KindVideo }
func (InTextEvent) Kind() Kind       { return KindInText }
func (ListboxEvent) Kind() Kind      { return KindListbox }
func (DropPageEvent) Kind() Kind     { return KindDropPage }
func (DropSubpageEvent) Kind() Kind  { return KindDropSubpage }
func (SurfaceResetEvent) Kind() Kind { return KindSurfaceReset }

func (ButtonEvent) isEvent()       {}
func (PageEvent) isEvent()         {}
func (SubpageEvent) isEvent()      {}
func (BackgroundEvent) isEvent()   {}
func (VideoEvent) isEvent()        {}
func (InTextEvent) isEvent()       {}
func (ListboxEvent) isEvent()      {}
func (DropPageEvent) isEvent()     {}
func (DropSubpageEvent) isEvent()  {}
func (SurfaceResetEvent) isEvent() {}

// LogValue for button events leaves out the pixels.
func (e ButtonEvent) LogValue() slog.Value {
	var w, h int
	if e.Bitmap != nil {
		w, h = e.Bitmap.Width(), e.Bitmap.Height()
	}
	return slog.GroupValue(
		slog.Any("handle", e.ID),
		slog.Any("parent", e.Parent),
		slog.Int("left", e.Left),
		slog.Int("top", e.Top),
		slog.Int("width", w),
		slog.Int("height", h))
}
