// gui/ebiten/display.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package ebiten shows the panel in a window and feeds mouse, touch and
// keyboard input back to it.
package ebiten

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tpanel/tpanel/gui"
	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/queue"
	"github.com/tpanel/tpanel/system"
)

// Clicker receives presses and releases at screen positions.
type Clicker interface {
	Click(x, y int, pressed bool) bool
}

// KeyHandler receives the presses of the hardware keyboard.
type KeyHandler interface {
	HandleDedicatedKeys(channel int, pressed bool) string
	TypeRune(r rune) string
}

type Display struct {
	ctx     context.Context
	q       *queue.Queue
	surface *gui.Surface
	clicker Clicker
	keys    KeyHandler

	screen  *ebiten.Image
	pressed bool
	touches map[ebiten.TouchID]bool

	lg *log.Logger
}

func NewDisplay(ctx context.Context, q *queue.Queue, width, height int, clicker Clicker, keys KeyHandler,
	lg *log.Logger) *Display {
	return &Display{
		ctx:     ctx,
		q:       q,
		surface: gui.NewSurface(width, height, lg),
		clicker: clicker,
		keys:    keys,
		touches: make(map[ebiten.TouchID]bool),
		lg:      lg,
	}
}

// Run opens the window and returns when it is closed or ctx is canceled.
func (d *Display) Run(title string) error {
	w, h := d.surface.Size()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	defer d.lg.CatchAndReportCrash()
	return ebiten.RunGame(d)
}

func (d *Display) Update() error {
	select {
	case <-d.ctx.Done():
		return ebiten.Termination
	default:
	}

	d.pointerInput()
	d.keyboardInput()

	select {
	case <-d.q.Ready():
	default:
		if d.screen != nil {
			return nil
		}
	}

	for _, ev := range d.q.Drain() {
		d.surface.Apply(ev, d.q.IsDeleted)
	}

	img := d.surface.Compose()
	if d.screen == nil {
		d.screen = ebiten.NewImage(img.Rect.Dx(), img.Rect.Dy())
	}
	d.screen.WritePixels(img.Pix)
	return nil
}

func (d *Display) Draw(screen *ebiten.Image) {
	if d.screen != nil {
		screen.DrawImage(d.screen, nil)
	}
}

func (d *Display) Layout(_, _ int) (int, int) {
	return d.surface.Size()
}

func (d *Display) pointerInput() {
	if down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft); down != d.pressed {
		d.pressed = down
		x, y := ebiten.CursorPosition()
		d.clicker.Click(x, y, down)
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		d.touches[id] = true
		d.clicker.Click(x, y, true)
	}
	for id := range d.touches {
		if inpututil.IsTouchJustReleased(id) {
			x, y := inpututil.TouchPositionInPreviousTick(id)
			delete(d.touches, id)
			d.clicker.Click(x, y, false)
		}
	}
}

var controlKeys = map[ebiten.Key]int{
	ebiten.KeyEnter:      system.DedicatedEnter,
	ebiten.KeyBackspace:  system.DedicatedBackspace,
	ebiten.KeyTab:        system.DedicatedTab,
	ebiten.KeyEscape:     system.DedicatedEscape,
	ebiten.KeyDelete:     system.DedicatedDelete,
	ebiten.KeyArrowLeft:  system.DedicatedLeft,
	ebiten.KeyArrowRight: system.DedicatedRight,
	ebiten.KeyArrowUp:    system.DedicatedUp,
	ebiten.KeyArrowDown:  system.DedicatedDown,
}

func (d *Display) keyboardInput() {
	if d.keys == nil {
		return
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if ch, ok := controlKeys[k]; ok {
			d.keys.HandleDedicatedKeys(ch, true)
		}
	}

	// Characters come with the host's keyboard layout and modifiers
	// applied.
	for _, r := range ebiten.AppendInputChars(nil) {
		d.keys.TypeRune(r)
	}
}
