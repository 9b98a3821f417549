// panel/panel.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package panel ties buttons and pages to the display queue. It owns the
// buttons of all pages, turns their display callbacks into queue events,
// routes clicks and keeps the system buttons up to date.
package panel

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tpanel/tpanel/bitmap"
	"github.com/tpanel/tpanel/button"
	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/queue"
	"github.com/tpanel/tpanel/system"
	"github.com/tpanel/tpanel/timer"
	"github.com/tpanel/tpanel/util"
)

var (
	ErrDuplicatePage = errors.New("Page already defined")
	ErrUnknownPage   = errors.New("Unknown page")
	ErrNotPopup      = errors.New("Page is not a popup")
	ErrIsPopup       = errors.New("Page is a popup")
	ErrUnknownButton = errors.New("Unknown button")
)

// Sender delivers button events to the controller.
type Sender interface {
	Send(cmd string)
	KeyStroke(r rune)
}

// Page describes a page or a popup and the buttons on it. Button
// positions are relative to the page.
type Page struct {
	ID      int
	Name    string
	Popup   bool
	Left    int
	Top     int
	Width   int
	Height  int
	Opacity int // 0 means opaque
	Buttons []button.Definition

	FillColor string
	Bitmap    string // scaled to the page size
}

func (pg *Page) Handle() uint32 { return uint32(pg.ID) << 16 }

type page struct {
	Page
	buttons []*button.Button // by increasing z-order
}

type Panel struct {
	mu      sync.Mutex
	pages   map[int]*page
	byName  map[string]*page
	current *page
	popups  []*page // open popups, topmost last
	buttons map[uint32]*button.Button
	defs    map[uint32]button.Definition
	images  *dynamicImages
	refresh map[uint32]*timer.ImageRefresh
	clock   *timer.Timer

	q        *queue.Queue
	env      *button.Env
	cfg      system.MutableConfig
	table    *system.Table
	keyboard *system.Keyboard
	send     Sender
	lg       *log.Logger
}

// New returns a panel that queues its display events on q. The images of
// env are extended with the dynamic images of the panel and page
// opacities are applied to the buttons.
func New(q *queue.Queue, env button.Env, cfg system.MutableConfig, send Sender, lg *log.Logger) *Panel {
	p := &Panel{
		pages:   make(map[int]*page),
		byName:  make(map[string]*page),
		buttons: make(map[uint32]*button.Button),
		defs:    make(map[uint32]button.Definition),
		images:  &dynamicImages{next: env.Images, images: make(map[string]image.Image)},
		refresh: make(map[uint32]*timer.ImageRefresh),
		q:       q,
		cfg:     cfg,
		table:   system.DefaultTable(),
		send:    send,
		lg:      lg,
	}

	env.Images = p.images
	env.Opacity = p.opacity
	if env.Lg == nil {
		env.Lg = lg
	}
	p.env = &env

	p.keyboard = system.NewKeyboard(lg,
		func(r rune) { p.send.KeyStroke(r) },
		func(cmd string) { p.send.Send(cmd) })
	p.clock = timer.New(time.Second, false, func(_ context.Context, _ uint64) {
		p.UpdateSystemButtons(time.Now())
	}, lg)

	return p
}

func (p *Panel) Keyboard() *system.Keyboard { return p.keyboard }

// Start starts updating the system buttons that show the time.
func (p *Panel) Start() error {
	return p.clock.Start()
}

// Close stops all timers and animations of the panel.
func (p *Panel) Close() {
	p.clock.Stop()

	p.mu.Lock()
	refresh := p.refresh
	p.refresh = make(map[uint32]*timer.ImageRefresh)
	buttons := make([]*button.Button, 0, len(p.buttons))
	for _, b := range p.buttons {
		buttons = append(buttons, b)
	}
	p.mu.Unlock()

	for _, r := range refresh {
		r.Stop()
	}
	for _, b := range buttons {
		b.StopAnimation()
	}
}

// AddPage creates the buttons of pg. The page ID of the button
// definitions is replaced with the ID of the page.
func (p *Panel) AddPage(pg Page) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pages[pg.ID]; ok {
		return fmt.Errorf("%d: %w", pg.ID, ErrDuplicatePage)
	}

	np := &page{Page: pg}
	for _, def := range pg.Buttons {
		def.PageID = pg.ID
		if _, ok := p.buttons[def.Handle()]; ok {
			p.lg.Warnf("%s: button %d on page %d is defined twice", def.Name, def.ID, pg.ID)
			continue
		}

		b := button.New(def, p.env)
		b.SetCallbacks(p.display, p.hide, p.video, p.level)
		if def.ChannelPort != 0 || !p.keyboard.Register(b) {
			b.RegisterPressCallback(p.press)
		}

		p.buttons[def.Handle()] = b
		def.Instances = nil
		p.defs[def.Handle()] = def
		np.buttons = append(np.buttons, b)
	}
	slices.SortStableFunc(np.buttons, func(a, b *button.Button) int {
		return cmp.Compare(a.ZOrder(), b.ZOrder())
	})

	p.pages[pg.ID] = np
	if pg.Name != "" {
		p.byName[pg.Name] = np
	}
	p.lg.Info("added page", slog.Int("id", pg.ID), slog.String("name", pg.Name),
		slog.Bool("popup", pg.Popup), slog.Int("buttons", len(np.buttons)))
	return nil
}

// PageID returns the ID of the page or popup with the given name.
func (p *Panel) PageID(name string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pg, ok := p.byName[name]; ok {
		return pg.ID, true
	}
	return 0, false
}

func (p *Panel) Button(handle uint32) (*button.Button, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.buttons[handle]
	return b, ok
}

// CurrentPage returns the ID of the page that is shown; 0 if there is
// none.
func (p *Panel) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0
	}
	return p.current.ID
}

// ShowPage replaces the current page and closes all popups.
func (p *Panel) ShowPage(id int) error {
	p.mu.Lock()
	pg, ok := p.pages[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%d: %w", id, ErrUnknownPage)
	} else if pg.Popup {
		p.mu.Unlock()
		return fmt.Errorf("%d: %w", id, ErrIsPopup)
	}
	prev, popups := p.current, p.popups
	p.current, p.popups = pg, nil
	p.mu.Unlock()

	var parent uint32
	if prev != nil {
		parent = prev.Handle()
	}
	for _, pp := range slices.Backward(popups) {
		p.hideButtons(pp)
		p.q.Add(queue.DropSubpageEvent{ID: pp.Handle(), Parent: parent})
		p.q.MarkDrop(pp.Handle())
	}
	if prev != nil && prev != pg {
		p.hideButtons(prev)
		p.q.Add(queue.DropPageEvent{ID: prev.Handle()})
		p.q.MarkDrop(prev.Handle())
	}

	p.q.Add(queue.PageEvent{ID: pg.Handle(), Width: pg.Width, Height: pg.Height})
	p.background(pg)
	p.updateSystemButtons(pg.buttons, time.Now())
	for _, b := range pg.buttons {
		b.Show()
	}
	return nil
}

// ShowPopup opens a popup on top of the current page.
func (p *Panel) ShowPopup(id int) error {
	p.mu.Lock()
	pg, ok := p.pages[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%d: %w", id, ErrUnknownPage)
	} else if !pg.Popup {
		p.mu.Unlock()
		return fmt.Errorf("%d: %w", id, ErrNotPopup)
	} else if slices.Contains(p.popups, pg) {
		p.mu.Unlock()
		return nil
	}
	var parent uint32
	if p.current != nil {
		parent = p.current.Handle()
	}
	p.popups = append(p.popups, pg)
	p.mu.Unlock()

	p.q.Add(queue.SubpageEvent{
		ID:       pg.Handle(),
		Parent:   parent,
		Geometry: queue.Geometry{Left: pg.Left, Top: pg.Top, Width: pg.Width, Height: pg.Height},
		Opacity:  pageOpacity(pg.Opacity),
	})
	p.background(pg)
	p.updateSystemButtons(pg.buttons, time.Now())
	for _, b := range pg.buttons {
		b.Show()
	}
	return nil
}

func (p *Panel) HidePopup(id int) error {
	p.mu.Lock()
	pg, ok := p.pages[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%d: %w", id, ErrUnknownPage)
	}
	idx := slices.Index(p.popups, pg)
	if idx < 0 {
		p.mu.Unlock()
		return nil
	}
	p.popups = slices.Delete(p.popups, idx, idx+1)
	var parent uint32
	if p.current != nil {
		parent = p.current.Handle()
	}
	p.mu.Unlock()

	p.hideButtons(pg)
	p.q.Add(queue.DropSubpageEvent{ID: pg.Handle(), Parent: parent})
	p.q.MarkDrop(pg.Handle())
	return nil
}

// hideButtons hides the buttons of pg and removes their pending events;
// dropping the page clears them from the display.
func (p *Panel) hideButtons(pg *page) {
	for _, b := range pg.buttons {
		b.Hide()
		p.q.DropHandle(b.Handle())
	}
}

// scaler is implemented by image sources that can scale their images.
type scaler interface {
	Scaled(name string, w, h int) (image.Image, error)
}

// background queues the fill colour and the bitmap of a page.
func (p *Panel) background(pg *page) {
	if pg.FillColor == "" && pg.Bitmap == "" {
		return
	}

	ev := queue.BackgroundEvent{ID: pg.Handle()}
	if pg.FillColor != "" && p.env.Colors != nil {
		ev.Color = p.env.Colors.AMXColor(pg.FillColor)
	}
	if pg.Bitmap != "" {
		var img image.Image
		var err error
		if sc, ok := p.images.next.(scaler); ok {
			img, err = sc.Scaled(pg.Bitmap, pg.Width, pg.Height)
		} else {
			img, err = p.images.Image(pg.Bitmap)
		}
		if err != nil {
			p.lg.Warnf("%s: page %d: %v", pg.Bitmap, pg.ID, err)
		} else {
			ev.Bitmap = bitmap.FromImage(img)
		}
	}
	p.q.Add(ev)
}

func pageOpacity(o int) int {
	if o <= 0 || o > 255 {
		return 255
	}
	return o
}

func (p *Panel) opacity(parent uint32) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pg, ok := p.pages[int(parent>>16)]; ok {
		return pageOpacity(pg.Opacity)
	}
	return 255
}

func (p *Panel) display(handle, parent uint32, bm *bitmap.Bitmap, left, top int) {
	p.q.Add(queue.ButtonEvent{ID: handle, Parent: parent, Bitmap: bm, Left: left, Top: top})
}

func (p *Panel) hide(handle, parent uint32) {
	p.q.Remove(handle, queue.KindVideo)
	p.q.Add(queue.ButtonEvent{ID: handle, Parent: parent})
}

func (p *Panel) video(handle, parent uint32, left, top, width, height int, v button.VideoSource) {
	p.q.Add(queue.VideoEvent{
		ID:       handle,
		Parent:   parent,
		Geometry: queue.Geometry{Left: left, Top: top, Width: width, Height: height},
		URL:      v.URL,
		User:     v.User,
		Password: v.Password,
	})
}

func (p *Panel) level(port, level, value int) {
	if port == 0 && system.SetLevel(level, value, p.cfg) {
		p.UpdateSystemButtons(time.Now())
		return
	}
	p.send.Send(fmt.Sprintf("LEVEL-%d,%d,%d", port, level, value))
}

func (p *Panel) press(channel int, handle uint32, pressed bool) {
	p.mu.Lock()
	def, ok := p.defs[handle]
	b := p.buttons[handle]
	p.mu.Unlock()
	if !ok {
		return
	}

	if def.ChannelPort == 0 && p.table.IsSystem(system.KindChannel, channel) {
		if pressed {
			if inst, ok := system.Toggle(channel, p.cfg); ok {
				b.SetActive(inst)
				p.UpdateSystemButtons(time.Now())
			}
		}
		return
	}
	if channel == 0 {
		return
	}

	verb := "RELEASE"
	if pressed {
		verb = "PUSH"
	}
	p.send.Send(fmt.Sprintf("%s-%d,%d", verb, def.ChannelPort, channel))
}

// Click delivers a press or release at screen position (x, y) to the
// topmost button there. Popups are above the page; within a page a
// higher z-order wins. It returns whether a button took the event.
func (p *Panel) Click(x, y int, pressed bool) bool {
	p.mu.Lock()
	var layers []*page
	for _, pg := range slices.Backward(p.popups) {
		layers = append(layers, pg)
	}
	if p.current != nil {
		layers = append(layers, p.current)
	}
	p.mu.Unlock()

	handled := false
	for _, pg := range layers {
		lx, ly := x, y
		if pg.Popup {
			lx, ly = x-pg.Left, y-pg.Top
		}
		for _, b := range slices.Backward(pg.buttons) {
			if b.DoClick(lx, ly, pressed) {
				if pressed {
					return true
				}
				handled = true
			}
		}
	}
	return handled
}

// UpdateSystemButtons refreshes the text fields, checkboxes and levels
// of the system buttons on the visible pages.
func (p *Panel) UpdateSystemButtons(now time.Time) {
	p.mu.Lock()
	var buttons []*button.Button
	for _, pg := range p.popups {
		buttons = append(buttons, pg.buttons...)
	}
	if p.current != nil {
		buttons = append(buttons, p.current.buttons...)
	}
	p.mu.Unlock()

	p.updateSystemButtons(buttons, now)
}

func (p *Panel) updateSystemButtons(buttons []*button.Button, now time.Time) {
	for _, b := range buttons {
		p.mu.Lock()
		def := p.defs[b.Handle()]
		p.mu.Unlock()

		if def.AddressPort == 0 && p.table.IsSystem(system.KindAddress, def.AddressChannel) {
			if text, ok := system.FillButtonText(def.AddressChannel, p.cfg, now); ok && text != b.InstanceText(0) {
				b.SetText(0, text)
			}
		}
		if def.ChannelPort == 0 && !system.IsKeyboardChannel(def.Channel) {
			if inst, ok := system.GetButtonInstance(def.Channel, p.cfg); ok && inst < b.StateCount() {
				b.SetActive(inst)
			}
		}
		if def.LevelPort == 0 && def.Level != 0 {
			if v, ok := system.LevelValue(def.Level, p.cfg); ok && v != b.Level() {
				b.SetLevel(v)
			}
		}
	}
}

// SetDynamicImage starts refreshing the bitmap of all instances of a
// button from url. An interval of 0 fetches the image once. A refresh
// already running for the button is replaced.
func (p *Panel) SetDynamicImage(handle uint32, url, user, password string, interval time.Duration,
	f timer.Fetcher) error {
	p.mu.Lock()
	b, ok := p.buttons[handle]
	old := p.refresh[handle]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%#x: %w", handle, ErrUnknownButton)
	}
	if old != nil {
		old.Stop()
	}

	once := interval == 0
	if once {
		interval = time.Millisecond
	}
	name := fmt.Sprintf("dynamic:%x", handle)
	r := timer.NewImageRefresh(url, user, password, interval, once, f, func(img image.Image) {
		p.images.set(name, img)
		b.SetBitmap(0, name)
	}, p.lg)

	p.mu.Lock()
	p.refresh[handle] = r
	p.mu.Unlock()

	return r.Start()
}

// SetText sets the text of instance inst (1-based, 0 for all) of a
// button. Text from the controller is in the code page of the panel.
func (p *Panel) SetText(handle uint32, inst int, text string) error {
	p.mu.Lock()
	b, ok := p.buttons[handle]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%#x: %w", handle, ErrUnknownButton)
	}
	return b.SetText(inst, util.DecodePanelText(text, p.codepage()))
}

func (p *Panel) codepage() string {
	if c, ok := p.cfg.(interface{ Codepage() string }); ok {
		return c.Codepage()
	}
	return ""
}

// dynamicImages serves images fetched at runtime before falling back to
// the panel's image files.
type dynamicImages struct {
	mu     sync.Mutex
	next   button.ImageSource
	images map[string]image.Image
}

func (d *dynamicImages) set(name string, img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images[name] = img
}

func (d *dynamicImages) Image(name string) (image.Image, error) {
	d.mu.Lock()
	img, ok := d.images[name]
	d.mu.Unlock()
	if ok {
		return img, nil
	}
	if d.next == nil {
		return nil, fmt.Errorf("%s: no image source", name)
	}
	return d.next.Image(name)
}
