// button/button.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package button implements the state and rendering of a single panel
// button: its instances, the composition of an instance into a bitmap,
// bargraph and joystick levels, animation and click handling.
package button

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/brunoga/deep"
	"golang.org/x/image/font"

	"github.com/tpanel/tpanel/bitmap"
	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/log"
)

var (
	ErrInvalidInstance = errors.New("Invalid button instance")
	ErrNoInstances     = errors.New("Button has no instances")
	ErrNotBargraph     = errors.New("Button is not a bargraph")
	ErrEmptySize       = errors.New("Button has zero width or height")
)

// ImageSource provides the images a button refers to by name.
type ImageSource interface {
	Image(name string) (image.Image, error)
}

// FontSource provides font faces by the font index of a panel file.
type FontSource interface {
	Face(index int, size float64) font.Face
}

// VideoSource is set on instances that show a video stream instead of
// a composed bitmap.
type VideoSource struct {
	URL      string `json:"url"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// Definition is the declarative description of a button as read from a
// page file.
type Definition struct {
	PageID   int      `json:"page_id"`
	ID       int      `json:"id"`
	Type     Type     `json:"type"`
	Name     string   `json:"name"`
	Left     int      `json:"left"`
	Top      int      `json:"top"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	ZOrder   int      `json:"zorder"`
	Feedback Feedback `json:"feedback"`

	// DrawOrder is a string of five two-digit layer codes, see
	// ParseDrawOrder.
	DrawOrder string `json:"draw_order,omitempty"`

	RangeLow   int  `json:"range_low"`
	RangeHigh  int  `json:"range_high"`
	Inverted   bool `json:"inverted,omitempty"`
	Horizontal bool `json:"horizontal,omitempty"`

	// Animation step times, from the first to the last instance and
	// back.
	AnimateUp   time.Duration `json:"animate_up,omitempty"`
	AnimateDown time.Duration `json:"animate_down,omitempty"`

	AddressPort    int `json:"address_port,omitempty"`
	AddressChannel int `json:"address_channel,omitempty"`
	ChannelPort    int `json:"channel_port,omitempty"`
	Channel        int `json:"channel,omitempty"`
	LevelPort      int `json:"level_port,omitempty"`
	Level          int `json:"level,omitempty"`

	Instances []Instance `json:"instances"`
}

// Handle returns the handle of the button: the page number in the upper
// 16 bits and the button number in the lower ones.
func (d *Definition) Handle() uint32 { return uint32(d.PageID)<<16 | uint32(d.ID)&0xffff }

// Parent is the handle of the page the button is on.
func (d *Definition) Parent() uint32 { return uint32(d.PageID) << 16 }

// Env holds the services a button draws with. It is usually shared by all
// buttons of a panel.
type Env struct {
	Colors *colors.Resolver
	Images ImageSource
	Fonts  FontSource
	Cache  *BitmapCache

	// Opacity returns the opacity inherited from the page and the panel;
	// nil means fully opaque.
	Opacity func(parent uint32) int

	Lg *log.Logger
}

type (
	DisplayFunc func(handle, parent uint32, bm *bitmap.Bitmap, left, top int)
	HideFunc    func(handle, parent uint32)
	VideoFunc   func(handle, parent uint32, left, top, width, height int, v VideoSource)
	LevelFunc   func(port, level, value int)

	// PressFunc is an alias so that callers can declare interfaces
	// without importing this package.
	PressFunc = func(channel int, handle uint32, pressed bool)
)

type Button struct {
	mu sync.Mutex

	def       Definition
	drawOrder [5]Layer
	states    *States
	original  []Instance

	visible bool
	active  int
	pressed bool
	last    *bitmap.Bitmap // last composed bitmap, for hit testing

	env *Env
	lg  *log.Logger

	display DisplayFunc
	hide    HideFunc
	video   VideoFunc
	level   LevelFunc
	press   []PressFunc

	anim animation
}

// New creates a button from its definition. A button without instances
// gets one empty instance.
func New(def Definition, env *Env) *Button {
	if env == nil {
		env = &Env{}
	}
	if len(def.Instances) == 0 {
		def.Instances = []Instance{MakeInstance(1)}
	}

	b := &Button{
		def:    def,
		states: NewStates(def.Type, def.AddressPort, def.AddressChannel, def.Channel, def.ChannelPort, def.LevelPort, def.Level),
		env:    env,
		lg:     env.Lg.With("button", def.Name, "handle", def.Handle()),
	}

	var ok bool
	if b.drawOrder, ok = ParseDrawOrder(def.DrawOrder); !ok && def.DrawOrder != "" {
		b.lg.Warnf("%s: invalid draw order, using default", def.DrawOrder)
	}
	b.original = deep.MustCopy(def.Instances)
	b.states.LastLevel = def.RangeLow

	if def.Feedback == FeedbackAlwaysOn && len(def.Instances) > 1 {
		b.active = 1
	}
	return b
}

func (b *Button) Handle() uint32 { return b.def.Handle() }
func (b *Button) Parent() uint32 { return b.def.Parent() }
func (b *Button) Name() string   { return b.def.Name }
func (b *Button) Channel() int   { return b.def.Channel }
func (b *Button) Port() int      { return b.def.ChannelPort }
func (b *Button) Type() Type     { return b.def.Type }
func (b *Button) ZOrder() int    { return b.def.ZOrder }

// States returns a copy of the button's identity and level state.
func (b *Button) States() States {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states.Snapshot()
}

// Bounds returns the button's rectangle in page coordinates.
func (b *Button) Bounds() image.Rectangle {
	return image.Rect(b.def.Left, b.def.Top, b.def.Left+b.def.Width, b.def.Top+b.def.Height)
}

// SetCallbacks registers the functions the button hands its output to.
// Any of them may be nil.
func (b *Button) SetCallbacks(display DisplayFunc, hide HideFunc, video VideoFunc, level LevelFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.display, b.hide, b.video, b.level = display, hide, video, level
}

// RegisterPressCallback adds a function that is called whenever the
// button is pressed or released.
func (b *Button) RegisterPressCallback(f PressFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.press = append(b.press, f)
}

///////////////////////////////////////////////////////////////////////////
// Instances

func (b *Button) StateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.def.Instances)
}

func (b *Button) ActiveInstance() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Instance returns a copy of instance inst (0-based).
func (b *Button) Instance(inst int) (Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if inst < 0 || inst >= len(b.def.Instances) {
		return Instance{}, ErrInvalidInstance
	}
	return b.def.Instances[inst], nil
}

// InstanceText returns the text of instance inst or "" if there is no
// such instance.
func (b *Button) InstanceText(inst int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if inst < 0 || inst >= len(b.def.Instances) {
		return ""
	}
	return b.def.Instances[inst].Text
}

// AddInstance appends an instance and returns its index.
func (b *Button) AddInstance(in Instance) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.def.Instances = append(b.def.Instances, in)
	n := len(b.def.Instances) - 1
	b.def.Instances[n].Number = n + 1
	return n
}

// RemoveInstance deletes instance inst. The last instance of a button
// can not be removed.
func (b *Button) RemoveInstance(inst int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if inst < 0 || inst >= len(b.def.Instances) {
		return ErrInvalidInstance
	} else if len(b.def.Instances) == 1 {
		return ErrNoInstances
	}

	b.def.Instances = append(b.def.Instances[:inst], b.def.Instances[inst+1:]...)
	for i := range b.def.Instances {
		b.def.Instances[i].Number = i + 1
	}
	if b.active >= len(b.def.Instances) {
		b.active = len(b.def.Instances) - 1
	}
	b.invalidateLocked()
	return nil
}

// Restore resets the instances to those the button was created with,
// undoing all text, colour and bitmap changes.
func (b *Button) Restore() {
	b.mu.Lock()
	b.def.Instances = deep.MustCopy(b.original)
	if b.active >= len(b.def.Instances) {
		b.active = 0
	}
	b.invalidateLocked()
	visible := b.visible
	b.mu.Unlock()

	if visible {
		b.Draw()
	}
}

// modify applies f to instance inst, or to all instances if inst is 0;
// inst counts from 1 as in panel commands. The button is redrawn if it
// is visible and its active instance changed.
func (b *Button) modify(inst int, f func(*Instance)) error {
	b.mu.Lock()
	if inst < 0 || inst > len(b.def.Instances) {
		b.mu.Unlock()
		b.lg.Warnf("%d: invalid instance for button with %d instances", inst, len(b.def.Instances))
		return ErrInvalidInstance
	}

	redraw := b.visible
	if inst == 0 {
		for i := range b.def.Instances {
			f(&b.def.Instances[i])
		}
		b.invalidateLocked()
	} else {
		f(&b.def.Instances[inst-1])
		b.env.Cache.Invalidate(CacheKey{Handle: b.Handle(), Parent: b.Parent(), Instance: inst - 1})
		redraw = redraw && inst-1 == b.active
	}
	b.mu.Unlock()

	if redraw {
		b.Draw()
	}
	return nil
}

func (b *Button) SetText(inst int, text string) error {
	return b.modify(inst, func(in *Instance) { in.Text = text })
}

func (b *Button) SetFillColor(inst int, c string) error {
	return b.modify(inst, func(in *Instance) { in.FillColor = c })
}

func (b *Button) SetBorderColor(inst int, c string) error {
	return b.modify(inst, func(in *Instance) { in.BorderColor = c })
}

func (b *Button) SetTextColor(inst int, c string) error {
	return b.modify(inst, func(in *Instance) { in.TextColor = c })
}

func (b *Button) SetBorderStyle(inst int, style string) error {
	if _, ok := parseBorder(style); !ok {
		b.lg.Warnf("%s: unknown border style", style)
	}
	return b.modify(inst, func(in *Instance) { in.BorderStyle = style })
}

func (b *Button) SetBitmap(inst int, name string) error {
	return b.modify(inst, func(in *Instance) { in.Bitmap = name })
}

func (b *Button) SetIcon(inst int, name string) error {
	return b.modify(inst, func(in *Instance) { in.Icon = name })
}

func (b *Button) SetOpacity(inst int, opacity int) error {
	return b.modify(inst, func(in *Instance) { in.Opacity = opacity })
}

func (b *Button) SetTextEffect(inst int, e Effect) error {
	return b.modify(inst, func(in *Instance) { in.TextEffect = e })
}

func (b *Button) SetWordWrap(inst int, wrap bool) error {
	return b.modify(inst, func(in *Instance) { in.WordWrap = wrap })
}

///////////////////////////////////////////////////////////////////////////
// Visibility

func (b *Button) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// SetActive makes instance inst (0-based) the one that is displayed.
func (b *Button) SetActive(inst int) error {
	b.mu.Lock()
	if inst < 0 || inst >= len(b.def.Instances) {
		b.mu.Unlock()
		return ErrInvalidInstance
	}
	changed := b.active != inst
	b.active = inst
	visible := b.visible
	b.mu.Unlock()

	if changed && visible {
		b.Draw()
	}
	return nil
}

// Show makes the button visible and displays its active instance. A
// cached bitmap of the instance is displayed without composing it again.
func (b *Button) Show() {
	b.mu.Lock()
	b.visible = true
	if b.def.Type == MultistateBargraph {
		// The level may have changed while the button was hidden.
		b.active = b.multistateIndexLocked(b.states.LastLevel)
	}
	key := b.cacheKeyLocked()
	b.mu.Unlock()

	if e, ok := b.env.Cache.Get(key); ok && e.Ready {
		b.env.Cache.SetShow(key, true)
		b.mu.Lock()
		b.last = e.Bitmap
		display := b.display
		b.mu.Unlock()
		if display != nil {
			display(b.Handle(), b.Parent(), e.Bitmap, b.def.Left, b.def.Top)
		}
		return
	}
	b.Draw()
}

func (b *Button) Hide() {
	b.StopAnimation()

	b.mu.Lock()
	wasVisible := b.visible
	b.visible = false
	b.pressed = false
	hide := b.hide
	key := b.cacheKeyLocked()
	b.mu.Unlock()

	b.env.Cache.SetShow(key, false)
	if wasVisible && hide != nil {
		hide(b.Handle(), b.Parent())
	}
}

func (b *Button) cacheKeyLocked() CacheKey {
	return CacheKey{Handle: b.Handle(), Parent: b.Parent(), Instance: b.active}
}

func (b *Button) invalidateLocked() {
	b.env.Cache.InvalidateButton(b.Handle(), b.Parent())
}

// Draw composes the active instance and hands it to the display
// callback. Instances with a video source are passed to the video
// callback instead.
func (b *Button) Draw() error {
	b.mu.Lock()
	if b.def.Width <= 0 || b.def.Height <= 0 {
		b.mu.Unlock()
		return ErrEmptySize
	}

	var img *image.RGBA
	var err error
	switch b.def.Type {
	case Bargraph:
		img, err = b.composeBargraphLocked(b.states.LastLevel)
	case MultistateBargraph:
		b.active = b.multistateIndexLocked(b.states.LastLevel)
		img, err = b.composeLocked(b.active)
	case Joystick:
		img, err = b.composeJoystickLocked(b.states.LastJoyX, b.states.LastJoyY)
	default:
		if v := b.def.Instances[b.active].Video; v != nil {
			f := b.video
			d := b.def
			b.mu.Unlock()
			if f != nil {
				f(d.Handle(), d.Parent(), d.Left, d.Top, d.Width, d.Height, *v)
			}
			return nil
		}
		img, err = b.composeLocked(b.active)
	}
	if err != nil {
		b.mu.Unlock()
		return err
	}

	bm := bitmap.FromImage(img)
	bm.SetLogger(b.lg)
	b.last = bm
	key := b.cacheKeyLocked()
	visible := b.visible
	display := b.display
	b.mu.Unlock()

	// Level-driven bitmaps change with every level, so only plain
	// instances are worth caching.
	if b.def.Type != Bargraph && b.def.Type != Joystick {
		b.env.Cache.Put(key, bm, visible)
	}
	if visible && display != nil {
		display(b.Handle(), b.Parent(), bm, b.def.Left, b.def.Top)
	}
	return nil
}

