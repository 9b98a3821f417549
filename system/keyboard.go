// system/keyboard.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package system

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tpanel/tpanel/log"
)

// Channels of the virtual keyboard and keypad buttons.
const (
	KeyKey       = 200 // literal key; the glyph is the instance text
	KeyShift     = 201
	KeyCapsLock  = 202
	KeyBank3     = 203 // special characters
	KeyBackspace = 204
	KeyClear     = 205
	KeyCancel    = 206
	KeyEnter     = 207
	KeySpace     = 208
	KeySubmit    = 209
)

// KeyButton is the part of a button the keyboard works with.
type KeyButton interface {
	Handle() uint32
	Channel() int
	Port() int
	Name() string
	InstanceText(inst int) string
	StateCount() int
	SetActive(inst int) error
	RegisterPressCallback(f func(channel int, handle uint32, pressed bool))
}

// Keyboard drives the buttons of a virtual keyboard or keypad. Each key
// button has up to three banks of two instances, one for the key at rest
// and one while it is pressed: bank 1 is unshifted, bank 2 shifted or
// caps-locked and bank 3 the special characters.
//
// Text typed on the keyboard is collected in an input buffer; single
// keystrokes are passed to sendKeyStroke and commands such as enter or
// backspace to sendKeyboard.
type Keyboard struct {
	mu sync.Mutex
	lg *log.Logger

	keys []KeyButton

	shift    bool
	capsLock bool
	bank3    bool
	bank     int
	// active is the instance offset of the modifier keys.
	active int

	input strings.Builder
	// fullKeyboard is set once shift or caps lock keys are registered;
	// keypads have neither.
	fullKeyboard bool

	sendKeyStroke func(r rune)
	sendKeyboard  func(cmd string)
}

func NewKeyboard(lg *log.Logger, sendKeyStroke func(rune), sendKeyboard func(string)) *Keyboard {
	if sendKeyStroke == nil {
		sendKeyStroke = func(rune) {}
	}
	if sendKeyboard == nil {
		sendKeyboard = func(string) {}
	}
	return &Keyboard{
		lg:            lg,
		bank:          1,
		sendKeyStroke: sendKeyStroke,
		sendKeyboard:  sendKeyboard,
	}
}

// IsKeyboardChannel reports whether channel belongs to a keyboard key,
// either a bank key or a dedicated hardware key.
func IsKeyboardChannel(channel int) bool {
	return (channel >= KeyKey && channel <= KeySubmit) || isDedicatedKey(channel)
}

// Register adds a button to the keyboard and installs the keyboard's
// press callback on it. Buttons on other channels are ignored and a
// button with the same channel, port and name as one that is already
// registered is rejected; false is returned in both cases.
func (k *Keyboard) Register(b KeyButton) bool {
	if !IsKeyboardChannel(b.Channel()) {
		return false
	}

	k.mu.Lock()
	for _, kb := range k.keys {
		if kb.Channel() == b.Channel() && kb.Port() == b.Port() && kb.Name() == b.Name() {
			k.mu.Unlock()
			k.lg.Warnf("%s: keyboard button on channel %d, port %d already registered", b.Name(), b.Channel(), b.Port())
			return false
		}
	}
	k.keys = append(k.keys, b)
	if b.Channel() == KeyShift || b.Channel() == KeyCapsLock {
		k.fullKeyboard = true
	}
	k.mu.Unlock()

	b.RegisterPressCallback(k.Press)
	return true
}

func (k *Keyboard) Bank() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.bank
}

func (k *Keyboard) Shift() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.shift
}

func (k *Keyboard) CapsLock() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.capsLock
}

func (k *Keyboard) Bank3() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.bank3
}

// ActiveState returns the instance the modifier keys currently show.
func (k *Keyboard) ActiveState() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active
}

// Input returns the text typed since the last enter, submit, clear or
// cancel.
func (k *Keyboard) Input() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.input.String()
}

func (k *Keyboard) prefix() string {
	if k.fullKeyboard {
		return "KEYB-"
	}
	return "KEYP-"
}

// updateBankLocked derives the bank from the modifiers.
func (k *Keyboard) updateBankLocked() {
	switch {
	case k.bank3:
		k.bank = 3
	case k.shift || k.capsLock:
		k.bank = 2
	default:
		k.bank = 1
	}
}

// Press handles a press or release of one of the keyboard's buttons. It
// is installed as the press callback of every registered button.
func (k *Keyboard) Press(channel int, handle uint32, pressed bool) {
	if isDedicatedKey(channel) {
		k.HandleDedicatedKeys(channel, pressed)
		return
	}

	k.mu.Lock()
	key := k.findLocked(handle)
	if key == nil {
		k.mu.Unlock()
		k.lg.Debugf("%#x: press from unregistered keyboard button", handle)
		return
	}

	var strokes []rune
	var cmds []string
	highlight := uint32(0)
	if pressed {
		highlight = handle
	}

	switch channel {
	case KeyShift, KeyCapsLock, KeyBank3:
		if pressed {
			k.toggleModifierLocked(channel)
			k.active = (k.bank-1)*2 + 1
		} else {
			k.active = (k.bank - 1) * 2
		}

	case KeyKey:
		if pressed {
			k.updateBankLocked()
			glyph := key.InstanceText((k.bank - 1) * 2)
			k.input.WriteString(glyph)
			strokes = []rune(glyph)

			// Shift and the special characters apply to a single key;
			// caps lock stays until it is pressed again.
			k.shift, k.bank3 = false, false
			k.updateBankLocked()
			k.active = (k.bank - 1) * 2
		}

	case KeyBackspace, KeyClear, KeyCancel, KeyEnter, KeySpace, KeySubmit:
		if pressed {
			strokes, cmds = k.controlKeyLocked(channel)
			k.shift, k.bank3 = false, false
			k.updateBankLocked()
			k.active = (k.bank - 1) * 2
		}

	default:
		k.mu.Unlock()
		return
	}

	updates := k.bankUpdatesLocked(k.bank, highlight)
	k.mu.Unlock()

	applyUpdates(k.lg, updates)
	for _, r := range strokes {
		k.sendKeyStroke(r)
	}
	for _, c := range cmds {
		k.sendKeyboard(c)
	}
}

func (k *Keyboard) findLocked(handle uint32) KeyButton {
	for _, b := range k.keys {
		if b.Handle() == handle {
			return b
		}
	}
	return nil
}

// toggleModifierLocked toggles one of the modifiers and clears the
// others.
func (k *Keyboard) toggleModifierLocked(channel int) {
	switch channel {
	case KeyShift:
		k.shift, k.capsLock, k.bank3 = !k.shift, false, false
	case KeyCapsLock:
		k.shift, k.capsLock, k.bank3 = false, !k.capsLock, false
	case KeyBank3:
		k.shift, k.capsLock, k.bank3 = false, false, !k.bank3
	}
	k.updateBankLocked()
}

// controlKeyLocked edits the input buffer for a control key and returns
// what has to be sent for it.
func (k *Keyboard) controlKeyLocked(channel int) (strokes []rune, cmds []string) {
	p := k.prefix()
	switch channel {
	case KeyBackspace:
		s := k.input.String()
		if _, n := utf8.DecodeLastRuneInString(s); n > 0 {
			k.input.Reset()
			k.input.WriteString(s[:len(s)-n])
		}
		cmds = []string{p + "BACKSPACE"}
	case KeyClear:
		k.input.Reset()
		cmds = []string{p + "CLEAR"}
	case KeyCancel:
		k.input.Reset()
		cmds = []string{p + "ABORT"}
	case KeySpace:
		k.input.WriteByte(' ')
		strokes = []rune{' '}
		cmds = []string{p + "SPACE"}
	case KeyEnter, KeySubmit:
		cmds = []string{p + k.input.String()}
		k.input.Reset()
	}
	return
}

type bankUpdate struct {
	button KeyButton
	inst   int
}

// SetKeysToBank shows bank on all registered keys. The key with handle
// highlight shows its pressed instance, as do the active modifier keys.
func (k *Keyboard) SetKeysToBank(bank int, highlight uint32) {
	k.mu.Lock()
	updates := k.bankUpdatesLocked(bank, highlight)
	k.mu.Unlock()
	applyUpdates(k.lg, updates)
}

func (k *Keyboard) bankUpdatesLocked(bank int, highlight uint32) []bankUpdate {
	if bank < 1 || bank > 3 {
		k.lg.Warnf("%d: invalid keyboard bank", bank)
		return nil
	}

	var updates []bankUpdate
	for _, b := range k.keys {
		if isDedicatedKey(b.Channel()) {
			continue
		}
		inst := (bank - 1) * 2
		switch {
		case highlight != 0 && b.Handle() == highlight:
			inst++
		case k.capsLock && b.Channel() == KeyCapsLock,
			k.shift && b.Channel() == KeyShift,
			k.bank3 && b.Channel() == KeyBank3:
			inst++
		}

		// Keys with fewer instances, like a keypad's, fall back to
		// their first bank.
		if n := b.StateCount(); inst >= n {
			inst %= 2
			if inst >= n {
				inst = 0
			}
		}
		updates = append(updates, bankUpdate{button: b, inst: inst})
	}
	return updates
}

func applyUpdates(lg *log.Logger, updates []bankUpdate) {
	for _, u := range updates {
		if err := u.button.SetActive(u.inst); err != nil {
			lg.Warnf("%s: %v", u.button.Name(), err)
		}
	}
}
