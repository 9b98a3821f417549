// system/dedicated.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package system

import (
	"strings"
	"unicode"
)

// Dedicated keys emulate a hardware keyboard: every key has a channel of
// its own instead of taking its glyph from the active bank.
const (
	DedicatedFirst = 501

	dedicatedLetters = 501 // a-z: 501-526
	dedicatedDigits  = 527 // 1-9, 0: 527-536
	dedicatedPunct   = 537 // 537-548

	DedicatedShift     = 601
	DedicatedCapsLock  = 602
	DedicatedBackspace = 603
	DedicatedEnter     = 604
	DedicatedTab       = 605
	DedicatedEscape    = 606
	DedicatedDelete    = 607
	DedicatedLeft      = 608
	DedicatedRight     = 609
	DedicatedUp        = 610
	DedicatedDown      = 611

	DedicatedLast = 611
)

const (
	digits        = "1234567890"
	shiftedDigits = "!@#$%^&*()"
	punct         = "-=[]\\;',./` "
	shiftedPunct  = "_+{}|:\"<>?~ "
)

// dedicatedCommands are the dedicated keys that are sent as commands.
var dedicatedCommands = map[int]string{
	DedicatedTab:    "TAB",
	DedicatedDelete: "DELETE",
	DedicatedLeft:   "LEFT",
	DedicatedRight:  "RIGHT",
	DedicatedUp:     "UP",
	DedicatedDown:   "DOWN",
}

func isDedicatedKey(channel int) bool {
	switch {
	case channel >= dedicatedLetters && channel < dedicatedPunct+len(punct):
		return true
	case channel >= DedicatedShift && channel <= DedicatedLast:
		return true
	default:
		return false
	}
}

// dedicatedRune returns the character of a dedicated character key.
// Letters are upper case if exactly one of shift and caps lock is active,
// digits and punctuation only follow shift.
func dedicatedRune(channel int, shift, capsLock bool) (rune, bool) {
	switch {
	case channel >= dedicatedLetters && channel < dedicatedDigits:
		r := rune('a' + channel - dedicatedLetters)
		if shift != capsLock {
			r = unicode.ToUpper(r)
		}
		return r, true
	case channel >= dedicatedDigits && channel < dedicatedPunct:
		s := digits
		if shift {
			s = shiftedDigits
		}
		return rune(s[channel-dedicatedDigits]), true
	case channel >= dedicatedPunct && channel < dedicatedPunct+len(punct):
		s := punct
		if shift {
			s = shiftedPunct
		}
		return rune(s[channel-dedicatedPunct]), true
	default:
		return 0, false
	}
}

// HandleDedicatedKeys handles a press of a dedicated key and returns what
// was sent for it: the character for character keys or the command.
// Releases and unknown channels are ignored.
func (k *Keyboard) HandleDedicatedKeys(channel int, pressed bool) string {
	if !pressed || !isDedicatedKey(channel) {
		return ""
	}

	k.mu.Lock()
	var stroke rune
	var cmd string

	switch channel {
	case DedicatedShift:
		k.toggleModifierLocked(KeyShift)
	case DedicatedCapsLock:
		k.toggleModifierLocked(KeyCapsLock)
	case DedicatedBackspace:
		_, cmds := k.controlKeyLocked(KeyBackspace)
		cmd = cmds[0]
	case DedicatedEnter:
		_, cmds := k.controlKeyLocked(KeyEnter)
		cmd = cmds[0]
	case DedicatedEscape:
		_, cmds := k.controlKeyLocked(KeyCancel)
		cmd = cmds[0]
	default:
		if c, ok := dedicatedCommands[channel]; ok {
			cmd = k.prefix() + c
		} else if r, ok := dedicatedRune(channel, k.shift, k.capsLock); ok {
			stroke = r
			k.input.WriteRune(r)
			k.shift = false
			k.updateBankLocked()
		}
	}
	k.mu.Unlock()

	switch {
	case stroke != 0:
		k.sendKeyStroke(stroke)
		return string(stroke)
	case cmd != "":
		k.sendKeyboard(cmd)
		return cmd
	default:
		return ""
	}
}

// TypeRune enters r as it arrived from a hardware keyboard. The host has
// already applied its own shift and caps lock, so the panel's modifiers do
// not change r; a pending shift is consumed as with a character key.
// Characters no dedicated key can produce are ignored.
func (k *Keyboard) TypeRune(r rune) string {
	if !typeable(r) {
		return ""
	}

	k.mu.Lock()
	k.input.WriteRune(r)
	k.shift = false
	k.updateBankLocked()
	k.mu.Unlock()

	k.sendKeyStroke(r)
	return string(r)
}

func typeable(r rune) bool {
	if r >= 'A' && r <= 'Z' {
		return true
	}
	if _, ok := DedicatedChannel(r); ok {
		return true
	}
	return strings.ContainsRune(shiftedDigits+shiftedPunct, r)
}

// DedicatedChannel returns the channel of the dedicated key that produces
// r without shift: a lower case letter, a digit or a punctuation
// character.
func DedicatedChannel(r rune) (int, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return dedicatedLetters + int(r-'a'), true
	case r >= '0' && r <= '9':
		return dedicatedDigits + strings.IndexRune(digits, r), true
	default:
		if i := strings.IndexRune(punct, r); i >= 0 {
			return dedicatedPunct + i, true
		}
		return 0, false
	}
}
