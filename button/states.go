// button/states.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"encoding/binary"
	"hash/crc32"
)

type Type int

const (
	General Type = iota
	MultistateGeneral
	Bargraph
	MultistateBargraph
	Joystick
	TextInput
	ComputerControl
	TakeNote
	SubpageView
	Listbox
)

func (t Type) String() string {
	switch t {
	case General:
		return "general"
	case MultistateGeneral:
		return "multi-state general"
	case Bargraph:
		return "bargraph"
	case MultistateBargraph:
		return "multi-state bargraph"
	case Joystick:
		return "joystick"
	case TextInput:
		return "text input"
	case ComputerControl:
		return "computer control"
	case TakeNote:
		return "take note"
	case SubpageView:
		return "sub-page view"
	case Listbox:
		return "listbox"
	default:
		return "unknown"
	}
}

// States identifies a button by the ports and channels it is addressed
// with. The ID is a checksum over the subset of fields that matter for the
// button's type, so a button whose addressing was changed at runtime can
// be found again and restored.
//
// The remaining exported fields are scratch values that remember what was
// last drawn or sent so redundant updates can be skipped.
type States struct {
	typ         Type
	addrPort    int
	addrChannel int
	channel     int
	channelPort int
	levelPort   int
	levelValue  int
	id          uint32

	LastLevel      int
	LastJoyX       int
	LastJoyY       int
	LastSendLevelX int
	LastSendLevelY int
}

func NewStates(t Type, addrPort, addrChannel, channel, channelPort, levelPort, levelValue int) *States {
	s := &States{
		typ:            t,
		addrPort:       addrPort,
		addrChannel:    addrChannel,
		channel:        channel,
		channelPort:    channelPort,
		levelPort:      levelPort,
		levelValue:     levelValue,
		LastSendLevelX: -1,
		LastSendLevelY: -1,
	}
	s.id = checksum(t, addrPort, addrChannel, channel, channelPort, levelPort, levelValue)
	return s
}

func (s *States) ID() uint32 { return s.id }
func (s *States) Type() Type { return s.typ }

// checksum hashes the fields relevant for t. Bargraphs and joysticks are
// only identified by their level; text, list and sub-page view buttons by
// their address and channel; multi-state bargraphs by channel and level;
// everything else by all of them.
func checksum(t Type, addrPort, addrChannel, channel, channelPort, levelPort, levelValue int) uint32 {
	var fields []int
	switch t {
	case Bargraph, Joystick:
		fields = []int{levelPort, levelValue}
	case MultistateBargraph:
		fields = []int{channelPort, channel, levelPort, levelValue}
	case TextInput, Listbox, SubpageView:
		fields = []int{addrPort, addrChannel, channelPort, channel}
	default:
		fields = []int{addrPort, addrChannel, channelPort, channel, levelPort, levelValue}
	}

	buf := make([]byte, 0, 4*len(fields))
	for _, f := range fields {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(f))
	}
	return crc32.ChecksumIEEE(buf)
}

// IsButtonID reports whether the state has the given ID, regardless of
// the button type.
func (s *States) IsButtonID(id uint32) bool {
	return s.id == id
}

func (s *States) IsButtonType(t Type, id uint32) bool {
	return s.typ == t && s.id == id
}

// IsButton compares against the full set of addressing parameters.
func (s *States) IsButton(t Type, addrPort, addrChannel, channel, channelPort, levelPort, levelValue int) bool {
	return s.typ == t && s.addrPort == addrPort && s.addrChannel == addrChannel &&
		s.channel == channel && s.channelPort == channelPort &&
		s.levelPort == levelPort && s.levelValue == levelValue
}

// Same reports whether two states describe the same button.
func (s *States) Same(o *States) bool {
	return o != nil && s.typ == o.typ && s.id == o.id
}

// Snapshot returns a copy of the state, including the scratch values.
func (s *States) Snapshot() States {
	return *s
}
