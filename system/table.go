// system/table.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package system implements the panel's built-in "system" buttons: the
// fixed channels, levels and text addresses of the setup pages, and the
// virtual keyboard and keypad.
package system

import (
	"fmt"

	"github.com/tpanel/tpanel/util"
)

// Kind is the kind of number a system button is addressed by.
type Kind int

const (
	KindChannel Kind = iota
	KindLevel
	KindAddress
)

func (k Kind) String() string {
	names := [...]string{"channel", "level", "address"}
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

type Category int

const (
	Checkbox Category = iota
	PushButton
	TextField
	Function
	Slider
	Combobox
)

func (c Category) String() string {
	names := [...]string{"checkbox", "push button", "text field", "function", "slider", "combobox"}
	if c < 0 || int(c) >= len(names) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return names[c]
}

type Entry struct {
	Number   int
	Kind     Kind
	Category Category
	States   int
	Low      int
	High     int
	Name     string
}

// Levels
const (
	LevelVolume  = 1
	LevelGain    = 2
	LevelBattery = 242
)

// Channels
const (
	ChannelBatteryCharging = 234

	ChannelLogInfo       = 1101
	ChannelLogWarning    = 1102
	ChannelLogError      = 1103
	ChannelLogTrace      = 1104
	ChannelLogDebug      = 1105
	ChannelLogProtocol   = 1106
	ChannelLogAll        = 1107
	ChannelLogProfiling  = 1108
	ChannelLogLongFormat = 1109

	ChannelSIPEnable = 1131
	ChannelSIPIPv4   = 1132
	ChannelSIPIPv6   = 1133
	ChannelSIPIPhone = 1134
)

// Text addresses
const (
	AddressTimeStandard = 141
	AddressTimeAMPM     = 142
	AddressTime24       = 143

	AddressDateWeekday  = 151
	AddressDateMMDD     = 152
	AddressDateDDMM     = 153
	AddressDateMMDDYYYY = 154
	AddressDateDDMMYYYY = 155
	AddressDateMonthDay = 156
	AddressDateDayMonth = 157
	AddressDateYYYYMMDD = 158

	AddressPanelType     = 1010
	AddressFirmware      = 1011
	AddressController    = 1012
	AddressPort          = 1013
	AddressDeviceChannel = 1014
	AddressPanelName     = 1015
	AddressSystemNumber  = 1016

	AddressSIPProxy    = 1041
	AddressSIPPort     = 1042
	AddressSIPTLSPort  = 1043
	AddressSIPStun     = 1044
	AddressSIPDomain   = 1045
	AddressSIPUser     = 1046
	AddressSIPPassword = 1047

	AddressLogFile = 1050
)

var defaultEntries = []Entry{
	{LevelVolume, KindLevel, Slider, 1, 0, 100, "Volume"},
	{LevelGain, KindLevel, Slider, 1, 0, 100, "Microphone gain"},
	{LevelBattery, KindLevel, Slider, 1, 0, 100, "Battery level"},

	{ChannelBatteryCharging, KindChannel, Checkbox, 2, 0, 0, "Battery charging"},

	{AddressTimeStandard, KindAddress, TextField, 1, 0, 0, "Time (standard)"},
	{AddressTimeAMPM, KindAddress, TextField, 1, 0, 0, "Time (AM/PM)"},
	{AddressTime24, KindAddress, TextField, 1, 0, 0, "Time (24 hour)"},
	{AddressDateWeekday, KindAddress, TextField, 1, 0, 0, "Date (weekday)"},
	{AddressDateMMDD, KindAddress, TextField, 1, 0, 0, "Date (mm/dd)"},
	{AddressDateDDMM, KindAddress, TextField, 1, 0, 0, "Date (dd/mm)"},
	{AddressDateMMDDYYYY, KindAddress, TextField, 1, 0, 0, "Date (mm/dd/yyyy)"},
	{AddressDateDDMMYYYY, KindAddress, TextField, 1, 0, 0, "Date (dd/mm/yyyy)"},
	{AddressDateMonthDay, KindAddress, TextField, 1, 0, 0, "Date (month day, year)"},
	{AddressDateDayMonth, KindAddress, TextField, 1, 0, 0, "Date (day month year)"},
	{AddressDateYYYYMMDD, KindAddress, TextField, 1, 0, 0, "Date (yyyy-mm-dd)"},

	{AddressPanelType, KindAddress, TextField, 1, 0, 0, "Panel type"},
	{AddressFirmware, KindAddress, TextField, 1, 0, 0, "Firmware version"},
	{AddressController, KindAddress, TextField, 1, 0, 0, "Controller"},
	{AddressPort, KindAddress, TextField, 1, 0, 0, "Controller port"},
	{AddressDeviceChannel, KindAddress, TextField, 1, 0, 0, "Device number"},
	{AddressPanelName, KindAddress, TextField, 1, 0, 0, "Panel name"},
	{AddressSystemNumber, KindAddress, TextField, 1, 0, 0, "System number"},

	{AddressSIPProxy, KindAddress, TextField, 1, 0, 0, "SIP proxy"},
	{AddressSIPPort, KindAddress, TextField, 1, 0, 0, "SIP port"},
	{AddressSIPTLSPort, KindAddress, TextField, 1, 0, 0, "SIP TLS port"},
	{AddressSIPStun, KindAddress, TextField, 1, 0, 0, "SIP STUN server"},
	{AddressSIPDomain, KindAddress, TextField, 1, 0, 0, "SIP domain"},
	{AddressSIPUser, KindAddress, TextField, 1, 0, 0, "SIP user"},
	{AddressSIPPassword, KindAddress, TextField, 1, 0, 0, "SIP password"},
	{AddressLogFile, KindAddress, TextField, 1, 0, 0, "Log file"},

	{ChannelLogInfo, KindChannel, Checkbox, 2, 0, 0, "Log info"},
	{ChannelLogWarning, KindChannel, Checkbox, 2, 0, 0, "Log warnings"},
	{ChannelLogError, KindChannel, Checkbox, 2, 0, 0, "Log errors"},
	{ChannelLogTrace, KindChannel, Checkbox, 2, 0, 0, "Log trace"},
	{ChannelLogDebug, KindChannel, Checkbox, 2, 0, 0, "Log debug"},
	{ChannelLogProtocol, KindChannel, Checkbox, 2, 0, 0, "Log protocol"},
	{ChannelLogAll, KindChannel, Checkbox, 2, 0, 0, "Log everything"},
	{ChannelLogProfiling, KindChannel, Checkbox, 2, 0, 0, "Profiling"},
	{ChannelLogLongFormat, KindChannel, Checkbox, 2, 0, 0, "Long log format"},

	{ChannelSIPEnable, KindChannel, Checkbox, 2, 0, 0, "SIP enabled"},
	{ChannelSIPIPv4, KindChannel, Checkbox, 2, 0, 0, "SIP IPv4"},
	{ChannelSIPIPv6, KindChannel, Checkbox, 2, 0, 0, "SIP IPv6"},
	{ChannelSIPIPhone, KindChannel, Checkbox, 2, 0, 0, "SIP internal phone"},

	{KeyKey, KindChannel, PushButton, 6, 0, 0, "Keyboard key"},
	{KeyShift, KindChannel, Function, 6, 0, 0, "Keyboard shift"},
	{KeyCapsLock, KindChannel, Function, 6, 0, 0, "Keyboard caps lock"},
	{KeyBank3, KindChannel, Function, 6, 0, 0, "Keyboard special characters"},
	{KeyBackspace, KindChannel, Function, 6, 0, 0, "Keyboard backspace"},
	{KeyClear, KindChannel, Function, 6, 0, 0, "Keyboard clear"},
	{KeyCancel, KindChannel, Function, 6, 0, 0, "Keyboard cancel"},
	{KeyEnter, KindChannel, Function, 6, 0, 0, "Keyboard enter"},
	{KeySpace, KindChannel, Function, 6, 0, 0, "Keyboard space"},
	{KeySubmit, KindChannel, Function, 6, 0, 0, "Keyboard submit"},
}

// Table is the read-only registry of system buttons.
type Table struct {
	entries []Entry
}

// DefaultTable returns the registry of the standard system buttons.
func DefaultTable() *Table {
	return &Table{entries: defaultEntries}
}

func NewTable(entries []Entry) *Table {
	return &Table{entries: entries}
}

// Lookup returns the index of the entry with the given kind and number,
// or -1 if there is none.
func (t *Table) Lookup(kind Kind, number int) int {
	for i, e := range t.entries {
		if e.Kind == kind && e.Number == number {
			return i
		}
	}
	return -1
}

// Entry returns the entry for kind and number.
func (t *Table) Entry(kind Kind, number int) (Entry, bool) {
	if i := t.Lookup(kind, number); i >= 0 {
		return t.entries[i], true
	}
	return Entry{}, false
}

func (t *Table) Entries() []Entry {
	return t.entries
}

// IsSystem reports whether the channel belongs to a system button.
func (t *Table) IsSystem(kind Kind, number int) bool {
	return t.Lookup(kind, number) >= 0
}

// Validate checks the table for duplicate numbers and inconsistent
// entries.
func (t *Table) Validate(e *util.ErrorLogger) {
	type key struct {
		kind   Kind
		number int
	}
	seen := make(map[key]bool)

	for _, ent := range t.entries {
		e.Push(fmt.Sprintf("%s %d (%s)", ent.Kind, ent.Number, ent.Name))

		if seen[key{ent.Kind, ent.Number}] {
			e.ErrorString("duplicate entry")
		}
		seen[key{ent.Kind, ent.Number}] = true

		if ent.States < 1 {
			e.ErrorString("must have at least one state")
		}
		if ent.Category == Checkbox && ent.States != 2 {
			e.ErrorString("checkboxes must have two states, not %d", ent.States)
		}
		if ent.Low > ent.High {
			e.ErrorString("range low %d is above range high %d", ent.Low, ent.High)
		}
		if ent.Category == Slider && ent.Kind != KindLevel {
			e.ErrorString("sliders must be addressed by a level")
		}

		e.Pop()
	}
}
