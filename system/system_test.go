// system/system_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package system

import (
	"testing"
	"time"

	"github.com/tpanel/tpanel/util"
)

type testConfig struct {
	volume, gain int
	logFlags     uint
	sip          map[int]bool
}

func (c *testConfig) Volume() int           { return c.volume }
func (c *testConfig) Gain() int             { return c.gain }
func (c *testConfig) LogFlags() uint        { return c.logFlags }
func (c *testConfig) LogFile() string       { return "/tmp/tpanel.log" }
func (c *testConfig) SIPProxy() string      { return "sip.example.com" }
func (c *testConfig) SIPPort() int          { return 5060 }
func (c *testConfig) SIPTLSPort() int       { return 5061 }
func (c *testConfig) SIPStun() string       { return "stun.example.com" }
func (c *testConfig) SIPDomain() string     { return "example.com" }
func (c *testConfig) SIPUser() string       { return "panel" }
func (c *testConfig) SIPPassword() string   { return "secret" }
func (c *testConfig) SIPEnabled() bool      { return c.sip[ChannelSIPEnable] }
func (c *testConfig) SIPIPv4() bool         { return c.sip[ChannelSIPIPv4] }
func (c *testConfig) SIPIPv6() bool         { return c.sip[ChannelSIPIPv6] }
func (c *testConfig) SIPIPhone() bool       { return c.sip[ChannelSIPIPhone] }
func (c *testConfig) PanelType() string     { return "MVP-5200i" }
func (c *testConfig) Firmware() string      { return "1.0.0" }
func (c *testConfig) Controller() string    { return "192.168.1.1" }
func (c *testConfig) Port() int             { return 1319 }
func (c *testConfig) DeviceChannel() int    { return 10001 }
func (c *testConfig) PanelName() string     { return "Living room" }
func (c *testConfig) SystemNumber() int     { return 1 }
func (c *testConfig) BatteryLevel() int     { return 80 }
func (c *testConfig) BatteryCharging() bool { return true }

func (c *testConfig) SetVolume(v int)    { c.volume = v }
func (c *testConfig) SetGain(v int)      { c.gain = v }
func (c *testConfig) SetLogFlags(f uint) { c.logFlags = f }
func (c *testConfig) SetSIPFlag(ch int, on bool) {
	if c.sip == nil {
		c.sip = make(map[int]bool)
	}
	c.sip[ch] = on
}

func TestTableLookup(t *testing.T) {
	tbl := DefaultTable()
	if i := tbl.Lookup(KindLevel, LevelVolume); i < 0 {
		t.Errorf("expected volume level to be found")
	}
	if i := tbl.Lookup(KindChannel, LevelVolume); i != -1 {
		t.Errorf("expected -1 for volume as a channel, got %d", i)
	}
	if i := tbl.Lookup(KindChannel, 9999); i != -1 {
		t.Errorf("expected -1 for unknown channel, got %d", i)
	}
	if e, ok := tbl.Entry(KindChannel, ChannelLogDebug); !ok || e.Category != Checkbox || e.States != 2 {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestTableValidate(t *testing.T) {
	var e util.ErrorLogger
	DefaultTable().Validate(&e)
	if e.HaveErrors() {
		t.Errorf("default table: %s", e.String())
	}

	e = util.ErrorLogger{}
	NewTable([]Entry{
		{1, KindLevel, Slider, 1, 0, 100, "a"},
		{1, KindLevel, Slider, 1, 0, 100, "b"},
		{2, KindChannel, Checkbox, 3, 0, 0, "c"},
		{3, KindChannel, Slider, 1, 10, 0, "d"},
	}).Validate(&e)
	if n := len(e.Errors()); n != 4 {
		t.Errorf("expected 4 errors, got %d: %s", n, e.String())
	}
}

func TestFillButtonText(t *testing.T) {
	cfg := &testConfig{}
	now := time.Date(2026, 3, 4, 17, 5, 9, 0, time.UTC)

	for _, test := range []struct {
		number int
		text   string
	}{
		{AddressTimeStandard, "17:05:09"},
		{AddressTimeAMPM, "05:05 PM"},
		{AddressTime24, "17:05"},
		{AddressDateWeekday, "Wednesday"},
		{AddressDateDDMMYYYY, "04/03/2026"},
		{AddressDateMonthDay, "March 4, 2026"},
		{AddressDateYYYYMMDD, "2026-03-04"},
		{AddressPanelType, "MVP-5200i"},
		{AddressPort, "1319"},
		{AddressSIPPassword, "******"},
		{AddressLogFile, "/tmp/tpanel.log"},
	} {
		if s, ok := FillButtonText(test.number, cfg, now); !ok || s != test.text {
			t.Errorf("%d: expected %q, got %q (%v)", test.number, test.text, s, ok)
		}
	}
	if _, ok := FillButtonText(12345, cfg, now); ok {
		t.Errorf("expected unknown address to be rejected")
	}
}

func TestButtonInstanceAndToggle(t *testing.T) {
	cfg := &testConfig{logFlags: LogInfo | LogError}

	for _, test := range []struct {
		channel, inst int
	}{
		{ChannelLogInfo, 1},
		{ChannelLogWarning, 0},
		{ChannelLogProtocol, 1},
		{ChannelLogAll, 0},
		{ChannelBatteryCharging, 1},
		{ChannelSIPEnable, 0},
	} {
		if inst, ok := GetButtonInstance(test.channel, cfg); !ok || inst != test.inst {
			t.Errorf("%d: expected instance %d, got %d (%v)", test.channel, test.inst, inst, ok)
		}
	}

	if inst, _ := Toggle(ChannelLogAll, cfg); inst != 1 || cfg.logFlags != LogAll {
		t.Errorf("expected all log flags set, got %d %b", inst, cfg.logFlags)
	}
	if inst, _ := Toggle(ChannelLogDebug, cfg); inst != 0 || cfg.logFlags&LogDebug != 0 {
		t.Errorf("expected debug flag cleared, got %d %b", inst, cfg.logFlags)
	}
	if inst, _ := Toggle(ChannelSIPIPv6, cfg); inst != 1 || !cfg.SIPIPv6() {
		t.Errorf("expected IPv6 enabled")
	}
	if inst, _ := Toggle(ChannelBatteryCharging, cfg); inst != 1 {
		t.Errorf("expected battery state to be read-only")
	}
	if _, ok := Toggle(4711, cfg); ok {
		t.Errorf("expected unknown channel to be rejected")
	}

	if !SetLevel(LevelVolume, 42, cfg) || cfg.volume != 42 {
		t.Errorf("expected volume to be set")
	}
	if v, ok := LevelValue(LevelVolume, cfg); !ok || v != 42 {
		t.Errorf("expected volume 42, got %d", v)
	}
	if SetLevel(LevelBattery, 1, cfg) {
		t.Errorf("expected battery level to be read-only")
	}
}

///////////////////////////////////////////////////////////////////////////
// Keyboard

type testKey struct {
	handle  uint32
	channel int
	name    string
	texts   []string
	active  int
	press   func(int, uint32, bool)
}

func (k *testKey) Handle() uint32           { return k.handle }
func (k *testKey) Channel() int             { return k.channel }
func (k *testKey) Port() int                { return 1 }
func (k *testKey) Name() string             { return k.name }
func (k *testKey) StateCount() int          { return len(k.texts) }
func (k *testKey) SetActive(inst int) error { k.active = inst; return nil }
func (k *testKey) InstanceText(i int) string {
	if i < 0 || i >= len(k.texts) {
		return ""
	}
	return k.texts[i]
}
func (k *testKey) RegisterPressCallback(f func(int, uint32, bool)) { k.press = f }

// click simulates pressing and releasing the button.
func (k *testKey) click() {
	k.press(k.channel, k.handle, true)
	k.press(k.channel, k.handle, false)
}

type testKeyboard struct {
	kb      *Keyboard
	strokes []rune
	cmds    []string

	a, shift, caps, bank3, enter, backspace *testKey
}

func makeTestKeyboard(t *testing.T) *testKeyboard {
	tk := &testKeyboard{}
	tk.kb = NewKeyboard(nil, func(r rune) { tk.strokes = append(tk.strokes, r) },
		func(s string) { tk.cmds = append(tk.cmds, s) })

	bank := func(s string) []string { return []string{s, s, s, s, s, s} }
	tk.a = &testKey{handle: 1, channel: KeyKey, name: "a", texts: []string{"a", "a", "A", "A", "1", "1"}}
	tk.shift = &testKey{handle: 2, channel: KeyShift, name: "shift", texts: bank("Shift")}
	tk.caps = &testKey{handle: 3, channel: KeyCapsLock, name: "caps", texts: bank("Caps")}
	tk.bank3 = &testKey{handle: 4, channel: KeyBank3, name: "bank3", texts: bank("123")}
	tk.enter = &testKey{handle: 5, channel: KeyEnter, name: "enter", texts: bank("Enter")}
	tk.backspace = &testKey{handle: 6, channel: KeyBackspace, name: "bs", texts: bank("BS")}

	for _, k := range []*testKey{tk.a, tk.shift, tk.caps, tk.bank3, tk.enter, tk.backspace} {
		if !tk.kb.Register(k) {
			t.Fatalf("%s: registration failed", k.name)
		}
	}
	return tk
}

func TestKeyboardRegister(t *testing.T) {
	tk := makeTestKeyboard(t)
	if tk.kb.Register(&testKey{handle: 7, channel: KeyKey, name: "a"}) {
		t.Errorf("expected duplicate registration to be rejected")
	}
	if tk.kb.Register(&testKey{handle: 8, channel: 17, name: "x"}) {
		t.Errorf("expected non-keyboard channel to be ignored")
	}
	if tk.kb.prefix() != "KEYB-" {
		t.Errorf("expected full keyboard to be detected")
	}

	kp := NewKeyboard(nil, nil, nil)
	kp.Register(&testKey{handle: 1, channel: KeyKey, name: "1", texts: []string{"1", "1"}})
	if kp.prefix() != "KEYP-" {
		t.Errorf("expected keypad without modifier keys")
	}
}

func TestKeyboardShift(t *testing.T) {
	tk := makeTestKeyboard(t)

	tk.shift.press(KeyShift, tk.shift.handle, true)
	if tk.kb.Bank() != 2 || !tk.kb.Shift() || tk.kb.ActiveState() != 3 {
		t.Errorf("expected bank 2 with pressed state 3, got bank %d state %d", tk.kb.Bank(), tk.kb.ActiveState())
	}
	if tk.a.active != 2 || tk.shift.active != 3 {
		t.Errorf("expected key on instance 2 and shift on 3, got %d and %d", tk.a.active, tk.shift.active)
	}
	tk.shift.press(KeyShift, tk.shift.handle, false)
	if tk.kb.ActiveState() != 2 {
		t.Errorf("expected state 2 after release, got %d", tk.kb.ActiveState())
	}

	tk.a.click()
	if string(tk.strokes) != "A" || tk.kb.Input() != "A" {
		t.Errorf("expected shifted glyph, got %q", string(tk.strokes))
	}
	// Shift applies to one key only.
	if tk.kb.Shift() || tk.kb.Bank() != 1 {
		t.Errorf("expected shift to be released after a key")
	}
	tk.a.click()
	if tk.kb.Input() != "Aa" {
		t.Errorf("expected \"Aa\", got %q", tk.kb.Input())
	}

	// Pressing shift twice returns to bank 1.
	tk.shift.click()
	tk.shift.click()
	if tk.kb.Bank() != 1 || tk.kb.Shift() {
		t.Errorf("expected bank 1 after toggling shift twice, got %d", tk.kb.Bank())
	}
}

func TestKeyboardCapsLock(t *testing.T) {
	tk := makeTestKeyboard(t)

	tk.caps.click()
	tk.a.click()
	tk.enter.click()
	tk.a.click()
	if tk.kb.Input() != "A" || !tk.kb.CapsLock() || tk.kb.Bank() != 2 {
		t.Errorf("expected caps lock to stay active, got %q bank %d", tk.kb.Input(), tk.kb.Bank())
	}
	if tk.caps.active != 3 {
		t.Errorf("expected caps lock key to show its pressed instance, got %d", tk.caps.active)
	}

	tk.caps.click()
	tk.a.click()
	if tk.kb.Input() != "Aa" || tk.kb.CapsLock() {
		t.Errorf("expected caps lock released, got %q", tk.kb.Input())
	}

	// Caps lock and shift exclude each other.
	tk.caps.click()
	tk.shift.click()
	if tk.kb.CapsLock() || !tk.kb.Shift() {
		t.Errorf("expected shift to clear caps lock")
	}
}

func TestKeyboardBank3AndControls(t *testing.T) {
	tk := makeTestKeyboard(t)

	tk.bank3.click()
	if tk.kb.Bank() != 3 {
		t.Errorf("expected bank 3, got %d", tk.kb.Bank())
	}
	tk.a.click()
	tk.a.click()
	if tk.kb.Input() != "1a" {
		t.Errorf("expected \"1a\", got %q", tk.kb.Input())
	}

	tk.backspace.click()
	if tk.kb.Input() != "1" {
		t.Errorf("expected \"1\" after backspace, got %q", tk.kb.Input())
	}
	tk.enter.click()
	if tk.kb.Input() != "" {
		t.Errorf("expected empty input after enter")
	}
	want := []string{"KEYB-BACKSPACE", "KEYB-1"}
	if len(tk.cmds) != 2 || tk.cmds[0] != want[0] || tk.cmds[1] != want[1] {
		t.Errorf("expected %q, got %q", want, tk.cmds)
	}
}

func TestSetKeysToBank(t *testing.T) {
	tk := makeTestKeyboard(t)
	tk.kb.SetKeysToBank(3, tk.a.handle)
	if tk.a.active != 5 || tk.enter.active != 4 {
		t.Errorf("expected highlighted key on 5 and others on 4, got %d %d", tk.a.active, tk.enter.active)
	}
	tk.kb.SetKeysToBank(4, 0)
	if tk.a.active != 5 {
		t.Errorf("expected invalid bank to be ignored")
	}

	// Keys with a single bank stay on it.
	k := &testKey{handle: 9, channel: KeyKey, name: "1", texts: []string{"1", "1"}}
	tk.kb.Register(k)
	tk.kb.SetKeysToBank(2, 0)
	if k.active != 0 {
		t.Errorf("expected keypad key on instance 0, got %d", k.active)
	}
}

func TestDedicatedKeys(t *testing.T) {
	var strokes []rune
	var cmds []string
	kb := NewKeyboard(nil, func(r rune) { strokes = append(strokes, r) }, func(s string) { cmds = append(cmds, s) })

	for _, test := range []struct {
		channel int
		sent    string
	}{
		{501, "a"},
		{DedicatedShift, ""},
		{502, "B"},
		{503, "c"},
		{527, "1"},
		{DedicatedShift, ""},
		{536, ")"},
		{541, "\\"},
		{DedicatedCapsLock, ""},
		{526, "Z"},
		{537, "-"},
		{DedicatedTab, "KEYP-TAB"},
		{DedicatedBackspace, "KEYP-BACKSPACE"},
		{DedicatedEnter, "KEYP-aBc1)\\Z"},
	} {
		if s := kb.HandleDedicatedKeys(test.channel, true); s != test.sent {
			t.Errorf("%d: expected %q, got %q", test.channel, test.sent, s)
		}
	}
	if s := kb.HandleDedicatedKeys(501, false); s != "" {
		t.Errorf("expected release to be ignored, got %q", s)
	}
	if s := kb.HandleDedicatedKeys(700, true); s != "" {
		t.Errorf("expected unknown key to be ignored, got %q", s)
	}
	if len(cmds) != 3 {
		t.Errorf("expected 3 commands, got %q", cmds)
	}
}

func TestDedicatedChannel(t *testing.T) {
	kb := NewKeyboard(nil, nil, nil)
	for _, r := range "az09-;` " {
		ch, ok := DedicatedChannel(r)
		if !ok {
			t.Errorf("%q: expected a dedicated channel", r)
			continue
		}
		if s := kb.HandleDedicatedKeys(ch, true); s != string(r) {
			t.Errorf("%q: expected channel %d to send it, got %q", r, ch, s)
		}
	}
	if _, ok := DedicatedChannel('A'); ok {
		t.Errorf("expected no channel for upper case letters")
	}
}

func TestTypeRune(t *testing.T) {
	var strokes []rune
	kb := NewKeyboard(nil, func(r rune) { strokes = append(strokes, r) }, nil)

	// Host characters already carry the host's modifiers.
	kb.HandleDedicatedKeys(DedicatedCapsLock, true)
	for _, r := range "Ab!" {
		if s := kb.TypeRune(r); s != string(r) {
			t.Errorf("%q: expected it to be typed unchanged, got %q", r, s)
		}
	}
	if !kb.capsLock {
		t.Errorf("expected caps lock to stay on")
	}
	if s := kb.HandleDedicatedKeys(501, true); s != "A" {
		t.Errorf("expected caps lock to still apply to dedicated keys, got %q", s)
	}

	// A pending panel shift is used up by a typed character.
	kb.HandleDedicatedKeys(DedicatedShift, true)
	kb.TypeRune('x')
	if kb.shift {
		t.Errorf("expected shift to be released")
	}

	if s := kb.TypeRune('é'); s != "" {
		t.Errorf("expected untypeable character to be ignored, got %q", s)
	}
	if kb.Input() != "Ab!Ax" || string(strokes) != "Ab!Ax" {
		t.Errorf("expected input and strokes \"Ab!Ax\", got %q and %q", kb.Input(), string(strokes))
	}
}

func TestTableEnumStrings(t *testing.T) {
	if s := Kind(1).String(); s != "level" {
		t.Errorf("expected \"level\", got %q", s)
	}
	if s := Kind(3).String(); s != "Kind(3)" {
		t.Errorf("expected \"Kind(3)\", got %q", s)
	}
	if s := Category(5).String(); s != "combobox" {
		t.Errorf("expected \"combobox\", got %q", s)
	}
	if s := Category(-1).String(); s != "Category(-1)" {
		t.Errorf("expected \"Category(-1)\", got %q", s)
	}
}
