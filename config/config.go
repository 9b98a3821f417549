// config/config.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config holds the panel settings. Settings are read from a JSON
// file; the values the system buttons change are kept in memory only.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/resources"
	"github.com/tpanel/tpanel/system"
	"github.com/tpanel/tpanel/util"
)

var ErrInvalidConfig = errors.New("Invalid configuration")

type AudioSettings struct {
	Volume int `json:"volume"`
	Gain   int `json:"gain"`
}

type LogSettings struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
	File  string `json:"file"`
	Flags uint   `json:"flags"`
}

type PanelSettings struct {
	Type       string `json:"type"`
	Firmware   string `json:"firmware"`
	Controller string `json:"controller"`
	Port       int    `json:"port"`
	Channel    int    `json:"channel"`
	Name       string `json:"name"`
	System     int    `json:"system"`

	Dir      string `json:"dir"`
	CacheDir string `json:"cache_dir"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Codepage string `json:"codepage"`
}

type SIPSettings struct {
	Proxy    string `json:"proxy"`
	Port     int    `json:"port"`
	TLSPort  int    `json:"tls_port"`
	Stun     string `json:"stun"`
	Domain   string `json:"domain"`
	User     string `json:"user"`
	Password string `json:"password"`
	Enabled  bool   `json:"enabled"`
	IPv4     bool   `json:"ipv4"`
	IPv6     bool   `json:"ipv6"`
	IPhone   bool   `json:"iphone"`
}

type BatterySettings struct {
	Level    int  `json:"level"`
	Charging bool `json:"charging"`
}

// Settings is the panel configuration. It implements
// system.MutableConfig; all accessors may be called concurrently.
type Settings struct {
	mu sync.Mutex

	Audio   AudioSettings         `json:"audio"`
	Logging LogSettings           `json:"logging"`
	Panel   PanelSettings         `json:"panel"`
	SIP     SIPSettings           `json:"sip"`
	Battery BatterySettings       `json:"battery"`
	Palette []colors.PaletteEntry `json:"palette"`
	Fonts   []resources.FontEntry `json:"fonts"`
}

var _ system.MutableConfig = (*Settings)(nil)

// Default returns the settings used for values the configuration file
// does not give.
func Default() *Settings {
	return &Settings{
		Audio:   AudioSettings{Volume: 50, Gain: 50},
		Logging: LogSettings{Level: "info", File: "tpanel.slog", Flags: system.LogProtocol},
		Panel: PanelSettings{
			Type:     "MVP-5200i",
			Firmware: "1.0.0",
			Port:     1319,
			Channel:  10001,
			Name:     "tpanel",
			Width:    1024,
			Height:   600,
			Codepage: "CP1250",
		},
		SIP:     SIPSettings{Port: 5060, TLSPort: 5061, IPv4: true},
		Battery: BatterySettings{Level: 100},
	}
}

// FilePath returns the default location of the configuration file.
func FilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}
	return filepath.Join(dir, "TPanel", "config.json")
}

// Load reads the settings at path. A missing file is not an error; the
// defaults are returned in that case.
func Load(path string, lg *log.Logger) (*Settings, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		lg.Infof("%s: no configuration file, using defaults", path)
		return Default(), nil
	} else if err != nil {
		return nil, err
	}
	return Parse(b, path, lg)
}

// Parse decodes and validates the settings in b; name is used in error
// messages.
func Parse(b []byte, name string, lg *log.Logger) (*Settings, error) {
	var e util.ErrorLogger
	e.Push(name)
	defer e.Pop()

	util.CheckJSON[Settings](b, &e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, e.String())
	}

	s := Default()
	if err := util.UnmarshalJSONBytes(b, s); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	s.Validate(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, e.String())
	}
	return s, nil
}

func (s *Settings) Validate(e *util.ErrorLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkRange := func(what string, v, low, high int) {
		if v < low || v > high {
			e.ErrorString("%s: %d is outside of %d-%d", what, v, low, high)
		}
	}

	checkRange("audio.volume", s.Audio.Volume, 0, 100)
	checkRange("audio.gain", s.Audio.Gain, 0, 100)
	checkRange("battery.level", s.Battery.Level, 0, 100)
	checkRange("panel.port", s.Panel.Port, 1, 65535)
	checkRange("panel.channel", s.Panel.Channel, 1, 65535)
	checkRange("panel.width", s.Panel.Width, 1, 16384)
	checkRange("panel.height", s.Panel.Height, 1, 16384)
	if s.SIP.Enabled {
		checkRange("sip.port", s.SIP.Port, 1, 65535)
		checkRange("sip.tls_port", s.SIP.TLSPort, 1, 65535)
		if s.SIP.Proxy == "" {
			e.ErrorString("sip.proxy: must be given when SIP is enabled")
		}
	}
	if _, ok := log.ParseLevel(s.Logging.Level); !ok {
		e.ErrorString("logging.level: %q: unknown level", s.Logging.Level)
	}

	e.Push("palette")
	indices := make(map[int]bool)
	for _, p := range s.Palette {
		if indices[p.Index] {
			e.ErrorString("%d: duplicate palette index", p.Index)
		}
		indices[p.Index] = true
		if p.Name == "" {
			e.ErrorString("%d: palette entry has no name", p.Index)
		}
	}
	e.Pop()

	e.Push("fonts")
	fonts := make(map[int]bool)
	for _, f := range s.Fonts {
		if fonts[f.Index] {
			e.ErrorString("%d: duplicate font index", f.Index)
		}
		fonts[f.Index] = true
		if f.File == "" {
			e.ErrorString("%d: no font file given", f.Index)
		}
	}
	e.Pop()
}

func (s *Settings) Encode(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(s)
}

// PaletteTable returns the palette given in the settings.
func (s *Settings) PaletteTable() *colors.PaletteTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return colors.MakePaletteTable(s.Palette)
}

func (s *Settings) FontTable() []resources.FontEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]resources.FontEntry(nil), s.Fonts...)
}

func (s *Settings) PanelDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.Dir
}

func (s *Settings) CacheDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.CacheDir
}

func (s *Settings) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.Width, s.Panel.Height
}

func (s *Settings) Codepage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.Codepage
}

// get runs f with the settings locked.
func get[T any](s *Settings, f func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f()
}

func (s *Settings) Volume() int     { return get(s, func() int { return s.Audio.Volume }) }
func (s *Settings) Gain() int       { return get(s, func() int { return s.Audio.Gain }) }
func (s *Settings) LogFlags() uint  { return get(s, func() uint { return s.Logging.Flags }) }
func (s *Settings) LogFile() string { return get(s, func() string { return s.Logging.File }) }

func (s *Settings) SIPProxy() string    { return get(s, func() string { return s.SIP.Proxy }) }
func (s *Settings) SIPPort() int        { return get(s, func() int { return s.SIP.Port }) }
func (s *Settings) SIPTLSPort() int     { return get(s, func() int { return s.SIP.TLSPort }) }
func (s *Settings) SIPStun() string     { return get(s, func() string { return s.SIP.Stun }) }
func (s *Settings) SIPDomain() string   { return get(s, func() string { return s.SIP.Domain }) }
func (s *Settings) SIPUser() string     { return get(s, func() string { return s.SIP.User }) }
func (s *Settings) SIPPassword() string { return get(s, func() string { return s.SIP.Password }) }
func (s *Settings) SIPEnabled() bool    { return get(s, func() bool { return s.SIP.Enabled }) }
func (s *Settings) SIPIPv4() bool       { return get(s, func() bool { return s.SIP.IPv4 }) }
func (s *Settings) SIPIPv6() bool       { return get(s, func() bool { return s.SIP.IPv6 }) }
func (s *Settings) SIPIPhone() bool     { return get(s, func() bool { return s.SIP.IPhone }) }

func (s *Settings) PanelType() string  { return get(s, func() string { return s.Panel.Type }) }
func (s *Settings) Firmware() string   { return get(s, func() string { return s.Panel.Firmware }) }
func (s *Settings) Controller() string { return get(s, func() string { return s.Panel.Controller }) }
func (s *Settings) Port() int          { return get(s, func() int { return s.Panel.Port }) }
func (s *Settings) DeviceChannel() int { return get(s, func() int { return s.Panel.Channel }) }
func (s *Settings) PanelName() string  { return get(s, func() string { return s.Panel.Name }) }
func (s *Settings) SystemNumber() int  { return get(s, func() int { return s.Panel.System }) }

func (s *Settings) BatteryLevel() int     { return get(s, func() int { return s.Battery.Level }) }
func (s *Settings) BatteryCharging() bool { return get(s, func() bool { return s.Battery.Charging }) }

func (s *Settings) SetVolume(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Audio.Volume = util.Clamp(v, 0, 100)
}

func (s *Settings) SetGain(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Audio.Gain = util.Clamp(v, 0, 100)
}

func (s *Settings) SetLogFlags(f uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logging.Flags = f
}

// SetBattery records the battery state reported by the platform.
func (s *Settings) SetBattery(level int, charging bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Battery.Level = util.Clamp(level, 0, 100)
	s.Battery.Charging = charging
}

func (s *Settings) SetSIPFlag(channel int, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch channel {
	case system.ChannelSIPEnable:
		s.SIP.Enabled = on
	case system.ChannelSIPIPv4:
		s.SIP.IPv4 = on
	case system.ChannelSIPIPv6:
		s.SIP.IPv6 = on
	case system.ChannelSIPIPhone:
		s.SIP.IPhone = on
	}
}
