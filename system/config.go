// system/config.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package system

import (
	"strconv"
	"strings"
	"time"
)

// Log flag bits as stored in the configuration.
const (
	LogInfo uint = 1 << iota
	LogWarning
	LogError
	LogTrace
	LogDebug
	LogProfiling
	LogLongFormat

	LogProtocol = LogInfo | LogError
	LogAll      = LogInfo | LogWarning | LogError | LogTrace | LogDebug
)

// Config is the configuration the system buttons display and change.
type Config interface {
	Volume() int
	Gain() int
	LogFlags() uint
	LogFile() string

	SIPProxy() string
	SIPPort() int
	SIPTLSPort() int
	SIPStun() string
	SIPDomain() string
	SIPUser() string
	SIPPassword() string
	SIPEnabled() bool
	SIPIPv4() bool
	SIPIPv6() bool
	SIPIPhone() bool

	PanelType() string
	Firmware() string
	Controller() string
	Port() int
	DeviceChannel() int
	PanelName() string
	SystemNumber() int

	BatteryLevel() int
	BatteryCharging() bool
}

// MutableConfig is a Config whose values can be changed by the system
// buttons at runtime.
type MutableConfig interface {
	Config
	SetVolume(v int)
	SetGain(v int)
	SetLogFlags(f uint)
	SetSIPFlag(channel int, on bool)
}

// logChannelFlags maps the logging checkboxes to the flags they stand
// for. A checkbox is on if all of its bits are set.
var logChannelFlags = map[int]uint{
	ChannelLogInfo:       LogInfo,
	ChannelLogWarning:    LogWarning,
	ChannelLogError:      LogError,
	ChannelLogTrace:      LogTrace,
	ChannelLogDebug:      LogDebug,
	ChannelLogProtocol:   LogProtocol,
	ChannelLogAll:        LogAll,
	ChannelLogProfiling:  LogProfiling,
	ChannelLogLongFormat: LogLongFormat,
}

// FillButtonText returns the text a system text field at address number
// shows. The second result is false for addresses that are not system
// text fields.
func FillButtonText(number int, cfg Config, now time.Time) (string, bool) {
	switch number {
	case AddressTimeStandard:
		return now.Format("15:04:05"), true
	case AddressTimeAMPM:
		return now.Format("03:04 PM"), true
	case AddressTime24:
		return now.Format("15:04"), true
	case AddressDateWeekday:
		return now.Format("Monday"), true
	case AddressDateMMDD:
		return now.Format("01/02"), true
	case AddressDateDDMM:
		return now.Format("02/01"), true
	case AddressDateMMDDYYYY:
		return now.Format("01/02/2006"), true
	case AddressDateDDMMYYYY:
		return now.Format("02/01/2006"), true
	case AddressDateMonthDay:
		return now.Format("January 2, 2006"), true
	case AddressDateDayMonth:
		return now.Format("2 January 2006"), true
	case AddressDateYYYYMMDD:
		return now.Format("2006-01-02"), true
	}

	if cfg == nil {
		return "", false
	}
	switch number {
	case AddressPanelType:
		return cfg.PanelType(), true
	case AddressFirmware:
		return cfg.Firmware(), true
	case AddressController:
		return cfg.Controller(), true
	case AddressPort:
		return strconv.Itoa(cfg.Port()), true
	case AddressDeviceChannel:
		return strconv.Itoa(cfg.DeviceChannel()), true
	case AddressPanelName:
		return cfg.PanelName(), true
	case AddressSystemNumber:
		return strconv.Itoa(cfg.SystemNumber()), true
	case AddressSIPProxy:
		return cfg.SIPProxy(), true
	case AddressSIPPort:
		return strconv.Itoa(cfg.SIPPort()), true
	case AddressSIPTLSPort:
		return strconv.Itoa(cfg.SIPTLSPort()), true
	case AddressSIPStun:
		return cfg.SIPStun(), true
	case AddressSIPDomain:
		return cfg.SIPDomain(), true
	case AddressSIPUser:
		return cfg.SIPUser(), true
	case AddressSIPPassword:
		return strings.Repeat("*", len(cfg.SIPPassword())), true
	case AddressLogFile:
		return cfg.LogFile(), true
	default:
		return "", false
	}
}

// GetButtonInstance returns the instance (0 = off, 1 = on) a system
// checkbox at channel number shows.
func GetButtonInstance(number int, cfg Config) (int, bool) {
	if cfg == nil {
		return 0, false
	}

	on := func(b bool) (int, bool) {
		if b {
			return 1, true
		}
		return 0, true
	}

	if f, ok := logChannelFlags[number]; ok {
		return on(cfg.LogFlags()&f == f)
	}
	switch number {
	case ChannelBatteryCharging:
		return on(cfg.BatteryCharging())
	case ChannelSIPEnable:
		return on(cfg.SIPEnabled())
	case ChannelSIPIPv4:
		return on(cfg.SIPIPv4())
	case ChannelSIPIPv6:
		return on(cfg.SIPIPv6())
	case ChannelSIPIPhone:
		return on(cfg.SIPIPhone())
	default:
		return 0, false
	}
}

// LevelValue returns the value of a system level.
func LevelValue(number int, cfg Config) (int, bool) {
	if cfg == nil {
		return 0, false
	}
	switch number {
	case LevelVolume:
		return cfg.Volume(), true
	case LevelGain:
		return cfg.Gain(), true
	case LevelBattery:
		return cfg.BatteryLevel(), true
	default:
		return 0, false
	}
}

// Toggle flips the checkbox at channel number and returns its new
// instance. Read-only checkboxes such as the battery state are not
// changed.
func Toggle(number int, cfg MutableConfig) (int, bool) {
	inst, ok := GetButtonInstance(number, cfg)
	if !ok {
		return 0, false
	}

	if f, ok := logChannelFlags[number]; ok {
		if inst == 1 {
			cfg.SetLogFlags(cfg.LogFlags() &^ f)
		} else {
			cfg.SetLogFlags(cfg.LogFlags() | f)
		}
		return GetButtonInstance(number, cfg)
	}
	switch number {
	case ChannelSIPEnable, ChannelSIPIPv4, ChannelSIPIPv6, ChannelSIPIPhone:
		cfg.SetSIPFlag(number, inst == 0)
		return GetButtonInstance(number, cfg)
	}
	return inst, true
}

// SetLevel stores the value of a writable system level.
func SetLevel(number, value int, cfg MutableConfig) bool {
	switch number {
	case LevelVolume:
		cfg.SetVolume(value)
	case LevelGain:
		cfg.SetGain(value)
	default:
		return false
	}
	return true
}
