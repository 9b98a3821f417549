// colors/amx.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package colors

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/util"
)

var (
	ErrNoPalette       = errors.New("No palette configured")
	ErrMalformedColor  = errors.New("Malformed color string")
	ErrUnknownColor    = errors.New("Unknown color")
	ErrIndexOutOfRange = errors.New("Color index out of range")
)

// MaxStrictIndex is the highest palette index accepted by
// IsValidAMXColor; the AMX standard palette has 89 entries.
const MaxStrictIndex = 88

var hexColorRE = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// Resolver turns AMX colour strings into colours. A colour is given as
// "#RRGGBB[AA]", as a decimal palette index or as a palette colour name.
//
// A Resolver remembers whether it has ever been asked to resolve a colour
// without a palette; Failed reports that condition.
type Resolver struct {
	palette Palette
	lg      *log.Logger
	failed  util.AtomicBool
}

func NewResolver(p Palette, lg *log.Logger) *Resolver {
	return &Resolver{palette: p, lg: lg}
}

func (r *Resolver) Palette() Palette {
	return r.palette
}

// Failed reports whether a configuration error has been encountered.
func (r *Resolver) Failed() bool {
	return r.failed.Load()
}

// AMXColor returns the colour described by str. Malformed strings give a
// zero colour; a missing palette gives a fully transparent black and marks
// the resolver as failed.
func (r *Resolver) AMXColor(str string) Color {
	c, err := r.Parse(str)
	switch {
	case err == nil:
		return c
	case errors.Is(err, ErrNoPalette):
		r.failed.Store(true)
		r.lg.Error("no palette to resolve color", slog.String("color", str))
	default:
		r.lg.Warn("invalid color", slog.String("color", str), slog.Any("error", err))
	}
	return Transparent
}

// Parse is like AMXColor but reports why a colour could not be resolved.
func (r *Resolver) Parse(str string) (Color, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Transparent, ErrMalformedColor
	}

	if len(str) <= 3 && util.IsAllNumbers(str) {
		idx, _ := strconv.Atoi(str)
		if idx >= 0 && idx <= 255 {
			if r.palette == nil {
				return Transparent, ErrNoPalette
			}
			if pe := r.palette.FindColor(str); pe.Name != "" {
				return FromPacked(pe.Color), nil
			}
		}
		// Not in the palette; fall through to the other rules.
	}

	if pos := strings.IndexByte(str, '#'); pos >= 0 {
		return parseHex(str[pos+1:])
	}

	if !util.IsAllNumbers(str) {
		if r.palette == nil {
			return Transparent, ErrNoPalette
		}
		if pe := r.palette.FindColor(str); pe.Name != "" {
			return FromPacked(pe.Color), nil
		}
	}

	// Hex digits without a leading '#'.
	if hexColorRE.MatchString(str) {
		return parseHex(str)
	}

	return Transparent, ErrUnknownColor
}

func parseHex(h string) (Color, error) {
	if len(h) < 6 || !util.IsAllHex(h[:6]) {
		return Transparent, ErrMalformedColor
	}

	ch := func(s string) uint8 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return uint8(v)
	}
	c := Color{R: ch(h[0:2]), G: ch(h[2:4]), B: ch(h[4:6]), A: 0xff}
	if len(h) >= 8 {
		if !util.IsAllHex(h[6:8]) {
			return Transparent, ErrMalformedColor
		}
		c.A = ch(h[6:8])
	}
	return c, nil
}

// IsValidAMXColor checks str more strictly than AMXColor: palette indices
// must be in [0,MaxStrictIndex] and hex colours must match the AMX grammar
// exactly.
func (r *Resolver) IsValidAMXColor(str string) bool {
	str = strings.TrimSpace(str)
	if str == "" {
		return false
	}
	if util.IsAllNumbers(str) {
		idx, err := strconv.Atoi(str)
		return err == nil && idx >= 0 && idx <= MaxStrictIndex
	}
	if hexColorRE.MatchString(str) {
		return true
	}
	return r.palette != nil && r.palette.FindColor(str).Name != ""
}
