// colors/palette.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package colors

import (
	"strconv"
	"strings"
)

// PaletteEntry is the result of a palette lookup. An empty Name means that
// the colour was not found.
type PaletteEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Color uint32 `json:"color"` // 0xRRGGBBAA
}

// Palette looks colours up by their decimal index or their name.
type Palette interface {
	FindColor(key string) PaletteEntry
}

// PaletteTable is a Palette backed by a fixed list of entries.
type PaletteTable struct {
	byIndex map[int]PaletteEntry
	byName  map[string]PaletteEntry
}

func MakePaletteTable(entries []PaletteEntry) *PaletteTable {
	p := &PaletteTable{
		byIndex: make(map[int]PaletteEntry),
		byName:  make(map[string]PaletteEntry),
	}
	for _, e := range entries {
		p.byIndex[e.Index] = e
		p.byName[strings.ToLower(e.Name)] = e
	}
	return p
}

func (p *PaletteTable) FindColor(key string) PaletteEntry {
	if p == nil {
		return PaletteEntry{}
	}
	key = strings.TrimSpace(key)
	if idx, err := strconv.Atoi(key); err == nil {
		return p.byIndex[idx]
	}
	return p.byName[strings.ToLower(key)]
}

func (p *PaletteTable) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byIndex)
}
