// resources/fonts.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package resources

import (
	"io/fs"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/tpanel/tpanel/log"
)

// FontEntry is one entry of a panel's font table.
type FontEntry struct {
	Index int     `json:"index"`
	File  string  `json:"file"`
	Name  string  `json:"name,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

type faceKey struct {
	index int
	size  float64
}

// Fonts provides font faces by their index in the font table. Fonts
// are loaded from the "fonts" directory of the panel on first use.
// Unknown indices and fonts that can not be loaded fall back to a fixed
// bitmap font.
type Fonts struct {
	mu     sync.Mutex
	fsys   fs.FS
	table  map[int]FontEntry
	parsed map[string]*opentype.Font
	faces  map[faceKey]font.Face
	failed map[string]bool
	lg     *log.Logger
}

const defaultFontSize = 10

func NewFonts(panelDir string, entries []FontEntry, lg *log.Logger) *Fonts {
	return NewFontsFS(os.DirFS(panelDir), entries, lg)
}

func NewFontsFS(fsys fs.FS, entries []FontEntry, lg *log.Logger) *Fonts {
	f := &Fonts{
		fsys:   fsys,
		table:  make(map[int]FontEntry),
		parsed: make(map[string]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
		failed: make(map[string]bool),
		lg:     lg,
	}
	for _, e := range entries {
		if _, ok := f.table[e.Index]; ok {
			lg.Warnf("%d: duplicate font index", e.Index)
		}
		f.table[e.Index] = e
	}
	return f
}

// Face returns the face for font index at the given size in points; a
// size of 0 uses the size from the font table.
func (f *Fonts) Face(index int, size float64) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.table[index]
	if !ok {
		if len(f.table) == 0 {
			f.lg.Error("no font table configured")
		}
		return basicfont.Face7x13
	}
	if size <= 0 {
		size = e.Size
	}
	if size <= 0 {
		size = defaultFontSize
	}

	k := faceKey{index, size}
	if face, ok := f.faces[k]; ok {
		return face
	}

	otf := f.loadLocked(e.File)
	if otf == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		f.lg.Errorf("%s: %v", e.File, err)
		return basicfont.Face7x13
	}
	f.faces[k] = face
	return face
}

func (f *Fonts) loadLocked(file string) *opentype.Font {
	if otf, ok := f.parsed[file]; ok {
		return otf
	}
	if f.failed[file] {
		return nil
	}

	b, err := readFile(f.fsys, "fonts", file)
	if err == nil {
		var otf *opentype.Font
		if otf, err = opentype.Parse(b); err == nil {
			f.parsed[file] = otf
			return otf
		}
	}

	// Report each broken font once.
	f.lg.Errorf("%s: %v", file, err)
	f.failed[file] = true
	return nil
}

// Close releases the faces that have been created.
func (f *Fonts) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, face := range f.faces {
		face.Close()
		delete(f.faces, k)
	}
}
