// util/text.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

func IsAllNumbers(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func IsAllHex(s string) bool {
	for _, ch := range s {
		if !(ch >= '0' && ch <= '9') && !(ch >= 'a' && ch <= 'f') && !(ch >= 'A' && ch <= 'F') {
			return false
		}
	}
	return true
}

// DecodePanelText converts a string received from the controller or read
// from a panel file to UTF-8. Panel files are written in a Windows code
// page; strings that are already valid UTF-8 are returned unchanged.
func DecodePanelText(s string, codepage string) string {
	if utf8.ValidString(s) {
		return s
	}

	var cm *charmap.Charmap
	switch strings.ToUpper(codepage) {
	case "CP1252", "WINDOWS-1252":
		cm = charmap.Windows1252
	case "ISO-8859-1", "LATIN1":
		cm = charmap.ISO8859_1
	default:
		cm = charmap.Windows1250
	}

	out, err := cm.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// EncodePanelText is the inverse of DecodePanelText; runes that can't be
// represented in the code page are replaced with '?'.
func EncodePanelText(s string, codepage string) string {
	var cm *charmap.Charmap
	switch strings.ToUpper(codepage) {
	case "CP1252", "WINDOWS-1252":
		cm = charmap.Windows1252
	case "ISO-8859-1", "LATIN1":
		cm = charmap.ISO8859_1
	default:
		cm = charmap.Windows1250
	}

	var sb strings.Builder
	for _, r := range s {
		if b, ok := cm.EncodeRune(r); ok {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('?')
		}
	}
	return sb.String()
}
