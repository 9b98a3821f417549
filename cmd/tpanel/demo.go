// cmd/tpanel/demo.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"github.com/tpanel/tpanel/button"
	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/panel"
	"github.com/tpanel/tpanel/system"
)

const (
	demoPage   = 1
	demoKeypad = 500
)

// demoPalette is used when the configuration has no palette.
var demoPalette = []colors.PaletteEntry{
	{Index: 0, Name: "Black", Color: 0x000000FF},
	{Index: 1, Name: "White", Color: 0xFFFFFFFF},
	{Index: 2, Name: "Red", Color: 0xFF0000FF},
	{Index: 3, Name: "Green", Color: 0x00FF00FF},
	{Index: 4, Name: "Blue", Color: 0x0000FFFF},
	{Index: 5, Name: "Grey", Color: 0x808080FF},
	{Index: 6, Name: "Dark Grey", Color: 0x404040FF},
	{Index: 7, Name: "Orange", Color: 0xFF8000FF},
}

func demoInstance(n int, fill, text string) button.Instance {
	in := button.MakeInstance(n)
	in.FillColor = fill
	in.TextColor = "White"
	in.BorderColor = "Grey"
	in.BorderStyle = "bevel raised -m"
	in.Text = text
	return in
}

// demoPages returns a page with a few system buttons and a keypad popup.
func demoPages(width, height int) []panel.Page {
	clock := button.Definition{
		ID:             1,
		Name:           "clock",
		Left:           20,
		Top:            20,
		Width:          200,
		Height:         40,
		AddressChannel: system.AddressTimeStandard,
		Instances:      []button.Instance{demoInstance(1, "Dark Grey", "")},
	}
	clock.Instances[0].BorderStyle = "none"

	name := button.Definition{
		ID:             2,
		Name:           "panel name",
		Left:           240,
		Top:            20,
		Width:          200,
		Height:         40,
		AddressChannel: system.AddressPanelName,
		Instances:      []button.Instance{demoInstance(1, "Dark Grey", "")},
	}
	name.Instances[0].TextEffect = button.EffectSoftShadow

	lights := button.Definition{
		ID:          3,
		Name:        "lights",
		Left:        20,
		Top:         80,
		Width:       120,
		Height:      60,
		Feedback:    button.FeedbackMomentary,
		ChannelPort: 1,
		Channel:     1,
		Instances:   []button.Instance{demoInstance(1, "Blue", "Lights"), demoInstance(2, "Orange", "Lights")},
	}
	lights.Instances[1].TextEffect = button.EffectGlowS

	sip := button.Definition{
		ID:        4,
		Name:      "sip",
		Left:      160,
		Top:       80,
		Width:     120,
		Height:    60,
		Channel:   system.ChannelSIPEnable,
		Instances: []button.Instance{demoInstance(1, "Grey", "SIP off"), demoInstance(2, "Green", "SIP on")},
	}
	for i := range sip.Instances {
		sip.Instances[i].BorderStyle = "circle 40"
	}

	volume := button.Definition{
		ID:          5,
		Name:        "volume",
		Type:        button.Bargraph,
		Left:        300,
		Top:         80,
		Width:       40,
		Height:      200,
		ChannelPort: 1,
		Level:       system.LevelVolume,
		RangeHigh:   100,
		Instances:   []button.Instance{demoInstance(1, "Dark Grey", ""), demoInstance(2, "Green", "")},
	}

	mainPage := panel.Page{
		ID:        demoPage,
		Name:      "main",
		Width:     width,
		Height:    height,
		FillColor: "Black",
		Buttons:   []button.Definition{clock, name, lights, sip, volume},
	}

	const size, gap = 60, 16
	keypad := panel.Page{
		ID:        demoKeypad,
		Name:      "keypad",
		Popup:     true,
		Left:      width - 264,
		Top:       20,
		Width:     3*size + 4*gap,
		Height:    4*size + 8*gap,
		FillColor: "Dark Grey",
		Opacity:   230,
	}
	for i, label := range "123456789*0#" {
		row, col := i/3, i%3
		keypad.Buttons = append(keypad.Buttons, button.Definition{
			ID:        10 + i,
			Name:      "key " + string(label),
			Left:      gap + col*(size+gap),
			Top:       gap + row*(size+gap),
			Width:     size,
			Height:    size,
			Channel:   system.KeyKey,
			Instances: []button.Instance{demoInstance(1, "Grey", string(label)), demoInstance(2, "White", string(label))},
		})
	}
	keypad.Buttons = append(keypad.Buttons, button.Definition{
		ID:        30,
		Name:      "enter",
		Left:      gap,
		Top:       gap + 4*(size+gap),
		Width:     3*size + 2*gap,
		Height:    2 * gap,
		Channel:   system.KeyEnter,
		Instances: []button.Instance{demoInstance(1, "Green", "Enter")},
	})

	return []panel.Page{mainPage, keypad}
}

// pageBitmaps lists the images the pages use so they can be loaded
// before the pages are shown.
func pageBitmaps(pages []panel.Page) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, pg := range pages {
		add(pg.Bitmap)
		for _, b := range pg.Buttons {
			for _, in := range b.Instances {
				add(in.Bitmap)
				add(in.Icon)
				add(in.ChameleonImage)
			}
		}
	}
	return names
}
