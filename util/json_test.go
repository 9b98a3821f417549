// util/json_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strings"
	"testing"
)

type testSIP struct {
	Proxy   string `json:"proxy"`
	Port    int    `json:"port"`
	Enabled bool   `json:"enabled"`
}

type testFont struct {
	Index int     `json:"index"`
	File  string  `json:"file"`
	Size  float64 `json:"size,omitempty"`
}

type testSettings struct {
	Volume  uint              `json:"volume"`
	SIP     testSIP           `json:"sip"`
	Fonts   []testFont        `json:"fonts"`
	Names   map[string]string `json:"names"`
	Ignored int               `json:"-"`
	private int
}

func TestCheckJSON(t *testing.T) {
	var e ErrorLogger
	CheckJSON[testSettings]([]byte(`{
  "volume": 50,
  "sip": {"proxy": "pbx", "port": 5060, "enabled": true},
  "fonts": [{"index": 1, "file": "arial.ttf", "size": 10.5}],
  "names": {"a": "b"}
}`), &e)
	if e.HaveErrors() {
		t.Errorf("expected no errors, got %s", e.String())
	}

	for _, test := range []struct {
		name   string
		json   string
		expect []string
	}{
		{"duplicate", `{"volume": 50, "volume": 60}`, []string{"volume: key is given more than once"}},
		{"nested duplicate", `{"sip": {"port": 1, "port": 2}}`, []string{"sip.port: key is given more than once"}},
		{"misspelled", `{"sip": {"proxi": "pbx"}}`, []string{`sip: "proxi" is not a known setting`}},
		{"unexported", `{"private": 1, "Ignored": 2}`, []string{`"private" is not`, `"Ignored" is not`}},
		{"string for slice", `{"fonts": "a.ttf"}`, []string{"fonts: expected slice"}},
		{"array element", `{"fonts": [{"index": 1}, {"index": "x"}]}`, []string{"fonts[1].index: expected int"}},
		{"fraction", `{"sip": {"port": 5060.5}}`, []string{"sip.port: expected an integer"}},
		{"negative", `{"volume": -3}`, []string{"volume: expected a non-negative integer"}},
		{"bool", `{"sip": {"enabled": "yes"}}`, []string{"sip.enabled: expected bool"}},
		{"map value", `{"names": {"a": 1}}`, []string{"names.a: expected string"}},
		{"object for scalar", `{"volume": {}}`, []string{"volume: expected uint, found an object"}},
		{"truncated", `{"volume": 50,`, []string{"unexpected end of input"}},
		{"syntax", "{\n  \"volume\": 50 x}", []string{"line 2"}},
		{"trailing", `{"volume": 50} {}`, []string{"unexpected data"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			var e ErrorLogger
			e.Push("tpanel.json")
			CheckJSON[testSettings]([]byte(test.json), &e)
			if len(e.Errors()) != len(test.expect) {
				t.Fatalf("expected %d errors, got %d: %s", len(test.expect), len(e.Errors()), e.String())
			}
			for i, exp := range test.expect {
				if !strings.HasPrefix(e.Errors()[i], "tpanel.json: ") {
					t.Errorf("expected error to start with the file name, got %s", e.Errors()[i])
				}
				if !strings.Contains(e.Errors()[i], exp) {
					t.Errorf("expected error %d to mention %q, got %s", i, exp, e.Errors()[i])
				}
			}
		})
	}
}

func TestCheckJSONUnknownSubtree(t *testing.T) {
	// Only the unknown key itself is reported, not its contents.
	var e ErrorLogger
	CheckJSON[testSettings]([]byte(`{"audoi": {"volume": "loud", "x": [1, 2]}, "volume": 1}`), &e)
	if len(e.Errors()) != 1 || !strings.Contains(e.String(), "audoi") {
		t.Errorf("expected a single error for audoi, got %s", e.String())
	}
}

func TestUnmarshalJSONBytes(t *testing.T) {
	var s testSettings
	if err := UnmarshalJSONBytes([]byte(`{"volume": 7, "sip": {"port": 5061}}`), &s); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s.Volume != 7 || s.SIP.Port != 5061 {
		t.Errorf("expected volume 7 and port 5061, got %d and %d", s.Volume, s.SIP.Port)
	}

	err := UnmarshalJSONBytes([]byte("{\n  \"sip\": {\"port\": \"x\"}\n}"), &s)
	if err == nil || !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), "port") {
		t.Errorf("expected type error at line 2 naming port, got %v", err)
	}

	err = UnmarshalJSONBytes([]byte("{\n\n  \"volume\" 1}"), &s)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected syntax error at line 3, got %v", err)
	}
}
