// util/json.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// UnmarshalJSONBytes decodes b into out; syntax and type errors are
// reported with the line and column of the offending input.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &serr):
		line, col := jsonPosition(b, serr.Offset)
		return fmt.Errorf("line %d, column %d: %w", line, col, err)
	case errors.As(err, &terr):
		line, col := jsonPosition(b, terr.Offset)
		return fmt.Errorf("line %d, column %d: %s: %s value is invalid for %s",
			line, col, terr.Field, terr.Value, terr.Type)
	default:
		return err
	}
}

func jsonPosition(b []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := 0; i < int(offset) && i < len(b); i++ {
		if b[i] == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
	}
	return
}

// CheckJSON walks contents against the JSON layout of T and reports
// repeated keys, keys T has no field for, and values of the wrong kind.
// Each error names the dotted key path, e.g. "audio.volume".
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	c := &jsonChecker{
		dec:    json.NewDecoder(bytes.NewReader(contents)),
		e:      e,
		fields: make(map[reflect.Type]map[string]reflect.Type),
	}

	err := c.value(reflect.TypeOf((*T)(nil)).Elem())
	if err == nil {
		if _, terr := c.dec.Token(); terr != io.EOF {
			err = fmt.Errorf("unexpected data after the top-level value")
		}
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = fmt.Errorf("unexpected end of input")
	}
	if err != nil {
		line, col := jsonPosition(contents, c.dec.InputOffset())
		e.ErrorString("line %d, column %d: %v", line, col, err)
	}
}

type jsonChecker struct {
	dec  *json.Decoder
	e    *ErrorLogger
	path []string

	// JSON key to field type, per struct type
	fields map[reflect.Type]map[string]reflect.Type
}

func (c *jsonChecker) errorf(format string, args ...interface{}) {
	var sb strings.Builder
	for i, p := range c.path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	if sb.Len() > 0 {
		sb.WriteString(": ")
	}
	sb.WriteString(fmt.Sprintf(format, args...))
	c.e.ErrorString("%s", sb.String())
}

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// value consumes one JSON value. A nil ty accepts anything; it is used
// below unknown keys so that only the first problem is reported.
func (c *jsonChecker) value(ty reflect.Type) error {
	tok, err := c.dec.Token()
	if err != nil {
		return err
	}
	for ty != nil && ty.Kind() == reflect.Ptr {
		ty = ty.Elem()
	}
	if ty != nil && (ty.Kind() == reflect.Interface || reflect.PointerTo(ty).Implements(unmarshalerType)) {
		ty = nil
	}

	switch tok {
	case json.Delim('{'):
		return c.object(ty)
	case json.Delim('['):
		return c.array(ty)
	}
	c.scalar(tok, ty)
	return nil
}

func (c *jsonChecker) object(ty reflect.Type) error {
	var fields map[string]reflect.Type
	var elem reflect.Type
	if ty != nil {
		switch ty.Kind() {
		case reflect.Struct:
			fields = c.structFields(ty)
		case reflect.Map:
			elem = ty.Elem()
		default:
			c.errorf("expected %s, found an object", ty.Kind())
		}
	}

	seen := make(map[string]bool)
	for c.dec.More() {
		tok, err := c.dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		child := elem
		if fields != nil {
			var ok bool
			if child, ok = fields[key]; !ok {
				c.errorf("%q is not a known setting. Is it misspelled?", key)
			}
		}
		c.path = append(c.path, key)
		if seen[key] {
			c.errorf("key is given more than once")
		}
		seen[key] = true
		err = c.value(child)
		c.path = c.path[:len(c.path)-1]
		if err != nil {
			return err
		}
	}
	_, err := c.dec.Token() // '}'
	return err
}

func (c *jsonChecker) array(ty reflect.Type) error {
	var elem reflect.Type
	if ty != nil {
		if k := ty.Kind(); k == reflect.Slice || k == reflect.Array {
			elem = ty.Elem()
		} else {
			c.errorf("expected %s, found an array", k)
		}
	}

	for i := 0; c.dec.More(); i++ {
		c.path = append(c.path, fmt.Sprintf("[%d]", i))
		err := c.value(elem)
		c.path = c.path[:len(c.path)-1]
		if err != nil {
			return err
		}
	}
	_, err := c.dec.Token() // ']'
	return err
}

func (c *jsonChecker) scalar(tok json.Token, ty reflect.Type) {
	if ty == nil || tok == nil {
		return
	}

	k := ty.Kind()
	switch v := tok.(type) {
	case bool:
		if k != reflect.Bool {
			c.errorf("expected %s, found %v", k, v)
		}
	case string:
		if k != reflect.String {
			c.errorf("expected %s, found %q", k, v)
		}
	case float64:
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v != math.Trunc(v) {
				c.errorf("expected an integer, found %v", v)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if v != math.Trunc(v) || v < 0 {
				c.errorf("expected a non-negative integer, found %v", v)
			}
		case reflect.Float32, reflect.Float64:
		default:
			c.errorf("expected %s, found %v", k, v)
		}
	}
}

func (c *jsonChecker) structFields(ty reflect.Type) map[string]reflect.Type {
	if f, ok := c.fields[ty]; ok {
		return f
	}
	f := make(map[string]reflect.Type)
	for _, field := range reflect.VisibleFields(ty) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		f[name] = field.Type
	}
	c.fields[ty] = f
	return f
}
