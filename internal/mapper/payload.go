// Package mapper turns loosely-typed server payloads into domain entities.
//
// The backend is not consistent about casing or envelopes: the same field
// can arrive as avatar_url, avatarUrl or avatar, and objects are sometimes
// wrapped in {"data": ...}. Everything here is pure and never fails; a
// missing or malformed field becomes a sensible default.
package mapper

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Payload is a decoded JSON object.
type Payload map[string]any

// Decode parses raw JSON into a Payload. Anything that is not an object
// yields an empty Payload.
func Decode(data []byte) Payload {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{}
	}
	p, _ := AsPayload(v)
	return p
}

// DecodeList parses raw JSON into a list of payloads. A top-level object is
// searched for the first array under keys.
func DecodeList(data []byte, keys ...string) []Payload {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		p := Payload(t)
		if l, ok := p.List(keys...); ok {
			items = l
		} else if inner, ok := p.Object("data"); ok {
			items, _ = inner.List(keys...)
		} else {
			items, _ = p.List("data")
		}
	}
	out := make([]Payload, 0, len(items))
	for _, it := range items {
		if p, ok := AsPayload(it); ok {
			out = append(out, p)
		}
	}
	return out
}

// AsPayload converts v to a Payload when it is a JSON object.
func AsPayload(v any) (Payload, bool) {
	switch t := v.(type) {
	case Payload:
		return t, t != nil
	case map[string]any:
		return Payload(t), t != nil
	}
	return nil, false
}

// Unwrap returns the object nested under "data" when p is only an envelope.
func (p Payload) Unwrap() Payload {
	if p == nil {
		return Payload{}
	}
	if _, hasID := p["id"]; hasID {
		return p
	}
	if inner, ok := p.Object("data"); ok {
		return inner
	}
	return p
}

func (p Payload) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first non-empty string (or number rendered as a
// string) found under keys.
func (p Payload) String(keys ...string) string {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// Int returns the first integral value found under keys.
func (p Payload) Int(keys ...string) (int64, bool) {
	v, ok := p.lookup(keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(t), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Bool returns the first boolean found under keys, false otherwise.
func (p Payload) Bool(keys ...string) bool {
	v, ok := p.lookup(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

// Object returns the first nested object found under keys.
func (p Payload) Object(keys ...string) (Payload, bool) {
	for _, k := range keys {
		if obj, ok := AsPayload(p[k]); ok {
			return obj, true
		}
	}
	return nil, false
}

// List returns the first array found under keys.
func (p Payload) List(keys ...string) ([]any, bool) {
	for _, k := range keys {
		if l, ok := p[k].([]any); ok {
			return l, true
		}
	}
	return nil, false
}

// Strings returns the string elements of the first array found under keys.
func (p Payload) Strings(keys ...string) []string {
	l, ok := p.List(keys...)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, v := range l {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case json.Number:
			out = append(out, t.String())
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// Time returns the first valid timestamp found under keys. Strings are
// parsed against common layouts; numbers are unix seconds, or milliseconds
// when they are too large to be seconds.
func (p Payload) Time(keys ...string) (time.Time, bool) {
	v, ok := p.lookup(keys...)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case string:
		return parseTime(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return fromUnix(i)
		}
	case float64:
		return fromUnix(int64(t))
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil && !ts.IsZero() {
			return ts, true
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnix(i)
	}
	return time.Time{}, false
}

func fromUnix(i int64) (time.Time, bool) {
	if i <= 0 {
		return time.Time{}, false
	}
	if i > 1e12 {
		return time.UnixMilli(i), true
	}
	return time.Unix(i, 0), true
}
