// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"strings"
)

// Settings is the fully resolved configuration of a process.
//
// It is created once by [Resolve] or [Load], mutated only during resolution,
// and read-only afterwards: the type exports no mutators and accessors never
// expose interior references, so a *Settings can be shared freely across the
// process without any locking.
type Settings struct {
	tree map[string]any
	role Role
}

// Role returns the process role the settings were resolved for.
func (s *Settings) Role() Role {
	return s.role
}

// Has reports whether a value (including explicit null) is present at the
// dotted key path.
func (s *Settings) Has(path string) bool {
	_, ok := getPath(s.tree, path)
	return ok
}

// Get returns the raw value at the dotted key path.
func (s *Settings) Get(path string) (any, bool) {
	v, ok := getPath(s.tree, path)
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// String returns the string at path, or "" when absent, null, or not a
// string.
func (s *Settings) String(path string) string {
	v, _ := getPath(s.tree, path)
	str, _ := v.(string)
	return str
}

// Int returns the integer at path, or 0 when absent or not an integer.
func (s *Settings) Int(path string) int {
	v, _ := getPath(s.tree, path)
	n, _ := asInt(v)
	return n
}

// Bool returns the boolean at path, or false when absent or not a boolean.
func (s *Settings) Bool(path string) bool {
	v, _ := getPath(s.tree, path)
	b, _ := v.(bool)
	return b
}

// StringList returns the string list at path, or nil when absent or not a
// list of strings.
func (s *Settings) StringList(path string) []string {
	v, _ := getPath(s.tree, path)
	list, _ := asStringList(v)
	return list
}

// StringMap returns the string map at path, or nil when absent or not a map
// of strings.
func (s *Settings) StringMap(path string) map[string]string {
	v, _ := getPath(s.tree, path)
	m, _ := asStringMap(v)
	return m
}

// NumberMap returns the numeric map at path, or nil when absent or not a map
// of numbers.
func (s *Settings) NumberMap(path string) map[string]float64 {
	v, _ := getPath(s.tree, path)
	m, _ := asNumberMap(v)
	return m
}

// Tree returns a deep copy of the resolved tree, suitable for serialization
// or diagnostic dumps. Mutating the copy does not affect the settings.
func (s *Settings) Tree() map[string]any {
	out, _ := copyValue(s.tree).(map[string]any)
	return out
}

// set writes a value at a dotted key path. Resolution-internal.
func (s *Settings) set(path string, v any) {
	setPath(s.tree, path, v)
}

// isNull reports whether path holds an explicit null.
func (s *Settings) isNull(path string) bool {
	v, ok := getPath(s.tree, path)
	return ok && v == nil
}

// ── tree helpers ──────────────────────────────────────────────────────────────

func getPath(tree map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	node := tree
	for i, p := range parts {
		v, ok := node[p]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		node, ok = v.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

func setPath(tree map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = v
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	case map[string]float64:
		out := make(map[string]float64, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	default:
		return v
	}
}

// ── value coercions ───────────────────────────────────────────────────────────
//
// Overlay files, environment parsing, and schema defaults produce different
// concrete Go types for the same semantic type (e.g. int64 from the file
// parser, int from defaults), so coercion is centralized here.

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

func asStringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, e := range m {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[k] = str
		}
		return out, true
	}
	return nil, false
}

func asNumberMap(v any) (map[string]float64, bool) {
	switch m := v.(type) {
	case map[string]float64:
		out := make(map[string]float64, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out, true
	case map[string]any:
		out := make(map[string]float64, len(m))
		for k, e := range m {
			n, ok := asNumber(e)
			if !ok {
				return nil, false
			}
			out[k] = n
		}
		return out, true
	}
	return nil, false
}
