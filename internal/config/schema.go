// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
)

// FieldType is the semantic type of a schema leaf.
type FieldType int

const (
	// TypeString is a free-form string value.
	TypeString FieldType = iota
	// TypeInt is an integer value, optionally range-constrained.
	TypeInt
	// TypeNumber is a floating-point value.
	TypeNumber
	// TypeBool is a boolean value.
	TypeBool
	// TypeEnum is a string restricted to a fixed set of choices.
	TypeEnum
	// TypeStringList is an ordered list of strings. When bound to an
	// environment variable the value is parsed as a comma-separated string.
	TypeStringList
	// TypeStringMap is a mapping from string keys to string values
	// (e.g. a proxy-IdP domain map). When bound to an environment variable
	// the value is parsed as a JSON object.
	TypeStringMap
	// TypeNumberMap is a mapping from string keys to numeric values
	// (e.g. per-domain sample rates). When bound to an environment variable
	// the value is parsed as a JSON object.
	TypeNumberMap
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeEnum:
		return "enum"
	case TypeStringList:
		return "string list"
	case TypeStringMap:
		return "string map"
	case TypeNumberMap:
		return "number map"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Range constrains a TypeInt leaf to [Min, Max] inclusive.
type Range struct {
	Min int
	Max int
}

// Field describes one leaf of the configuration schema tree.
//
// Path is a dotted key path ("database.driver"); interior path segments are
// pure grouping and carry no type or constraint of their own.
type Field struct {
	// Path is the unique dotted key path of the leaf.
	Path string

	// Type is the semantic type the resolved value must satisfy.
	Type FieldType

	// Nullable marks the leaf as optional: nil is a valid resolved value,
	// and a leaf with no default starts out explicitly null rather than
	// missing.
	Nullable bool

	// Default is the value the leaf holds before any source is applied.
	// nil means no default.
	Default any

	// Choices is the allowed value set for TypeEnum leaves.
	Choices []string

	// Range is the optional inclusive bound for TypeInt leaves.
	Range *Range

	// Env is the name of the environment variable bound to this leaf, if
	// any. Environment values are the highest-precedence source.
	Env string

	// Doc describes the leaf. Non-functional.
	Doc string
}

// Schema is an ordered collection of configuration fields forming a tree of
// dotted paths.
type Schema []Field

// check verifies the schema itself is well formed. A malformed schema is a
// programming error and fails process startup.
func (s Schema) check() error {
	leaves := make(map[string]bool, len(s))
	interior := make(map[string]bool)

	for _, f := range s {
		if f.Path == "" {
			return &SchemaError{Reason: "field with empty path"}
		}
		if leaves[f.Path] {
			return &SchemaError{Reason: fmt.Sprintf("duplicate field %q", f.Path)}
		}
		if interior[f.Path] {
			return &SchemaError{Reason: fmt.Sprintf("field %q is both a leaf and a group", f.Path)}
		}
		leaves[f.Path] = true

		for _, p := range parents(f.Path) {
			if leaves[p] {
				return &SchemaError{Reason: fmt.Sprintf("field %q is both a leaf and a group", p)}
			}
			interior[p] = true
		}

		if f.Type == TypeEnum && len(f.Choices) == 0 {
			return &SchemaError{Reason: fmt.Sprintf("enum field %q has no choices", f.Path)}
		}
		if f.Type != TypeEnum && len(f.Choices) > 0 {
			return &SchemaError{Reason: fmt.Sprintf("field %q has choices but is not an enum", f.Path)}
		}
		if f.Range != nil && f.Type != TypeInt {
			return &SchemaError{Reason: fmt.Sprintf("field %q has a range but is not an int", f.Path)}
		}
		if f.Default != nil {
			if msg := f.checkValue(f.Default); msg != "" {
				return &SchemaError{Reason: fmt.Sprintf("default for %q: %s", f.Path, msg)}
			}
		}
	}

	return nil
}

// defaults builds a settings tree with every leaf at its declared default.
// Nullable leaves without a default are set to explicit null; required leaves
// without a default are left absent and must be supplied by a later stage.
func (s Schema) defaults() map[string]any {
	tree := make(map[string]any)
	for _, f := range s {
		switch {
		case f.Default != nil:
			setPath(tree, f.Path, looseValue(f.Default))
		case f.Nullable:
			setPath(tree, f.Path, nil)
		}
	}
	return tree
}

// looseValue converts typed map and list defaults to the loose forms the
// overlay parser produces, so the in-flight tree holds one representation
// and file merges never meet a typed container.
func looseValue(v any) any {
	switch val := v.(type) {
	case []string:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	case map[string]float64:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	default:
		return v
	}
}

// field returns the schema leaf at path, if any.
func (s Schema) field(path string) (Field, bool) {
	for _, f := range s {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// checkValue reports why v is not a valid value for f, or "" if it is.
func (f Field) checkValue(v any) string {
	if v == nil {
		if f.Nullable {
			return ""
		}
		return "is null but not nullable"
	}

	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("expected string, got %T", v)
		}
	case TypeInt:
		n, ok := asInt(v)
		if !ok {
			return fmt.Sprintf("expected int, got %T", v)
		}
		if f.Range != nil && (n < f.Range.Min || n > f.Range.Max) {
			return fmt.Sprintf("%d out of range [%d, %d]", n, f.Range.Min, f.Range.Max)
		}
	case TypeNumber:
		if _, ok := asNumber(v); !ok {
			return fmt.Sprintf("expected number, got %T", v)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("expected bool, got %T", v)
		}
	case TypeEnum:
		str, ok := v.(string)
		if !ok {
			return fmt.Sprintf("expected string, got %T", v)
		}
		for _, c := range f.Choices {
			if str == c {
				return ""
			}
		}
		return fmt.Sprintf("%q not one of %v", str, f.Choices)
	case TypeStringList:
		if _, ok := asStringList(v); !ok {
			return fmt.Sprintf("expected list of strings, got %T", v)
		}
	case TypeStringMap:
		if _, ok := asStringMap(v); !ok {
			return fmt.Sprintf("expected map of strings, got %T", v)
		}
	case TypeNumberMap:
		if _, ok := asNumberMap(v); !ok {
			return fmt.Sprintf("expected map of numbers, got %T", v)
		}
	}

	return ""
}

// parents returns all interior paths above a dotted leaf path, e.g.
// "a.b.c" -> ["a", "a.b"].
func parents(path string) []string {
	var out []string
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			out = append(out, path[:i])
		}
	}
	return out
}
