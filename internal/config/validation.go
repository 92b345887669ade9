// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"sort"
)

// validate walks the fully resolved tree against the schema and returns one
// aggregated *ValidationError covering every violation, or nil.
//
// deferred carries environment coercion failures recorded earlier in the
// pipeline; they are reported here so all configuration problems surface in
// a single diagnostic.
func validate(s *Settings, schema Schema, deferred []string) error {
	violations := append([]string(nil), deferred...)

	leafPaths := make(map[string]bool, len(schema))
	for _, f := range schema {
		leafPaths[f.Path] = true

		v, ok := getPath(s.tree, f.Path)
		if !ok {
			if !f.Nullable {
				violations = append(violations, fmt.Sprintf("%s: required field missing", f.Path))
			}
			continue
		}
		if msg := f.checkValue(v); msg != "" {
			violations = append(violations, fmt.Sprintf("%s: %s", f.Path, msg))
		}
	}

	violations = append(violations, unknownLeaves(s.tree, "", leafPaths)...)

	if len(violations) > 0 {
		sort.Strings(violations)
		return &ValidationError{Violations: violations}
	}
	return nil
}

// unknownLeaves reports tree leaves that no schema field declares — typically
// a typo in an overlay file. Descent stops at declared leaf paths so that
// map-typed fields are not mistaken for grouping nodes.
func unknownLeaves(node map[string]any, prefix string, leafPaths map[string]bool) []string {
	var out []string
	for k, v := range node {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if leafPaths[path] {
			continue
		}
		if child, ok := v.(map[string]any); ok {
			out = append(out, unknownLeaves(child, path, leafPaths)...)
			continue
		}
		out = append(out, fmt.Sprintf("%s: unknown field", path))
	}
	return out
}
