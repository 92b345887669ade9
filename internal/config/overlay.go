// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"os"

	"github.com/ohler55/ojg/sen"
)

// overlayDocument is one parsed overlay file: a base mapping plus the
// sub-mapping keyed by the current process role, already separated out.
type overlayDocument struct {
	base map[string]any
	role map[string]any
}

// loadOverlay reads and parses one overlay file for the given role.
//
// Files are SEN documents: a superset of JSON that permits comments and
// relaxed punctuation. The top level must be a mapping. The sub-mapping keyed
// by role (if present) is extracted as the role overlay, and every
// known-role-keyed sub-mapping is stripped from the base so role blocks for
// other processes never leak into the merge.
func loadOverlay(path string, role Role, known []Role) (*overlayDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OverlayParseError{Path: path, Err: err}
	}

	parsed, err := sen.Parse(data)
	if err != nil {
		return nil, &OverlayParseError{Path: path, Err: err}
	}

	base, ok := parsed.(map[string]any)
	if !ok {
		return nil, &OverlayParseError{Path: path, Err: errors.New("top level is not a mapping")}
	}

	doc := &overlayDocument{base: base}

	if sub, ok := base[string(role)].(map[string]any); ok {
		doc.role = sub
	}
	for _, r := range known {
		delete(base, string(r))
	}
	// The current role may not be in the known set (e.g. ephemeral).
	delete(base, string(role))

	return doc, nil
}

// mergeInto applies the document to the settings tree: base first, then the
// role overlay on top, so role-specific values win over the same file's base
// values. Keys absent from the document leave the tree untouched.
func (d *overlayDocument) mergeInto(s *Settings) {
	mergeTree(s.tree, d.base)
	if d.role != nil {
		mergeTree(s.tree, d.role)
	}
}

// mergeTree deep-merges src into dst. Every key present in src overrides the
// corresponding dst value, including zero values (false, 0, ""); keys absent
// from src are untouched. Two mappings merge recursively, anything else is
// replaced wholesale.
func mergeTree(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				mergeTree(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}
