// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package discover enumerates test-suite files for the deployment's test
// runner.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is one discovered suite file. Name is the file name with its
// extension stripped; Path is the full path under the search root.
type Entry struct {
	Name string
	Path string
}

// Discover walks root recursively and returns, in lexical walk order, every
// file whose name ends in ext, is not on the ignore list, and whose name
// matches the glob pattern. Directories are always descended regardless of
// the pattern; only files are pattern- and ignore-filtered.
func Discover(root, ext string, ignore []string, pattern string) ([]Entry, error) {
	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}

	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, ext) || ignored[name] {
			return nil
		}

		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if !ok {
			return nil
		}

		entries = append(entries, Entry{
			Name: strings.TrimSuffix(name, ext),
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering suites under %s: %w", root, err)
	}

	return entries, nil
}
