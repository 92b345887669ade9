// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
)

// Environment names that force a database driver for test runs. Checked
// after all overlays so they override any driver value set earlier.
const (
	envTestJSON  = "test_json"
	envTestMySQL = "test_mysql"
)

const defaultVarPath = "var"

// computeDerived fills in the fields computed from other resolved values.
// The order is fixed: each step may depend on the previous ones. Only leaves
// the schema declares are touched, so a reduced custom schema skips the
// derivations it has no fields for.
func computeDerived(s *Settings, schema Schema) error {
	declared := func(path string) bool {
		_, ok := schema.field(path)
		return ok
	}

	publicURL := s.String("public_url")
	if declared("scheme") {
		u, err := url.Parse(publicURL)
		if err != nil {
			return fmt.Errorf("parsing public_url %q: %w", publicURL, err)
		}
		s.set("scheme", u.Scheme)
	}

	if declared("var_path") && (!s.Has("var_path") || s.isNull("var_path")) {
		s.set("var_path", defaultVarPath)
	}

	if declared("database.driver") {
		switch s.String("env") {
		case envTestJSON:
			s.set("database.driver", "json")
		case envTestMySQL:
			s.set("database.driver", "mysql")
		}
	}

	if declared("public_static_url") && (!s.Has("public_static_url") || s.isNull("public_static_url")) {
		s.set("public_static_url", publicURL)
	}
	if declared("public_verifier_url") && (!s.Has("public_verifier_url") || s.isNull("public_verifier_url")) {
		s.set("public_verifier_url", publicURL)
	}

	// The cache-busting prefix becomes an absolute URL rooted at the static
	// host, with any "." or ".." segments resolved away.
	if declared("cachify_prefix") {
		prefix, err := url.JoinPath(s.String("public_static_url"), s.String("cachify_prefix"))
		if err != nil {
			return fmt.Errorf("building cachify_prefix: %w", err)
		}
		s.set("cachify_prefix", prefix)
	}

	return nil
}
