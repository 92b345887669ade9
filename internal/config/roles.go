// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Role is the functional identity of a running process, derived from its
// executable name. It selects role-specific overlay sections and forces
// security-relevant defaults.
type Role string

// RoleEphemeral is the fallback identity of a process whose executable name
// is empty or unrecognizable.
const RoleEphemeral Role = "ephemeral"

// defaultKnownRoles is the deployment's entry-point set used when no bin
// directory is available to list. The authoritative set comes from
// [KnownRoles].
var defaultKnownRoles = []Role{"browserid", "verifier", "keysigner", "router", "static"}

// readMostlyRoles are the process types that serve traffic rather than write
// state. Their database write permission is forced off during resolution and
// cannot be re-enabled by any file or environment value.
var readMostlyRoles = map[Role]bool{
	"browserid": true,
	"verifier":  true,
	"router":    true,
	"static":    true,
}

// DetectRole derives the process role from the invoking executable's name:
// directory and extension stripped. An empty result falls back to
// [RoleEphemeral].
func DetectRole(argv0 string) Role {
	name := filepath.Base(argv0)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return RoleEphemeral
	}
	return Role(name)
}

// KnownRoles lists the deployment's process roles by reading the directory of
// executable entry points: each regular file's base name, extension stripped,
// names one role. When the directory cannot be read the default deployment
// set is returned, so overlay stripping still covers the standard roles.
func KnownRoles(binDir string) []Role {
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return append([]Role(nil), defaultKnownRoles...)
	}

	var roles []Role
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if name != "" {
			roles = append(roles, Role(name))
		}
	}
	if len(roles) == 0 {
		return append([]Role(nil), defaultKnownRoles...)
	}
	return roles
}
