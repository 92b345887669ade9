// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"

	"github.com/google/uuid"
)

// Source is one configuration input in the resolution order. Sources are
// applied strictly in the order given to [Resolve]; later sources override
// earlier ones, which makes the precedence an explicit, testable parameter.
type Source interface {
	apply(r *resolution) error
}

type resolution struct {
	settings *Settings
	schema   Schema
	known    []Role
	// deferred collects environment coercion failures for the final
	// aggregated validation error.
	deferred []string
	// protected is set when the role override forced the database write
	// flag off; the flag is re-asserted after all sources so no later
	// file or environment value can silently re-enable writes.
	protected bool
}

// Defaults seeds every schema leaf with its declared default. It is normally
// the first source.
func Defaults() Source {
	return defaultsSource{}
}

type defaultsSource struct{}

func (defaultsSource) apply(r *resolution) error {
	r.settings.tree = r.schema.defaults()
	return nil
}

// RoleOverride records the process role, stamps a per-process instance id,
// and forces the database write flag off for read-mostly serving roles.
// known is the deployment's full role set, used later to strip role blocks
// from overlay files.
func RoleOverride(role Role, known []Role) Source {
	return roleSource{role: role, known: known}
}

type roleSource struct {
	role  Role
	known []Role
}

func (src roleSource) apply(r *resolution) error {
	r.settings.role = src.role
	r.known = src.known
	r.settings.set("process_type", string(src.role))
	r.settings.set("process_instance_id", uuid.NewString())
	if readMostlyRoles[src.role] {
		r.settings.set("database.may_write", false)
		r.protected = true
	}
	return nil
}

// File merges one overlay file: its stripped base mapping first, then the
// sub-mapping keyed by the current role. Listing several File sources in
// order gives later files precedence.
func File(path string) Source {
	return fileSource{path: path}
}

type fileSource struct {
	path string
}

func (src fileSource) apply(r *resolution) error {
	doc, err := loadOverlay(src.path, r.settings.role, r.known)
	if err != nil {
		return err
	}
	doc.mergeInto(r.settings)
	return nil
}

// Env overrides schema leaves from their bound environment variables using
// the supplied lookup (nil means the process environment). Normally the last
// source.
func Env(lookup lookupFunc) Source {
	return envSource{lookup: lookup}
}

type envSource struct {
	lookup lookupFunc
}

func (src envSource) apply(r *resolution) error {
	lookup := src.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r.deferred = append(r.deferred, applyEnv(r.settings, r.schema, lookup)...)
	return nil
}

// Resolve merges the given sources in order into one validated settings
// value. The pipeline is pure and synchronous: check the schema, apply each
// source, re-assert the protected write flag, compute derived fields, then
// validate the whole tree. Any error is fatal to startup — the caller must
// not continue with a partially resolved configuration.
func Resolve(schema Schema, sources []Source) (*Settings, error) {
	if err := schema.check(); err != nil {
		return nil, err
	}

	r := &resolution{
		settings: &Settings{tree: make(map[string]any), role: RoleEphemeral},
		schema:   schema,
	}

	for _, src := range sources {
		if err := src.apply(r); err != nil {
			return nil, err
		}
	}

	// The role override ran before file and environment sources so that
	// those stages layer normally, but for protected roles it has the
	// final word on the write flag.
	if r.protected {
		r.settings.set("database.may_write", false)
	}

	if err := computeDerived(r.settings, schema); err != nil {
		return nil, err
	}

	if err := validate(r.settings, schema, r.deferred); err != nil {
		return nil, err
	}

	return r.settings, nil
}

// Options configures [Load].
type Options struct {
	// Argv0 is the invoking executable's name used for role detection.
	// Empty means os.Args[0].
	Argv0 string

	// BinDir overrides the entry-point directory used to list known roles.
	// Empty means the BIN_DIR environment variable, falling back to the
	// default deployment set.
	BinDir string
}

// Load resolves configuration with the standard source order: schema
// defaults, role override from the executable name, overlay files from
// CONFIG_FILES (in listed order), then environment variables.
func Load(opts Options) (*Settings, error) {
	le, err := parseLoaderEnv()
	if err != nil {
		return nil, err
	}

	argv0 := opts.Argv0
	if argv0 == "" && len(os.Args) > 0 {
		argv0 = os.Args[0]
	}
	binDir := opts.BinDir
	if binDir == "" {
		binDir = le.BinDir
	}

	sources := []Source{
		Defaults(),
		RoleOverride(DetectRole(argv0), KnownRoles(binDir)),
	}
	for _, path := range le.ConfigFiles {
		if path == "" {
			continue
		}
		sources = append(sources, File(path))
	}
	sources = append(sources, Env(nil))

	return Resolve(DefaultSchema(), sources)
}
