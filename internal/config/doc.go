// Package config resolves process-startup configuration for a multi-service
// deployment.
//
// Configuration is assembled from multiple sources in a fixed precedence
// order (later sources override earlier ones):
//  1. Schema defaults
//  2. Role-based overrides (derived from the executable name)
//  3. External overlay files, in listed order (CONFIG_FILES)
//  4. Environment variables
//
// After all sources are applied, derived fields are computed and the final
// tree is validated against the schema. Any failure is fatal: a process must
// not start with a partially resolved or invalid configuration.
//
// The main entry points are [Load] for the standard source order and
// [Resolve] for an explicit one. Both return an immutable [Settings] value
// intended to be constructed once and passed into every component that needs
// it.
package config
