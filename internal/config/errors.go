package config

import (
	"fmt"
	"strings"
)

// SchemaError indicates a malformed schema declaration (duplicate paths,
// invalid enumerations, defaults violating their own constraints). It is a
// programming error and always fatal at startup.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "config schema: " + e.Reason
}

// OverlayParseError indicates an overlay file could not be read or parsed.
// Always fatal: a process must not continue with a partially merged
// configuration.
type OverlayParseError struct {
	Path string
	Err  error
}

func (e *OverlayParseError) Error() string {
	return fmt.Sprintf("config overlay %s: %v", e.Path, e.Err)
}

func (e *OverlayParseError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every constraint violation found in the fully
// resolved tree, including deferred environment coercion failures. It is
// reported once and aborts startup.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
