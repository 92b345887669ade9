package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// writeOverlay writes an overlay document to a temp file and returns its path.
func writeOverlay(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// envMap turns a plain map into a lookupFunc.
func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// resolveAs runs the standard pipeline for a role with the given extra
// sources between the role override and the environment stage.
func resolveAs(t *testing.T, role Role, env map[string]string, files ...string) (*Settings, error) {
	t.Helper()
	sources := []Source{
		Defaults(),
		RoleOverride(role, defaultKnownRoles),
	}
	for _, f := range files {
		sources = append(sources, File(f))
	}
	sources = append(sources, Env(envMap(env)))
	return Resolve(DefaultSchema(), sources)
}

// ── defaults ──────────────────────────────────────────────────────────────────

// TestResolve_SchemaDefaults verifies that leaves with a declared default and
// no overlay or environment value resolve to that default.
func TestResolve_SchemaDefaults(t *testing.T) {
	s, err := resolveAs(t, "keysigner", nil)
	require.NoError(t, err)

	assert.Equal(t, "local", s.String("env"))
	assert.Equal(t, "https://127.0.0.1:10002", s.String("public_url"))
	assert.Equal(t, "127.0.0.1", s.String("bind_to.host"))
	assert.Equal(t, 0, s.Int("bind_to.port"))
	assert.Equal(t, []string{"en-US"}, s.StringList("supported_languages"))
	assert.Equal(t, "json", s.String("database.driver"))
	assert.Equal(t, 5000, s.Int("database.max_query_time_ms"))
	assert.False(t, s.Bool("use_minified_resources"))
}

// TestResolve_RoleStampedIntoSettings verifies that the detected role lands
// in process_type and that every process gets an instance id.
func TestResolve_RoleStampedIntoSettings(t *testing.T) {
	s, err := resolveAs(t, "verifier", nil)
	require.NoError(t, err)

	assert.Equal(t, Role("verifier"), s.Role())
	assert.Equal(t, "verifier", s.String("process_type"))
	assert.NotEmpty(t, s.String("process_instance_id"))
}

// ── role-based override ───────────────────────────────────────────────────────

// TestResolve_ReadMostlyRolesCannotWrite verifies that database.may_write
// resolves to false for every read-mostly role regardless of the default.
func TestResolve_ReadMostlyRolesCannotWrite(t *testing.T) {
	for _, role := range []Role{"browserid", "verifier", "router", "static"} {
		s, err := resolveAs(t, role, nil)
		require.NoError(t, err, "role %s", role)
		assert.False(t, s.Bool("database.may_write"), "role %s", role)
	}
}

// TestResolve_WriterRoleKeepsWriteAccess verifies that a role outside the
// read-mostly set keeps the default write permission.
func TestResolve_WriterRoleKeepsWriteAccess(t *testing.T) {
	s, err := resolveAs(t, "keysigner", nil)
	require.NoError(t, err)
	assert.True(t, s.Bool("database.may_write"))
}

// TestResolve_FileCannotReenableWrites verifies that an overlay file granting
// write access to a read-mostly role is overruled: the forced value is
// absolute, not just an early default.
func TestResolve_FileCannotReenableWrites(t *testing.T) {
	file := writeOverlay(t, `{"database": {"may_write": true}}`)

	s, err := resolveAs(t, "router", nil, file)
	require.NoError(t, err)
	assert.False(t, s.Bool("database.may_write"))
}

// ── overlay files ─────────────────────────────────────────────────────────────

// TestResolve_FileOverridesDefaults verifies that base values from an overlay
// file win over schema defaults.
func TestResolve_FileOverridesDefaults(t *testing.T) {
	file := writeOverlay(t, `{
		"public_url": "https://login.example.org",
		"bind_to": {"port": 8443}
	}`)

	s, err := resolveAs(t, "keysigner", nil, file)
	require.NoError(t, err)
	assert.Equal(t, "https://login.example.org", s.String("public_url"))
	assert.Equal(t, 8443, s.Int("bind_to.port"))
	// untouched keys keep their defaults
	assert.Equal(t, "127.0.0.1", s.String("bind_to.host"))
}

// TestResolve_FileMergePreservesResolvedTree verifies that merging a file
// touching a single key leaves the rest of the resolved tree intact: the
// defaults and the role stamp from earlier stages all survive.
func TestResolve_FileMergePreservesResolvedTree(t *testing.T) {
	file := writeOverlay(t, `{"use_minified_resources": false}`)

	s, err := resolveAs(t, "keysigner", nil, file)
	require.NoError(t, err)

	assert.False(t, s.Bool("use_minified_resources"))
	assert.Equal(t, "keysigner", s.String("process_type"))
	assert.Equal(t, "https://127.0.0.1:10002", s.String("public_url"))
	assert.Equal(t, "127.0.0.1", s.String("bind_to.host"))
	assert.Equal(t, "json", s.String("database.driver"))
	assert.Equal(t, []string{"en-US"}, s.StringList("supported_languages"))
}

// TestResolve_MapAndListLeavesFromFile verifies that overlay files can supply
// the map- and list-typed leaves, not just scalars.
func TestResolve_MapAndListLeavesFromFile(t *testing.T) {
	file := writeOverlay(t, `{
		"supported_languages": ["en-US", "el"],
		"kpi": {"sample_rates": {"example.org": 0.5}},
		"proxy_idps": {"example.com": "idp.example.com"}
	}`)

	s, err := resolveAs(t, "keysigner", nil, file)
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "el"}, s.StringList("supported_languages"))
	assert.Equal(t, map[string]float64{"example.org": 0.5}, s.NumberMap("kpi.sample_rates"))
	assert.Equal(t, map[string]string{"example.com": "idp.example.com"}, s.StringMap("proxy_idps"))
}

// TestResolve_LaterFileWins verifies that with files A then B defining the
// same base key, B's value is final.
func TestResolve_LaterFileWins(t *testing.T) {
	a := writeOverlay(t, `{"public_url": "https://a.example.org"}`)
	b := writeOverlay(t, `{"public_url": "https://b.example.org"}`)

	s, err := resolveAs(t, "keysigner", nil, a, b)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.org", s.String("public_url"))
}

// TestResolve_RoleOverlayWinsOverBase verifies that a role-keyed sub-mapping
// beats the same file's base value for the current role.
func TestResolve_RoleOverlayWinsOverBase(t *testing.T) {
	file := writeOverlay(t, `{
		"bind_to": {"port": 8080},
		"verifier": {"bind_to": {"port": 9090}}
	}`)

	s, err := resolveAs(t, "verifier", nil, file)
	require.NoError(t, err)
	assert.Equal(t, 9090, s.Int("bind_to.port"))
}

// TestResolve_OtherRolesOverlayStripped verifies that sub-mappings for other
// known roles never leak into the merged configuration.
func TestResolve_OtherRolesOverlayStripped(t *testing.T) {
	file := writeOverlay(t, `{
		"bind_to": {"port": 8080},
		"router": {"bind_to": {"port": 7070}}
	}`)

	s, err := resolveAs(t, "verifier", nil, file)
	require.NoError(t, err)
	assert.Equal(t, 8080, s.Int("bind_to.port"))
}

// TestResolve_CommentsInOverlay verifies that overlay files may carry
// comments on top of plain JSON.
func TestResolve_CommentsInOverlay(t *testing.T) {
	file := writeOverlay(t, `{
		// production endpoint
		"public_url": "https://login.example.org"
	}`)

	s, err := resolveAs(t, "keysigner", nil, file)
	require.NoError(t, err)
	assert.Equal(t, "https://login.example.org", s.String("public_url"))
}

// TestResolve_MalformedFileFatal verifies that an unparseable overlay aborts
// resolution with an OverlayParseError.
func TestResolve_MalformedFileFatal(t *testing.T) {
	file := writeOverlay(t, `{"public_url": `)

	_, err := resolveAs(t, "keysigner", nil, file)
	require.Error(t, err)
	var parseErr *OverlayParseError
	assert.ErrorAs(t, err, &parseErr)
}

// TestResolve_MissingFileFatal verifies that a listed but absent overlay file
// aborts resolution.
func TestResolve_MissingFileFatal(t *testing.T) {
	_, err := resolveAs(t, "keysigner", nil, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	var parseErr *OverlayParseError
	assert.ErrorAs(t, err, &parseErr)
}

// ── environment overrides ─────────────────────────────────────────────────────

// TestResolve_EnvOverridesFile verifies that environment variables are the
// highest-precedence source.
func TestResolve_EnvOverridesFile(t *testing.T) {
	file := writeOverlay(t, `{"public_url": "https://file.example.org"}`)

	s, err := resolveAs(t, "keysigner", map[string]string{
		"PUBLIC_URL": "https://env.example.org",
	}, file)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", s.String("public_url"))
}

// TestResolve_SupportedLanguagesFromEnv verifies the comma-separated list
// parse for SUPPORTED_LANGUAGES, overriding any file value.
func TestResolve_SupportedLanguagesFromEnv(t *testing.T) {
	file := writeOverlay(t, `{"supported_languages": ["pt-BR"]}`)

	s, err := resolveAs(t, "keysigner", map[string]string{
		"SUPPORTED_LANGUAGES": "en,fr,de",
	}, file)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr", "de"}, s.StringList("supported_languages"))
}

// TestResolve_HTTPProxyPair verifies that a single host:port value fills
// both http_proxy leaves, split on the first colon.
func TestResolve_HTTPProxyPair(t *testing.T) {
	s, err := resolveAs(t, "keysigner", map[string]string{
		"HTTP_PROXY": "proxy.internal:3128",
	})
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal", s.String("http_proxy.host"))
	assert.Equal(t, 3128, s.Int("http_proxy.port"))
}

// TestResolve_JSONMapFromEnv verifies the JSON parse of object-typed env
// values.
func TestResolve_JSONMapFromEnv(t *testing.T) {
	s, err := resolveAs(t, "keysigner", map[string]string{
		"KPI_SAMPLE_RATES": `{"example.org": 0.25}`,
		"PROXY_IDPS":       `{"example.com": "idp.example.com"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"example.org": 0.25}, s.NumberMap("kpi.sample_rates"))
	assert.Equal(t, map[string]string{"example.com": "idp.example.com"}, s.StringMap("proxy_idps"))
}

// TestResolve_BadEnvValueDeferredToValidation verifies that a non-integer
// PORT surfaces as a validation failure, not a silent skip.
func TestResolve_BadEnvValueDeferredToValidation(t *testing.T) {
	_, err := resolveAs(t, "keysigner", map[string]string{"PORT": "eighty"})
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "PORT")
}

// TestResolve_EnvCannotReenableWrites verifies that the forced write flag
// holds even against a hypothetical environment override attempt routed
// through an overlay-set value.
func TestResolve_EnvCannotReenableWrites(t *testing.T) {
	file := writeOverlay(t, `{"database": {"may_write": true}}`)
	s, err := resolveAs(t, "static", map[string]string{
		"DEPLOY_ENV": "production",
	}, file)
	require.NoError(t, err)
	assert.False(t, s.Bool("database.may_write"))
}

// ── derived fields ────────────────────────────────────────────────────────────

// TestResolve_SchemeAndStaticURLDerived verifies scheme extraction and the
// public_static_url fallback.
func TestResolve_SchemeAndStaticURLDerived(t *testing.T) {
	s, err := resolveAs(t, "keysigner", map[string]string{
		"PUBLIC_URL": "https://example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "https", s.String("scheme"))
	assert.Equal(t, "https://example.org", s.String("public_static_url"))
	assert.Equal(t, "https://example.org", s.String("public_verifier_url"))
}

// TestResolve_TestEnvForcesDriver verifies that the test env markers force
// the database driver even against an explicit overlay value.
func TestResolve_TestEnvForcesDriver(t *testing.T) {
	file := writeOverlay(t, `{"database": {"driver": "json"}}`)

	s, err := resolveAs(t, "keysigner", map[string]string{
		"DEPLOY_ENV": "test_mysql",
	}, file)
	require.NoError(t, err)
	assert.Equal(t, "mysql", s.String("database.driver"))

	s, err = resolveAs(t, "keysigner", map[string]string{
		"DEPLOY_ENV": "test_json",
	})
	require.NoError(t, err)
	assert.Equal(t, "json", s.String("database.driver"))
}

// TestResolve_CachifyPrefixNormalized verifies that the cache-busting prefix
// becomes an absolute URL rooted at the static host.
func TestResolve_CachifyPrefixNormalized(t *testing.T) {
	s, err := resolveAs(t, "keysigner", map[string]string{
		"PUBLIC_STATIC_URL": "https://static.example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://static.example.org/v", s.String("cachify_prefix"))
}

// TestResolve_VarPathDefault verifies the var_path fallback and that an
// explicit value survives.
func TestResolve_VarPathDefault(t *testing.T) {
	s, err := resolveAs(t, "keysigner", nil)
	require.NoError(t, err)
	assert.Equal(t, "var", s.String("var_path"))

	s, err = resolveAs(t, "keysigner", map[string]string{"VAR_PATH": "/srv/state"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/state", s.String("var_path"))
}

// ── validation ────────────────────────────────────────────────────────────────

// TestResolve_MissingProcessTypeFatal verifies that resolution without a role
// source fails validation on the required process_type field.
func TestResolve_MissingProcessTypeFatal(t *testing.T) {
	_, err := Resolve(DefaultSchema(), []Source{Defaults(), Env(envMap(nil))})
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "process_type")
}

// TestResolve_UnknownFileKeyFatal verifies that a typo'd key in an overlay
// file is reported instead of silently accepted.
func TestResolve_UnknownFileKeyFatal(t *testing.T) {
	file := writeOverlay(t, `{"public_urll": "https://typo.example.org"}`)

	_, err := resolveAs(t, "keysigner", nil, file)
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "public_urll")
}

// TestResolve_EnumViolationFatal verifies that an out-of-enumeration value is
// rejected.
func TestResolve_EnumViolationFatal(t *testing.T) {
	file := writeOverlay(t, `{"env": "staging"}`)

	_, err := resolveAs(t, "keysigner", nil, file)
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "env")
}

// TestResolve_RangeViolationFatal verifies that an out-of-range port is
// rejected.
func TestResolve_RangeViolationFatal(t *testing.T) {
	_, err := resolveAs(t, "keysigner", map[string]string{"PORT": "70000"})
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "bind_to.port")
}

// TestResolve_AggregatesViolations verifies that multiple problems surface in
// a single validation error.
func TestResolve_AggregatesViolations(t *testing.T) {
	file := writeOverlay(t, `{"env": "staging", "public_urll": "x"}`)

	_, err := resolveAs(t, "keysigner", map[string]string{"PORT": "eighty"}, file)
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.GreaterOrEqual(t, len(valErr.Violations), 3)
}

// ── Load ──────────────────────────────────────────────────────────────────────

// TestLoad_StandardOrder verifies the convenience wrapper end to end:
// CONFIG_FILES from the environment, role from argv0, env overrides on top.
func TestLoad_StandardOrder(t *testing.T) {
	file := writeOverlay(t, `{"public_url": "https://file.example.org"}`)
	t.Setenv("CONFIG_FILES", file)
	t.Setenv("PUBLIC_URL", "https://env.example.org")

	s, err := Load(Options{Argv0: "/usr/local/bin/keysigner"})
	require.NoError(t, err)
	assert.Equal(t, "keysigner", s.String("process_type"))
	assert.Equal(t, "https://env.example.org", s.String("public_url"))
}

// TestLoad_MultipleConfigFilesOrder verifies that CONFIG_FILES paths are
// applied in listed order.
func TestLoad_MultipleConfigFilesOrder(t *testing.T) {
	a := writeOverlay(t, `{"public_url": "https://a.example.org"}`)
	b := writeOverlay(t, `{"public_url": "https://b.example.org"}`)
	t.Setenv("CONFIG_FILES", a+","+b)

	s, err := Load(Options{Argv0: "keysigner"})
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.org", s.String("public_url"))
}
