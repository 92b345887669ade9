// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// loaderEnv holds the environment variables that steer the loader itself, as
// opposed to the ones bound to individual schema leaves.
type loaderEnv struct {
	// ConfigFiles is the ordered, comma-separated list of overlay file
	// paths. Files are applied in listed order; later files win.
	ConfigFiles []string `env:"CONFIG_FILES" envSeparator:","`

	// BinDir is the directory of executable entry points used to derive
	// the set of known process roles.
	BinDir string `env:"BIN_DIR"`
}

// parseLoaderEnv populates the loader's own settings from the process
// environment via the caarlos0/env struct tags above.
func parseLoaderEnv() (loaderEnv, error) {
	var le loaderEnv
	if err := env.Parse(&le); err != nil {
		return le, fmt.Errorf("error getting env configs: %w", err)
	}
	return le, nil
}

// envHTTPProxy sets both halves of the http_proxy pair from a single
// "host:port" value, split on the first colon.
const envHTTPProxy = "HTTP_PROXY"

// lookupFunc abstracts os.LookupEnv so resolution stays testable with a
// synthetic environment.
type lookupFunc func(key string) (string, bool)

// applyEnv overrides schema leaves from their bound environment variables.
// Environment values are the highest-precedence source.
//
// Coercion failures are not fatal here: they are recorded and surfaced
// inside the aggregated validation error, so a bad value is reported
// alongside every other configuration problem in one pass.
func applyEnv(s *Settings, schema Schema, lookup lookupFunc) []string {
	var deferred []string

	for _, f := range schema {
		if f.Env == "" {
			continue
		}
		raw, ok := lookup(f.Env)
		if !ok {
			continue
		}
		v, err := parseEnvValue(f, raw)
		if err != nil {
			deferred = append(deferred, fmt.Sprintf("%s (env %s): %v", f.Path, f.Env, err))
			continue
		}
		s.set(f.Path, looseValue(v))
	}

	if raw, ok := lookup(envHTTPProxy); ok && raw != "" {
		host, port, found := strings.Cut(raw, ":")
		if !found {
			deferred = append(deferred, fmt.Sprintf("http_proxy (env %s): %q is not host:port", envHTTPProxy, raw))
		} else if n, err := strconv.Atoi(port); err != nil {
			deferred = append(deferred, fmt.Sprintf("http_proxy.port (env %s): %v", envHTTPProxy, err))
		} else {
			s.set("http_proxy.host", host)
			s.set("http_proxy.port", n)
		}
	}

	return deferred
}

// parseEnvValue coerces the textual environment value to the field's
// declared type.
func parseEnvValue(f Field, raw string) (any, error) {
	switch f.Type {
	case TypeString, TypeEnum:
		return raw, nil
	case TypeInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing int: %w", err)
		}
		return n, nil
	case TypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing number: %w", err)
		}
		return n, nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing bool: %w", err)
		}
		return b, nil
	case TypeStringList:
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case TypeStringMap:
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("parsing JSON map: %w", err)
		}
		return m, nil
	case TypeNumberMap:
		var m map[string]float64
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("parsing JSON map: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", f.Type)
	}
}
