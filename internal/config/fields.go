// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// DefaultSchema is the deployment's settings schema. Callers with a
// different field set can pass their own [Schema] to [Resolve]; the shape
// here (types, defaults, env bindings) is what every standard process uses.
func DefaultSchema() Schema {
	return Schema{
		{
			Path: "process_type",
			Type: TypeString,
			Doc:  "functional identity of this process, from the executable name",
		},
		{
			Path: "process_instance_id",
			Type: TypeString,
			Doc:  "unique id of this process instance, for log correlation",
		},
		{
			Path:    "env",
			Type:    TypeEnum,
			Choices: []string{"local", "test_json", "test_mysql", "production"},
			Default: "local",
			Env:     "DEPLOY_ENV",
			Doc:     "deployment environment; test markers force the database driver",
		},
		{
			Path:    "public_url",
			Type:    TypeString,
			Default: "https://127.0.0.1:10002",
			Env:     "PUBLIC_URL",
			Doc:     "public-facing base URL of the deployment",
		},
		{
			Path:     "public_static_url",
			Type:     TypeString,
			Nullable: true,
			Env:      "PUBLIC_STATIC_URL",
			Doc:      "base URL for static assets; defaults to public_url",
		},
		{
			Path:     "public_verifier_url",
			Type:     TypeString,
			Nullable: true,
			Env:      "PUBLIC_VERIFIER_URL",
			Doc:      "base URL of the verifier service; defaults to public_url",
		},
		{
			Path: "scheme",
			Type: TypeString,
			Doc:  "URL scheme of public_url; computed, never supplied",
		},
		{
			Path:    "cachify_prefix",
			Type:    TypeString,
			Default: "v",
			Env:     "CACHIFY_PREFIX",
			Doc:     "cache-busting prefix; resolved to an absolute static URL",
		},
		{
			Path:     "var_path",
			Type:     TypeString,
			Nullable: true,
			Env:      "VAR_PATH",
			Doc:      "writable state directory; defaults to \"var\"",
		},
		{
			Path:    "locale_directory",
			Type:    TypeString,
			Default: "locale",
			Doc:     "directory holding translation catalogs",
		},
		{
			Path:    "use_minified_resources",
			Type:    TypeBool,
			Default: false,
			Env:     "MINIFIED_RESOURCES",
			Doc:     "serve minified js/css bundles",
		},
		{
			Path:    "bind_to.host",
			Type:    TypeString,
			Default: "127.0.0.1",
			Env:     "IP_ADDRESS",
			Doc:     "network interface to bind",
		},
		{
			Path:    "bind_to.port",
			Type:    TypeInt,
			Default: 0,
			Range:   &Range{Min: 0, Max: 65535},
			Env:     "PORT",
			Doc:     "TCP port to bind; 0 picks an ephemeral port",
		},
		{
			Path:    "supported_languages",
			Type:    TypeStringList,
			Default: []string{"en-US"},
			Env:     "SUPPORTED_LANGUAGES",
			Doc:     "locales served to users, comma-separated in the environment",
		},
		{
			Path:    "database.driver",
			Type:    TypeEnum,
			Choices: []string{"json", "mysql"},
			Default: "json",
			Doc:     "storage backend; test env markers override this",
		},
		{
			Path:     "database.user",
			Type:     TypeString,
			Nullable: true,
			Env:      "MYSQL_USER",
		},
		{
			Path:     "database.password",
			Type:     TypeString,
			Nullable: true,
			Env:      "MYSQL_PASSWORD",
		},
		{
			Path:    "database.name",
			Type:    TypeString,
			Default: "browserid",
		},
		{
			Path:    "database.may_write",
			Type:    TypeBool,
			Default: true,
			Doc:     "whether this process may write shared storage; forced off for serving roles",
		},
		{
			Path:    "database.max_query_time_ms",
			Type:    TypeInt,
			Default: 5000,
			Range:   &Range{Min: 0, Max: 600000},
			Doc:     "slow-query threshold before a query is abandoned",
		},
		{
			Path:     "http_proxy.host",
			Type:     TypeString,
			Nullable: true,
			Doc:      "outbound HTTP proxy host; set together with http_proxy.port via HTTP_PROXY",
		},
		{
			Path:     "http_proxy.port",
			Type:     TypeInt,
			Nullable: true,
			Range:    &Range{Min: 1, Max: 65535},
		},
		{
			Path:    "kpi.send_metrics",
			Type:    TypeBool,
			Default: false,
			Env:     "KPI_SEND_METRICS",
			Doc:     "report anonymized usage metrics",
		},
		{
			Path:    "kpi.sample_rates",
			Type:    TypeNumberMap,
			Default: map[string]float64{},
			Env:     "KPI_SAMPLE_RATES",
			Doc:     "per-domain metric sample rates, JSON-encoded in the environment",
		},
		{
			Path:    "proxy_idps",
			Type:    TypeStringMap,
			Default: map[string]string{},
			Env:     "PROXY_IDPS",
			Doc:     "domain to identity-provider map, JSON-encoded in the environment",
		},
	}
}
