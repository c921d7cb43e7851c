/*
Package config provides configuration for hosts embedding condeval.

# Overview

Config wraps a map[string]any, typically decoded from YAML or JSON, and
exposes typed accessors that fall back to defaults on missing keys or type
mismatches. Keys may be dotted paths into nested maps.

	cfg, err := config.FromFile("condeval.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	driver := cfg.String("store.driver", "memory")

# Settings

ParseSettings turns a Config into the catalog Settings:

	store:
	  driver: sqlite
	  path: ${DATA_DIR}/conditions.db
	  cache_size: 128
	log:
	  level: debug
	metrics:
	  enabled: true
	tracing:
	  enabled: false

Unknown store drivers, negative cache sizes and unparseable log levels are
errors; everything else falls back to DefaultSettings.

ApplyEnv layers CONDEVAL_* environment variables on top, so deployments can
override a checked-in file:

	settings, err := config.ParseSettings(cfg)
	...
	settings, err = config.ApplyEnv(settings)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
