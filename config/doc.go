// Package config loads the optional stint configuration file. The file sets
// process-wide defaults (activation, default run count, report styling,
// warning verbosity) without code changes; it is named by the STINT_CONFIG
// environment variable and applied once at startup.
//
// Files are YAML, validated twice: structurally against a JSON Schema and
// semantically by ValidateConfig.
package config
