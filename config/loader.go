package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Load reads, schema-checks, and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse loads a config from raw YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validateSchema(&cfg); err != nil {
		return nil, err
	}

	if errs := ValidateConfig(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

// validateSchema checks the parsed config against the JSON Schema. Going
// through the struct first normalizes YAML into the JSON data model the
// schema library expects.
func validateSchema(cfg *Config) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("stint-config.json", strings.NewReader(configSchema)); err != nil {
		return fmt.Errorf("loading config schema: %w", err)
	}
	schema, err := compiler.Compile("stint-config.json")
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config schema violation: %w", err)
	}
	return nil
}
