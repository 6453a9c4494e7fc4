package fields

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemafields/pkg/node"
)

// FieldConfig holds the overrides for one path. Include and Exclude only
// apply to object fields; a nil Include keeps every declared property.
type FieldConfig struct {
	Validators []node.Validator `json:"-" yaml:"-"`
	Readonly   bool             `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Include    []string         `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude    []string         `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Rules      []Rule           `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Config maps dotted field paths to overrides. It is read, never written,
// during a compilation.
type Config map[string]FieldConfig

// Lookup returns the entry for path, or the zero FieldConfig.
func (c Config) Lookup(path string) FieldConfig {
	if c == nil {
		return FieldConfig{}
	}
	return c[path]
}

// With returns a copy of c with path set to conf.
func (c Config) With(path string, conf FieldConfig) Config {
	out := make(Config, len(c)+1)
	for key, value := range c {
		out[key] = value
	}
	out[path] = conf
	return out
}

// Paths returns the configured paths in sorted order.
func (c Config) Paths() []string {
	out := make([]string, 0, len(c))
	for path := range c {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Check verifies every configured path addresses a field of root.
func (c Config) Check(root *Field) error {
	if len(c) == 0 {
		return nil
	}
	known := make(map[string]struct{})
	_ = root.Walk(func(f *Field) error {
		known[f.Path] = struct{}{}
		return nil
	})
	var unknown []string
	for _, path := range c.Paths() {
		if _, ok := known[path]; !ok {
			unknown = append(unknown, path)
		}
	}
	if len(unknown) > 0 {
		return &UnknownConfigPathError{Paths: unknown}
	}
	return nil
}

// LoadConfig decodes a YAML or JSON config document keyed by field path.
// Rules are compiled into validators appended to each entry.
func LoadConfig(raw []byte) (Config, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Config{}, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	var entries map[string]FieldConfig
	if err := decoder.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fields: decode config: %w", err)
	}

	out := make(Config, len(entries))
	for path, entry := range entries {
		for idx, rule := range entry.Rules {
			validator, err := rule.Compile()
			if err != nil {
				return nil, fmt.Errorf("fields: config %q rule %d: %w", path, idx, err)
			}
			entry.Validators = append(entry.Validators, validator)
		}
		out[path] = entry
	}
	return out, nil
}
