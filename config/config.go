// Package config loads engine settings, expression predicates and schema rule lists
// from YAML.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/keyschema"
	"github.com/ezachrisen/keyschema/cel"
)

// Config holds everything needed to build an engine and compile schemas.
type Config struct {
	// Logging level: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Maximum number of inputs evaluated concurrently in batch mode.
	Parallelism int `yaml:"parallelism"`

	// Predicates defined by CEL expressions, registered before schemas are compiled.
	Predicates []PredicateConfig `yaml:"predicates,omitempty"`

	// Schemas in the order they are compiled.
	Schemas []SchemaConfig `yaml:"schemas"`
}

// PredicateConfig defines an opaque predicate with a CEL expression over `value`.
type PredicateConfig struct {
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
}

// SchemaConfig is the rule list of one schema.
type SchemaConfig struct {
	ID    string               `yaml:"id"`
	Rules []keyschema.RuleSpec `yaml:"rules"`
}

// Default returns the default configuration, with no predicates or schemas.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of the defaults, applies environment
// overrides and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if lvl := os.Getenv("KEYSCHEMA_LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
}

// Validate checks settings that do not need an engine. Rule validity is checked
// when the schemas are compiled.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}

	ids := make(map[string]bool, len(c.Schemas))
	for i, s := range c.Schemas {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("schema %d: id is required", i)
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate schema id %q", s.ID)
		}
		ids[s.ID] = true
	}
	for i, p := range c.Predicates {
		if p.Name == "" || p.Expr == "" {
			return fmt.Errorf("predicate %d: name and expr are required", i)
		}
	}
	return nil
}

// Logger builds a production logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// Engine creates an engine and registers the configured predicates.
func (c *Config) Engine(log *zap.Logger) (*keyschema.Engine, error) {
	e := keyschema.NewEngine(keyschema.WithLogger(log))
	if len(c.Predicates) == 0 {
		return e, nil
	}

	compiler, err := cel.NewCompiler()
	if err != nil {
		return nil, err
	}
	for _, pc := range c.Predicates {
		msg := pc.Message
		if msg == "" {
			msg = "must satisfy " + pc.Name
		}
		p, err := compiler.Predicate(pc.Name, pc.Expr, msg)
		if err != nil {
			return nil, err
		}
		if err := e.Register(p); err != nil {
			return nil, fmt.Errorf("registering predicate %s: %w", pc.Name, err)
		}
	}
	return e, nil
}

// Compile compiles every configured schema with the engine, in order. The first
// invalid schema aborts compilation.
func (c *Config) Compile(e *keyschema.Engine) ([]*keyschema.Schema, error) {
	schemas := make([]*keyschema.Schema, 0, len(c.Schemas))
	for _, sc := range c.Schemas {
		s, err := e.Compile(sc.Rules, keyschema.WithID(sc.ID))
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", sc.ID, err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// Vault compiles every configured schema with the engine into a new vault.
// Either all schemas compile or no vault is returned.
func (c *Config) Vault(e *keyschema.Engine) (*keyschema.Vault, error) {
	v, err := keyschema.NewVault(e)
	if err != nil {
		return nil, err
	}
	muts := make([]keyschema.SchemaMutation, 0, len(c.Schemas))
	for _, sc := range c.Schemas {
		rules := sc.Rules
		if rules == nil {
			rules = []keyschema.RuleSpec{}
		}
		muts = append(muts, keyschema.SchemaMutation{ID: sc.ID, Rules: rules})
	}
	if err := v.ApplyMutations(muts); err != nil {
		return nil, err
	}
	return v, nil
}
