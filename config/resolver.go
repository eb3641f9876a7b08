package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known resolver settings for this application.
const (
	envPrefix       = "SPECFLOW_"
	globalConfigDir = "specflow"
	globalConfig    = "config.yaml"
	localConfigName = ".specflow.yaml"
)

// Resolver merges configuration layers into a Resolved map.
type Resolver struct {
	defaults   map[string]string
	globalPath string
	localPath  string
	errWriter  io.Writer

	// Warnings collects non-fatal issues found during resolution, such as
	// an unparseable config file.
	Warnings []string
}

// NewResolver creates a resolver with the standard paths: a global config
// under ~/.config/specflow and a local .specflow.yaml found by walking up
// from the working directory.
func NewResolver(defaults map[string]string) *Resolver {
	r := &Resolver{defaults: defaults, errWriter: os.Stderr}
	if home, err := os.UserHomeDir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", globalConfigDir, globalConfig)
	}
	if root := findProjectRoot("."); root != "" {
		r.localPath = filepath.Join(root, localConfigName)
	}
	return r
}

// NewResolverWithPaths creates a resolver with explicit file paths, mainly
// for tests.
func NewResolverWithPaths(defaults map[string]string, globalPath, localPath string) *Resolver {
	return &Resolver{
		defaults:   defaults,
		globalPath: globalPath,
		localPath:  localPath,
		errWriter:  os.Stderr,
	}
}

// Resolved holds the merged configuration values and their sources.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for key, or "" when unset.
func (c *Resolved) Get(key string) string { return c.values[key] }

// Source returns the layer key's value came from.
func (c *Resolved) Source(key string) Source { return c.sources[key] }

// Keys returns all resolved keys.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Resolve merges defaults, global config, local config, and environment
// variables, in that order of increasing priority.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}
	for key, value := range r.defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)
	return cfg
}

// ResolveWithFlags resolves the layers and then applies non-empty flag
// values on top.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}
	return cfg
}

func (r *Resolver) applyFile(cfg *Resolved, path string, src Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is fine
	}
	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}
	for key, value := range parsed {
		if s := scalarString(value); s != "" {
			cfg.values[key] = s
			cfg.sources[key] = src
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	known := make(map[string]bool)
	for k := range r.defaults {
		known[k] = true
	}
	for k := range cfg.values {
		known[k] = true
	}
	for key := range known {
		envKey := envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.errWriter != nil {
		fmt.Fprintf(r.errWriter, "Warning: %s\n", msg)
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	}
	return ""
}

// findProjectRoot walks up from startDir looking for a directory containing
// .git or .specflow.yaml.
func findProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, localConfigName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
