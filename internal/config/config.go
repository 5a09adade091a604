package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"

	"github.com/dshills/ropecore/internal/config/loader"
)

// Config holds the merged configuration of all sources.
type Config struct {
	mu sync.RWMutex

	defaults  map[string]any
	file      map[string]any
	env       map[string]any
	overrides map[string]any
	merged    map[string]any

	fs        loader.FileSystem
	filePath  string
	envPrefix string
	useEnv    bool

	// configErrors records type errors met by section accessors, which
	// fall back to defaults instead of failing.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. The format follows the extension.
func WithFile(path string) Option {
	return func(c *Config) {
		c.filePath = path
	}
}

// WithFS sets the file system used to read the configuration file.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnv enables or disables the environment layer.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.useEnv = enable
	}
}

// New creates a Config holding only the defaults.
func New(opts ...Option) *Config {
	c := &Config{
		defaults:  defaultConfig(),
		overrides: make(map[string]any),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.merge()
	return c
}

// Load creates a Config and loads all of its sources.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	c := New(opts...)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Load (re)reads the configuration file and environment.
func (c *Config) Load(_ context.Context) error {
	var file map[string]any
	if c.filePath != "" {
		l, err := loader.ForPath(c.fs, c.filePath)
		if err != nil {
			return err
		}
		if file, err = l.Load(); err != nil {
			return err
		}
		if file == nil {
			return errors.Newf("config file %s not found", c.filePath)
		}
	}

	var env map[string]any
	if c.useEnv {
		var err error
		if env, err = loader.NewEnvLoader(c.envPrefix).Load(); err != nil {
			return errors.Wrap(err, "loading environment")
		}
	}

	c.mu.Lock()
	c.file = file
	c.env = env
	c.configErrors = nil
	c.merge()
	c.mu.Unlock()

	return c.Validate()
}

// merge rebuilds the merged view. Callers hold c.mu or own c exclusively.
func (c *Config) merge() {
	merged := loader.Clone(c.defaults)
	for _, layer := range []map[string]any{c.file, c.env, c.overrides} {
		merged = loader.DeepMerge(merged, layer)
	}
	c.merged = merged
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetPath(c.merged, path)
}

// Set overrides a setting above every loaded source.
func (c *Config) Set(path string, value any) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return errors.Wrapf(ErrInvalidPath, "%q", path)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetPath(c.overrides, path, value)
	c.merge()
	return nil
}

// Merged returns a deep copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// FilePath returns the configuration file path, if any.
func (c *Config) FilePath() string {
	return c.filePath
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		if val != float64(int64(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "fractional float"}
		}
		return int64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetSize returns a byte size at the given path. Integers are taken as
// bytes; strings are parsed with binary units ("4k", "4KiB", "1MB").
func (c *Config) GetSize(path string) (int64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	if s, ok := v.(string); ok {
		n, err := units.RAMInBytes(s)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "size", Actual: fmt.Sprintf("%q", s)}
		}
		return n, nil
	}
	return c.GetInt(path)
}

// ConfigErrors returns the type errors met by section accessors.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}

// recordConfigError keeps the first error seen for each path.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"rope": map[string]any{
			"encoding":  "UTF-8",
			"chunkSize": "256B",
			"maxDepth":  int64(48),
			"cacheSize": int64(4096),
		},
		"hash": map[string]any{
			"algorithm": "murmur3",
			"seed":      int64(1),
		},
		"native": map[string]any{
			"release":       "cleanup",
			"maxAllocation": "64MiB",
		},
		"logging": map[string]any{
			"level":      "info",
			"format":     "console",
			"file":       "",
			"maxSize":    "100MiB",
			"maxBackups": int64(3),
			"maxAge":     int64(28),
			"compress":   false,
		},
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
