package config

import (
	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"

	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/logging"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration.

// RopeConfig configures rope construction.
type RopeConfig struct {
	// Encoding names the encoding of ropes built from input.
	Encoding string

	// ChunkSize is the target leaf size in bytes.
	ChunkSize int

	// MaxDepth is the depth above which builders rebalance an appended
	// subtree.
	MaxDepth int

	// CacheSize is the number of leaves kept by the interning cache.
	CacheSize int
}

// HashConfig configures rope hashing.
type HashConfig struct {
	Algorithm string
	Seed      uint64
}

// NativeConfig configures foreign memory ropes.
type NativeConfig struct {
	// Release is "cleanup" to release memory when a rope becomes
	// unreachable, or "manual" to release on shutdown.
	Release string

	// MaxAllocation caps a single foreign allocation in bytes.
	MaxAllocation int64
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int64 // bytes
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Native release modes.
const (
	ReleaseCleanup = "cleanup"
	ReleaseManual  = "manual"
)

// Rope returns rope settings.
func (c *Config) Rope() RopeConfig {
	return RopeConfig{
		Encoding:  c.getStringOr("rope.encoding", "UTF-8"),
		ChunkSize: int(c.getSizeOr("rope.chunkSize", rope.MaxChunkSize)),
		MaxDepth:  int(c.getIntOr("rope.maxDepth", rope.DefaultMaxDepth)),
		CacheSize: int(c.getIntOr("rope.cacheSize", rope.DefaultCacheSize)),
	}
}

// Hash returns hash settings.
func (c *Config) Hash() HashConfig {
	return HashConfig{
		Algorithm: c.getStringOr("hash.algorithm", rope.Murmur3.String()),
		Seed:      uint64(c.getIntOr("hash.seed", 1)),
	}
}

// Native returns native memory settings.
func (c *Config) Native() NativeConfig {
	return NativeConfig{
		Release:       c.getStringOr("native.release", ReleaseCleanup),
		MaxAllocation: c.getSizeOr("native.maxAllocation", 64*units.MiB),
	}
}

// Logging returns logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:      c.getStringOr("logging.level", "info"),
		Format:     c.getStringOr("logging.format", "console"),
		File:       c.getStringOr("logging.file", ""),
		MaxSize:    c.getSizeOr("logging.maxSize", 100*units.MiB),
		MaxBackups: int(c.getIntOr("logging.maxBackups", 3)),
		MaxAgeDays: int(c.getIntOr("logging.maxAge", 28)),
		Compress:   c.getBoolOr("logging.compress", false),
	}
}

// LoggerConfig converts the settings for logging.New. Rotation sizes are
// rounded up to whole megabytes.
func (l LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.File = l.File
	cfg.MaxSizeMB = int((l.MaxSize + units.MiB - 1) / units.MiB)
	cfg.MaxBackups = l.MaxBackups
	cfg.MaxAgeDays = l.MaxAgeDays
	cfg.Compress = l.Compress
	return cfg
}

// Validate checks that every setting holds a usable value. It returns the
// first problem found.
func (c *Config) Validate() error {
	r := c.Rope()
	if _, err := encoding.Lookup(r.Encoding); err != nil {
		return &ValidationError{Path: "rope.encoding", Message: "unknown encoding", Value: r.Encoding}
	}
	if r.ChunkSize <= 0 {
		return &ValidationError{Path: "rope.chunkSize", Message: "must be positive", Value: r.ChunkSize}
	}
	if r.MaxDepth <= 0 || r.MaxDepth > rope.MaxBalancedDepth {
		return &ValidationError{Path: "rope.maxDepth", Message: "out of range", Value: r.MaxDepth}
	}
	if r.CacheSize < 0 {
		return &ValidationError{Path: "rope.cacheSize", Message: "must not be negative", Value: r.CacheSize}
	}

	h := c.Hash()
	if _, err := rope.ParseHashAlgorithm(h.Algorithm); err != nil {
		return &ValidationError{Path: "hash.algorithm", Message: "unknown algorithm", Value: h.Algorithm}
	}

	n := c.Native()
	if n.Release != ReleaseCleanup && n.Release != ReleaseManual {
		return &ValidationError{Path: "native.release", Message: "must be cleanup or manual", Value: n.Release}
	}
	if n.MaxAllocation <= 0 {
		return &ValidationError{Path: "native.maxAllocation", Message: "must be positive", Value: n.MaxAllocation}
	}

	l := c.Logging()
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: l.Level}
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		return &ValidationError{Path: "logging.format", Message: "unknown format", Value: l.Format}
	}

	for path, err := range c.ConfigErrors() {
		return errors.Wrapf(err, "%s", path)
	}
	return nil
}

// Accessor helpers return the default when a setting is missing. Type
// errors are recorded and also fall back to the default; Validate reports
// them.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int64) int64 {
	v, err := c.GetInt(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getSizeOr(path string, defaultValue int64) int64 {
	v, err := c.GetSize(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}
