package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/memfs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultScheme is the URI scheme of paths rendered with Path.URI
	DefaultScheme = "memory"

	// DefaultCapacity is the reported total space in bytes
	DefaultCapacity = 1024 * MB

	// DefaultBlockSize is the reported preferred block size
	DefaultBlockSize = 4096

	// DefaultInitialFileCapacity is the byte capacity preallocated for new files
	DefaultInitialFileCapacity = 0

	DefaultFsName    = "memfs"
	DefaultMountName = "memfs"
)

// MountOptions names the FUSE export. No go-fuse types appear here.
type MountOptions struct {
	Debug  bool   // go-fuse request tracing
	FsName string // first field of the mtab entry
	Name   string // fuse.<Name> filesystem type
}

// Config contains runtime configuration values for one in-memory filesystem.
type Config struct {
	MountOptions
	LogLvl util.LogLevel

	ID                  string // Filesystem id used for addressing; generated when empty
	Scheme              string // URI scheme (Default "memory")
	Capacity            int64  // Reported total space in bytes; never enforced (Default 1GiB)
	BlockSize           int64  // Reported block size in bytes (Default 4096)
	InitialFileCapacity int    // Bytes preallocated for each new file's store (Default 0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace); out of range values are clamped
	LogLvl              *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	ID                  *string `yaml:"id,omitempty" json:"id,omitempty"`
	Scheme              *string `yaml:"scheme,omitempty" json:"scheme,omitempty"`
	Capacity            *int64  `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	BlockSize           *int64  `yaml:"block_size,omitempty" json:"block_size,omitempty"`
	InitialFileCapacity *int    `yaml:"initial_file_capacity,omitempty" json:"initial_file_capacity,omitempty"`
	FsName              *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name                *string `yaml:"name,omitempty" json:"name,omitempty"`
	Debug               *bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultMountName,
		},
		LogLvl:              DefaultLogLvl,
		Scheme:              DefaultScheme,
		Capacity:            DefaultCapacity,
		BlockSize:           DefaultBlockSize,
		InitialFileCapacity: DefaultInitialFileCapacity,
	}
}

// NewConfig returns the defaults with override applied; override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.VerbosityToLevel(*override.LogLvl)
	}
	if override.ID != nil {
		c.ID = *override.ID
	}
	if override.Scheme != nil {
		c.Scheme = *override.Scheme
	}
	if override.Capacity != nil {
		c.Capacity = *override.Capacity
	}
	if override.BlockSize != nil {
		c.BlockSize = *override.BlockSize
	}
	if override.InitialFileCapacity != nil {
		c.InitialFileCapacity = *override.InitialFileCapacity
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
}

// Validate rejects values the filesystem cannot work with.
func (c *Config) Validate() error {
	if c.Scheme == "" || strings.ContainsAny(c.Scheme, ":/") {
		return fmt.Errorf("invalid scheme %q", c.Scheme)
	}
	if strings.ContainsAny(c.ID, "/*?") {
		return fmt.Errorf("invalid filesystem id %q", c.ID)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative: %d", c.Capacity)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive: %d", c.BlockSize)
	}
	if c.InitialFileCapacity < 0 {
		return fmt.Errorf("initial file capacity must not be negative: %d", c.InitialFileCapacity)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
