package application

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds the fixed inputs of the pipeline.
type Config struct {
	BlockSize  int    `yaml:"apt_block_size"`
	RandomSeed int64  `yaml:"random_seed"`
	Source     string `yaml:"source"`
	CacheDir   string `yaml:"cache_dir"`
	PVFile     string `yaml:"pv_file"`
	LoadFile   string `yaml:"load_file"`
	Timezone   string `yaml:"source_timezone"`
}

// DefaultConfig returns the built-in constants.
func DefaultConfig() Config {
	return Config{
		BlockSize:  4,
		RandomSeed: 42,
		Source:     SourceFile,
		CacheDir:   "cache",
		PVFile:     "pv.csv",
		LoadFile:   "load.csv",
		Timezone:   "UTC",
	}
}

// LoadConfig loads config from env, then overlays the yaml file named by LANTERN_CONFIG.
func LoadConfig() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		BlockSize:  getenvIntDefault("APT_BLOCK_SIZE", def.BlockSize),
		RandomSeed: int64(getenvIntDefault("RANDOM_SEED", int(def.RandomSeed))),
		Source:     getenvDefault("SOURCE_BACKEND", def.Source),
		CacheDir:   getenvDefault("CACHE_DIR", def.CacheDir),
		PVFile:     getenvDefault("PV_CACHE_FILE", def.PVFile),
		LoadFile:   getenvDefault("LOAD_CACHE_FILE", def.LoadFile),
		Timezone:   getenvDefault("SOURCE_TIMEZONE", def.Timezone),
	}

	if path := os.Getenv("LANTERN_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the constants.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return errors.New("dataprep config: apt_block_size must be > 0")
	}
	switch c.Source {
	case SourceFile, SourcePostgres:
	default:
		return errors.New("dataprep config: source must be file or postgres")
	}
	if c.PVFile == "" || c.LoadFile == "" {
		return errors.New("dataprep config: pv_file and load_file required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the zone that database timestamps are read in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dataprep config: source_timezone: %w", err)
	}
	return loc, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
