package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LANTERN_CONFIG", "")
	t.Setenv("APT_BLOCK_SIZE", "")
	t.Setenv("RANDOM_SEED", "")
	t.Setenv("SOURCE_TIMEZONE", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EnvThenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	require.NoError(t, os.WriteFile(path, []byte("random_seed: 7\nload_file: load.xlsx\n"), 0o600))

	t.Setenv("APT_BLOCK_SIZE", "2")
	t.Setenv("RANDOM_SEED", "99")
	t.Setenv("LANTERN_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.BlockSize)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, "load.xlsx", cfg.LoadFile)
	assert.Equal(t, "pv.csv", cfg.PVFile)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "s3"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PVFile = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timezone = "Nowhere/Atlantis"
	assert.Error(t, cfg.Validate())
}

func TestConfigLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = ""
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
