package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsWithoutFile(t *testing.T) {
	t.Setenv("MIRLIVE_CONFIG", "")

	cfg, err := Load("")

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(Default(), cfg)
	assert.Equal(uint8(72), cfg.SustainController)
	assert.Equal(uint8(110), cfg.SustainOnValue)
	assert.Equal(uint8(64), cfg.SustainOffValue)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirlive.yaml")
	data := []byte("echo_delay_ms: 250\nsemitone_shift: 7\nhttp_addr: \":9090\"\n")
	assert.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(250, cfg.EchoDelayMs)
	assert.Equal(7, cfg.SemitoneShift)
	assert.Equal(":9090", cfg.HTTPAddr)
	// untouched keys keep their defaults
	assert.Equal(uint8(72), cfg.SustainController)
	assert.Equal(16, cfg.ChordColumnWidth)
}

func TestEnvVarFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirlive.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("chord_column_width: 24\n"), 0644))
	t.Setenv("MIRLIVE_CONFIG", path)

	cfg, err := Load("")

	assert.NoError(t, err)
	assert.Equal(t, 24, cfg.ChordColumnWidth)
}

func TestMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
