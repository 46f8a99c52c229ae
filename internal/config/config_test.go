package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesProjectDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2, cfg.Verbosity)
	assert.Equal(t, "rle", cfg.PatternOutputFormat)
	assert.Equal(t, "B3/S23", cfg.Rulestring)
	assert.Equal(t, "kissat", cfg.Solver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlyProvidedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lifesearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`solver = "cadical"`+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cadical", cfg.Solver)
	assert.Equal(t, "rle", cfg.PatternOutputFormat)
}

func TestLoadRejectsUnsupportedSolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lifesearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`solver = "not-a-solver"`+"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
