package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tylang.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, unknown, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Empty(t, unknown)
	require.Zero(t, cfg.Interp.StepBudget)
}

func TestLoadDecodesKnobs(t *testing.T) {
	path := writeConfig(t, `
[interp]
step_budget = 10000
max_call_depth = 64

[diag]
color = true
`)
	cfg, unknown, err := config.Load(path)
	require.NoError(t, err)
	require.Empty(t, unknown)
	require.Equal(t, 10000, cfg.Interp.StepBudget)
	require.Equal(t, 64, cfg.Interp.MaxCallDepth)
	require.True(t, cfg.Diag.Color)
}

func TestLoadReportsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[interp]
step_budget = 5
step_bugdet = 7
`)
	cfg, unknown, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Interp.StepBudget)
	require.Equal(t, []string{"interp.step_bugdet"}, unknown)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := writeConfig(t, `[interp`)
	_, _, err := config.Load(path)
	require.Error(t, err)
}
