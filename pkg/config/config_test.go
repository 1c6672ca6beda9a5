package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("geometry:\n  devices_per_rank: 36\necc:\n  scheme: xed\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 36, cfg.Geometry.DevicesPerRank)
	require.Equal(t, "xed", cfg.ECC.Scheme)
	require.Equal(t, 1, cfg.Geometry.RanksPerDomain) // untouched default
}

func TestValidateRejectsNonPositiveGeometry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.PinsPerDevice = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMismatchedCodecWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.DevicesPerRank = 5
	cfg.ECC.HsiaoWidth = 64
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ECC.Scheme = "bogus"
	require.Error(t, cfg.Validate())
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Execution.RunCount = 42
	path := filepath.Join(t.TempDir(), "roundtrip.yaml")

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 42, loaded.Execution.RunCount)
}
