package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, StorageMongoDB, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Draw.CountdownSeconds)
	assert.Equal(t, DefaultTiers(), cfg.Draw.Tiers)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  driver: memory
draw:
  countdownseconds: 3
  tiers:
    - key: grand
      label: Grand Prize
      count: 1
    - key: runner
      label: Runner Up
      count: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Draw.CountdownSeconds)
	assert.Equal(t, []models.Tier{
		{Key: "grand", Label: "Grand Prize", Count: 1},
		{Key: "runner", Label: "Runner Up", Count: 4},
	}, cfg.Draw.Tiers)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  driver: floppy\n"), 0o600))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []models.Tier
		wantErr bool
	}{
		{"defaults", DefaultTiers(), false},
		{"empty", nil, true},
		{"blank key", []models.Tier{{Key: " ", Count: 1}}, true},
		{"duplicate", []models.Tier{{Key: "a", Count: 1}, {Key: "a", Count: 2}}, true},
		{"zero count", []models.Tier{{Key: "a", Count: 0}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	loaded, err := LoadEnvFile(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.False(t, loaded)

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PRIZEDRAW_TEST_VALUE=lantern\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PRIZEDRAW_TEST_VALUE") })

	loaded, err = LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "lantern", os.Getenv("PRIZEDRAW_TEST_VALUE"))
}

func TestLoad_SecretsFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_PASSWORDHASH", "$2a$10$hash")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "$2a$10$hash", cfg.Admin.PasswordHash)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}
