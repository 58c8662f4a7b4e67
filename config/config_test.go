package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/require"
)

func writeConfig(t *testing.T, s string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(s), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "data_dir: /tmp/lib\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lib", cfg.DataDir)
	assert.Equal(t, DefaultStoreFile, cfg.StoreFile)
	assert.Equal(t, DefaultGenresFile, cfg.GenresFile)
	assert.Equal(t, filepath.Join("/tmp/lib", "catalog.txt"), cfg.StorePath())
	assert.Equal(t, filepath.Join("/tmp/lib", "genres.json"), cfg.GenresPath())
	assert.Equal(t, filepath.Join("/tmp/lib", "logs"), cfg.LogPath())
}

func TestLoadConfigAll(t *testing.T) {
	s := `data_dir: /data
store_file: /elsewhere/books.txt
genres_file: g.json
log_dir: /var/log/catalog
verbose: true
default_genres:
  - Roman
  - Şiir
`
	cfg, err := LoadConfig(writeConfig(t, s))
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/books.txt", cfg.StorePath())
	assert.Equal(t, filepath.Join("/data", "g.json"), cfg.GenresPath())
	assert.Equal(t, "/var/log/catalog", cfg.LogPath())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"Roman", "Şiir"}, cfg.DefaultGenres)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "data_dir: [1, 2\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "store_file: same.txt\ngenres_file: same.txt\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "default_genres: [Roman, ' ']\n"))
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfig(t, "data_dir: /from-file\nverbose: false\n")
	t.Setenv("CATALOG_DATA_DIR", "/from-env")
	t.Setenv("CATALOG_STORE_FILE", "env.txt")
	t.Setenv("CATALOG_VERBOSE", "true")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.DataDir)
	assert.Equal(t, filepath.Join("/from-env", "env.txt"), cfg.StorePath())
	assert.True(t, cfg.Verbose)
}

func TestLoadMissingDefaultIsOK(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CATALOG_DATA_DIR", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoadMissingExplicitFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
