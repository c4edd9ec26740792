package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
history:
  type: sqlite
store:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "./data", cfg.Numbering.DataDir)
	assert.False(t, cfg.Numbering.FullStyle)
	assert.True(t, cfg.Numbering.WithFaces)
	assert.Equal(t, 1, cfg.Numbering.RankCount)
	assert.Equal(t, "channel", cfg.Transport.Kind)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
numbering:
  data_dir: "/tmp/meshnum"
  full_style: true
  with_faces: false
  rank_count: 4
history:
  type: postgres
  host: db.example.com
  port: 5432
  database: meshnum
  user: admin
  password: secret
store:
  type: local
  local_path: /tmp/store
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/meshnum", cfg.Numbering.DataDir)
	assert.True(t, cfg.Numbering.FullStyle)
	assert.False(t, cfg.Numbering.WithFaces)
	assert.Equal(t, 4, cfg.Numbering.RankCount)
	assert.Equal(t, "db.example.com", cfg.History.Host)
	assert.Equal(t, 5432, cfg.History.Port)
	assert.Equal(t, "meshnum", cfg.History.Database)
}

func TestLoad_InvalidHistoryType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
history:
  type: oracle
store:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported history database type")
}

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
history:
  type: sqlite
store:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Store.Type)
	assert.Equal(t, "test-bucket", cfg.Store.Bucket)
}

func TestValidate_InvalidRankCount(t *testing.T) {
	cfg := &Config{
		History: HistoryConfig{Type: "sqlite"},
		Store:   StoreConfig{Type: "local"},
		Numbering: NumberingConfig{
			RankCount: 0,
		},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rank count must be at least 1")
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := &Config{
		History:   HistoryConfig{Type: "sqlite"},
		Numbering: NumberingConfig{RankCount: 1},
		Store:     StoreConfig{Type: "ftp"},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store type")
}

func TestGetRunDir(t *testing.T) {
	cfg := &Config{
		Numbering: NumberingConfig{
			DataDir: "/tmp/data",
		},
	}

	runDir := cfg.GetRunDir("run-123")
	assert.Equal(t, "/tmp/data/run-123", runDir)
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "numbering", "data")

	cfg := &Config{
		Numbering: NumberingConfig{
			DataDir: dataDir,
		},
	}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
history:
  type: mysql
  host: mysql.local
store:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.History.Type)
	assert.Equal(t, "mysql.local", cfg.History.Host)
}
