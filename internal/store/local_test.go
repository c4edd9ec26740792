package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meshnum/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStore(t *testing.T) {
	t.Run("CreateWithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		path := filepath.Join(tempDir, "store")

		s, err := NewLocalStore(path)
		require.NoError(t, err)
		require.NotNil(t, s)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("CreateWithEmptyPath", func(t *testing.T) {
		origDir, err := os.Getwd()
		require.NoError(t, err)
		defer os.Chdir(origDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		s, err := NewLocalStore("")
		require.NoError(t, err)
		assert.Equal(t, "./store", s.BasePath())
	})
}

func TestLocalStore_UploadDownloadRoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("run-7 checkpoint")
	require.NoError(t, s.Upload(context.Background(), "runs/7/rank-0.json", bytes.NewReader(content)))

	exists, err := s.Exists(context.Background(), "runs/7/rank-0.json")
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := s.Download(context.Background(), "runs/7/rank-0.json")
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, content, buf.Bytes())
}

func TestLocalStore_DeleteIsIdempotent(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "missing.json"))
}

func TestLocalStore_DownloadMissingKeyErrors(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "missing.json")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))
	assert.Error(t, ValidateConfig(&config.StoreConfig{Type: "local", LocalPath: ""}))
	assert.Error(t, ValidateConfig(&config.StoreConfig{Type: "cos"}))
	assert.NoError(t, ValidateConfig(&config.StoreConfig{Type: "local", LocalPath: "./store"}))
}
