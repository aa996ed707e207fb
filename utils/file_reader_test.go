package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"8080\"\n"), 0o600))

	content, err := GetConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "port: \"8080\"\n", string(content))
}

func TestGetConfigFileMissing(t *testing.T) {
	_, err := GetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
