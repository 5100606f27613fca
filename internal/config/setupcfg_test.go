package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/ada", ".dfm-setup", "setup.cfg"), SetupFilePath("/home/ada"))
}

func TestWriteInstallPath_CreatesDirectory(t *testing.T) {
	path := SetupFilePath(t.TempDir())

	require.NoError(t, WriteInstallPath(path, "/opt/Forester"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[forester]")
	assert.Contains(t, string(data), "path")
	assert.Contains(t, string(data), "/opt/Forester")
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteInstallPath_OverwritesPreviousContent(t *testing.T) {
	path := SetupFilePath(t.TempDir())

	require.NoError(t, WriteInstallPath(path, "/opt/Forester"))
	require.NoError(t, WriteInstallPath(path, "/home/ada/Forester"))

	got, err := ReadInstallPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/home/ada/Forester", got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/opt/Forester")
}

func TestWriteInstallPath_DiscardsForeignKeys(t *testing.T) {
	path := SetupFilePath(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[forester]\npath = /old\nextra = 1\n\n[other]\nkey = v\n"), 0o600))

	require.NoError(t, WriteInstallPath(path, `C:\Program Files\Forester`))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "extra")
	assert.NotContains(t, string(data), "[other]")

	got, err := ReadInstallPath(path)
	require.NoError(t, err)
	assert.Equal(t, `C:\Program Files\Forester`, got)
}

func TestWriteInstallPath_ParentIsFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, SetupDirName), nil, 0o600))

	err := WriteInstallPath(SetupFilePath(home), "/opt/Forester")
	require.Error(t, err)
}

func TestReadInstallPath_Missing(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadInstallPath(filepath.Join(dir, "absent.cfg"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.cfg")
	require.NoError(t, os.WriteFile(empty, []byte("[forester]\n"), 0o600))
	_, err = ReadInstallPath(empty)
	require.ErrorIs(t, err, ErrNoInstallPath)
}
