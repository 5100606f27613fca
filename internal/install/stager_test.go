package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dfm-setup/internal/platform"
	"github.com/rshade/dfm-setup/internal/proc"
)

func TestNewStager(t *testing.T) {
	runner := &proc.Fake{}

	elevated := NewStager(linuxX64, Resolve(linuxX64, platform.Env{}, "/opt/Forester"), runner)
	assert.True(t, elevated.Elevated())
	assert.IsType(t, &ElevatedStager{}, elevated)

	direct := NewStager(linuxX64, Resolve(linuxX64, platform.Env{}, "/home/ada/Forester"), runner)
	assert.False(t, direct.Elevated())
	assert.IsType(t, &DirectStager{}, direct)

	win := NewStager(windowsX64, Resolve(windowsX64, platform.Env{}, ""), runner)
	assert.False(t, win.Elevated())
}

func TestElevatedStager_SingleSudoInvocation(t *testing.T) {
	runner := &proc.Fake{}
	s := &ElevatedStager{Runner: runner}

	dst := filepath.Join("/opt/Forester", "bin", "forester")
	require.NoError(t, s.Stage(context.Background(), "/mnt/bundle/forester", dst))

	require.Len(t, runner.Calls, 1)
	call := runner.Calls[0]
	assert.Equal(t, "sudo", call.Name)
	assert.Equal(t, []string{
		"sh", "-c", elevatedScript, "sh",
		filepath.Dir(dst), "/mnt/bundle/forester", dst,
	}, call.Args)
}

func TestElevatedStager_Declined(t *testing.T) {
	runner := &proc.Fake{Handler: func(string, []string) ([]byte, error) {
		return nil, proc.ErrFakeFailure
	}}
	s := &ElevatedStager{Runner: runner}

	err := s.Stage(context.Background(), "/src", "/opt/Forester/bin/forester")

	require.ErrorIs(t, err, ErrElevationFailed)
	require.ErrorIs(t, err, proc.ErrFakeFailure)
}

func TestDirectStager_CreatesParent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "forester")
	require.NoError(t, os.WriteFile(src, []byte("bin"), 0o600))
	dst := filepath.Join(t.TempDir(), "a", "b", "bin", "forester")

	require.NoError(t, (&DirectStager{Profile: linuxX64}).Stage(context.Background(), src, dst))
	assert.FileExists(t, dst)
}

func TestPreflight(t *testing.T) {
	base := t.TempDir()

	result := Preflight(filepath.Join(base, "missing", "Forester"))
	assert.Equal(t, base, result.Ancestor)
	assert.True(t, result.Writable)

	result = Preflight(base)
	assert.Equal(t, base, result.Ancestor)
}
