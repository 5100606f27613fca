package proc

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single", "boom\n", "boom"},
		{"last non-empty", "first\nsecond\n\n  \n", "second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize([]byte(tt.in)))
		})
	}
}

func TestFake_RecordsCalls(t *testing.T) {
	f := &Fake{Handler: func(name string, _ []string) ([]byte, error) {
		if name == "bad" {
			return []byte("nope"), ErrFakeFailure
		}
		return []byte("ok"), nil
	}}

	out, err := f.Output(context.Background(), "good", "--version")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))

	err = f.Run(context.Background(), "bad", "a", "b")
	require.ErrorIs(t, err, ErrFakeFailure)

	require.Len(t, f.Calls, 2)
	assert.Equal(t, "good --version", f.Calls[0].Line())
	assert.Equal(t, "bad a b", f.Calls[1].Line())
}

func TestFake_LookPath(t *testing.T) {
	f := &Fake{Paths: map[string]string{"xorriso": "/usr/bin/xorriso"}}

	p, err := f.LookPath("xorriso")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/xorriso", p)

	_, err = f.LookPath("mkisofs")
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestExec_OutputMissingProgram(t *testing.T) {
	e := NewExec()
	_, err := e.Output(context.Background(), "dfm-setup-definitely-missing-program")
	require.Error(t, err)
}
