package setup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("\n  /srv/forester  \n"), &out)

	got, err := p.Ask(KeyInstallDir, "Install directory", "/opt/Forester")
	require.NoError(t, err)
	assert.Equal(t, "/opt/Forester", got)
	assert.Contains(t, out.String(), "? Install directory [/opt/Forester] ")

	got, err = p.Ask(KeyInstallDir, "Install directory", "/opt/Forester")
	require.NoError(t, err)
	assert.Equal(t, "/srv/forester", got)

	// End of input selects the default.
	got, err = p.Ask(KeyBlenderVersion, "Blender version", "all")
	require.NoError(t, err)
	assert.Equal(t, "all", got)
}

func TestLinePrompter_NoDefault(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("/data/blender"), &out)

	got, err := p.Ask(KeyAddonPath, "Directory", "")
	require.NoError(t, err)
	assert.Equal(t, "/data/blender", got)
	assert.Equal(t, "? Directory ", out.String())
}

func TestPreset(t *testing.T) {
	p := &Preset{
		Answers: map[string]string{KeyInstallDir: "/home/ada/Forester"},
		Next:    Defaults{},
	}

	got, err := p.Ask(KeyInstallDir, "q", "/opt/Forester")
	require.NoError(t, err)
	assert.Equal(t, "/home/ada/Forester", got)

	got, err = p.Ask(KeyDeployAddons, "q", "yes")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	got, err = (&Preset{}).Ask(KeyBlenderVersion, "q", "all")
	require.NoError(t, err)
	assert.Equal(t, "all", got)
}

func TestPreset_Answer(t *testing.T) {
	var answers Answerer = &Preset{Answers: map[string]string{KeyAddonPath: "/data"}}

	got, ok := answers.Answer(KeyAddonPath)
	assert.True(t, ok)
	assert.Equal(t, "/data", got)

	_, ok = answers.Answer(KeyBlenderVersion)
	assert.False(t, ok)
}

func TestIsYes(t *testing.T) {
	tests := []struct {
		answer string
		def    bool
		want   bool
	}{
		{"y", false, true},
		{"YES", false, true},
		{"n", true, false},
		{"No", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsYes(tt.answer, tt.def), "answer %q", tt.answer)
	}
}
