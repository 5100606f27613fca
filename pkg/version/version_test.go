package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.NotContains(t, GetVersion()[:1], "v")
}

func TestGetVersion_StripsPrefix(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "v1.4.2"
	assert.Equal(t, "1.4.2", GetVersion())
}
