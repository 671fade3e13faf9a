package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_PrintsLinkerVersion(t *testing.T) {
	original := version
	version = "1.2.3"
	defer func() { version = original }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "newsdesk version 1.2.3")
}

func TestVersionCmd_DevBuild(t *testing.T) {
	original := version
	version = "dev"
	defer func() { version = original }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "newsdesk version ")
}

func TestResolveVersion_PrefersLinkerValue(t *testing.T) {
	original := version
	version = "v9.9.9"
	defer func() { version = original }()

	assert.Equal(t, "v9.9.9", resolveVersion())
}
