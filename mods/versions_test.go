package mods

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	versionString = "v0.3.1"
	versionGitSHA = "2c9a817"
	buildTimestamp = "2026/08/20T09:15"
	goVersionString = "1.24.0"

	ver := GetVersion()
	require.NotNil(t, ver)
	require.Equal(t, 0, ver.Major)
	require.Equal(t, 3, ver.Minor)
	require.Equal(t, 1, ver.Patch)
	require.Equal(t, "2c9a817", ver.GitSHA)
	require.Equal(t, "V0.3.1", DisplayVersion())
	require.Equal(t, "V0.3.1 (2c9a817 2026/08/20T09:15)", VersionString())
	require.Equal(t, "1.24.0", BuildCompiler())
	require.Equal(t, "2026/08/20T09:15", BuildTimestamp())
}
