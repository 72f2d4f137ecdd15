package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, LevelTrace, ParseLogLevel("TRACE"))
	require.Equal(t, LevelDebug, ParseLogLevel("debug"))
	require.Equal(t, LevelInfo, ParseLogLevel("Info"))
	require.Equal(t, LevelWarn, ParseLogLevel("WARN"))
	require.Equal(t, LevelError, ParseLogLevel("ERROR"))
	require.Equal(t, LevelAll, ParseLogLevel("no-such-level"))
	require.Equal(t, "INFO", LogLevelName(LevelInfo))
}

func TestGetLevelPatternMatch(t *testing.T) {
	old := levelConfig
	levelConfig = map[string]Level{
		"monitor": LevelDebug,
		"canbus*": LevelWarn,
		"canbusd": LevelError,
	}
	defer func() { levelConfig = old }()

	require.Equal(t, LevelDebug, GetLevel("monitor"))
	// the longer pattern wins
	require.Equal(t, LevelError, GetLevel("canbusd"))
	require.Equal(t, LevelWarn, GetLevel("canbus-x"))
	require.Equal(t, levelDefault, GetLevel("unrelated"))
}

func TestLevelLoggerFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLog("testing", buf)
	log.SetLevel(LevelWarn)

	require.False(t, log.DebugEnabled())
	require.True(t, log.WarnEnabled())

	log.Debug("dropped")
	log.Warnf("kept %d", 1)

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, "kept 1")
	require.Contains(t, out, "testing")
	require.Contains(t, out, "WARN")
}
