package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khetao.com/console/log"
	"khetao.com/console/options"
)

func TestTraceLevel(t *testing.T) {
	cases := map[string]log.Level{
		"":        log.WarnLevel,
		"Off":     log.NoneLevel,
		"Error":   log.ErrorLevel,
		"Warning": log.WarnLevel,
		"Info":    log.InfoLevel,
		"Verbose": log.DebugLevel,
		"debug":   log.DebugLevel,
	}
	for trace, want := range cases {
		assert.Equal(t, want, TraceLevel(trace), "trace %q", trace)
	}
}

func TestLogOptions(t *testing.T) {
	t.Run("untraced", func(t *testing.T) {
		lo := LogOptions(options.New(), "/work", 42)
		assert.Equal(t, log.DefaultOptions(), lo)
	})

	t.Run("off", func(t *testing.T) {
		o := options.New()
		o.InternalTraceLevel = "Off"
		lo := LogOptions(o, "/work", 42)

		l, err := lo.GetOutputLevel(log.OverrideScopeName)
		require.NoError(t, err)
		assert.Equal(t, log.NoneLevel, l)
		assert.Empty(t, lo.RotateOutputPath)
	})

	t.Run("verbose", func(t *testing.T) {
		o := options.New()
		o.InternalTraceLevel = "Verbose"
		lo := LogOptions(o, "/work", 42)

		l, err := lo.GetOutputLevel(log.OverrideScopeName)
		require.NoError(t, err)
		assert.Equal(t, log.DebugLevel, l)
		assert.Empty(t, lo.OutputPaths)
		assert.Equal(t, filepath.Join("/work", "InternalTrace.42.console.log"), lo.RotateOutputPath)
	})
}
