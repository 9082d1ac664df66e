package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"khetao.com/console/log"
	"khetao.com/console/options"
)

var traceLevels = map[string]log.Level{
	"off":     log.NoneLevel,
	"error":   log.ErrorLevel,
	"warning": log.WarnLevel,
	"info":    log.InfoLevel,
	"verbose": log.DebugLevel,
	"debug":   log.DebugLevel,
}

// TraceLevel maps a --trace value onto a log level. An empty value keeps the
// default of warnings and above.
func TraceLevel(trace string) log.Level {
	if l, ok := traceLevels[strings.ToLower(trace)]; ok {
		return l
	}
	return log.WarnLevel
}

// TraceFile is the name of the internal trace log written into the work directory.
func TraceFile(pid int) string {
	return fmt.Sprintf("InternalTrace.%d.console.log", pid)
}

// LogOptions derives the logging configuration for a run. Without --trace
// warnings go to stderr. With it every scope logs at the chosen level to a
// rotated trace file in workDir.
func LogOptions(o *options.ConsoleOptions, workDir string, pid int) *log.Options {
	lo := log.DefaultOptions()
	if o.InternalTraceLevel == "" {
		return lo
	}

	level := TraceLevel(o.InternalTraceLevel)
	lo.SetOutputLevel(log.OverrideScopeName, level)
	if level == log.NoneLevel {
		return lo
	}
	lo.OutputPaths = nil
	return lo.WithRotation(filepath.Join(workDir, TraceFile(pid)))
}
