package log

import (
	"fmt"
	"strings"
)

const (
	DefaultScopeName          = "default"
	OverrideScopeName         = "all"
	defaultOutputLevel        = WarnLevel
	defaultStackTraceLevel    = NoneLevel
	defaultOutputPath         = "stderr"
	defaultErrorOutputPath    = "stderr"
	defaultRotationMaxAge     = 30
	defaultRotationMaxSize    = 100
	defaultRotationMaxBackups = 1000
)

type Level int

const (
	NoneLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var levelToString = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
	NoneLevel:  "none",
}

var stringToLevel = map[string]Level{
	"debug": DebugLevel,
	"info":  InfoLevel,
	"warn":  WarnLevel,
	"error": ErrorLevel,
	"fatal": FatalLevel,
	"none":  NoneLevel,
}

func (l Level) String() string {
	return levelToString[l]
}

// ParseLevel converts a level name such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	l, ok := stringToLevel[strings.ToLower(s)]
	if !ok {
		return NoneLevel, fmt.Errorf("invalid output level '%s'", s)
	}
	return l, nil
}

// Options controls where log output goes and at which level each scope emits.
type Options struct {
	// OutputPaths is the set of sinks for log output. stdout and stderr are
	// accepted as special values.
	OutputPaths []string
	// ErrorOutputPaths receives errors from the logging system itself.
	ErrorOutputPaths []string
	// RotateOutputPath is an optional file that is rotated by size and age.
	RotateOutputPath string
	// RotationMaxSize is in megabytes.
	RotationMaxSize int
	// RotationMaxAge is in days, 0 means no limit.
	RotationMaxAge int
	// RotationMaxBackups of 0 keeps every backup.
	RotationMaxBackups int
	JSONEncoding       bool

	outputLevels     string
	logCallers       string
	stackTraceLevels string
}

func DefaultOptions() *Options {
	return &Options{
		OutputPaths:        []string{defaultOutputPath},
		ErrorOutputPaths:   []string{defaultErrorOutputPath},
		RotationMaxSize:    defaultRotationMaxSize,
		RotationMaxAge:     defaultRotationMaxAge,
		RotationMaxBackups: defaultRotationMaxBackups,
		outputLevels:       DefaultScopeName + ":" + levelToString[defaultOutputLevel],
		stackTraceLevels:   DefaultScopeName + ":" + levelToString[defaultStackTraceLevel],
	}
}

// WithRotation adds a rotating file sink next to the regular output paths.
func (o *Options) WithRotation(path string) *Options {
	o.RotateOutputPath = path
	return o
}

func (o *Options) SetOutputLevel(scope string, level Level) {
	o.outputLevels = setScopedLevel(o.outputLevels, scope, level)
}

func (o *Options) GetOutputLevel(scope string) (Level, error) {
	return getScopedLevel(o.outputLevels, scope)
}

func (o *Options) SetStackTraceLevel(scope string, level Level) {
	o.stackTraceLevels = setScopedLevel(o.stackTraceLevels, scope, level)
}

func (o *Options) GetStackTraceLevel(scope string) (Level, error) {
	return getScopedLevel(o.stackTraceLevels, scope)
}

func (o *Options) SetLogCallers(scope string, include bool) {
	scopes := strings.Split(o.logCallers, ",")

	// remove any occurrence of the scope
	for i, s := range scopes {
		if s == scope {
			scopes[i] = ""
		}
	}

	if include {
		// find a free slot if there is one
		placed := false
		for i, s := range scopes {
			if s == "" {
				scopes[i] = scope
				placed = true
				break
			}
		}
		if !placed {
			scopes = append(scopes, scope)
		}
	}

	o.logCallers = strings.Join(scopes, ",")
}

func (o *Options) GetLogCallers(scope string) bool {
	for _, s := range strings.Split(o.logCallers, ",") {
		if s == scope {
			return true
		}
	}
	return false
}

// setScopedLevel replaces or appends the scope:level entry in a comma separated list.
// An entry without a scope prefix stands for the default scope.
func setScopedLevel(levels string, scope string, level Level) string {
	sl := scope + ":" + levelToString[level]
	entries := strings.Split(levels, ",")

	for i, entry := range entries {
		if matchesScope(entry, scope) {
			entries[i] = sl
			return strings.Join(entries, ",")
		}
	}

	if levels == "" {
		return sl
	}
	return levels + "," + sl
}

func getScopedLevel(levels string, scope string) (Level, error) {
	for _, entry := range strings.Split(levels, ",") {
		if matchesScope(entry, scope) {
			_, l, err := convertScopedLevel(entry)
			return l, err
		}
	}
	return NoneLevel, fmt.Errorf("no level defined for scope '%s'", scope)
}

func matchesScope(entry, scope string) bool {
	if scope == DefaultScopeName && entry != "" && !strings.Contains(entry, ":") {
		return true
	}
	return strings.HasPrefix(entry, scope+":")
}

func convertScopedLevel(sl string) (string, Level, error) {
	var s string
	var l string

	pieces := strings.Split(sl, ":")
	switch len(pieces) {
	case 1:
		s = DefaultScopeName
		l = pieces[0]
	case 2:
		s = pieces[0]
		l = pieces[1]
	default:
		return "", NoneLevel, fmt.Errorf("invalid output level format '%s'", sl)
	}

	level, ok := stringToLevel[l]
	if !ok {
		return "", NoneLevel, fmt.Errorf("invalid output level '%s'", sl)
	}

	return s, level, nil
}
