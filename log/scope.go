package log

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"khetao.com/console/structured"
)

// Scope is a named logger. Each package of the console registers its own scope so
// that output levels can be tuned per package.
type Scope struct {
	name        string
	nameToEmit  string
	description string
	callerSkip  int

	outputLevel     atomic.Value
	stackTraceLevel atomic.Value
	logCallers      atomic.Value

	labelKeys []string
	labels    map[string]any
}

var (
	scopes = make(map[string]*Scope)
	lock   sync.RWMutex

	defaultHandlers []scopeHandlerCallbackFunc
	// Write lock should only be taken during program startup.
	defaultHandlersMu sync.RWMutex
)

type scopeHandlerCallbackFunc func(
	level Level,
	scope *Scope,
	ie *structured.Error,
	msg string)

func registerDefaultHandler(callback scopeHandlerCallbackFunc) {
	defaultHandlersMu.Lock()
	defer defaultHandlersMu.Unlock()
	defaultHandlers = append(defaultHandlers, callback)
}

func RegisterScope(name string, description string, callerSkip int) *Scope {
	if strings.ContainsAny(name, ":,.") {
		panic(fmt.Sprintf("scope name %s is invalid, it cannot contain colons, commas, or periods", name))
	}

	lock.Lock()
	defer lock.Unlock()

	s, ok := scopes[name]
	if !ok {
		s = &Scope{
			name:        name,
			description: description,
			callerSkip:  callerSkip,
		}
		s.SetOutputLevel(defaultOutputLevel)
		s.SetStackTraceLevel(NoneLevel)
		s.SetLogCallers(false)

		if name != DefaultScopeName {
			s.nameToEmit = name
		}

		scopes[name] = s
	}

	s.labels = make(map[string]any)

	return s
}

func FindScope(scope string) *Scope {
	lock.RLock()
	defer lock.RUnlock()

	return scopes[scope]
}

func Scopes() map[string]*Scope {
	lock.RLock()
	defer lock.RUnlock()

	s := make(map[string]*Scope, len(scopes))
	for k, v := range scopes {
		s[k] = v
	}

	return s
}

func (s *Scope) Fatal(args ...any)  { s.print(FatalLevel, args) }
func (s *Scope) Fatalf(args ...any) { s.printf(FatalLevel, args) }
func (s *Scope) FatalEnabled() bool { return s.enabled(FatalLevel) }
func (s *Scope) Error(args ...any)  { s.print(ErrorLevel, args) }
func (s *Scope) Errorf(args ...any) { s.printf(ErrorLevel, args) }
func (s *Scope) ErrorEnabled() bool { return s.enabled(ErrorLevel) }
func (s *Scope) Warn(args ...any)   { s.print(WarnLevel, args) }
func (s *Scope) Warnf(args ...any)  { s.printf(WarnLevel, args) }
func (s *Scope) WarnEnabled() bool  { return s.enabled(WarnLevel) }
func (s *Scope) Info(args ...any)   { s.print(InfoLevel, args) }
func (s *Scope) Infof(args ...any)  { s.printf(InfoLevel, args) }
func (s *Scope) InfoEnabled() bool  { return s.enabled(InfoLevel) }
func (s *Scope) Debug(args ...any)  { s.print(DebugLevel, args) }
func (s *Scope) Debugf(args ...any) { s.printf(DebugLevel, args) }
func (s *Scope) DebugEnabled() bool { return s.enabled(DebugLevel) }

func (s *Scope) enabled(l Level) bool {
	return s.GetOutputLevel() >= l
}

// print logs the arguments like fmt.Sprint. A leading *structured.Error is split off
// and emitted as structured fields.
func (s *Scope) print(l Level, args []any) {
	if !s.enabled(l) || len(args) == 0 {
		return
	}
	ie, firstIdx := getErrorStruct(args)
	s.callHandlers(l, s, ie, fmt.Sprint(args[firstIdx:]...))
}

// printf treats the first argument after an optional *structured.Error as the format.
func (s *Scope) printf(l Level, args []any) {
	if !s.enabled(l) || len(args) == 0 {
		return
	}
	ie, firstIdx := getErrorStruct(args)
	if firstIdx >= len(args) {
		s.callHandlers(l, s, ie, "")
		return
	}
	msg := fmt.Sprint(args[firstIdx])
	if len(args) > firstIdx+1 {
		msg = fmt.Sprintf(msg, args[firstIdx+1:]...)
	}
	s.callHandlers(l, s, ie, msg)
}

func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) Description() string {
	return s.description
}

func (s *Scope) SetOutputLevel(l Level) {
	s.outputLevel.Store(l)
}

func (s *Scope) GetOutputLevel() Level {
	return s.outputLevel.Load().(Level)
}

func (s *Scope) SetStackTraceLevel(l Level) {
	s.stackTraceLevel.Store(l)
}

func (s *Scope) GetStackTraceLevel() Level {
	return s.stackTraceLevel.Load().(Level)
}

func (s *Scope) SetLogCallers(logCallers bool) {
	s.logCallers.Store(logCallers)
}

func (s *Scope) GetLogCallers() bool {
	return s.logCallers.Load().(bool)
}

func (s *Scope) copy() *Scope {
	out := &Scope{
		name:        s.name,
		nameToEmit:  s.nameToEmit,
		description: s.description,
		callerSkip:  s.callerSkip,
		labelKeys:   append([]string(nil), s.labelKeys...),
		labels:      copyStringInterfaceMap(s.labels),
	}
	out.SetOutputLevel(s.GetOutputLevel())
	out.SetStackTraceLevel(s.GetStackTraceLevel())
	out.SetLogCallers(s.GetLogCallers())
	return out
}

// WithLabels returns a copy of the scope that adds the key/value pairs to every entry.
func (s *Scope) WithLabels(kvlist ...any) *Scope {
	out := s.copy()
	if len(kvlist)%2 != 0 {
		out.labels["WithLabels error"] = fmt.Sprintf("even number of parameters required, got %d", len(kvlist))
		return out
	}

	for i := 0; i < len(kvlist); i += 2 {
		keyi := kvlist[i]
		key, ok := keyi.(string)
		if !ok {
			out.labels["WithLabels error"] = fmt.Sprintf("label name %v must be a string, got %T ", keyi, keyi)
			return out
		}
		if _, exists := out.labels[key]; !exists {
			out.labelKeys = append(out.labelKeys, key)
		}
		out.labels[key] = kvlist[i+1]
	}
	return out
}

func (s *Scope) callHandlers(
	severity Level,
	scope *Scope,
	ie *structured.Error,
	msg string,
) {
	defaultHandlersMu.RLock()
	defer defaultHandlersMu.RUnlock()
	for _, h := range defaultHandlers {
		h(severity, scope, ie, msg)
	}
}

func getErrorStruct(args []any) (*structured.Error, int) {
	ie, ok := args[0].(*structured.Error)
	if !ok {
		return nil, 0
	}
	// Skip Error, pass remaining fields on as before.
	return ie, 1
}

func copyStringInterfaceMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
