package log

func registerDefaultScope() *Scope {
	return RegisterScope(DefaultScopeName, "Unscoped logging messages.", 1)
}

var defaultScope = registerDefaultScope()

func Fatal(fields ...any)  { defaultScope.Fatal(fields...) }
func Fatalf(args ...any)   { defaultScope.Fatalf(args...) }
func Error(fields ...any)  { defaultScope.Error(fields...) }
func Errorf(args ...any)   { defaultScope.Errorf(args...) }
func Warn(fields ...any)   { defaultScope.Warn(fields...) }
func Warnf(args ...any)    { defaultScope.Warnf(args...) }
func Info(fields ...any)   { defaultScope.Info(fields...) }
func Infof(args ...any)    { defaultScope.Infof(args...) }
func Debug(fields ...any)  { defaultScope.Debug(fields...) }
func Debugf(args ...any)   { defaultScope.Debugf(args...) }
func DebugEnabled() bool   { return defaultScope.DebugEnabled() }

func WithLabels(kvlist ...any) *Scope {
	return defaultScope.WithLabels(kvlist...)
}
