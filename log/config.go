// Copyright 2017 Istio Authors

package log

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const none zapcore.Level = 100

var levelToZap = map[Level]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
	FatalLevel: zapcore.FatalLevel,
	NoneLevel:  none,
}

var defaultEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "time",
	LevelKey:       "level",
	NameKey:        "scope",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stack",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeTime:     formatDate,
}

type patchTable struct {
	write       func(ent zapcore.Entry, fields []zapcore.Field) error
	sync        func() error
	exitProcess func(code int)
	errorSink   zapcore.WriteSyncer
	close       func() error
}

var (
	// function table that can be replaced by tests
	funcs = &atomic.Value{}
	// controls whether all output is JSON or CLI style. This makes it easier to query how the zap encoder is configured
	// vs. reading it's internal state.
	useJSON atomic.Value
)

func init() {
	// logging works before the console configures it
	_ = Configure(DefaultOptions())
}

const dateLayout = "2006-01-02T15:04:05.000000Z"

func formatDate(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(dateLayout))
}

// prepZap builds the core shared by every scope along with the sink for errors of
// the logging system itself.
func prepZap(options *Options) (zapcore.Core, zapcore.WriteSyncer, func() error, error) {
	var enc zapcore.Encoder
	if options.JSONEncoding {
		enc = zapcore.NewJSONEncoder(defaultEncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(defaultEncoderConfig)
	}

	var rotater *lumberjack.Logger
	if options.RotateOutputPath != "" {
		rotater = &lumberjack.Logger{
			Filename:   options.RotateOutputPath,
			MaxSize:    options.RotationMaxSize,
			MaxBackups: options.RotationMaxBackups,
			MaxAge:     options.RotationMaxAge,
		}
	}

	errSink, closeErrorSink, err := zap.Open(options.ErrorOutputPaths...)
	if err != nil {
		return nil, nil, nil, err
	}

	var sinks []zapcore.WriteSyncer
	closers := []func(){closeErrorSink}
	if len(options.OutputPaths) > 0 {
		outputSink, closeOutput, err := zap.Open(options.OutputPaths...)
		if err != nil {
			closeErrorSink()
			return nil, nil, nil, err
		}
		sinks = append(sinks, outputSink)
		closers = append(closers, closeOutput)
	}
	if rotater != nil {
		sinks = append(sinks, zapcore.AddSync(rotater))
	}

	closeAll := func() error {
		for _, c := range closers {
			c()
		}
		if rotater != nil {
			return rotater.Close()
		}
		return nil
	}

	// scopes do their own level filtering before entries reach the core
	enabler := zap.LevelEnablerFunc(func(zapcore.Level) bool { return true })
	return zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), enabler), errSink, closeAll, nil
}

// Configure installs a new logging core. Scopes registered before the call pick up
// the levels listed in the options; the previous core is closed.
func Configure(options *Options) error {
	core, errSink, closeFn, err := prepZap(options)
	if err != nil {
		return err
	}

	if err := updateScopes(options); err != nil {
		_ = closeFn()
		return err
	}

	pt := patchTable{
		write: func(ent zapcore.Entry, fields []zapcore.Field) error {
			err := core.Write(ent, fields)
			if ent.Level == zapcore.FatalLevel {
				funcs.Load().(patchTable).exitProcess(1)
			}
			return err
		},
		sync:        core.Sync,
		exitProcess: os.Exit,
		errorSink:   errSink,
		close: func() error {
			_ = core.Sync()
			return closeFn()
		},
	}

	if prev, ok := funcs.Load().(patchTable); ok && prev.close != nil {
		_ = prev.close()
	}
	funcs.Store(pt)
	useJSON.Store(options.JSONEncoding)
	return nil
}

// Sync flushes any buffered log entries.
func Sync() error {
	return funcs.Load().(patchTable).sync()
}

// Close flushes and releases the sinks installed by the last Configure.
func Close() error {
	return funcs.Load().(patchTable).close()
}

func updateScopes(options *Options) error {
	// snapshot what's there
	allScopes := Scopes()

	// update the output levels of all listed scopes
	if err := processLevels(allScopes, options.outputLevels, func(s *Scope, l Level) { s.SetOutputLevel(l) }); err != nil {
		return err
	}

	// update the stack tracing levels of all listed scopes
	if err := processLevels(allScopes, options.stackTraceLevels, func(s *Scope, l Level) { s.SetStackTraceLevel(l) }); err != nil {
		return err
	}

	// update the caller location setting of all listed scopes
	for _, s := range strings.Split(options.logCallers, ",") {
		if s == "" {
			continue
		}

		if s == OverrideScopeName {
			// ignore everything else and just apply the override value
			for _, scope := range allScopes {
				scope.SetLogCallers(true)
			}
			return nil
		}

		if scope, ok := allScopes[s]; ok {
			scope.SetLogCallers(true)
		}
	}

	return nil
}

func processLevels(allScopes map[string]*Scope, arg string, setter func(*Scope, Level)) error {
	for _, sl := range strings.Split(arg, ",") {
		if sl == "" {
			continue
		}

		s, l, err := convertScopedLevel(sl)
		if err != nil {
			return err
		}

		if scope, ok := allScopes[s]; ok {
			setter(scope, l)
		} else if s == OverrideScopeName {
			// override replaces everything
			for _, scope := range allScopes {
				setter(scope, l)
			}
			return nil
		} else {
			return fmt.Errorf("unknown scope '%s' specified", s)
		}
	}

	return nil
}
