package log

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"khetao.com/console/structured"
)

var toLevel = map[zapcore.Level]Level{
	zapcore.FatalLevel: FatalLevel,
	zapcore.ErrorLevel: ErrorLevel,
	zapcore.WarnLevel:  WarnLevel,
	zapcore.InfoLevel:  InfoLevel,
	zapcore.DebugLevel: DebugLevel,
}

func init() {
	registerDefaultHandler(ZapLogHandlerCallbackFunc)
}

// ZapLogHandlerCallbackFunc renders an entry for the zap core. In JSON mode the
// structured error and labels become fields; otherwise they are appended to the
// message as key=value pairs.
func ZapLogHandlerCallbackFunc(
	level Level,
	scope *Scope,
	ie *structured.Error,
	msg string,
) {
	var fields []zapcore.Field
	if useJSON.Load().(bool) {
		if ie != nil {
			fields = appendNotEmptyField(fields, "message", msg)
			// Unlike zap, don't leave the message in CLI format.
			msg = ""
			fields = appendNotEmptyField(fields, "moreInfo", ie.MoreInfo)
			fields = appendNotEmptyField(fields, "impact", ie.Impact)
			fields = appendNotEmptyField(fields, "action", ie.Action)
			fields = appendNotEmptyField(fields, "likelyCause", ie.LikelyCause)
			fields = appendNotEmptyField(fields, "err", toErrString(ie.Err))
		}
		for _, k := range scope.labelKeys {
			fields = append(fields, zap.Any(k, scope.labels[k]))
		}
	} else {
		sb := &strings.Builder{}
		sb.WriteString(msg)
		if ie != nil || len(scope.labelKeys) > 0 {
			sb.WriteString("\t")
		}
		if ie != nil {
			appendNotEmptyString(sb, "moreInfo", ie.MoreInfo)
			appendNotEmptyString(sb, "impact", ie.Impact)
			appendNotEmptyString(sb, "action", ie.Action)
			appendNotEmptyString(sb, "likelyCause", ie.LikelyCause)
			appendNotEmptyString(sb, "err", toErrString(ie.Err))
		}
		for i, k := range scope.labelKeys {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(sb, "%s=%v", k, scope.labels[k])
		}
		msg = sb.String()
	}
	emit(scope, levelToZap[level], msg, fields)
}

func appendNotEmptyField(fields []zapcore.Field, key, value string) []zapcore.Field {
	if key == "" || value == "" {
		return fields
	}
	return append(fields, zap.String(key, value))
}

func appendNotEmptyString(sb *strings.Builder, key, value string) {
	if key == "" || value == "" {
		return
	}
	fmt.Fprintf(sb, "%s=%v ", key, value)
}

const callerSkipOffset = 4

func dumpStack(level zapcore.Level, scope *Scope) bool {
	thresh := toLevel[level]
	if scope != defaultScope {
		thresh = ErrorLevel
		if level == zapcore.FatalLevel {
			thresh = FatalLevel
		}
	}
	return scope.GetStackTraceLevel() >= thresh
}

func emit(scope *Scope, level zapcore.Level, msg string, fields []zapcore.Field) {
	e := zapcore.Entry{
		Message:    msg,
		Level:      level,
		Time:       time.Now(),
		LoggerName: scope.nameToEmit,
	}

	if scope.GetLogCallers() {
		e.Caller = zapcore.NewEntryCaller(runtime.Caller(scope.callerSkip + callerSkipOffset))
	}

	if dumpStack(level, scope) {
		e.Stack = zap.Stack("").String
	}

	pt := funcs.Load().(patchTable)
	if pt.write != nil {
		if err := pt.write(e, fields); err != nil {
			_, _ = fmt.Fprintf(pt.errorSink, "%v log write error: %v\n", time.Now(), err)
			_ = pt.errorSink.Sync()
		}
	}
}

func toErrString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
