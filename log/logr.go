package log

import (
	"fmt"

	"github.com/go-logr/logr"
)

// logrSink lets libraries that speak logr, such as test engines, write into a scope.
type logrSink struct {
	l    *Scope
	name string
}

// V levels above this are treated as debug output.
const debugLevelThreshold = 3

var _ logr.LogSink = &logrSink{}

func (ls *logrSink) Init(logr.RuntimeInfo) {
}

func (ls *logrSink) Enabled(level int) bool {
	if level > debugLevelThreshold {
		return ls.l.DebugEnabled()
	}
	return ls.l.InfoEnabled()
}

func trimNewline(msg string) string {
	if len(msg) == 0 {
		return msg
	}
	lc := len(msg) - 1
	if msg[lc] == '\n' {
		return msg[:lc]
	}
	return msg
}

func (ls *logrSink) withName(msg string) string {
	if ls.name == "" {
		return msg
	}
	return ls.name + ": " + msg
}

func (ls *logrSink) Info(level int, msg string, keysAndVals ...any) {
	msg = ls.withName(trimNewline(msg))
	if level > debugLevelThreshold {
		ls.l.WithLabels(keysAndVals...).Debug(msg)
	} else {
		ls.l.WithLabels(keysAndVals...).Info(msg)
	}
}

func (ls *logrSink) Error(err error, msg string, keysAndVals ...any) {
	if !ls.l.ErrorEnabled() {
		return
	}
	msg = ls.withName(trimNewline(msg))
	if err == nil {
		ls.l.WithLabels(keysAndVals...).Error(msg)
	} else {
		ls.l.WithLabels(keysAndVals...).Error(fmt.Sprintf("%v: %s", err.Error(), msg))
	}
}

func (ls *logrSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &logrSink{l: ls.l.WithLabels(keysAndValues...), name: ls.name}
}

func (ls *logrSink) WithName(name string) logr.LogSink {
	if ls.name != "" {
		name = ls.name + "/" + name
	}
	return &logrSink{l: ls.l, name: name}
}

// NewLogrAdapter creates a new logr.Logger that writes to the given scope.
func NewLogrAdapter(l *Scope) logr.Logger {
	return logr.New(&logrSink{l: l})
}
