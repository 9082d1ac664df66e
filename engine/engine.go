package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// FilterSpec is what the console knows about test selection: explicit test
// names plus an optional where clause.
type FilterSpec struct {
	Tests []string
	Where string
}

func (f FilterSpec) Empty() bool {
	return len(f.Tests) == 0 && f.Where == ""
}

// Filter is an engine specific test filter built from a FilterSpec.
type Filter interface {
	String() string
}

type FilterBuilder interface {
	AddTest(name string)
	SelectWhere(where string)
	Filter() (Filter, error)
}

type FilterService interface {
	Builder() FilterBuilder
}

// Summary holds the counts the console reports and derives its exit code from.
type Summary struct {
	Overall             string
	TestCount           int
	PassCount           int
	FailureCount        int
	ErrorCount          int
	InvalidCount        int
	WarningCount        int
	InconclusiveCount   int
	SkipCount           int
	InvalidAssemblies   int
	InvalidTestFixtures int
	UnexpectedError     bool
	Duration            time.Duration
}

// Result is the document produced by exploring or running a package.
type Result struct {
	Document []byte
	Summary  Summary
}

type EventKind int

const (
	TestStarted EventKind = iota
	TestFinished
	TestOutput
)

// Event is a progress notification sent while tests run.
type Event struct {
	Kind     EventKind
	FullName string
	// Result is set on TestFinished, e.g. "Passed" or "Failed".
	Result string
	// Output is the text written by the test, if any.
	Output string
	// Stream is ErrorStream for text the test wrote to its error output.
	Stream string
}

// ErrorStream marks output written to a test's error stream.
const ErrorStream = "Error"

type EventListener interface {
	OnTestEvent(e Event)
}

type Runner interface {
	Explore(ctx context.Context, filter Filter) (*Result, error)
	// Run may return a result and an error together; the error is then a warning.
	Run(ctx context.Context, listener EventListener, filter Filter) (*Result, error)
	Close() error
}

type ResultWriter interface {
	CheckWritability(path string) error
	WriteFile(result *Result, path string) error
	Write(result *Result, w io.Writer) error
}

type ResultService interface {
	Formats() []string
	// Writer returns the writer for format; transform is empty unless the format is "user".
	Writer(format, transform string) (ResultWriter, error)
}

type Property struct {
	Name   string
	Values []string
}

type Extension struct {
	TypeName   string
	Enabled    bool
	Properties []Property
}

type ExtensionPoint struct {
	Path       string
	Extensions []Extension
}

type ExtensionService interface {
	ExtensionPoints() []ExtensionPoint
	EnableExtension(typeName string, enabled bool)
}

// Engine is a test execution engine.
type Engine interface {
	Runner(pkg *Package, logger logr.Logger) (Runner, error)
	Results() ResultService
	Filters() FilterService
	Extensions() ExtensionService
	// Version is reported as "Version: x" lines, one field per line.
	Version() string
}

// ErrNoEngine is returned by Default when nothing registered an engine.
var ErrNoEngine = errors.New("no test engine registered")

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine available by name. It panics if the name is taken.
func Register(name string, e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if e == nil {
		panic("engine: Register engine is nil")
	}
	if _, dup := engines[name]; dup {
		panic("engine: Register called twice for engine " + name)
	}
	engines[name] = e
}

// Engines lists registered names in sorted order.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the engine registered under name.
func Open(name string) (Engine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown engine %q", name)
	}
	return e, nil
}

// Default returns the only registered engine, or the first by name when several
// are registered.
func Default() (Engine, error) {
	names := Engines()
	if len(names) == 0 {
		return nil, ErrNoEngine
	}
	return Open(names[0])
}

// unregisterAll is for tests.
func unregisterAll() {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines = make(map[string]Engine)
}
