// Package enginetest provides an in-memory engine.Engine for tests.
package enginetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"khetao.com/console/engine"
)

// Written records one call to a result writer.
type Written struct {
	Format    string
	Transform string
	// Path is empty when the result went to an io.Writer.
	Path string
}

// Engine is a scripted engine. Configure the exported fields before use and
// inspect the recorded calls afterwards.
type Engine struct {
	VersionString   string
	ResultFormats   []string
	Result          *engine.Result
	RunErr          error
	RunnerErr       error
	FilterErr       error
	Events          []engine.Event
	ExtensionPoints []engine.ExtensionPoint

	mu       sync.Mutex
	packages []*engine.Package
	filters  []*Filter
	loggers  []logr.Logger
	enabled  map[string]bool
	written  []Written
	explored int
	ran      int
	closed   int
}

// New returns an engine that passes every run with a small result document.
func New() *Engine {
	return &Engine{
		VersionString: "Version: 1.0.0\nGitRevision: fake",
		ResultFormats: []string{"nunit3", "nunit2", "cases", "user"},
		Result: &engine.Result{
			Document: []byte("<test-run result=\"Passed\" />\n"),
			Summary:  engine.Summary{Overall: "Passed", TestCount: 1, PassCount: 1},
		},
		enabled: make(map[string]bool),
	}
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Runner(pkg *engine.Package, logger logr.Logger) (engine.Runner, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RunnerErr != nil {
		return nil, e.RunnerErr
	}
	e.packages = append(e.packages, pkg)
	e.loggers = append(e.loggers, logger)
	return &runner{e: e, logger: logger}, nil
}

func (e *Engine) Results() engine.ResultService       { return results{e} }
func (e *Engine) Filters() engine.FilterService       { return filters{e} }
func (e *Engine) Extensions() engine.ExtensionService { return extensions{e} }
func (e *Engine) Version() string                     { return e.VersionString }

// Packages returns the packages runners were created for.
func (e *Engine) Packages() []*engine.Package {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*engine.Package(nil), e.packages...)
}

// BuiltFilters returns the filters built so far.
func (e *Engine) BuiltFilters() []*Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Filter(nil), e.filters...)
}

func (e *Engine) Written() []Written {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Written(nil), e.written...)
}

// Enabled reports the last EnableExtension call for typeName.
func (e *Engine) Enabled(typeName string) (enabled, set bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	enabled, set = e.enabled[typeName]
	return enabled, set
}

// Calls returns how many times Explore, Run and Close were called.
func (e *Engine) Calls() (explored, ran, closed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.explored, e.ran, e.closed
}

type runner struct {
	e      *Engine
	logger logr.Logger
}

func (r *runner) Explore(ctx context.Context, filter engine.Filter) (*engine.Result, error) {
	r.e.mu.Lock()
	r.e.explored++
	r.e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.V(1).Info("exploring", "filter", filter.String())
	return r.e.Result, nil
}

func (r *runner) Run(ctx context.Context, listener engine.EventListener, filter engine.Filter) (*engine.Result, error) {
	r.e.mu.Lock()
	r.e.ran++
	r.e.mu.Unlock()
	r.logger.V(1).Info("running", "filter", filter.String())

	for _, ev := range r.e.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		listener.OnTestEvent(ev)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.e.Result, r.e.RunErr
}

func (r *runner) Close() error {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.closed++
	return nil
}

type results struct{ e *Engine }

func (s results) Formats() []string { return append([]string(nil), s.e.ResultFormats...) }

func (s results) Writer(format, transform string) (engine.ResultWriter, error) {
	for _, f := range s.e.ResultFormats {
		if f == format {
			return &writer{e: s.e, format: format, transform: transform}, nil
		}
	}
	return nil, fmt.Errorf("unknown result format %q", format)
}

type writer struct {
	e         *Engine
	format    string
	transform string
}

// CheckWritability fails when the directory of path does not exist.
func (w *writer) CheckWritability(path string) error {
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(path))
	}
	return nil
}

func (w *writer) WriteFile(result *engine.Result, path string) error {
	if err := os.WriteFile(path, result.Document, 0o644); err != nil {
		return err
	}
	w.record(path)
	return nil
}

func (w *writer) Write(result *engine.Result, out io.Writer) error {
	if _, err := out.Write(result.Document); err != nil {
		return err
	}
	w.record("")
	return nil
}

func (w *writer) record(path string) {
	w.e.mu.Lock()
	defer w.e.mu.Unlock()
	w.e.written = append(w.e.written, Written{Format: w.format, Transform: w.transform, Path: path})
}

// Filter is the filter built by the fake filter service.
type Filter struct {
	Tests []string
	Where string
}

func (f *Filter) String() string {
	var parts []string
	if len(f.Tests) > 0 {
		parts = append(parts, "test in ("+strings.Join(f.Tests, ",")+")")
	}
	if f.Where != "" {
		parts = append(parts, f.Where)
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " and ")
}

type filters struct{ e *Engine }

func (s filters) Builder() engine.FilterBuilder {
	return &builder{e: s.e, f: &Filter{}}
}

type builder struct {
	e *Engine
	f *Filter
}

func (b *builder) AddTest(name string)      { b.f.Tests = append(b.f.Tests, name) }
func (b *builder) SelectWhere(where string) { b.f.Where = where }

// ErrBadWhere is returned for a where clause with unbalanced parentheses.
var ErrBadWhere = errors.New("unbalanced parentheses in where clause")

func (b *builder) Filter() (engine.Filter, error) {
	if b.e.FilterErr != nil {
		return nil, b.e.FilterErr
	}
	if strings.Count(b.f.Where, "(") != strings.Count(b.f.Where, ")") {
		return nil, ErrBadWhere
	}
	b.e.mu.Lock()
	b.e.filters = append(b.e.filters, b.f)
	b.e.mu.Unlock()
	return b.f, nil
}

type extensions struct{ e *Engine }

func (s extensions) ExtensionPoints() []engine.ExtensionPoint {
	return s.e.ExtensionPoints
}

func (s extensions) EnableExtension(typeName string, enabled bool) {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	s.e.enabled[typeName] = enabled
}
