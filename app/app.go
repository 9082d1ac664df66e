package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-logr/logr"

	"khetao.com/console/engine"
	"khetao.com/console/log"
	"khetao.com/console/options"
	"khetao.com/console/structured"
)

// Exit codes of the console. A run that completes returns the number of
// failed, errored and invalid tests instead.
const (
	OK                 = 0
	InvalidArg         = -1
	InvalidAssembly    = -2
	InvalidTestFixture = -4
	UnexpectedError    = -100
)

const (
	// TeamCityExtension is the engine extension that emits TeamCity service messages.
	TeamCityExtension = "TeamCityEventListener"
	BrowserConfigFile = "browserconfig.txt"
)

var (
	scope       = log.RegisterScope("app", "Console runner.", 0)
	engineScope = log.RegisterScope("engine", "Messages from the test engine.", 0)
)

var (
	errWorkDirectory = &structured.Error{
		Impact: "No tests are run.",
		Action: "Check that the --work directory can be created.",
	}
	errResultPath = &structured.Error{
		Impact:      "No tests are run.",
		Action:      "Check the path given to --result.",
		LikelyCause: "The directory does not exist or is not writable.",
	}
	errRedirect = &structured.Error{
		Impact: "No tests are run.",
		Action: "Check the paths given to --out and --err.",
	}
	errBrowserConfig = &structured.Error{
		Impact: "No tests are run.",
		Action: "Check that the directories of the test files exist.",
	}
	errFilter = &structured.Error{
		Impact: "No tests are run.",
		Action: "Check the --test, --testlist and --where options.",
	}
	errEngine = &structured.Error{
		Impact:      "The run did not complete.",
		LikelyCause: "The engine could not load or run the test package.",
	}
)

// EnvironmentLine is one labelled line of the runtime environment section.
type EnvironmentLine struct {
	Label string
	Value string
}

func DefaultEnvironment() []EnvironmentLine {
	return []EnvironmentLine{
		{Label: "   OS Version: ", Value: runtime.GOOS + " " + runtime.GOARCH},
		{Label: "   Go Version: ", Value: runtime.Version()},
	}
}

// Runner runs or explores the tests described by validated console options and
// reports on them.
type Runner struct {
	engine  engine.Engine
	options *options.ConsoleOptions

	stdout       io.Writer
	stderr       io.Writer
	color        *bool
	engineLogger logr.Logger
	environment  []EnvironmentLine

	out     *ConsoleWriter
	errOut  *ConsoleWriter
	flush   func() error
	workDir string
}

func New(eng engine.Engine, opts *options.ConsoleOptions, o ...Option) *Runner {
	r := &Runner{
		engine:       eng,
		options:      opts,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		engineLogger: log.NewLogrAdapter(engineScope),
		environment:  DefaultEnvironment(),
		flush:        func() error { return nil },
	}
	for _, opt := range o {
		opt(r)
	}

	colored := colorSupported(r.stdout)
	if r.color != nil {
		colored = *r.color
	}
	colored = colored && !opts.NoColor

	stdout := r.stdout
	if w, flush, err := encodeOutput(r.stdout, opts.ConsoleEncoding); err != nil {
		scope.Warnf("console encoding %s ignored: %v", opts.ConsoleEncoding, err)
	} else {
		stdout, r.flush = w, flush
	}
	r.out = NewConsoleWriter(stdout, colored)
	r.errOut = NewConsoleWriter(r.stderr, colored)

	r.workDir = opts.WorkDirectory
	if r.workDir == "" {
		r.workDir, _ = os.Getwd()
	}

	// before any output is redirected
	eng.Extensions().EnableExtension(TeamCityExtension, opts.TeamCity)
	return r
}

// Execute runs the console flow and returns the process exit code.
func (r *Runner) Execute(ctx context.Context) int {
	defer func() {
		if err := r.flush(); err != nil {
			scope.Warnf("flushing console output: %v", err)
		}
	}()

	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		scope.Error(structured.NewErr(errWorkDirectory, err).WithInfo("work directory %s", r.workDir), "cannot create work directory")
		r.errOut.Println(Error, err.Error())
		return UnexpectedError
	}

	if !r.verifyEngineSupport() {
		return InvalidArg
	}

	r.displayRuntimeEnvironment()

	if r.options.ListExtensions {
		r.displayExtensionList()
	}

	if len(r.options.InputFiles) == 0 {
		if !r.options.ListExtensions {
			r.errOut.Println(Error, "Error: no inputs specified")
		}
		return OK
	}

	if err := r.createBrowserTypeFiles(); err != nil {
		scope.Error(structured.NewErr(errBrowserConfig, err), "cannot write browser configuration")
		r.errOut.Println(Error, err.Error())
		if errors.Is(err, fs.ErrNotExist) {
			return InvalidAssembly
		}
		return UnexpectedError
	}

	r.displayTestFiles()

	pkg := options.MakeTestPackage(r.options)

	// shown before the filter is built so that a filter error makes sense
	r.displayTestFilters()

	filter, err := r.createTestFilter()
	if err != nil {
		scope.Error(structured.NewErr(errFilter, err), "cannot build test filter")
		r.errOut.Println(Error, err.Error())
		return InvalidArg
	}

	if r.options.Explore {
		return r.exploreTests(ctx, pkg, filter)
	}
	return r.runTests(ctx, pkg, filter)
}

func (r *Runner) verifyEngineSupport() bool {
	formats := r.engine.Results().Formats()
	for _, spec := range r.options.ResultOutputSpecifications() {
		if !contains(formats, spec.Format) {
			r.out.Println(Default, "Unknown result format: "+spec.Format)
			return false
		}
	}
	return true
}

func (r *Runner) exploreTests(ctx context.Context, pkg *engine.Package, filter engine.Filter) int {
	runner, err := r.engine.Runner(pkg, r.engineLogger)
	if err != nil {
		return r.engineFailure(err)
	}
	result, err := runner.Explore(ctx, filter)
	closeRunner(runner)
	if err != nil {
		return r.engineFailure(err)
	}

	specs := r.options.ExploreOutputSpecifications()
	if len(specs) == 0 {
		w, err := r.engine.Results().Writer(options.ExploreDefaultFormat, "")
		if err != nil {
			return r.engineFailure(err)
		}
		if err := w.Write(result, r.out); err != nil {
			return r.engineFailure(err)
		}
		return OK
	}

	for _, spec := range specs {
		w, err := r.engine.Results().Writer(spec.Format, spec.Transform)
		if err != nil {
			return r.engineFailure(err)
		}
		if err := w.WriteFile(result, resolvePath(r.workDir, spec.OutputPath)); err != nil {
			return r.engineFailure(err)
		}
		r.out.Println(Default, fmt.Sprintf("Results (%s) saved as %s", spec.Format, spec.OutputPath))
	}
	return OK
}

func (r *Runner) runTests(ctx context.Context, pkg *engine.Package, filter engine.Filter) int {
	specs := r.options.ResultOutputSpecifications()
	writers := make([]engine.ResultWriter, len(specs))
	for i, spec := range specs {
		w, err := r.engine.Results().Writer(spec.Format, spec.Transform)
		if err != nil {
			return r.engineFailure(err)
		}
		if err := w.CheckWritability(resolvePath(r.workDir, spec.OutputPath)); err != nil {
			msg := fmt.Sprintf("The path specified in --result %s could not be written to", spec.OutputPath)
			scope.Error(structured.NewErr(errResultPath, err).WithInfo("result %s", spec), msg)
			r.out.Println(Error, msg)
			return UnexpectedError
		}
		writers[i] = w
	}

	output, closeOutput, err := r.redirect(r.options.OutFile, r.out)
	if err != nil {
		return r.redirectFailure(err)
	}
	errOutput, closeErrOutput, err := r.redirect(r.options.ErrFile, r.errOut)
	if err != nil {
		closeOutput()
		return r.redirectFailure(err)
	}

	handler := newEventHandler(output, errOutput, r.options.DisplayTestLabels)
	result, runErr := r.run(ctx, pkg, filter, handler)
	closeOutput()
	closeErrOutput()

	if result == nil {
		if runErr != nil {
			scope.Error(structured.NewErr(errEngine, runErr), "test run failed")
			r.out.Println(Error, runErr.Error())
		}
		return UnexpectedError
	}

	writeSummary(r.out, result.Summary)

	for i, spec := range specs {
		if err := writers[i].WriteFile(result, resolvePath(r.workDir, spec.OutputPath)); err != nil {
			return r.engineFailure(err)
		}
		r.out.Println(Default, fmt.Sprintf("Results (%s) saved as %s", spec.Format, spec.OutputPath))
	}

	// with a result in hand an engine error is only a warning
	if runErr != nil {
		scope.Warnf("engine reported an error after producing a result: %v", runErr)
		r.out.Newline()
		r.out.Println(Warning, runErr.Error())
	}

	return exitCode(result.Summary)
}

func (r *Runner) run(ctx context.Context, pkg *engine.Package, filter engine.Filter, l engine.EventListener) (*engine.Result, error) {
	runner, err := r.engine.Runner(pkg, r.engineLogger)
	if err != nil {
		return nil, err
	}
	defer closeRunner(runner)
	return runner.Run(ctx, l, filter)
}

// redirect opens name in the work directory for test output, or returns
// fallback when no file was asked for.
func (r *Runner) redirect(name string, fallback *ConsoleWriter) (*ConsoleWriter, func(), error) {
	if name == "" {
		return fallback, func() {}, nil
	}
	f, err := os.Create(resolvePath(r.workDir, name))
	if err != nil {
		return nil, nil, err
	}
	return NewConsoleWriter(f, false), func() {
		if err := f.Close(); err != nil {
			scope.Warnf("closing %s: %v", f.Name(), err)
		}
	}, nil
}

func (r *Runner) redirectFailure(err error) int {
	scope.Error(structured.NewErr(errRedirect, err), "cannot redirect test output")
	r.errOut.Println(Error, err.Error())
	return UnexpectedError
}

func (r *Runner) engineFailure(err error) int {
	scope.Error(structured.NewErr(errEngine, err), "engine failure")
	r.out.Println(Error, err.Error())
	return UnexpectedError
}

func (r *Runner) createTestFilter() (engine.Filter, error) {
	spec := r.options.FilterSpec()
	b := r.engine.Filters().Builder()
	for _, name := range spec.Tests {
		b.AddTest(name)
	}
	if spec.Where != "" {
		b.SelectWhere(spec.Where)
	}
	return b.Filter()
}

// createBrowserTypeFiles writes the browser name next to every test file given
// with a directory.
func (r *Runner) createBrowserTypeFiles() error {
	browser := strings.ToLower(r.options.Browser)
	if browser == "" {
		browser = options.DebugBrowser
	}
	for _, file := range r.options.InputFiles {
		i := strings.LastIndexByte(file, filepath.Separator)
		if i < 0 {
			continue
		}
		path := filepath.Join(file[:i+1], BrowserConfigFile)
		if err := os.WriteFile(path, []byte(browser), 0o644); err != nil {
			return err
		}
		scope.Debugf("wrote %s", path)
	}
	return nil
}

func (r *Runner) displayRuntimeEnvironment() {
	r.out.Println(SectionHeader, "Runtime Environment")
	for _, l := range r.environment {
		r.out.LabelLine(l.Label, l.Value)
	}
	r.out.Newline()
}

func (r *Runner) displayExtensionList() {
	r.out.Println(SectionHeader, "Installed Extensions")
	for _, ep := range r.engine.Extensions().ExtensionPoints() {
		r.out.LabelLine("  Extension Point: ", ep.Path)
		for _, ext := range ep.Extensions {
			r.out.Print(Default, "    Extension: ")
			r.out.Print(Value, ext.TypeName)
			if ext.Enabled {
				r.out.Newline()
			} else {
				r.out.Println(Default, " (Disabled)")
			}
			for _, prop := range ext.Properties {
				r.out.Print(Default, "      "+prop.Name+":")
				for _, v := range prop.Values {
					r.out.Print(Value, " "+v)
				}
				r.out.Newline()
			}
		}
	}
	r.out.Newline()
}

func (r *Runner) displayTestFiles() {
	r.out.Println(SectionHeader, "Test Files")
	for _, file := range r.options.InputFiles {
		r.out.Println(Default, "    "+file)
	}
	r.out.Newline()
}

func (r *Runner) displayTestFilters() {
	if len(r.options.TestList) == 0 && !r.options.WhereClauseSpecified() {
		return
	}
	r.out.Println(SectionHeader, "Test Filters")
	for _, name := range r.options.TestList {
		r.out.LabelLine("    Test: ", name)
	}
	if r.options.WhereClauseSpecified() {
		r.out.LabelLine("    Where: ", strings.TrimSpace(r.options.WhereClause))
	}
	r.out.Newline()
}

func closeRunner(runner engine.Runner) {
	if err := runner.Close(); err != nil {
		scope.Warnf("closing engine runner: %v", err)
	}
}

// resolvePath joins a relative path onto dir.
func resolvePath(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
