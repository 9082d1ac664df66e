package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/onsi/gomega"

	"khetao.com/console/args"
	"khetao.com/console/engine"
	"khetao.com/console/engine/enginetest"
	"khetao.com/console/log"
	"khetao.com/console/options"
)

func TestMain(m *testing.M) {
	// keep structured errors out of the test output
	lo := log.DefaultOptions()
	lo.OutputPaths = nil
	if err := log.Configure(lo); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type outcome struct {
	code   int
	stdout string
	stderr string
	work   string
}

func execute(t *testing.T, eng *enginetest.Engine, argv ...string) outcome {
	t.Helper()
	g := gomega.NewWithT(t)

	work := t.TempDir()
	argv = append([]string{"--work=" + work}, argv...)
	o, err := options.Parse(argv, options.WithFileSystem(args.NewMemFileSystem()), options.WithDefaults(options.StaticDefaults{}))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(o.Validate()).To(gomega.BeTrue(), "%v", o.ErrorMessages())

	var stdout, stderr bytes.Buffer
	r := New(eng, o,
		WithStdout(&stdout),
		WithStderr(&stderr),
		WithColor(false),
		WithEnvironment(EnvironmentLine{Label: "   OS Version: ", Value: "testos"}),
	)
	code := r.Execute(context.Background())
	return outcome{code: code, stdout: stdout.String(), stderr: stderr.String(), work: work}
}

func TestExecuteWithoutInputs(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng)

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Runtime Environment\n   OS Version: testos\n"))
	g.Expect(res.stderr).To(gomega.Equal("Error: no inputs specified\n"))
	_, ran, _ := eng.Calls()
	g.Expect(ran).To(gomega.BeZero())
}

func TestExecuteListExtensions(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()
	eng.ExtensionPoints = []engine.ExtensionPoint{{
		Path: "/Engine/EventListeners",
		Extensions: []engine.Extension{
			{TypeName: "TeamCityEventListener", Enabled: false},
			{TypeName: "Recorder", Enabled: true, Properties: []engine.Property{
				{Name: "Format", Values: []string{"a", "b"}},
			}},
		},
	}}

	res := execute(t, eng, "--list-extensions")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stderr).To(gomega.BeEmpty())
	g.Expect(res.stdout).To(gomega.ContainSubstring("Installed Extensions\n" +
		"  Extension Point: /Engine/EventListeners\n" +
		"    Extension: TeamCityEventListener (Disabled)\n" +
		"    Extension: Recorder\n" +
		"      Format: a b\n"))
}

func TestExecuteUnknownResultFormat(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()
	eng.ResultFormats = []string{"nunit3"}

	res := execute(t, eng, "tests.dll", "--result=r.xml;format=nunit2")

	g.Expect(res.code).To(gomega.Equal(InvalidArg))
	g.Expect(res.stdout).To(gomega.Equal("Unknown result format: nunit2\n"))
}

func TestExecuteRun(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Test Files\n    tests.dll\n\n"))
	g.Expect(res.stdout).NotTo(gomega.ContainSubstring("Test Filters"))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Test Run Summary\n  Overall result: Passed\n"))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Results (nunit3) saved as TestResult.xml\n"))

	path := filepath.Join(res.work, "TestResult.xml")
	g.Expect(path).To(gomega.BeAnExistingFile())
	g.Expect(eng.Written()).To(gomega.ConsistOf(enginetest.Written{Format: "nunit3", Path: path}))

	pkgs := eng.Packages()
	g.Expect(pkgs).To(gomega.HaveLen(1))
	g.Expect(pkgs[0].InputFiles).To(gomega.Equal([]string{"tests.dll"}))

	explored, ran, closed := eng.Calls()
	g.Expect([]int{explored, ran, closed}).To(gomega.Equal([]int{0, 1, 1}))
}

func TestExecuteNoResult(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll", "--noresult")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).NotTo(gomega.ContainSubstring("saved as"))
	g.Expect(eng.Written()).To(gomega.BeEmpty())
}

func TestExecuteExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		summary engine.Summary
		want    int
	}{
		{"passed", engine.Summary{Overall: "Passed", TestCount: 3, PassCount: 3}, 0},
		{"failures", engine.Summary{Overall: "Failed", TestCount: 5, FailureCount: 2, ErrorCount: 1, InvalidCount: 1}, 4},
		{"invalid assembly", engine.Summary{Overall: "Failed", InvalidAssemblies: 1, FailureCount: 3}, InvalidAssembly},
		{"invalid fixture", engine.Summary{Overall: "Failed", InvalidTestFixtures: 2}, InvalidTestFixture},
		{"unexpected", engine.Summary{Overall: "Failed", UnexpectedError: true, InvalidAssemblies: 1}, UnexpectedError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			eng := enginetest.New()
			eng.Result = &engine.Result{Document: []byte("<test-run />"), Summary: tt.summary}

			res := execute(t, eng, "tests.dll")

			g.Expect(res.code).To(gomega.Equal(tt.want))
		})
	}
}

func TestExecuteExploreToConsole(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()
	eng.Result = &engine.Result{Document: []byte("A.B.One\nA.B.Two\n")}

	res := execute(t, eng, "tests.dll", "--explore")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.HaveSuffix("A.B.One\nA.B.Two\n"))
	g.Expect(eng.Written()).To(gomega.ConsistOf(enginetest.Written{Format: options.ExploreDefaultFormat}))

	explored, ran, _ := eng.Calls()
	g.Expect(explored).To(gomega.Equal(1))
	g.Expect(ran).To(gomega.BeZero())
}

func TestExecuteExploreToFile(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll", "--explore=cases.txt;format=cases")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Results (cases) saved as cases.txt\n"))
	g.Expect(filepath.Join(res.work, "cases.txt")).To(gomega.BeAnExistingFile())
}

func TestExecuteShowsFilters(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll", "--test=A.One,A.Two", "--where=cat == Slow ")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.ContainSubstring("Test Filters\n" +
		"    Test: A.One\n" +
		"    Test: A.Two\n" +
		"    Where: cat == Slow\n\n"))

	filters := eng.BuiltFilters()
	g.Expect(filters).To(gomega.HaveLen(1))
	g.Expect(filters[0].Tests).To(gomega.Equal([]string{"A.One", "A.Two"}))
}

func TestExecuteBadFilter(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll", "--where=(cat == Slow")

	g.Expect(res.code).To(gomega.Equal(InvalidArg))
	g.Expect(res.stderr).To(gomega.ContainSubstring(enginetest.ErrBadWhere.Error()))
	_, ran, _ := eng.Calls()
	g.Expect(ran).To(gomega.BeZero())
}

func TestExecuteUnwritableResult(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()

	res := execute(t, eng, "tests.dll", "--result=missing/dir/r.xml")

	g.Expect(res.code).To(gomega.Equal(UnexpectedError))
	g.Expect(res.stdout).To(gomega.ContainSubstring("The path specified in --result missing/dir/r.xml could not be written to\n"))
	_, ran, _ := eng.Calls()
	g.Expect(ran).To(gomega.BeZero())
}

func TestExecuteEngineErrors(t *testing.T) {
	t.Run("runner", func(t *testing.T) {
		g := gomega.NewWithT(t)
		eng := enginetest.New()
		eng.RunnerErr = errors.New("cannot load tests.dll")

		res := execute(t, eng, "tests.dll")

		g.Expect(res.code).To(gomega.Equal(UnexpectedError))
		g.Expect(res.stdout).To(gomega.ContainSubstring("cannot load tests.dll\n"))
	})

	t.Run("run without result", func(t *testing.T) {
		g := gomega.NewWithT(t)
		eng := enginetest.New()
		eng.Result = nil
		eng.RunErr = errors.New("agent crashed")

		res := execute(t, eng, "tests.dll")

		g.Expect(res.code).To(gomega.Equal(UnexpectedError))
		g.Expect(res.stdout).To(gomega.ContainSubstring("agent crashed\n"))
		g.Expect(res.stdout).NotTo(gomega.ContainSubstring("Test Run Summary"))
	})

	t.Run("run with result", func(t *testing.T) {
		g := gomega.NewWithT(t)
		eng := enginetest.New()
		eng.RunErr = errors.New("agent did not stop")

		res := execute(t, eng, "tests.dll")

		g.Expect(res.code).To(gomega.Equal(OK))
		g.Expect(res.stdout).To(gomega.ContainSubstring("Test Run Summary"))
		g.Expect(res.stdout).To(gomega.HaveSuffix("\nagent did not stop\n"))
	})

	t.Run("cancelled", func(t *testing.T) {
		g := gomega.NewWithT(t)
		eng := enginetest.New()
		o, err := options.Parse([]string{"tests.dll", "--work=" + t.TempDir()}, options.WithDefaults(options.StaticDefaults{}))
		g.Expect(err).NotTo(gomega.HaveOccurred())

		var stdout bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		code := New(eng, o, WithStdout(&stdout), WithStderr(&stdout), WithColor(false)).Execute(ctx)

		g.Expect(code).To(gomega.Equal(UnexpectedError))
		g.Expect(stdout.String()).To(gomega.ContainSubstring(context.Canceled.Error()))
	})
}

var events = []engine.Event{
	{Kind: engine.TestStarted, FullName: "A.One"},
	{Kind: engine.TestOutput, FullName: "A.One", Output: "hello"},
	{Kind: engine.TestOutput, FullName: "A.One", Output: "oops\n", Stream: engine.ErrorStream},
	{Kind: engine.TestFinished, FullName: "A.One", Result: "Passed"},
	{Kind: engine.TestStarted, FullName: "A.Two"},
	{Kind: engine.TestFinished, FullName: "A.Two", Result: "Failed", Output: "bye\n"},
}

func TestExecuteLabels(t *testing.T) {
	tests := []struct {
		labels string
		stdout string
	}{
		{"", "=> A.One\nhello\n=> A.Two\nbye\n"},
		{"Off", "hello\nbye\n"},
		{"On", "=> A.One\nhello\n=> A.Two\nbye\n"},
		{"Before", "=> A.One\nhello\n=> A.Two\nbye\n"},
		{"After", "hello\nPASSED => A.One\nbye\nFAILED => A.Two\n"},
		{"All", "=> A.One\nhello\n=> A.Two\nbye\n"},
	}

	for _, tt := range tests {
		t.Run(tt.labels, func(t *testing.T) {
			g := gomega.NewWithT(t)
			eng := enginetest.New()
			eng.Events = events

			argv := []string{"tests.dll", "--noresult"}
			if tt.labels != "" {
				argv = append(argv, "--labels="+tt.labels)
			}
			res := execute(t, eng, argv...)

			g.Expect(res.code).To(gomega.Equal(OK))
			g.Expect(res.stdout).To(gomega.ContainSubstring("Test Files\n    tests.dll\n\n" + tt.stdout + "Test Run Summary"))
			g.Expect(res.stderr).To(gomega.Equal("oops\n"))
		})
	}
}

func TestExecuteRedirectsOutput(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()
	eng.Events = events

	res := execute(t, eng, "tests.dll", "--noresult", "--out=out.txt", "--err=err.txt")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).NotTo(gomega.ContainSubstring("hello"))
	g.Expect(res.stderr).To(gomega.BeEmpty())

	out, err := os.ReadFile(filepath.Join(res.work, "out.txt"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(string(out)).To(gomega.Equal("=> A.One\nhello\n=> A.Two\nbye\n"))

	errOut, err := os.ReadFile(filepath.Join(res.work, "err.txt"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(string(errOut)).To(gomega.Equal("oops\n"))
}

func TestExecuteEncodesOutput(t *testing.T) {
	g := gomega.NewWithT(t)
	eng := enginetest.New()
	eng.Events = []engine.Event{{Kind: engine.TestOutput, FullName: "A.One", Output: "café\n"}}

	res := execute(t, eng, "tests.dll", "--noresult", "--labels=Off", "--encoding=iso-8859-1")

	g.Expect(res.code).To(gomega.Equal(OK))
	g.Expect(res.stdout).To(gomega.ContainSubstring("caf\xe9\n"))
	g.Expect(res.stdout).NotTo(gomega.ContainSubstring("café"))
}

func TestNewEnablesTeamCity(t *testing.T) {
	g := gomega.NewWithT(t)

	for _, teamCity := range []bool{false, true} {
		eng := enginetest.New()
		argv := []string{"tests.dll"}
		if teamCity {
			argv = append(argv, "--teamcity")
		}
		o, err := options.Parse(argv, options.WithDefaults(options.StaticDefaults{}))
		g.Expect(err).NotTo(gomega.HaveOccurred())

		New(eng, o, WithStdout(&bytes.Buffer{}))

		enabled, set := eng.Enabled(TeamCityExtension)
		g.Expect(set).To(gomega.BeTrue())
		g.Expect(enabled).To(gomega.Equal(teamCity))
	}
}

func TestExecuteWritesBrowserConfig(t *testing.T) {
	g := gomega.NewWithT(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "tests.dll")

	res := execute(t, enginetest.New(), input, "--noresult")
	g.Expect(res.code).To(gomega.Equal(OK))
	data, err := os.ReadFile(filepath.Join(dir, BrowserConfigFile))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(string(data)).To(gomega.Equal("chrome"))

	res = execute(t, enginetest.New(), input, "--noresult", "--browser=Firefox")
	g.Expect(res.code).To(gomega.Equal(OK))
	data, err = os.ReadFile(filepath.Join(dir, BrowserConfigFile))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(string(data)).To(gomega.Equal("firefox"))
}

func TestExecuteMissingTestDirectory(t *testing.T) {
	g := gomega.NewWithT(t)
	input := filepath.Join(t.TempDir(), "missing", "tests.dll")

	res := execute(t, enginetest.New(), input)

	g.Expect(res.code).To(gomega.Equal(InvalidAssembly))
	g.Expect(res.stderr).NotTo(gomega.BeEmpty())
}

func TestExecuteCreatesWorkDirectory(t *testing.T) {
	g := gomega.NewWithT(t)
	work := filepath.Join(t.TempDir(), "a", "b")
	o, err := options.Parse([]string{"tests.dll", "--work=" + work}, options.WithDefaults(options.StaticDefaults{}))
	g.Expect(err).NotTo(gomega.HaveOccurred())

	code := New(enginetest.New(), o, WithStdout(&bytes.Buffer{}), WithStderr(&bytes.Buffer{})).Execute(context.Background())

	g.Expect(code).To(gomega.Equal(OK))
	g.Expect(filepath.Join(work, "TestResult.xml")).To(gomega.BeAnExistingFile())
}
