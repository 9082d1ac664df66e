package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khetao.com/console/app"
	"khetao.com/console/cli"
	"khetao.com/console/engine"
	"khetao.com/console/engine/enginetest"
	"khetao.com/console/version"
)

var fake = enginetest.New()

func TestMain(m *testing.M) {
	engine.Register("fake", fake)
	os.Exit(m.Run())
}

func runConsole(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, args)
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return app.OK
	}
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error %v", err)
	return exitErr.Code
}

func TestNoArgumentsShowsHelp(t *testing.T) {
	out, _, err := runConsole(t)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, version.Header()+"\n\n"))
	assert.Contains(t, out, "Usage: console [inputfiles] [options]")
}

func TestHelp(t *testing.T) {
	out, _, err := runConsole(t, "--help", "--noheader")
	require.NoError(t, err)
	assert.NotContains(t, out, version.Header())
	assert.Contains(t, out, "--where EXPRESSION")
}

func TestVersionOption(t *testing.T) {
	out, _, err := runConsole(t, "-V", "--noheader")
	require.NoError(t, err)
	assert.Equal(t, version.Header()+"\n\n", out)
}

func TestInvalidOptions(t *testing.T) {
	_, errOut, err := runConsole(t, "tests.dll", "--labels=Sometimes")
	assert.Equal(t, app.InvalidArg, exitCode(t, err))
	assert.Contains(t, errOut, "Error(s) in options:\n   The value 'Sometimes' is not valid for option 'labels'.\n")
}

func TestMissingRequiredValue(t *testing.T) {
	_, _, err := runConsole(t, "tests.dll", "--where")
	assert.Equal(t, app.InvalidArg, exitCode(t, err))
	assert.EqualError(t, err, "Missing required value for option 'where'.")
}

func TestRun(t *testing.T) {
	work := t.TempDir()

	out, _, err := runConsole(t, "tests.dll", "--work="+work)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Run Summary")
	assert.FileExists(t, filepath.Join(work, "TestResult.xml"))
}

func TestRunFailuresSetExitCode(t *testing.T) {
	saved := fake.Result
	defer func() { fake.Result = saved }()
	fake.Result = &engine.Result{Summary: engine.Summary{Overall: "Failed", TestCount: 3, FailureCount: 2}}

	_, _, err := runConsole(t, "tests.dll", "--noresult", "--work="+t.TempDir())
	assert.Equal(t, 2, exitCode(t, err))
	assert.Empty(t, err.Error())
}

func TestWaitBeforeExit(t *testing.T) {
	saved := stdin
	defer func() { stdin = saved }()
	stdin = strings.NewReader("\n")

	out, _, err := runConsole(t, "--wait", "--help")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Press Enter key to continue . . ."))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runConsole(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Info.Version+"\n", out)

	out, _, err = runConsole(t, "version", "--short", "--remote")
	require.NoError(t, err)
	assert.Equal(t, "client version: "+version.Info.Version+"\nengine version: 1.0.0\n", out)
}
