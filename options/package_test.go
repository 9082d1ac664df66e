package options

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"khetao.com/console/engine"
)

func TestMakeTestPackageDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	pkg := MakeTestPackage(parse(t, "a.dll", "b.dll"))

	assert.Equal(t, []string{"a.dll", "b.dll"}, pkg.InputFiles)
	assert.Equal(t, []string{engine.DisposeRunners, engine.WorkDirectory}, pkg.Names())

	v, ok := pkg.Setting(engine.WorkDirectory)
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.StringVal(cwd)), "got %#v", v)
}

func TestMakeTestPackageSettings(t *testing.T) {
	o := parse(t, "a.dll",
		"--process=Separate", "--domain=single", "--framework=net-4.5", "--x86", "--shadowcopy",
		"--loaduserprofile", "--skipnontestassemblies", "--timeout=200", "--trace=Verbose",
		"--config=Release", "--stoponerror", "--agents=3", "--workers=4", "--browser=Edge",
		"--seed=1234", "--pause", "--set-principal-policy=NoPrincipal", "--test-name-format={m}",
		"--work=out")

	pkg := MakeTestPackage(o)

	assert.Equal(t, []string{
		engine.ProcessModel, engine.DomainUsage, engine.RuntimeFramework, engine.RunAsX86,
		engine.ShadowCopyFiles, engine.LoadUserProfile, engine.SkipNonTestAssemblies,
		engine.DefaultTimeout, engine.InternalTraceLevel, engine.ActiveConfig, engine.StopOnError,
		engine.MaxAgents, engine.NumberOfTestWorkers, engine.BrowserType, engine.RandomSeed,
		engine.PauseBeforeRun, engine.PrincipalPolicy, engine.DefaultTestNamePattern,
		engine.DisposeRunners, engine.WorkDirectory,
	}, pkg.Names())

	native, err := pkg.Native()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		engine.ProcessModel:           "Separate",
		engine.DomainUsage:            "Single",
		engine.RuntimeFramework:       "net-4.5",
		engine.RunAsX86:               true,
		engine.ShadowCopyFiles:        true,
		engine.LoadUserProfile:        true,
		engine.SkipNonTestAssemblies:  true,
		engine.DefaultTimeout:         int64(200),
		engine.InternalTraceLevel:     "Verbose",
		engine.ActiveConfig:           "Release",
		engine.StopOnError:            true,
		engine.MaxAgents:              int64(3),
		engine.NumberOfTestWorkers:    int64(4),
		engine.BrowserType:            "Edge",
		engine.RandomSeed:             int64(1234),
		engine.PauseBeforeRun:         true,
		engine.PrincipalPolicy:        "NoPrincipal",
		engine.DefaultTestNamePattern: "{m}",
		engine.DisposeRunners:         true,
		engine.WorkDirectory:          "out",
	}, native)
}

func TestMakeTestPackageZeroTimeoutIsKept(t *testing.T) {
	pkg := MakeTestPackage(parse(t, "a.dll", "--timeout=0"))

	v, ok := pkg.Setting(engine.DefaultTimeout)
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(0)))
}

func TestMakeTestPackageDebugTests(t *testing.T) {
	pkg := MakeTestPackage(parse(t, "a.dll", "--debug"))

	native, err := pkg.Native()
	require.NoError(t, err)
	assert.Equal(t, true, native[engine.DebugTests])
	assert.Equal(t, int64(0), native[engine.NumberOfTestWorkers])
	assert.Equal(t, "chrome", native[engine.BrowserType])

	pkg = MakeTestPackage(parse(t, "a.dll", "--debug", "--workers=2", "--browser=Firefox"))

	native, err = pkg.Native()
	require.NoError(t, err)
	assert.Equal(t, int64(2), native[engine.NumberOfTestWorkers])
	assert.Equal(t, "Firefox", native[engine.BrowserType])
}

func TestMakeTestPackageTestParameters(t *testing.T) {
	pkg := MakeTestPackage(parse(t, "a.dll", "-p:X=5;Y=7", "-p:X=6"))

	native, err := pkg.Native()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X": "6", "Y": "7"}, native[engine.TestParametersDictionary])
	assert.Equal(t, "X=6;Y=7", native[engine.TestParameters])
}

func TestFilterSpec(t *testing.T) {
	spec := parse(t, "a.dll", "--test=A.B,A.C", "--where=cat==Fast").FilterSpec()

	assert.Equal(t, engine.FilterSpec{Tests: []string{"A.B", "A.C"}, Where: "cat==Fast"}, spec)
	assert.False(t, spec.Empty())
	assert.True(t, parse(t, "a.dll").FilterSpec().Empty())
}
