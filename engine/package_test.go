package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestPackageAddSettingReplacesInPlace(t *testing.T) {
	pkg := NewPackage([]string{"a.dll"})
	pkg.AddSetting(NumberOfTestWorkers, cty.NumberIntVal(4))
	pkg.AddSetting(DebugTests, cty.True)
	pkg.AddSetting(NumberOfTestWorkers, cty.NumberIntVal(0))

	assert.Equal(t, []string{NumberOfTestWorkers, DebugTests}, pkg.Names())
	v, ok := pkg.Setting(NumberOfTestWorkers)
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(0)))

	_, ok = pkg.Setting(BrowserType)
	assert.False(t, ok)
}

func TestPackageNative(t *testing.T) {
	pkg := NewPackage(nil)
	pkg.AddSetting(ProcessModel, cty.StringVal("Separate"))
	pkg.AddSetting(RunAsX86, cty.True)
	pkg.AddSetting(DefaultTimeout, cty.NumberIntVal(500))
	pkg.AddSetting(TestParametersDictionary, cty.MapVal(map[string]cty.Value{"X": cty.StringVal("5")}))
	pkg.AddSetting(ActiveConfig, cty.NullVal(cty.String))

	got, err := pkg.Native()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		ProcessModel:             "Separate",
		RunAsX86:                 true,
		DefaultTimeout:           int64(500),
		TestParametersDictionary: map[string]string{"X": "5"},
		ActiveConfig:             nil,
	}, got)
}

func TestPackageNativeRejectsFractions(t *testing.T) {
	pkg := NewPackage(nil)
	pkg.AddSetting(RandomSeed, cty.NumberFloatVal(1.5))

	_, err := pkg.Native()
	assert.ErrorContains(t, err, "setting RandomSeed")
}

func TestNewPackageCopiesInputFiles(t *testing.T) {
	files := []string{"a.dll"}
	pkg := NewPackage(files)
	files[0] = "b.dll"

	assert.Equal(t, []string{"a.dll"}, pkg.InputFiles)
}
