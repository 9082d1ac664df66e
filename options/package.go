package options

import (
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"khetao.com/console/engine"
)

// DebugBrowser is the browser used when debugging tests without --browser.
const DebugBrowser = "chrome"

// MakeTestPackage builds the settings package handed to the engine. Only
// settings the user asked for are included, apart from DisposeRunners and
// WorkDirectory which are always present.
func MakeTestPackage(o *ConsoleOptions) *engine.Package {
	pkg := engine.NewPackage(o.InputFiles)

	addString := func(specified bool, name, value string) {
		if specified {
			pkg.AddSetting(name, cty.StringVal(value))
		}
	}
	addInt := func(specified bool, name string, value int) {
		if specified {
			pkg.AddSetting(name, cty.NumberIntVal(int64(value)))
		}
	}
	addTrue := func(specified bool, name string) {
		if specified {
			pkg.AddSetting(name, cty.True)
		}
	}

	addString(o.ProcessModel != "", engine.ProcessModel, o.ProcessModel)
	addString(o.DomainUsage != "", engine.DomainUsage, o.DomainUsage)
	addString(o.Framework != "", engine.RuntimeFramework, o.Framework)
	addTrue(o.RunAsX86, engine.RunAsX86)
	addTrue(o.ShadowCopyFiles, engine.ShadowCopyFiles)
	addTrue(o.LoadUserProfile, engine.LoadUserProfile)
	addTrue(o.SkipNonTestAssemblies, engine.SkipNonTestAssemblies)
	addInt(o.DefaultTimeout >= 0, engine.DefaultTimeout, o.DefaultTimeout)
	addString(o.InternalTraceLevel != "", engine.InternalTraceLevel, o.InternalTraceLevel)
	addString(o.ActiveConfig != "", engine.ActiveConfig, o.ActiveConfig)
	addTrue(o.StopOnError, engine.StopOnError)
	addInt(o.Specified("MaxAgents"), engine.MaxAgents, o.MaxAgents)
	addInt(o.Specified("NumberOfTestWorkers"), engine.NumberOfTestWorkers, o.NumberOfTestWorkers)
	addString(o.Browser != "", engine.BrowserType, o.Browser)
	addInt(o.Specified("RandomSeed"), engine.RandomSeed, o.RandomSeed)
	addTrue(o.PauseBeforeRun, engine.PauseBeforeRun)
	addString(o.PrincipalPolicy != "", engine.PrincipalPolicy, o.PrincipalPolicy)
	addString(o.DefaultTestNamePattern != "", engine.DefaultTestNamePattern, o.DefaultTestNamePattern)

	pkg.AddSetting(engine.DisposeRunners, cty.True)

	// the engine may run with a different current directory
	workDirectory := o.WorkDirectory
	if workDirectory == "" {
		workDirectory, _ = os.Getwd()
	}
	pkg.AddSetting(engine.WorkDirectory, cty.StringVal(workDirectory))

	if o.DebugTests {
		pkg.AddSetting(engine.DebugTests, cty.True)
		if !o.Specified("NumberOfTestWorkers") {
			pkg.AddSetting(engine.NumberOfTestWorkers, cty.NumberIntVal(0))
		}
		if o.Browser == "" {
			pkg.AddSetting(engine.BrowserType, cty.StringVal(DebugBrowser))
		}
	}

	if params := o.TestParameters(); len(params) > 0 {
		addTestParameters(pkg, params)
	}
	return pkg
}

// addTestParameters adds the parameter map along with the name=value;name=value
// string read by older frameworks.
func addTestParameters(pkg *engine.Package, params []Parameter) {
	values := make(map[string]cty.Value, len(params))
	legacy := make([]string, 0, len(params))
	for _, p := range params {
		values[p.Name] = cty.StringVal(p.Value)
		legacy = append(legacy, p.Name+"="+p.Value)
	}
	pkg.AddSetting(engine.TestParametersDictionary, cty.MapVal(values))
	pkg.AddSetting(engine.TestParameters, cty.StringVal(strings.Join(legacy, ";")))
}

// FilterSpec returns the test selection handed to the engine's filter builder.
func (o *ConsoleOptions) FilterSpec() engine.FilterSpec {
	return engine.FilterSpec{
		Tests: append([]string(nil), o.TestList...),
		Where: o.WhereClause,
	}
}
