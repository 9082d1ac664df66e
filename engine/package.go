package engine

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// Names of the settings understood by engines and frameworks.
const (
	ProcessModel             = "ProcessModel"
	DomainUsage              = "DomainUsage"
	RuntimeFramework         = "RuntimeFramework"
	RunAsX86                 = "RunAsX86"
	ShadowCopyFiles          = "ShadowCopyFiles"
	LoadUserProfile          = "LoadUserProfile"
	SkipNonTestAssemblies    = "SkipNonTestAssemblies"
	DefaultTimeout           = "DefaultTimeout"
	InternalTraceLevel       = "InternalTraceLevel"
	ActiveConfig             = "ActiveConfig"
	StopOnError              = "StopOnError"
	MaxAgents                = "MaxAgents"
	NumberOfTestWorkers      = "NumberOfTestWorkers"
	BrowserType              = "BrowserType"
	RandomSeed               = "RandomSeed"
	PauseBeforeRun           = "PauseBeforeRun"
	PrincipalPolicy          = "PrincipalPolicy"
	DefaultTestNamePattern   = "DefaultTestNamePattern"
	DisposeRunners           = "DisposeRunners"
	WorkDirectory            = "WorkDirectory"
	DebugTests               = "DebugTests"
	TestParametersDictionary = "TestParametersDictionary"
	// TestParameters is the legacy name=value;name=value form read by older frameworks.
	TestParameters = "TestParameters"
)

// Setting is one named, typed entry of a Package.
type Setting struct {
	Name  string
	Value cty.Value
}

// Package is what the console hands to an engine: the files to load and an
// ordered bag of settings the console does not interpret further.
type Package struct {
	InputFiles []string
	Settings   []Setting
}

func NewPackage(inputFiles []string) *Package {
	return &Package{InputFiles: append([]string(nil), inputFiles...)}
}

// AddSetting appends a setting, or replaces the value in place when the name is
// already present.
func (p *Package) AddSetting(name string, value cty.Value) {
	for i := range p.Settings {
		if p.Settings[i].Name == name {
			p.Settings[i].Value = value
			return
		}
	}
	p.Settings = append(p.Settings, Setting{Name: name, Value: value})
}

func (p *Package) Setting(name string) (cty.Value, bool) {
	for _, s := range p.Settings {
		if s.Name == name {
			return s.Value, true
		}
	}
	return cty.NilVal, false
}

// Names lists the setting names in order.
func (p *Package) Names() []string {
	names := make([]string, len(p.Settings))
	for i, s := range p.Settings {
		names[i] = s.Name
	}
	return names
}

// Native returns the settings as plain Go values for engines that do not use cty:
// string, int64, bool or map[string]string.
func (p *Package) Native() (map[string]any, error) {
	out := make(map[string]any, len(p.Settings))
	for _, s := range p.Settings {
		v, err := native(s.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", s.Name, err)
		}
		out[s.Name] = v
	}
	return out, nil
}

func native(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		i, acc := v.AsBigFloat().Int64()
		if acc != big.Exact {
			return nil, fmt.Errorf("number %s is not an integer", v.AsBigFloat().String())
		}
		return i, nil
	case ty.IsMapType() && ty.ElementType() == cty.String:
		m := make(map[string]string, v.LengthInt())
		for k, e := range v.AsValueMap() {
			m[k] = e.AsString()
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported setting type %s", ty.FriendlyName())
}
