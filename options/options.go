package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"khetao.com/console/args"
	"khetao.com/console/log"
	"khetao.com/console/structured"
)

var scope = log.RegisterScope("options", "Command line option parsing.", 0)

// Canonical process model values referenced outside the option table.
const (
	ProcessInProcess = "InProcess"
	TraceOff         = "Off"
)

// OptionError is returned by Parse when an option that requires a value is
// the last token of the command line.
type OptionError struct {
	Option string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("Missing required value for option '%s'.", e.Option)
}

// Parameter is one NAME=VALUE test parameter.
type Parameter struct {
	Name  string
	Value string
}

// ConsoleOptions is the options model of one console invocation. It is filled
// by Parse and read-only once validated.
type ConsoleOptions struct {
	InputFiles []string
	TestList   []string

	WhereClause            string
	DefaultTimeout         int
	RandomSeed             int
	NumberOfTestWorkers    int
	MaxAgents              int
	WorkDirectory          string
	OutFile                string
	ErrFile                string
	DisplayTestLabels      string
	InternalTraceLevel     string
	DefaultTestNamePattern string
	ConsoleEncoding        string
	ActiveConfig           string
	ProcessModel           string
	DomainUsage            string
	Framework              string
	PrincipalPolicy        string
	Browser                string

	StopOnError           bool
	WaitBeforeExit        bool
	NoResult              bool
	Explore               bool
	TeamCity              bool
	NoHeader              bool
	ShowHelp              bool
	ShowVersion           bool
	RunAsX86              bool
	DisposeRunners        bool
	ShadowCopyFiles       bool
	LoadUserProfile       bool
	DebugTests            bool
	PauseBeforeRun        bool
	ListExtensions        bool
	SkipNonTestAssemblies bool
	NoColor               bool

	paramNames  []string
	paramValues map[string]string

	resultSpecs  []specEntry
	exploreSpecs []specEntry

	// given maps a canonical name to the option spelling last used for it.
	given  map[string]string
	checks []check

	fs       args.FileSystem
	defaults DefaultsProvider
	is64Bit  bool

	parseErrors      structured.List
	validationErrors structured.List
}

type specEntry struct {
	spec   OutputSpecification
	option string
}

// nonNegative lists the int options that reject values below zero.
var nonNegative = map[string]bool{
	"DefaultTimeout":      true,
	"NumberOfTestWorkers": true,
	"MaxAgents":           true,
}

// check is a problem found while parsing that is reported by Validate.
type check struct {
	option  string
	value   string
	missing bool
}

// Option configures how ConsoleOptions are parsed.
type Option func(*ConsoleOptions)

// WithFileSystem sets where argument files and test lists are read from.
func WithFileSystem(fs args.FileSystem) Option {
	return func(o *ConsoleOptions) {
		o.fs = fs
	}
}

func WithDefaults(d DefaultsProvider) Option {
	return func(o *ConsoleOptions) {
		o.defaults = d
	}
}

// With64BitProcess overrides the detected width of the current process.
func With64BitProcess(is64Bit bool) Option {
	return func(o *ConsoleOptions) {
		o.is64Bit = is64Bit
	}
}

// New returns options holding only defaults.
func New(opts ...Option) *ConsoleOptions {
	o := &ConsoleOptions{
		DefaultTimeout:      -1,
		RandomSeed:          -1,
		NumberOfTestWorkers: -1,
		MaxAgents:           -1,
		paramValues:         make(map[string]string),
		given:               make(map[string]string),
		fs:                  args.OSFileSystem{},
		defaults:            EnvDefaults{},
		is64Bit:             strconv.IntSize == 64,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = args.OSFileSystem{}
	}
	if o.defaults == nil {
		o.defaults = EnvDefaults{}
	}
	return o
}

// Parse expands argument files in argv and fills a ConsoleOptions from the
// result. Problems with individual tokens are collected in ErrorMessages; the
// only error returned is an *OptionError.
func Parse(argv []string, opts ...Option) (*ConsoleOptions, error) {
	o := New(opts...)
	if err := o.parse(o.PreParse(argv)); err != nil {
		return nil, err
	}
	return o, nil
}

// PreParse expands @file references, recording any problems.
func (o *ConsoleOptions) PreParse(argv []string) []string {
	expanded, errs := args.NewExpander(o.fs).Expand(argv)
	o.parseErrors.Append(errs)
	return expanded
}

func (o *ConsoleOptions) parse(tokens []string) error {
	for i, token := range tokens {
		m, isOption := matchToken(token)
		if !isOption {
			o.InputFiles = append(o.InputFiles, token)
			continue
		}
		if m.desc == nil {
			o.parseErrors.Add("Invalid argument: " + token)
			continue
		}
		if err := o.apply(m, token, i == len(tokens)-1); err != nil {
			return err
		}
	}
	o.TeamCity = o.TeamCity || o.defaults.TeamCity()

	if scope.DebugEnabled() {
		scope.Debugf("parsed %d tokens: %d input files, %d errors", len(tokens), len(o.InputFiles), len(o.parseErrors))
	}
	return nil
}

type match struct {
	desc *Descriptor
	// option is the prefix and name as given, without any value.
	option    string
	value     string
	hasValue  bool
	boolValue bool
}

// matchToken reports whether token looks like an option and, if so, which
// descriptor it names. A nil desc means an unknown option.
func matchToken(token string) (match, bool) {
	var prefix string
	switch {
	case strings.HasPrefix(token, "--"):
		prefix = "--"
	case strings.HasPrefix(token, "-"), strings.HasPrefix(token, "/"):
		prefix = token[:1]
	default:
		return match{}, false
	}
	rest := token[len(prefix):]
	if rest == "" {
		return match{}, false
	}

	name, value, hasValue := rest, "", false
	if i := strings.IndexAny(rest, ":="); i >= 0 {
		name, value, hasValue = rest[:i], rest[i+1:], true
	}
	// an absolute path, not an option
	if prefix == "/" && strings.Contains(name, "/") {
		return match{}, false
	}

	m := match{option: prefix + name, value: value, hasValue: hasValue, boolValue: true}
	if d, ok := Lookup(name); ok {
		m.desc = d
		return m, true
	}
	if prefix == "-" && !hasValue && len(name) > 1 {
		suffix := name[len(name)-1]
		if suffix == '+' || suffix == '-' {
			if d, ok := Lookup(name[:len(name)-1]); ok && d.Kind == Bool {
				m.desc = d
				m.option = prefix + name[:len(name)-1]
				m.boolValue = suffix == '+'
			}
		}
	}
	return m, true
}

func (o *ConsoleOptions) apply(m match, token string, last bool) error {
	d := m.desc
	if d.Kind == Bool {
		if m.hasValue {
			o.parseErrors.Add("Invalid argument: " + token)
			return nil
		}
		o.setBool(d.Name, m.boolValue)
		o.given[d.Name] = m.option
		return nil
	}

	if d.Name == "ExploreOutputSpecifications" {
		o.Explore = true
	}
	o.given[d.Name] = m.option

	if !m.hasValue {
		switch {
		case d.OptionalValue:
		case last:
			return &OptionError{Option: m.option}
		default:
			o.checks = append(o.checks, check{option: m.option, missing: true})
		}
		return nil
	}
	if m.value == "" {
		o.checks = append(o.checks, check{option: m.option, missing: true})
		return nil
	}

	switch d.Kind {
	case Int:
		n, err := strconv.Atoi(m.value)
		if err != nil {
			o.parseErrors.Addf("An int value was expected for option '%s' but a value of '%s' was used", m.option, m.value)
			return nil
		}
		if n < 0 && nonNegative[d.Name] {
			o.checks = append(o.checks, check{option: m.option, value: m.value})
			return nil
		}
		o.setInt(d.Name, n)
	case String:
		value := m.value
		if len(d.Values) > 0 {
			canonical, ok := d.canonical(value)
			if !ok {
				o.checks = append(o.checks, check{option: m.option, value: value})
			}
			value = canonical
		}
		o.setString(d.Name, value)
	case List:
		o.addToList(d, m)
	}
	return nil
}

func (o *ConsoleOptions) setBool(name string, v bool) {
	switch name {
	case "StopOnError":
		o.StopOnError = v
	case "WaitBeforeExit":
		o.WaitBeforeExit = v
	case "NoResult":
		o.NoResult = v
	case "TeamCity":
		o.TeamCity = v
	case "NoHeader":
		o.NoHeader = v
	case "ShowHelp":
		o.ShowHelp = v
	case "ShowVersion":
		o.ShowVersion = v
	case "InProcess":
		if v {
			o.ProcessModel = ProcessInProcess
			o.given["ProcessModel"] = "--inprocess"
		}
	case "RunAsX86":
		o.RunAsX86 = v
	case "DisposeRunners":
		o.DisposeRunners = v
	case "ShadowCopyFiles":
		o.ShadowCopyFiles = v
	case "LoadUserProfile":
		o.LoadUserProfile = v
	case "DebugTests":
		o.DebugTests = v
	case "PauseBeforeRun":
		o.PauseBeforeRun = v
	case "ListExtensions":
		o.ListExtensions = v
	case "SkipNonTestAssemblies":
		o.SkipNonTestAssemblies = v
	case "NoColor":
		o.NoColor = v
	}
}

func (o *ConsoleOptions) setInt(name string, v int) {
	switch name {
	case "DefaultTimeout":
		o.DefaultTimeout = v
	case "RandomSeed":
		o.RandomSeed = v
	case "NumberOfTestWorkers":
		o.NumberOfTestWorkers = v
	case "MaxAgents":
		o.MaxAgents = v
	}
}

func (o *ConsoleOptions) setString(name, v string) {
	switch name {
	case "TestListFile":
		o.readTestList(v)
	case "WhereClause":
		o.WhereClause = v
	case "WorkDirectory":
		o.WorkDirectory = v
	case "OutFile":
		o.OutFile = v
	case "ErrFile":
		o.ErrFile = v
	case "DisplayTestLabels":
		o.DisplayTestLabels = v
	case "InternalTraceLevel":
		o.InternalTraceLevel = v
	case "DefaultTestNamePattern":
		o.DefaultTestNamePattern = v
	case "ConsoleEncoding":
		o.ConsoleEncoding = v
	case "ActiveConfig":
		o.ActiveConfig = v
	case "ProcessModel":
		o.ProcessModel = v
	case "DomainUsage":
		o.DomainUsage = v
	case "Framework":
		o.Framework = v
	case "PrincipalPolicy":
		o.PrincipalPolicy = v
	case "Browser":
		o.Browser = v
	}
}

func (o *ConsoleOptions) addToList(d *Descriptor, m match) {
	switch d.Name {
	case "TestList":
		o.TestList = append(o.TestList, ParseTestNames(m.value)...)
	case "TestParameters":
		o.addParameters(m.value)
	case "ResultOutputSpecifications":
		o.resultSpecs = o.addSpec(o.resultSpecs, m)
	case "ExploreOutputSpecifications":
		o.exploreSpecs = o.addSpec(o.exploreSpecs, m)
	}
}

func (o *ConsoleOptions) addSpec(specs []specEntry, m match) []specEntry {
	spec, err := ParseOutputSpecification(m.value)
	if errors.Is(err, errMissingPath) {
		o.checks = append(o.checks, check{option: m.option, missing: true})
		return specs
	}
	if err != nil {
		o.parseErrors.Add(err.Error())
		return specs
	}
	return append(specs, specEntry{spec: spec, option: m.option})
}

func (o *ConsoleOptions) addParameters(value string) {
	for _, pair := range strings.Split(value, ";") {
		if pair == "" {
			continue
		}
		name, v, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			o.parseErrors.Add("Invalid format for test parameter. Use NAME=VALUE.")
			continue
		}
		if _, seen := o.paramValues[name]; !seen {
			o.paramNames = append(o.paramNames, name)
		}
		o.paramValues[name] = v
	}
}

func (o *ConsoleOptions) readTestList(path string) {
	if !o.fs.Exists(path) {
		o.parseErrors.Add("Unable to locate file: " + path)
		return
	}
	lines, err := o.fs.ReadLines(path)
	if err != nil {
		o.parseErrors.Addf("Error reading \"%s\": %v", path, err)
		return
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		o.TestList = append(o.TestList, line)
	}
}

// Validate recomputes the validation problems and reports whether the options
// are free of errors. Calling it again does not duplicate messages.
func (o *ConsoleOptions) Validate() bool {
	var errs structured.List
	for _, c := range o.checks {
		if c.missing {
			errs.Addf("Missing required value for option '%s'.", c.option)
		} else {
			errs.Addf("The value '%s' is not valid for option '%s'.", c.value, c.option)
		}
	}

	o.checkFormats(&errs, "ResultOutputSpecifications", o.resultSpecs)
	o.checkFormats(&errs, "ExploreOutputSpecifications", o.exploreSpecs)

	if o.ConsoleEncoding != "" {
		if _, err := htmlindex.Get(o.ConsoleEncoding); err != nil {
			errs.Addf("The value '%s' is not valid for option '%s'.", o.ConsoleEncoding, o.given["ConsoleEncoding"])
		}
	}

	if o.RunAsX86 && o.ProcessModel == ProcessInProcess && o.is64Bit {
		errs.Add("The --x86 and --inprocess options are incompatible.")
	}

	o.validationErrors = errs
	return len(o.parseErrors) == 0 && errs.Empty()
}

func (o *ConsoleOptions) checkFormats(errs *structured.List, name string, specs []specEntry) {
	d, _ := DescriptorFor(name)
	for _, e := range specs {
		if !contains(d.Formats, e.spec.Format) {
			errs.Addf("The value '%s' is not valid for option '%s'.", e.spec.Format, e.option)
		}
	}
}

// ErrorMessages lists parse errors followed by the problems found by the last
// call to Validate.
func (o *ConsoleOptions) ErrorMessages() []string {
	out := make([]string, 0, len(o.parseErrors)+len(o.validationErrors))
	out = append(out, o.parseErrors...)
	return append(out, o.validationErrors...)
}

// Specified reports whether the option with the given canonical name appeared
// on the command line.
func (o *ConsoleOptions) Specified(name string) bool {
	_, ok := o.given[name]
	return ok
}

func (o *ConsoleOptions) WhereClauseSpecified() bool {
	return o.WhereClause != ""
}

// ResultOutputSpecifications lists the result files to write. Without any
// --result option this is the single default TestResult.xml; --noresult
// suppresses them all.
func (o *ConsoleOptions) ResultOutputSpecifications() []OutputSpecification {
	if o.NoResult {
		return nil
	}
	if len(o.resultSpecs) == 0 && !o.Specified("ResultOutputSpecifications") {
		return []OutputSpecification{{OutputPath: DefaultResultFile, Format: DefaultFormat}}
	}
	return specsOf(o.resultSpecs)
}

// ExploreOutputSpecifications lists the explore files to write. It is empty
// when --explore was given alone.
func (o *ConsoleOptions) ExploreOutputSpecifications() []OutputSpecification {
	return specsOf(o.exploreSpecs)
}

// TestParameters lists parameters in order of first appearance; a repeated
// name keeps its position and takes the later value.
func (o *ConsoleOptions) TestParameters() []Parameter {
	out := make([]Parameter, 0, len(o.paramNames))
	for _, name := range o.paramNames {
		out = append(out, Parameter{Name: name, Value: o.paramValues[name]})
	}
	return out
}

func (o *ConsoleOptions) TestParameterMap() map[string]string {
	out := make(map[string]string, len(o.paramValues))
	for k, v := range o.paramValues {
		out[k] = v
	}
	return out
}

func specsOf(entries []specEntry) []OutputSpecification {
	if len(entries) == 0 {
		return nil
	}
	out := make([]OutputSpecification, len(entries))
	for i, e := range entries {
		out[i] = e.spec
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
