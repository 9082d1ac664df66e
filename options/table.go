package options

import "strings"

// Kind is the value shape of an option.
type Kind int

const (
	Bool Kind = iota
	String
	Int
	// List options may be repeated; each occurrence appends.
	List
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case String:
		return "string"
	case Int:
		return "int"
	case List:
		return "list"
	}
	return "unknown"
}

// Descriptor describes one recognized option.
type Descriptor struct {
	// Name is the canonical name of the setting the option fills.
	Name       string
	Kind       Kind
	Prototypes []string
	// Values are the legal canonical values of an enumerated string option.
	Values []string
	// Formats are the legal formats of an output specification option.
	Formats []string
	// OptionalValue is set when the option may be given alone.
	OptionalValue bool
	// ValueName names the value in help output.
	ValueName string
	Usage     string
}

// TakesValue reports whether the option carries a value.
func (d *Descriptor) TakesValue() bool {
	return d.Kind != Bool
}

// Table lists every recognized option in help order. It must not be modified.
var Table = []Descriptor{
	{Name: "TestList", Kind: List, Prototypes: []string{"test"}, ValueName: "NAMES",
		Usage: "Comma-separated list of NAMES of tests to run or explore. This option may be repeated."},
	{Name: "TestListFile", Kind: String, Prototypes: []string{"testlist"}, ValueName: "PATH",
		Usage: "File PATH containing a list of tests to run, one per line. This option may be repeated."},
	{Name: "WhereClause", Kind: String, Prototypes: []string{"where"}, ValueName: "EXPRESSION",
		Usage: "Test selection EXPRESSION indicating what tests will be run."},
	{Name: "TestParameters", Kind: List, Prototypes: []string{"params", "p"}, ValueName: "PARAMETER",
		Usage: "Define a test PARAMETER as NAME=VALUE, several separated by semicolons. This option may be repeated."},
	{Name: "DefaultTimeout", Kind: Int, Prototypes: []string{"timeout"}, ValueName: "MILLISECONDS",
		Usage: "Set timeout for each test case in MILLISECONDS."},
	{Name: "RandomSeed", Kind: Int, Prototypes: []string{"seed"}, ValueName: "SEED",
		Usage: "Set the random SEED used to generate test cases."},
	{Name: "NumberOfTestWorkers", Kind: Int, Prototypes: []string{"workers"}, ValueName: "NUMBER",
		Usage: "Specify the NUMBER of worker threads to be used in running tests."},
	{Name: "StopOnError", Kind: Bool, Prototypes: []string{"stoponerror"},
		Usage: "Stop run immediately upon any test failure or error."},
	{Name: "WaitBeforeExit", Kind: Bool, Prototypes: []string{"wait"},
		Usage: "Wait for input before closing console window."},
	{Name: "WorkDirectory", Kind: String, Prototypes: []string{"work"}, ValueName: "PATH",
		Usage: "PATH of the directory to use for output files."},
	{Name: "OutFile", Kind: String, Prototypes: []string{"output", "out"}, ValueName: "PATH",
		Usage: "File PATH to contain text output from the tests."},
	{Name: "ErrFile", Kind: String, Prototypes: []string{"err"}, ValueName: "PATH",
		Usage: "File PATH to contain error output from the tests."},
	{Name: "ResultOutputSpecifications", Kind: List, Prototypes: []string{"result"}, ValueName: "SPEC",
		Formats: []string{"nunit3", "nunit2", "user"},
		Usage:   "An output SPEC for saving the test results. This option may be repeated."},
	{Name: "ExploreOutputSpecifications", Kind: List, Prototypes: []string{"explore"}, ValueName: "SPEC",
		Formats: []string{"nunit3", "cases", "user"}, OptionalValue: true,
		Usage: "Display or save test info rather than running tests. Optionally provide an output SPEC for saving the test info."},
	{Name: "NoResult", Kind: Bool, Prototypes: []string{"noresult"},
		Usage: "Don't save any test results."},
	{Name: "DisplayTestLabels", Kind: String, Prototypes: []string{"labels"}, ValueName: "VALUE",
		Values: []string{"Off", "On", "Before", "After", "All"},
		Usage:  "Specify whether to write test case names to the output. Values: Off, On, Before, After, All."},
	{Name: "InternalTraceLevel", Kind: String, Prototypes: []string{"trace"}, ValueName: "LEVEL",
		Values: []string{"Off", "Error", "Warning", "Info", "Debug", "Verbose"},
		Usage:  "Set internal trace LEVEL. Values: Off, Error, Warning, Info, Verbose (Debug)."},
	{Name: "DefaultTestNamePattern", Kind: String, Prototypes: []string{"test-name-format"}, ValueName: "FORMAT",
		Usage: "Non-standard naming pattern to use in generating test names."},
	{Name: "TeamCity", Kind: Bool, Prototypes: []string{"teamcity"},
		Usage: "Turns on use of TeamCity service messages."},
	{Name: "NoHeader", Kind: Bool, Prototypes: []string{"noheader", "noh"},
		Usage: "Suppress display of program information at start of run."},
	{Name: "ShowHelp", Kind: Bool, Prototypes: []string{"help", "h"},
		Usage: "Display this message and exit."},
	{Name: "ShowVersion", Kind: Bool, Prototypes: []string{"version", "V"},
		Usage: "Display the header and exit."},
	{Name: "ConsoleEncoding", Kind: String, Prototypes: []string{"encoding"}, ValueName: "CODE_PAGE",
		Usage: "Specifies the encoding to use for console standard output, for example utf-8, ascii, unicode."},
	{Name: "ActiveConfig", Kind: String, Prototypes: []string{"config"}, ValueName: "NAME",
		Usage: "NAME of a project configuration to load."},
	{Name: "ProcessModel", Kind: String, Prototypes: []string{"process"}, ValueName: "PROCESS",
		Values: []string{"InProcess", "Separate", "Multiple"},
		Usage:  "PROCESS isolation for test assemblies. Values: InProcess, Separate, Multiple."},
	{Name: "InProcess", Kind: Bool, Prototypes: []string{"inprocess"},
		Usage: "Synonym for --process=InProcess."},
	{Name: "DomainUsage", Kind: String, Prototypes: []string{"domain"}, ValueName: "DOMAIN",
		Values: []string{"None", "Single", "Multiple"},
		Usage:  "DOMAIN isolation for test assemblies. Values: None, Single, Multiple."},
	{Name: "Framework", Kind: String, Prototypes: []string{"framework"}, ValueName: "FRAMEWORK",
		Usage: "FRAMEWORK type/version to use for tests."},
	{Name: "RunAsX86", Kind: Bool, Prototypes: []string{"x86"},
		Usage: "Run tests in an x86 process on 64-bit systems."},
	{Name: "DisposeRunners", Kind: Bool, Prototypes: []string{"dispose-runners"},
		Usage: "Dispose each test runner after it has finished running its tests."},
	{Name: "ShadowCopyFiles", Kind: Bool, Prototypes: []string{"shadowcopy"},
		Usage: "Shadow copy test files."},
	{Name: "LoadUserProfile", Kind: Bool, Prototypes: []string{"loaduserprofile"},
		Usage: "Load user profile in test runner processes."},
	{Name: "MaxAgents", Kind: Int, Prototypes: []string{"agents"}, ValueName: "NUMBER",
		Usage: "NUMBER of agents that may be allowed to run simultaneously."},
	{Name: "DebugTests", Kind: Bool, Prototypes: []string{"debug"},
		Usage: "Launch debugger to debug tests."},
	{Name: "PauseBeforeRun", Kind: Bool, Prototypes: []string{"pause"},
		Usage: "Pause before running to allow attaching a debugger."},
	{Name: "ListExtensions", Kind: Bool, Prototypes: []string{"list-extensions"},
		Usage: "List all extension points and the extensions for each."},
	{Name: "PrincipalPolicy", Kind: String, Prototypes: []string{"set-principal-policy"}, ValueName: "POLICY",
		Values: []string{"UnauthenticatedPrincipal", "NoPrincipal", "WindowsPrincipal"},
		Usage:  "Set PrincipalPolicy for the test domain."},
	{Name: "SkipNonTestAssemblies", Kind: Bool, Prototypes: []string{"skipnontestassemblies"},
		Usage: "Skip any non-test assemblies specified, without error."},
	{Name: "NoColor", Kind: Bool, Prototypes: []string{"nocolor", "noc"},
		Usage: "Displays console output without color."},
	{Name: "Browser", Kind: String, Prototypes: []string{"browser"}, ValueName: "BROWSER",
		Usage: "BROWSER used by UI tests, written to browserconfig.txt next to each test file."},
}

var (
	byPrototype = map[string]*Descriptor{}
	byName      = map[string]*Descriptor{}
)

func init() {
	for i := range Table {
		d := &Table[i]
		byName[d.Name] = d
		for _, p := range d.Prototypes {
			if _, dup := byPrototype[p]; dup {
				panic("options: duplicate prototype " + p)
			}
			byPrototype[p] = d
		}
	}
}

// Lookup finds the descriptor owning a prototype. Prototypes are case sensitive.
func Lookup(prototype string) (*Descriptor, bool) {
	d, ok := byPrototype[prototype]
	return d, ok
}

// DescriptorFor finds a descriptor by canonical name.
func DescriptorFor(name string) (*Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}

// canonical maps value onto the descriptor's legal values ignoring case.
func (d *Descriptor) canonical(value string) (string, bool) {
	for _, v := range d.Values {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return value, false
}
