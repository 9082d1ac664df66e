// Package cli renders the console's option table as help text.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"khetao.com/console/options"
)

// valueName stands in for an option value so that pflag prints the name of the
// value rather than its Go type.
type valueName string

func (v valueName) String() string   { return "" }
func (v valueName) Set(string) error { return nil }
func (v valueName) Type() string     { return string(v) }

// FlagSet builds a pflag.FlagSet mirroring options.Table. It is used for help
// output only; parsing follows the console's own rules.
func FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	for i := range options.Table {
		d := &options.Table[i]
		long, short, aliases := names(d.Prototypes)

		usage := d.Usage
		if len(d.Formats) > 0 {
			usage += " Formats: " + strings.Join(d.Formats, ", ") + "."
		}
		if len(aliases) > 0 {
			usage += " Also --" + strings.Join(aliases, ", --") + "."
		}

		if d.Kind == options.Bool {
			fs.BoolP(long, short, false, usage)
			continue
		}
		fs.VarP(valueName(d.ValueName), long, short, usage)
	}
	return fs
}

// names splits prototypes into the long name, a one letter shorthand and any
// remaining aliases.
func names(prototypes []string) (long, short string, aliases []string) {
	for _, p := range prototypes {
		switch {
		case len(p) == 1 && short == "":
			short = p
		case long == "":
			long = p
		default:
			aliases = append(aliases, p)
		}
	}
	if long == "" {
		long, short = short, ""
	}
	return long, short, aliases
}

// WriteHelp writes the usage text of the console named name.
func WriteHelp(w io.Writer, name string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [inputfiles] [options]\n\n", name)
	b.WriteString("Runs a set of tests from the console.\n\n")
	b.WriteString("InputFiles:\n")
	b.WriteString("      One or more test files of a type supported by the engine.\n\n")
	b.WriteString("Options:\n")
	b.WriteString(FlagSet(name).FlagUsages())
	b.WriteString("\n")
	b.WriteString("Description:\n")
	b.WriteString("      Options may be introduced by --, - or /, and a value may follow ':' or '='.\n")
	b.WriteString("      An argument of the form @FILE is replaced by the arguments read from FILE.\n")
	b.WriteString("      An output SPEC is a path optionally followed by ;format=FORMAT or\n")
	b.WriteString("      ;transform=FILE, for example TestResult.xml;format=nunit2.\n")

	_, err := io.WriteString(w, b.String())
	return err
}
