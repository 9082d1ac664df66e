package args

import (
	"khetao.com/console/log"
	"khetao.com/console/structured"
)

// MaxNestingDepth bounds how many levels of argument files may be included
// below the command line.
const MaxNestingDepth = 3

var scope = log.RegisterScope("args", "Argument file expansion.", 0)

// Expander replaces @name tokens with the tokens of the named file.
type Expander struct {
	fs FileSystem
}

func NewExpander(fs FileSystem) *Expander {
	if fs == nil {
		fs = OSFileSystem{}
	}
	return &Expander{fs: fs}
}

// Expand returns tokens with every @name reference replaced, recursively, by the
// contents of the file. Problems are collected rather than stopping the
// expansion; a list nested deeper than MaxNestingDepth is returned unexpanded.
func (e *Expander) Expand(tokens []string) ([]string, structured.List) {
	var errs structured.List
	expanded := e.expand(tokens, 1, &errs)
	return expanded, errs
}

func (e *Expander) expand(tokens []string, depth int, errs *structured.List) []string {
	if depth > MaxNestingDepth {
		// the deepest file level is fine as long as it includes nothing more
		if hasReference(tokens) {
			errs.Addf("Arguments file nesting exceeds maximum depth of %d.", MaxNestingDepth)
		}
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) == 0 || token[0] != '@' {
			out = append(out, token)
			continue
		}

		name := token[1:]
		if name == "" {
			errs.Add("You must include a file name after @.")
			out = append(out, token)
			continue
		}

		if !e.fs.Exists(name) {
			errs.Addf("The file \"%s\" was not found.", name)
			continue
		}

		lines, err := e.fs.ReadLines(name)
		if err != nil {
			errs.Addf("Error reading \"%s\": %v", name, err)
			continue
		}

		fileTokens, err := TokenizeLines(lines)
		if err != nil {
			errs.Addf("Unmatched quote in arguments file \"%s\".", name)
		}
		if scope.DebugEnabled() {
			scope.WithLabels("file", name, "depth", depth, "tokens", len(fileTokens)).Debug("expanding arguments file")
		}

		out = append(out, e.expand(fileTokens, depth+1, errs)...)
	}
	return out
}

func hasReference(tokens []string) bool {
	for _, token := range tokens {
		if len(token) > 0 && token[0] == '@' {
			return true
		}
	}
	return false
}
