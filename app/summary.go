package app

import (
	"fmt"

	"khetao.com/console/engine"
)

// writeSummary reports the counts of a finished run.
func writeSummary(w *ConsoleWriter, s engine.Summary) {
	w.Println(SectionHeader, "Test Run Summary")
	w.Print(Label, "  Overall result: ")
	w.Println(resultStyle(s.Overall), s.Overall)

	w.Printf(Label, "  Test Count: ")
	w.Printf(Value, "%d", s.TestCount)
	w.Printf(Label, ", Passed: ")
	w.Printf(Value, "%d", s.PassCount)
	w.Printf(Label, ", Failed: ")
	w.Printf(Value, "%d", s.FailureCount+s.ErrorCount+s.InvalidCount)
	w.Printf(Label, ", Warnings: ")
	w.Printf(Value, "%d", s.WarningCount)
	w.Printf(Label, ", Inconclusive: ")
	w.Printf(Value, "%d", s.InconclusiveCount)
	w.Printf(Label, ", Skipped: ")
	w.Printf(Value, "%d", s.SkipCount)
	w.Newline()

	if failed := s.FailureCount + s.ErrorCount + s.InvalidCount; failed > 0 {
		w.Printf(Label, "    Failed Tests - Failures: ")
		w.Printf(Value, "%d", s.FailureCount)
		w.Printf(Label, ", Errors: ")
		w.Printf(Value, "%d", s.ErrorCount)
		w.Printf(Label, ", Invalid: ")
		w.Printf(Value, "%d", s.InvalidCount)
		w.Newline()
	}

	w.LabelLine("  Duration: ", fmt.Sprintf("%.3f seconds", s.Duration.Seconds()))
	w.Newline()
}

// exitCode maps a summary onto the console exit code.
func exitCode(s engine.Summary) int {
	switch {
	case s.UnexpectedError:
		return UnexpectedError
	case s.InvalidAssemblies > 0:
		return InvalidAssembly
	case s.InvalidTestFixtures > 0:
		return InvalidTestFixture
	}
	return s.FailureCount + s.ErrorCount + s.InvalidCount
}
