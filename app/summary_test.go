package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"khetao.com/console/engine"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(NewConsoleWriter(&buf, false), engine.Summary{
		Overall:           "Failed",
		TestCount:         12,
		PassCount:         6,
		FailureCount:      2,
		ErrorCount:        1,
		InvalidCount:      1,
		WarningCount:      1,
		InconclusiveCount: 0,
		SkipCount:         1,
		Duration:          1500 * time.Millisecond,
	})

	assert.Equal(t, "Test Run Summary\n"+
		"  Overall result: Failed\n"+
		"  Test Count: 12, Passed: 6, Failed: 4, Warnings: 1, Inconclusive: 0, Skipped: 1\n"+
		"    Failed Tests - Failures: 2, Errors: 1, Invalid: 1\n"+
		"  Duration: 1.500 seconds\n"+
		"\n", buf.String())
}

func TestWriteSummaryWithoutFailures(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(NewConsoleWriter(&buf, false), engine.Summary{Overall: "Passed", TestCount: 2, PassCount: 2})

	assert.NotContains(t, buf.String(), "Failed Tests")
	assert.Contains(t, buf.String(), "  Duration: 0.000 seconds\n")
}

func TestWriteSummaryColored(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(NewConsoleWriter(&buf, true), engine.Summary{Overall: "Passed"})

	assert.Contains(t, buf.String(), "\x1b[")
}
