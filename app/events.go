package app

import (
	"strings"

	"khetao.com/console/engine"
)

// Label modes, upper cased.
const (
	LabelsOff    = "OFF"
	LabelsOn     = "ON"
	LabelsBefore = "BEFORE"
	LabelsAfter  = "AFTER"
	LabelsAll    = "ALL"
)

// eventHandler writes test output as it arrives, labelled with the test name
// according to the --labels mode.
type eventHandler struct {
	out    *ConsoleWriter
	errOut *ConsoleWriter
	labels string

	// lastLabel is the test whose name was written most recently.
	lastLabel string
}

func newEventHandler(out, errOut *ConsoleWriter, labels string) *eventHandler {
	if labels == "" {
		labels = LabelsOn
	}
	return &eventHandler{out: out, errOut: errOut, labels: strings.ToUpper(labels)}
}

func (h *eventHandler) OnTestEvent(e engine.Event) {
	switch e.Kind {
	case engine.TestStarted:
		if h.labels == LabelsAll || h.labels == LabelsBefore {
			h.writeLabel(e.FullName)
		}
	case engine.TestOutput:
		h.writeOutput(e)
	case engine.TestFinished:
		if e.Output != "" {
			h.writeOutput(e)
		}
		if h.labels == LabelsAfter {
			h.out.Println(resultStyle(e.Result), strings.ToUpper(e.Result)+" => "+e.FullName)
		}
	}
}

func (h *eventHandler) writeOutput(e engine.Event) {
	if e.Output == "" {
		return
	}
	if h.labels == LabelsOn && e.FullName != "" && e.FullName != h.lastLabel {
		h.writeLabel(e.FullName)
	}

	w, style := h.out, Output
	if e.Stream == engine.ErrorStream {
		w, style = h.errOut, Error
	}
	text := e.Output
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	w.Print(style, text)
}

func (h *eventHandler) writeLabel(name string) {
	h.out.Println(Label, "=> "+name)
	h.lastLabel = name
}

func resultStyle(result string) Style {
	switch strings.ToLower(result) {
	case "passed":
		return Pass
	case "failed":
		return Failure
	case "warning", "skipped", "inconclusive":
		return Warning
	}
	return Default
}
