package game

import "log"

// Reporter receives the human-readable report lines the engine emits
// for every accepted or rejected action. Rendering is out of scope.
type Reporter interface {
	Report(line string)
}

// LogReporter writes report lines to the standard logger.
type LogReporter struct{}

func (LogReporter) Report(line string) { log.Println(line) }

// NullReporter discards report lines.
type NullReporter struct{}

func (NullReporter) Report(string) {}
