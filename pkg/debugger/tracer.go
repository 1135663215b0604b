package debugger

import (
	"fmt"
	"io"
)

// SearchPosition describes one trial of the removal search.
type SearchPosition interface {
	// Removed returns the 0-based indices of the constraints left out.
	Removed() Removal
	Satisfiable() bool
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	outcome := "unsatisfiable"
	if p.Satisfiable() {
		outcome = "satisfiable"
	}
	fmt.Fprintf(t.Writer, "removed %s: %s\n", p.Removed(), outcome)
}

type trial struct {
	removed     Removal
	satisfiable bool
}

func (t trial) Removed() Removal {
	return t.removed
}

func (t trial) Satisfiable() bool {
	return t.satisfiable
}
