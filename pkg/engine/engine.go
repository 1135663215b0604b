package engine

import (
	"context"
	"errors"
	"strings"
)

// BasePart is the program part every statement is added to unless a
// caller asks otherwise.
const BasePart = "base"

var ErrUnknown = errors.New("engine could not decide satisfiability")

// Part names a program part together with its parameters.
type Part struct {
	Name   string
	Params []string
}

// Base returns the parameterless base part.
func Base() Part {
	return Part{Name: BasePart}
}

type Status int

const (
	StatusUnknown Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "SATISFIABLE"
	case StatusUnsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// SolveResult summarizes a finished solve call.
type SolveResult struct {
	Status Status
	Models int
}

func (r SolveResult) Satisfiable() bool {
	return r.Status == StatusSatisfiable
}

func (r SolveResult) Unsatisfiable() bool {
	return r.Status == StatusUnsatisfiable
}

// Model is a single answer set reported by an engine.
type Model struct {
	// Number is the 1-based position of the model in the solve call.
	Number  int
	Symbols []string
}

func (m Model) String() string {
	return strings.Join(m.Symbols, " ")
}

// ModelHandler is invoked for every model found. Returning false stops
// the engine from reporting further models.
type ModelHandler func(m Model) bool

// Control is a handle on a single grounding and solving run. A Control
// is used once: statements are added, parts are grounded, and Solve is
// called.
type Control interface {
	Add(name string, params []string, program string) error
	Ground(ctx context.Context, parts ...Part) error
	Solve(ctx context.Context, onModel ModelHandler) (SolveResult, error)
}

// Engine creates Controls.
type Engine interface {
	NewControl(options ...Option) (Control, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(options ...Option) (Control, error)

func (f EngineFunc) NewControl(options ...Option) (Control, error) {
	return f(options...)
}
