package propositional

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/aspdebug/pkg/engine"
)

// Backend decides a CNF. On success value reports the truth of a
// positive literal in the model found.
type Backend interface {
	Name() string
	Solve(cnf *CNF) (status engine.Status, value func(z.Lit) bool)
}

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Gini solves with github.com/go-air/gini.
type Gini struct{}

func (Gini) Name() string {
	return "gini"
}

func (Gini) Solve(cnf *CNF) (engine.Status, func(z.Lit) bool) {
	g := gini.New()
	for _, clause := range cnf.Clauses {
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	switch g.Solve() {
	case satisfiable:
		return engine.StatusSatisfiable, g.Value
	case unsatisfiable:
		return engine.StatusUnsatisfiable, nil
	}
	return engine.StatusUnknown, nil
}

// Gophersat solves with github.com/crillab/gophersat.
type Gophersat struct{}

func (Gophersat) Name() string {
	return "gophersat"
}

func (Gophersat) Solve(cnf *CNF) (engine.Status, func(z.Lit) bool) {
	s := solver.New(solver.ParseSlice(cnf.Clauses))
	switch s.Solve() {
	case solver.Sat:
		model := s.Model()
		return engine.StatusSatisfiable, func(m z.Lit) bool {
			i := int(m.Var()) - 1
			if i < 0 || i >= len(model) {
				return false
			}
			return model[i] == m.IsPos()
		}
	case solver.Unsat:
		return engine.StatusUnsatisfiable, nil
	}
	return engine.StatusUnknown, nil
}

// BackendFor returns the backend registered under name.
func BackendFor(name string) (Backend, error) {
	switch name {
	case Gini{}.Name():
		return Gini{}, nil
	case Gophersat{}.Name():
		return Gophersat{}, nil
	}
	return nil, fmt.Errorf("unknown propositional backend %q", name)
}
