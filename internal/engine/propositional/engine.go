// Package propositional is an in-process engine for ground programs made
// of facts, choice rules and integrity constraints. Stable models of such
// programs are exactly the classical models of their clause encoding, so
// a SAT solver decides them directly. Anything outside the fragment is
// rejected when grounding.
package propositional

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/aspdebug/pkg/engine"
)

var _ engine.Engine = &Engine{}

type Engine struct {
	backend Backend
	log     logrus.FieldLogger
}

func New(backend Backend, log logrus.FieldLogger) *Engine {
	if backend == nil {
		backend = Gini{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{backend: backend, log: log.WithField("engine", backend.Name())}
}

func (e *Engine) NewControl(options ...engine.Option) (engine.Control, error) {
	config, err := engine.NewConfig(options...)
	if err != nil {
		return nil, err
	}
	if config.ParallelMode > 1 || config.OptMode != engine.OptModeDefault {
		e.log.Debugf("ignoring solver configuration %+v", config)
	}
	return &control{backend: e.backend, log: e.log}, nil
}

type control struct {
	engine.Parts
	backend Backend
	log     logrus.FieldLogger
	lits    *litMapping
}

func (c *control) Ground(_ context.Context, parts ...engine.Part) error {
	if err := c.Mark(parts...); err != nil {
		return err
	}
	rules, err := parseProgram(c.Text())
	if err != nil {
		return err
	}
	c.lits = newLitMapping(rules)
	return nil
}

func (c *control) Solve(ctx context.Context, onModel engine.ModelHandler) (engine.SolveResult, error) {
	if c.lits == nil {
		return engine.SolveResult{}, fmt.Errorf("solve called before ground")
	}
	if err := ctx.Err(); err != nil {
		return engine.SolveResult{}, err
	}

	cnf := c.lits.CNF()
	c.log.WithFields(logrus.Fields{
		"atoms":   len(c.lits.Atoms()),
		"vars":    cnf.NbVars,
		"clauses": len(cnf.Clauses),
	}).Trace("solving clause encoding")

	status, value := c.backend.Solve(cnf)
	result := engine.SolveResult{Status: status}
	if status == engine.StatusSatisfiable {
		result.Models = 1
		if onModel != nil {
			onModel(engine.Model{Number: 1, Symbols: c.lits.Selection(value)})
		}
	}
	return result, nil
}
