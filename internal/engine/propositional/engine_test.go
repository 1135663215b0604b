package propositional_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/aspdebug/internal/engine/propositional"
	"github.com/operator-framework/aspdebug/pkg/engine"
)

var backends = []propositional.Backend{propositional.Gini{}, propositional.Gophersat{}}

func solve(t *testing.T, backend propositional.Backend, program string) (engine.SolveResult, []engine.Model, error) {
	t.Helper()
	log, _ := test.NewNullLogger()
	ctl, err := propositional.New(backend, log).NewControl(engine.WithParallelMode(8), engine.WithOptMode(engine.OptModeIgnore))
	require.NoError(t, err)
	require.NoError(t, ctl.Add(engine.BasePart, nil, program))
	if err := ctl.Ground(context.Background(), engine.Base()); err != nil {
		return engine.SolveResult{}, nil, err
	}
	var models []engine.Model
	result, err := ctl.Solve(context.Background(), func(m engine.Model) bool {
		models = append(models, m)
		return true
	})
	return result, models, err
}

func TestSolve(t *testing.T) {
	type tc struct {
		Name    string
		Program string
		Status  engine.Status
		Model   []string
	}

	for _, tt := range []tc{
		{
			Name:   "empty program",
			Status: engine.StatusSatisfiable,
		},
		{
			Name:    "facts",
			Program: "a.\np(1, \"x y\").",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"a", "p(1,\"x y\")"},
		},
		{
			Name:    "violated constraint",
			Program: "a. b.\n:- a, b.",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "constraint over an atom without a head",
			Program: "a.\n:- a, c.",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"a"},
		},
		{
			Name:    "negated body literal",
			Program: "a.\n:- a, not c.",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "choice avoids constraint",
			Program: "{a; b}.\n:- not a.\n:- a, b.",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"a"},
		},
		{
			Name:    "exactly one of three",
			Program: "1 {a; b; c} 1.\n:- a.\n:- b.",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"c"},
		},
		{
			Name:    "lower bound too high",
			Program: "2 {a; b} 2.\n:- a.",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "bounds out of range",
			Program: "3 {a; b}.",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "empty constraint body",
			Program: "a.\n:- .",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "classical negation",
			Program: "{a}. -a.\n:- not a.",
			Status:  engine.StatusUnsatisfiable,
		},
		{
			Name:    "show directives and comments are ignored",
			Program: "a. % a fact\n#show a/0.",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"a"},
		},
		{
			Name:    "several statements on one line",
			Program: "{a}. :- not a. b.",
			Status:  engine.StatusSatisfiable,
			Model:   []string{"a", "b"},
		},
	} {
		for _, backend := range backends {
			t.Run(tt.Name+"/"+backend.Name(), func(t *testing.T) {
				result, models, err := solve(t, backend, tt.Program)
				require.NoError(t, err)
				assert.Equal(t, tt.Status, result.Status)
				if tt.Status != engine.StatusSatisfiable {
					assert.Empty(t, models)
					return
				}
				require.Len(t, models, 1)
				assert.Equal(t, 1, models[0].Number)
				assert.Equal(t, tt.Model, models[0].Symbols)
			})
		}
	}
}

func TestUnsupported(t *testing.T) {
	for _, program := range []string{
		"a :- b.",
		"p(X) :- q(X).",
		":- p(X).",
		"a ; b.",
		"p(1..3).",
		":~ a. [1]",
		"#const n = 3.",
		"{a : b}.",
		":- X = 1 + 2.",
		"P.",
	} {
		t.Run(program, func(t *testing.T) {
			_, _, err := solve(t, propositional.Gini{}, program)
			require.Error(t, err)
			var unsupported *propositional.UnsupportedStatementError
			assert.True(t, errors.As(err, &unsupported), "unexpected error %v", err)
		})
	}
}

func TestIncompleteProgram(t *testing.T) {
	_, _, err := solve(t, propositional.Gini{}, "a. b")
	assert.Error(t, err)
}

func TestSolveBeforeGround(t *testing.T) {
	ctl, err := propositional.New(nil, nil).NewControl()
	require.NoError(t, err)
	_, err = ctl.Solve(context.Background(), nil)
	assert.Error(t, err)
	assert.Error(t, ctl.Ground(context.Background(), engine.Part{Name: "missing"}))
}

func TestBackendFor(t *testing.T) {
	b, err := propositional.BackendFor("gophersat")
	require.NoError(t, err)
	assert.Equal(t, "gophersat", b.Name())
	_, err = propositional.BackendFor("minisat")
	assert.Error(t, err)
}
