package debugger

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/aspdebug/pkg/asp"
	"github.com/operator-framework/aspdebug/pkg/engine"
)

const (
	// DefaultMaxConstraints is the largest removal set tried when the
	// caller does not ask for more.
	DefaultMaxConstraints = 1
	// MaxParallelMode caps the thread hint passed to the engine.
	MaxParallelMode = 64
)

// Removal is a set of 0-based constraint indices, in increasing order.
type Removal []int

// String renders the indices 1-based, the way they are given on the
// command line.
func (r Removal) String() string {
	return "[" + strings.Join(lo.Map(r, func(i int, _ int) string {
		return fmt.Sprint(i + 1)
	}), " ") + "]"
}

// Result is the outcome of a run.
type Result struct {
	// Satisfiable is set when the complete program was satisfiable and
	// nothing was searched.
	Satisfiable bool
	// Size is the number of constraints in each of Removals, or 0 when
	// no removal helped.
	Size     int
	Removals []Removal
	// Trials counts the programs with constraints removed that were
	// handed to the engine.
	Trials int
}

// Found reports whether at least one removal made the program
// satisfiable.
func (r *Result) Found() bool {
	return len(r.Removals) > 0
}

// Debugger looks for the integrity constraints that make a program
// unsatisfiable.
type Debugger struct {
	program      *asp.Program
	engine       engine.Engine
	log          logrus.Ext1FieldLogger
	tracer       Tracer
	parallelMode int
}

type Option func(d *Debugger) error

func WithEngine(e engine.Engine) Option {
	return func(d *Debugger) error {
		d.engine = e
		return nil
	}
}

func WithLogger(log logrus.Ext1FieldLogger) Option {
	return func(d *Debugger) error {
		d.log = log
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(d *Debugger) error {
		d.tracer = t
		return nil
	}
}

// WithParallelMode overrides the thread hint used for removal trials.
func WithParallelMode(n int) Option {
	return func(d *Debugger) error {
		if n < 1 {
			return fmt.Errorf("invalid parallel mode %d", n)
		}
		d.parallelMode = n
		return nil
	}
}

var defaults = []Option{
	func(d *Debugger) error {
		if d.engine == nil {
			return fmt.Errorf("no engine configured")
		}
		return nil
	},
	func(d *Debugger) error {
		if d.log == nil {
			d.log = logrus.StandardLogger()
		}
		return nil
	},
	func(d *Debugger) error {
		if d.tracer == nil {
			d.tracer = DefaultTracer{}
		}
		return nil
	},
	func(d *Debugger) error {
		if d.parallelMode == 0 {
			d.parallelMode = min(runtime.NumCPU(), MaxParallelMode)
		}
		return nil
	},
}

func New(program *asp.Program, options ...Option) (*Debugger, error) {
	if program == nil {
		return nil, fmt.Errorf("no program to debug")
	}
	d := Debugger{program: program}
	for _, option := range append(options, defaults...) {
		if err := option(&d); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// NumConstraints returns the number of constraints that can be removed.
func (d *Debugger) NumConstraints() int {
	return len(d.program.Constraints)
}

// CheckFull reports whether the complete program is satisfiable, using
// the engine's default configuration.
func (d *Debugger) CheckFull(ctx context.Context) (bool, error) {
	return d.solve(ctx, d.program.Text())
}

// Step reports whether the program becomes satisfiable when exactly
// the constraints in removal are left out.
func (d *Debugger) Step(ctx context.Context, removal Removal) (bool, error) {
	if err := d.validate(removal); err != nil {
		return false, err
	}
	satisfiable, err := d.trial(ctx, removal)
	if err != nil {
		return false, err
	}
	if satisfiable {
		d.log.Infof("Removing constraints %s makes the problem satisfiable", removal)
	} else {
		d.log.Infof("Removing constraints %s does not make the problem satisfiable", removal)
	}
	return satisfiable, nil
}

// Search tries removal sets of growing size, up to maxConstraints. It
// stops after the first size at which any removal makes the program
// satisfiable, having tried every removal of that size. Running out of
// sizes is not an error; the returned Result is then empty.
func (d *Debugger) Search(ctx context.Context, maxConstraints int) (*Result, error) {
	if maxConstraints < 1 {
		return nil, fmt.Errorf("invalid maximum number of constraints %d", maxConstraints)
	}
	result := &Result{}
	n := d.NumConstraints()
	limit := min(maxConstraints, n)
	for k := 1; k <= limit; k++ {
		d.log.Infof("Checking whether removing %d constraint(s) makes the problem satisfiable (%d combinations)", k, Count(n, k))
		c := NewCombinations(n, k)
		for c.Next() {
			removal := Removal(c.Indices())
			satisfiable, err := d.trial(ctx, removal)
			if err != nil {
				return nil, err
			}
			result.Trials++
			if satisfiable {
				result.Removals = append(result.Removals, removal)
			}
		}
		if result.Found() {
			result.Size = k
			d.report(result.Removals)
			return result, nil
		}
		d.log.Infof("Removing %d constraint(s) does not make the problem satisfiable", k)
	}
	d.log.Infof("Removing up to %d constraint(s) does not make the problem satisfiable, giving up!", limit)
	return result, nil
}

// RunOptions selects what Run does after parsing.
type RunOptions struct {
	SkipFullCheck bool
	// MaxConstraints bounds the search; 0 means DefaultMaxConstraints.
	MaxConstraints int
	// Step, when set, is checked on its own instead of searching.
	Step Removal
}

// Run checks the complete program unless told not to, and then either
// checks the forced step or searches.
func (d *Debugger) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Step != nil {
		if err := d.validate(opts.Step); err != nil {
			return nil, err
		}
	}
	d.log.Debugf("Parsed %d statements, %d of them constraints", d.program.Len(), d.NumConstraints())
	if !opts.SkipFullCheck {
		d.log.Info("Checking whether complete program is satisfiable")
		satisfiable, err := d.CheckFull(ctx)
		if err != nil {
			return nil, err
		}
		if satisfiable {
			d.log.Info("Complete problem is satisfiable, nothing to debug!")
			return &Result{Satisfiable: true}, nil
		}
		d.log.Info("Complete problem is unsatisfiable")
	}

	if opts.Step != nil {
		satisfiable, err := d.Step(ctx, opts.Step)
		if err != nil {
			return nil, err
		}
		result := &Result{Trials: 1}
		if satisfiable {
			result.Size = len(opts.Step)
			result.Removals = []Removal{opts.Step}
		}
		return result, nil
	}

	maxConstraints := opts.MaxConstraints
	if maxConstraints == 0 {
		maxConstraints = DefaultMaxConstraints
	}
	return d.Search(ctx, maxConstraints)
}

func (d *Debugger) validate(removal Removal) error {
	seen := map[int]struct{}{}
	for _, i := range removal {
		if i < 0 || i >= d.NumConstraints() {
			return fmt.Errorf("constraint %d out of range, the program has %d constraints", i+1, d.NumConstraints())
		}
		if _, ok := seen[i]; ok {
			return fmt.Errorf("constraint %d given more than once", i+1)
		}
		seen[i] = struct{}{}
	}
	return nil
}

// trial solves the program without the constraints in removal, with
// the configuration used for all removal checks.
func (d *Debugger) trial(ctx context.Context, removal Removal) (bool, error) {
	d.log.Debugf("Checking without constraints %s", removal)
	for _, i := range removal {
		d.log.Debugf("  %s", d.describe(i))
	}
	satisfiable, err := d.solve(ctx, d.program.Without(removal...),
		engine.WithParallelMode(d.parallelMode),
		engine.WithOptMode(engine.OptModeIgnore),
	)
	if err != nil {
		return false, err
	}
	d.tracer.Trace(trial{removed: removal, satisfiable: satisfiable})
	return satisfiable, nil
}

func (d *Debugger) solve(ctx context.Context, program string, options ...engine.Option) (bool, error) {
	d.log.Tracef("Program:\n%s", program)
	ctl, err := d.engine.NewControl(options...)
	if err != nil {
		return false, err
	}
	if err := ctl.Add(engine.BasePart, nil, program); err != nil {
		return false, err
	}
	if err := ctl.Ground(ctx, engine.Base()); err != nil {
		return false, err
	}
	result, err := ctl.Solve(ctx, func(m engine.Model) bool {
		d.log.Debugf("Model: %s", m)
		return true
	})
	if err != nil {
		return false, err
	}
	switch result.Status {
	case engine.StatusSatisfiable:
		return true, nil
	case engine.StatusUnsatisfiable:
		return false, nil
	}
	return false, engine.ErrUnknown
}

// report logs every removal found at the final search level.
func (d *Debugger) report(removals []Removal) {
	for _, removal := range removals {
		if len(removal) == 1 {
			d.log.Infof("Constraint %s is causing unsatisfiability:\n%s", removal, d.describe(removal[0]))
		} else {
			lines := lo.Map(removal, func(i int, _ int) string {
				return d.describe(i)
			})
			d.log.Infof("Removing constraints %s makes the problem satisfiable, these are the ones causing unsatisfiability:\n%s",
				removal, strings.Join(lines, "\n"))
		}

		all := lo.Range(d.NumConstraints())
		remaining := lo.Without(all, removal...)
		d.log.Debugf("Remaining constraints %s", Removal(remaining))
	}
}

// describe renders constraint i with its source position.
func (d *Debugger) describe(i int) string {
	c := d.program.Constraints[i]
	if pos := c.Position(); pos != "" {
		return fmt.Sprintf("%s (%s)", c.Text, pos)
	}
	return c.Text
}
