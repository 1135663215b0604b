package clingo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/aspdebug/pkg/engine"
)

// DefaultPath is looked up on PATH when no executable is configured.
const DefaultPath = "clingo"

// clingo exit codes; 10 and 20 may be or'ed together when the search
// space was exhausted.
const (
	exitUnknown     = 0
	exitInterrupted = 1
	exitSat         = 10
	exitUnsat       = 20
	exitExhausted   = 30
)

var _ engine.Engine = &Engine{}

// Engine runs the clingo executable once per solve call.
type Engine struct {
	path string
	log  logrus.FieldLogger
}

func New(path string, log logrus.FieldLogger) *Engine {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{path: path, log: log.WithField("engine", "clingo")}
}

func (e *Engine) NewControl(options ...engine.Option) (engine.Control, error) {
	config, err := engine.NewConfig(options...)
	if err != nil {
		return nil, err
	}
	return &control{path: e.path, config: config, log: e.log}, nil
}

type control struct {
	engine.Parts
	path   string
	config engine.Config
	log    logrus.FieldLogger
}

func (c *control) Ground(_ context.Context, parts ...engine.Part) error {
	return c.Mark(parts...)
}

// Args returns the command line for a configuration, program read from
// stdin.
func Args(config engine.Config) []string {
	args := []string{"--outf=2"}
	if config.ParallelMode > 1 {
		args = append(args, fmt.Sprintf("--parallel-mode=%d", config.ParallelMode))
	}
	if config.OptMode != engine.OptModeDefault {
		args = append(args, fmt.Sprintf("--opt-mode=%s", config.OptMode))
	}
	return args
}

func (c *control) Solve(ctx context.Context, onModel engine.ModelHandler) (engine.SolveResult, error) {
	if !c.Grounded() {
		return engine.SolveResult{}, fmt.Errorf("solve called before ground")
	}

	args := Args(c.config)
	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdin = strings.NewReader(c.Text())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log := c.log.WithFields(logrus.Fields{"args": args, "duration": time.Since(start)})
	if stderr.Len() > 0 {
		log.Debugf("clingo stderr:\n%s", strings.TrimSpace(stderr.String()))
	}

	if err != nil {
		if ctx.Err() != nil {
			return engine.SolveResult{}, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return engine.SolveResult{}, errors.Wrapf(err, "error running %s", c.path)
		}
		switch exitErr.ExitCode() {
		case exitUnknown, exitInterrupted, exitSat, exitUnsat, exitExhausted:
		default:
			return engine.SolveResult{}, fmt.Errorf("%s exited with code %d: %s", c.path, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
	}

	out, err := Decode(stdout.Bytes())
	if err != nil {
		return engine.SolveResult{}, errors.Wrapf(err, "error decoding %s output (stderr: %s)", c.path, strings.TrimSpace(stderr.String()))
	}
	log.Debugf("clingo result: %s", out.Result)

	result := engine.SolveResult{Status: out.Status()}
	for _, model := range out.Models() {
		result.Models++
		if onModel != nil && !onModel(model) {
			break
		}
	}
	return result, nil
}

// Output is the subset of clingo's JSON report that is read.
type Output struct {
	Solver string `json:"Solver"`
	Call   []struct {
		Witnesses []struct {
			Value []string `json:"Value"`
		} `json:"Witnesses"`
	} `json:"Call"`
	Result string `json:"Result"`
}

// Decode parses clingo's --outf=2 output.
func Decode(data []byte) (*Output, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out.Result == "" {
		return nil, fmt.Errorf("missing result")
	}
	return &out, nil
}

func (o *Output) Status() engine.Status {
	switch o.Result {
	case "SATISFIABLE", "OPTIMUM FOUND":
		return engine.StatusSatisfiable
	case "UNSATISFIABLE":
		return engine.StatusUnsatisfiable
	default:
		return engine.StatusUnknown
	}
}

// Models returns the witnesses of all calls, numbered from 1.
func (o *Output) Models() []engine.Model {
	var models []engine.Model
	for _, call := range o.Call {
		for _, w := range call.Witnesses {
			models = append(models, engine.Model{Number: len(models) + 1, Symbols: w.Value})
		}
	}
	return models
}
