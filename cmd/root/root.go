package root

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/aspdebug/internal/engine/clingo"
	"github.com/operator-framework/aspdebug/internal/engine/propositional"
	"github.com/operator-framework/aspdebug/internal/logging"
	"github.com/operator-framework/aspdebug/pkg/asp"
	"github.com/operator-framework/aspdebug/pkg/debugger"
	"github.com/operator-framework/aspdebug/pkg/engine"
)

const (
	engineClingo    = "clingo"
	engineGini      = "gini"
	engineGophersat = "gophersat"
)

type options struct {
	verbose         bool
	logLevel        string
	logFile         string
	steps           []int
	getNumSteps     bool
	skipFullProblem bool
	maxConstraints  int
	engine          string
	clingoPath      string
}

func NewRootCmd() *cobra.Command {
	opts := options{}
	rootCmd := &cobra.Command{
		Use:   "aspdebug [flags] FILE...",
		Short: "Finds the integrity constraints that make an ASP program unsatisfiable",
		Long: `Checks whether the program made of the given files is satisfiable and, if it is not,
removes growing sets of integrity constraints (statements starting with ":-") until the
rest of the program becomes satisfiable. For instance:

  aspdebug -m 2 encoding.lp instance.lp

Constraints are numbered from 1 in the order they appear across all files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file (%s) not found", path)
				}
			}
			switch opts.engine {
			case engineClingo, engineGini, engineGophersat:
			default:
				return fmt.Errorf("unknown engine %q, valid engines are %s, %s and %s", opts.engine, engineClingo, engineGini, engineGophersat)
			}
			if opts.maxConstraints < 1 {
				return fmt.Errorf("--max-constraints must be at least 1, got %d", opts.maxConstraints)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args, opts)
		},
	}

	flags := rootCmd.Flags()
	bindLogFlags(flags, &opts)
	flags.IntSliceVar(&opts.steps, "step", nil, "only check whether removing these constraints (1-based, comma separated) makes the program satisfiable")
	flags.BoolVar(&opts.getNumSteps, "get-num-steps", false, "print the number of constraints and exit")
	flags.BoolVarP(&opts.skipFullProblem, "skip-full-problem", "s", false, "skip checking whether the full problem is satisfiable")
	flags.IntVarP(&opts.maxConstraints, "max-constraints", "m", debugger.DefaultMaxConstraints, "maximum number of constraints to try removing at once")
	flags.StringVar(&opts.engine, "engine", engineClingo, "engine deciding satisfiability: clingo, gini or gophersat (the last two only accept ground facts, choices and constraints)")
	flags.StringVar(&opts.clingoPath, "clingo", clingo.DefaultPath, "path to the clingo executable")

	return rootCmd
}

func bindLogFlags(flags *pflag.FlagSet, opts *options) {
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output, same as --log-level=debug")
	flags.StringVar(&opts.logLevel, "log-level", logrus.InfoLevel.String(), "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "write log output to this file instead of stderr")
}

func run(cmd *cobra.Command, paths []string, opts options) error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:   opts.logLevel,
		Verbose: opts.verbose,
		File:    opts.logFile,
		Quiet:   opts.getNumSteps,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	program, err := asp.ParseFiles(paths...)
	if err != nil {
		return err
	}
	logger.Tracef("Other:\n%s", statementTexts(program.Other))
	logger.Tracef("Constraints:\n%s", statementTexts(program.Constraints))

	if opts.getNumSteps {
		fmt.Fprintln(cmd.OutOrStdout(), len(program.Constraints))
		return nil
	}

	e, err := newEngine(opts, logger)
	if err != nil {
		return err
	}

	options := []debugger.Option{
		debugger.WithEngine(e),
		debugger.WithLogger(logger),
	}
	if logger.IsLevelEnabled(logrus.TraceLevel) {
		w := logger.WriterLevel(logrus.TraceLevel)
		defer w.Close()
		options = append(options, debugger.WithTracer(debugger.LoggingTracer{Writer: w}))
	}

	d, err := debugger.New(program, options...)
	if err != nil {
		return err
	}

	runOpts := debugger.RunOptions{
		SkipFullCheck:  opts.skipFullProblem,
		MaxConstraints: opts.maxConstraints,
	}
	if cmd.Flags().Changed("step") {
		runOpts.Step = make(debugger.Removal, 0, len(opts.steps))
		for _, s := range opts.steps {
			runOpts.Step = append(runOpts.Step, s-1)
		}
	}

	_, err = d.Run(cmd.Context(), runOpts)
	return err
}

func newEngine(opts options, log logrus.FieldLogger) (engine.Engine, error) {
	switch opts.engine {
	case engineClingo:
		return clingo.New(opts.clingoPath, log), nil
	case engineGini, engineGophersat:
		backend, err := propositional.BackendFor(opts.engine)
		if err != nil {
			return nil, err
		}
		return propositional.New(backend, log), nil
	}
	return nil, fmt.Errorf("unknown engine %q", opts.engine)
}

func statementTexts(statements []asp.Statement) string {
	return strings.Join(lo.Map(statements, func(s asp.Statement, _ int) string {
		return s.Text
	}), "\n")
}
