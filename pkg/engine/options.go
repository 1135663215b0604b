package engine

import "fmt"

// OptMode selects how an engine treats optimization statements.
type OptMode string

const (
	// OptModeDefault leaves optimization to the engine's defaults.
	OptModeDefault OptMode = ""
	// OptModeIgnore disables optimization; only satisfiability counts.
	OptModeIgnore OptMode = "ignore"
)

// Config carries the knobs a Control is created with.
type Config struct {
	// ParallelMode is the number of solver threads to use. Values
	// below 2 mean sequential solving.
	ParallelMode int
	OptMode      OptMode
}

type Option func(c *Config) error

// WithParallelMode hints how many threads a solve call may use.
func WithParallelMode(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("invalid parallel mode %d", n)
		}
		c.ParallelMode = n
		return nil
	}
}

func WithOptMode(mode OptMode) Option {
	return func(c *Config) error {
		switch mode {
		case OptModeDefault, OptModeIgnore:
			c.OptMode = mode
			return nil
		}
		return fmt.Errorf("unknown optimization mode %q", mode)
	}
}

// NewConfig applies options on top of the default configuration.
func NewConfig(options ...Option) (Config, error) {
	var c Config
	for _, option := range options {
		if err := option(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}
