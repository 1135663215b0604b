package asp

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Kind separates integrity constraints from every other statement.
type Kind int

const (
	KindOther Kind = iota
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindConstraint:
		return "constraint"
	default:
		return "other"
	}
}

// ConstraintPrefix is the marker that starts an integrity constraint.
const ConstraintPrefix = ":-"

// Statement is a single period-terminated piece of a program.
type Statement struct {
	Text string
	Kind Kind
	// File and Line locate the first line of the statement.
	File string
	Line int
}

// NewStatement classifies text and returns the resulting Statement.
func NewStatement(text, file string, line int) Statement {
	kind := KindOther
	if strings.HasPrefix(text, ConstraintPrefix) {
		kind = KindConstraint
	}
	return Statement{Text: text, Kind: kind, File: file, Line: line}
}

// Position returns file:line, or an empty string for statements that
// were not read from a file.
func (s Statement) Position() string {
	if s.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

func (s Statement) String() string {
	return s.Text
}

// Program holds the statements of one or more files. Constraints are
// the only statements the debugger ever removes; everything else is
// passed through untouched.
type Program struct {
	Other       []Statement
	Constraints []Statement
}

// Add appends s to the sequence matching its kind.
func (p *Program) Add(s Statement) {
	if s.Kind == KindConstraint {
		p.Constraints = append(p.Constraints, s)
		return
	}
	p.Other = append(p.Other, s)
}

// Append adds all statements of other after the ones already in p.
func (p *Program) Append(other *Program) {
	if other == nil {
		return
	}
	p.Other = append(p.Other, other.Other...)
	p.Constraints = append(p.Constraints, other.Constraints...)
}

// Len returns the total number of statements.
func (p *Program) Len() int {
	return len(p.Other) + len(p.Constraints)
}

// Text joins all other statements followed by all constraints with
// newlines.
func (p *Program) Text() string {
	return p.Without()
}

// Without is like Text but leaves out the constraints at the given
// 0-based indices. Indices out of range are ignored.
func (p *Program) Without(removed ...int) string {
	skip := make(map[int]struct{}, len(removed))
	for _, i := range removed {
		skip[i] = struct{}{}
	}
	kept := lo.Filter(p.Constraints, func(_ Statement, i int) bool {
		_, ok := skip[i]
		return !ok
	})
	return join(append(append([]Statement{}, p.Other...), kept...))
}

func join(statements []Statement) string {
	return strings.Join(lo.Map(statements, func(s Statement, _ int) string {
		return s.Text
	}), "\n")
}
