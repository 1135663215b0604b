package propositional

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/operator-framework/aspdebug/pkg/asp"
)

// UnsupportedStatementError is returned for statements outside the
// ground fragment this engine understands.
type UnsupportedStatementError struct {
	Statement string
	Reason    string
}

func (e *UnsupportedStatementError) Error() string {
	return fmt.Sprintf("unsupported statement %q: %s", e.Statement, e.Reason)
}

func unsupported(statement, format string, args ...interface{}) error {
	return &UnsupportedStatementError{Statement: statement, Reason: fmt.Sprintf(format, args...)}
}

type ruleKind int

const (
	ruleFact ruleKind = iota
	ruleChoice
	ruleConstraint
	ruleDirective
)

type literal struct {
	atom    string
	negated bool
}

func (l literal) String() string {
	if l.negated {
		return "not " + l.atom
	}
	return l.atom
}

// rule is a parsed statement. Facts have one head atom; choices have
// any number of head atoms and optional bounds; constraints only have
// a body.
type rule struct {
	kind  ruleKind
	head  []string
	body  []literal
	lower int
	upper int // -1 when unbounded
}

var choiceRule = regexp.MustCompile(`^(-?\d+)?\s*\{(.*)\}\s*(-?\d+)?$`)

// parseProgram splits text into statements and parses each of them.
func parseProgram(text string) ([]rule, error) {
	lines, err := asp.Scrub(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	joined := make([]string, 0, len(lines))
	for _, l := range lines {
		joined = append(joined, l.Text)
	}
	statements, err := splitStatements(strings.Join(joined, " "))
	if err != nil {
		return nil, err
	}
	rules := make([]rule, 0, len(statements))
	for _, s := range statements {
		r, err := parseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// splitStatements cuts text at every period that is outside of
// parentheses, braces and strings.
func splitStatements(text string) ([]string, error) {
	var statements []string
	depth := 0
	quoted := false
	start := 0
	for i := 0; i < len(text); i++ {
		switch ch := text[i]; {
		case quoted:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				quoted = false
			}
		case ch == '"':
			quoted = true
		case ch == '(' || ch == '{' || ch == '[':
			depth++
		case ch == ')' || ch == '}' || ch == ']':
			depth--
		case ch == '.' && depth == 0:
			if i+1 < len(text) && text[i+1] == '.' {
				return nil, unsupported(strings.TrimSpace(text[start:]), "intervals are not ground")
			}
			// weak constraints carry their weight after the period
			if rest := strings.TrimLeft(text[i+1:], " \t"); strings.HasPrefix(rest, "[") {
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, &asp.IncompleteStatementError{File: "<program>", Statement: strings.TrimSpace(text[start:])}
				}
				i = len(text) - len(rest) + end
				statements = append(statements, strings.TrimSpace(text[start:i+1]))
				start = i + 1
				continue
			}
			statements = append(statements, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		return nil, &asp.IncompleteStatementError{File: "<program>", Statement: rest}
	}
	return statements, nil
}

// splitTop splits s at sep where sep is not nested or quoted.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quoted:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				quoted = false
			}
		case ch == '"':
			quoted = true
		case ch == '(' || ch == '{' || ch == '[':
			depth++
		case ch == ')' || ch == '}' || ch == ']':
			depth--
		case ch == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func parseRule(s string) (rule, error) {
	statement := s + "."
	switch {
	case strings.HasPrefix(s, "#"):
		if strings.HasPrefix(s, "#show") {
			return rule{kind: ruleDirective}, nil
		}
		return rule{}, unsupported(statement, "only #show directives are supported")
	case strings.HasPrefix(s, asp.ConstraintPrefix):
		body, err := parseBody(statement, s[len(asp.ConstraintPrefix):])
		if err != nil {
			return rule{}, err
		}
		return rule{kind: ruleConstraint, body: body}, nil
	case strings.HasPrefix(s, ":~"):
		return rule{}, unsupported(statement, "weak constraints are not supported")
	case len(splitTop(s, ':')) > 1:
		return rule{}, unsupported(statement, "rules with a body are not supported")
	}

	if m := choiceRule.FindStringSubmatch(s); m != nil {
		r := rule{kind: ruleChoice, upper: -1}
		var err error
		if m[1] != "" {
			if r.lower, err = strconv.Atoi(m[1]); err != nil {
				return rule{}, unsupported(statement, "invalid lower bound %s", m[1])
			}
		}
		if m[3] != "" {
			if r.upper, err = strconv.Atoi(m[3]); err != nil {
				return rule{}, unsupported(statement, "invalid upper bound %s", m[3])
			}
		}
		if strings.TrimSpace(m[2]) == "" {
			return r, nil
		}
		for _, element := range splitTop(m[2], ';') {
			atom, err := normalizeAtom(statement, element)
			if err != nil {
				return rule{}, err
			}
			r.head = append(r.head, atom)
		}
		return r, nil
	}

	if len(splitTop(s, ';')) > 1 || len(splitTop(s, '|')) > 1 {
		return rule{}, unsupported(statement, "disjunction and pooling are not supported")
	}
	atom, err := normalizeAtom(statement, s)
	if err != nil {
		return rule{}, err
	}
	return rule{kind: ruleFact, head: []string{atom}}, nil
}

func parseBody(statement, body string) ([]literal, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var literals []literal
	for _, part := range splitTop(body, ',') {
		l := literal{}
		if rest, ok := strings.CutPrefix(part, "not "); ok {
			l.negated = true
			part = strings.TrimSpace(rest)
			if strings.HasPrefix(part, "not ") {
				return nil, unsupported(statement, "double negation is not supported")
			}
		}
		atom, err := normalizeAtom(statement, part)
		if err != nil {
			return nil, err
		}
		l.atom = atom
		literals = append(literals, l)
	}
	return literals, nil
}

// normalizeAtom checks that s is a ground atom and strips whitespace
// outside of strings.
func normalizeAtom(statement, s string) (string, error) {
	var b strings.Builder
	quoted := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quoted:
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if ch == '"' {
				quoted = false
			}
		case ch == '"':
			quoted = true
			b.WriteByte(ch)
		case ch == ' ' || ch == '\t':
		default:
			b.WriteByte(ch)
		}
	}
	atom := b.String()
	name := strings.TrimPrefix(atom, "-")
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return "", unsupported(statement, "%q is not a ground atom", s)
	}
	if !isIdentifier(name) {
		p := &termParser{s: name}
		if !p.function() || p.pos != len(name) {
			return "", unsupported(statement, "%q is not a ground atom", s)
		}
	}
	return atom, nil
}

func isIdentifier(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ch == '\'' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// termParser accepts ground terms: numbers, strings, constants and
// function or tuple terms built from them.
type termParser struct {
	s   string
	pos int
}

func (p *termParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *termParser) function() bool {
	start := p.pos
	for p.pos < len(p.s) && isIdentChar(p.s[p.pos]) {
		p.pos++
	}
	if !isIdentifier(p.s[start:p.pos]) && p.pos != start {
		return false
	}
	if p.peek() != '(' {
		return p.pos > start
	}
	p.pos++
	if p.peek() == ')' {
		p.pos++
		return true
	}
	for {
		if !p.term() {
			return false
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return true
		default:
			return false
		}
	}
}

func (p *termParser) term() bool {
	switch ch := p.peek(); {
	case ch == '"':
		p.pos++
		for p.pos < len(p.s) {
			switch p.s[p.pos] {
			case '\\':
				p.pos += 2
				continue
			case '"':
				p.pos++
				return true
			}
			p.pos++
		}
		return false
	case ch == '-' || ch >= '0' && ch <= '9':
		start := p.pos
		if ch == '-' {
			p.pos++
		}
		digits := p.pos
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
		return p.pos > digits && p.pos > start
	case ch == '(' || ch >= 'a' && ch <= 'z':
		return p.function()
	}
	return false
}
