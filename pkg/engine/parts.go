package engine

import (
	"fmt"
	"strings"
)

// Parts stores program text by part name in the order parts were first
// added, and tracks which parts have been grounded. Engines that hand
// the whole program to a solver in one go embed it.
type Parts struct {
	order    []string
	text     map[string]*strings.Builder
	grounded map[string]struct{}
}

func (p *Parts) Add(name string, _ []string, program string) error {
	if name == "" {
		return fmt.Errorf("empty part name")
	}
	if p.text == nil {
		p.text = map[string]*strings.Builder{}
	}
	b, ok := p.text[name]
	if !ok {
		b = &strings.Builder{}
		p.text[name] = b
		p.order = append(p.order, name)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(program)
	return nil
}

// Mark records parts as grounded. Parts that were never added are an
// error.
func (p *Parts) Mark(parts ...Part) error {
	if p.grounded == nil {
		p.grounded = map[string]struct{}{}
	}
	for _, part := range parts {
		if _, ok := p.text[part.Name]; !ok {
			return fmt.Errorf("unknown program part %q", part.Name)
		}
		p.grounded[part.Name] = struct{}{}
	}
	return nil
}

// Grounded reports whether Mark has been called with at least one part.
func (p *Parts) Grounded() bool {
	return len(p.grounded) > 0
}

// Text returns the grounded parts' text in the order they were added.
func (p *Parts) Text() string {
	var out []string
	for _, name := range p.order {
		if _, ok := p.grounded[name]; ok {
			out = append(out, p.text[name].String())
		}
	}
	return strings.Join(out, "\n")
}
