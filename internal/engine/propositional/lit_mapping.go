package propositional

import (
	"sort"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// litMapping translates atoms into the literals of a circuit and
// collects the root literals that must hold in every model.
type litMapping struct {
	c     *logic.C
	lits  map[string]z.Lit
	atoms []string
	heads map[string]struct{}
	roots []z.Lit
}

func newLitMapping(rules []rule) *litMapping {
	d := &litMapping{
		c:     logic.NewC(),
		lits:  map[string]z.Lit{},
		heads: map[string]struct{}{},
	}

	for _, r := range rules {
		for _, atom := range r.head {
			d.heads[atom] = struct{}{}
		}
	}

	for _, r := range rules {
		switch r.kind {
		case ruleFact:
			d.roots = append(d.roots, d.LitOf(r.head[0]))
		case ruleChoice:
			d.applyBounds(r)
		case ruleConstraint:
			ms := make([]z.Lit, 0, len(r.body))
			for _, l := range r.body {
				m := d.LitOf(l.atom)
				if !l.negated {
					m = m.Not()
				}
				ms = append(ms, m)
			}
			if len(ms) == 0 {
				d.roots = append(d.roots, d.c.F)
				continue
			}
			d.roots = append(d.roots, d.c.Ors(ms...))
		}
	}

	for _, atom := range d.atoms {
		// without a head an atom has no support
		if _, ok := d.heads[atom]; !ok {
			d.roots = append(d.roots, d.lits[atom].Not())
		}
		// classical negation: a and -a never hold together
		if strings.HasPrefix(atom, "-") {
			if m, ok := d.lits[strings.TrimPrefix(atom, "-")]; ok {
				d.roots = append(d.roots, d.c.Or(m.Not(), d.lits[atom].Not()))
			}
		}
	}
	return d
}

func (d *litMapping) applyBounds(r rule) {
	ms := make([]z.Lit, 0, len(r.head))
	seen := map[string]struct{}{}
	for _, atom := range r.head {
		if _, ok := seen[atom]; ok {
			continue
		}
		seen[atom] = struct{}{}
		ms = append(ms, d.LitOf(atom))
	}
	n := len(ms)
	if r.lower > n || r.upper >= 0 && r.upper < r.lower {
		d.roots = append(d.roots, d.c.F)
		return
	}
	needLower := r.lower > 0
	needUpper := r.upper >= 0 && r.upper < n
	if !needLower && !needUpper {
		return
	}
	cs := d.c.CardSort(ms)
	if needLower {
		d.roots = append(d.roots, cs.Geq(r.lower))
	}
	if needUpper {
		d.roots = append(d.roots, cs.Leq(r.upper))
	}
}

// LitOf returns the literal of atom, creating it on first use.
func (d *litMapping) LitOf(atom string) z.Lit {
	m, ok := d.lits[atom]
	if !ok {
		m = d.c.Lit()
		d.lits[atom] = m
		d.atoms = append(d.atoms, atom)
	}
	return m
}

// Atoms returns every atom in order of first appearance.
func (d *litMapping) Atoms() []string {
	return d.atoms
}

// CNF returns the circuit in conjunctive normal form with every root
// asserted.
func (d *litMapping) CNF() *CNF {
	cnf := &CNF{NbVars: d.c.Len() - 1}
	d.c.ToCnf(cnf)
	cnf.Add(d.c.T)
	cnf.Add(z.LitNull)
	for _, m := range d.roots {
		cnf.Add(m)
		cnf.Add(z.LitNull)
	}
	return cnf
}

// Selection returns the atoms true under value, sorted.
func (d *litMapping) Selection(value func(z.Lit) bool) []string {
	var selection []string
	for atom, m := range d.lits {
		if value(m) {
			selection = append(selection, atom)
		}
	}
	sort.Strings(selection)
	return selection
}

// CNF is a clause list in DIMACS integer form.
type CNF struct {
	NbVars  int
	Clauses [][]int
	clause  []int
}

// Add implements inter.Adder; z.LitNull ends the current clause.
func (c *CNF) Add(m z.Lit) {
	if m == z.LitNull {
		c.Clauses = append(c.Clauses, c.clause)
		c.clause = nil
		return
	}
	c.clause = append(c.clause, m.Dimacs())
	if v := int(m.Var()); v > c.NbVars {
		c.NbVars = v
	}
}
