package debugger

import (
	"math"
	"math/big"
)

// Combinations enumerates the k-element subsets of {0, ..., n-1} in
// lexicographic order.
//
//	c := NewCombinations(4, 2)
//	for c.Next() {
//		use(c.Indices())
//	}
type Combinations struct {
	n, k    int
	idx     []int
	started bool
	done    bool
}

func NewCombinations(n, k int) *Combinations {
	c := &Combinations{n: n, k: k}
	c.Reset()
	return c
}

// Reset moves the cursor back before the first combination.
func (c *Combinations) Reset() {
	c.started = false
	c.done = c.k < 0 || c.k > c.n
	if c.done {
		c.idx = nil
		return
	}
	c.idx = make([]int, c.k)
	for i := range c.idx {
		c.idx[i] = i
	}
}

// Next advances to the next combination and reports whether there is
// one.
func (c *Combinations) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		return true
	}
	// find the rightmost index that can still move right
	i := c.k - 1
	for i >= 0 && c.idx[i] == c.n-c.k+i {
		i--
	}
	if i < 0 {
		c.done = true
		return false
	}
	c.idx[i]++
	for j := i + 1; j < c.k; j++ {
		c.idx[j] = c.idx[j-1] + 1
	}
	return true
}

// Indices returns a copy of the current combination.
func (c *Combinations) Indices() []int {
	out := make([]int, len(c.idx))
	copy(out, c.idx)
	return out
}

// Count returns the binomial coefficient C(n, k), or math.MaxInt when
// it does not fit in an int.
func Count(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	c := new(big.Int).Binomial(int64(n), int64(k))
	if !c.IsInt64() || c.Int64() > math.MaxInt {
		return math.MaxInt
	}
	return int(c.Int64())
}
