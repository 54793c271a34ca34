package decomp

// CombinationIterator enumerates index subsets of {0..n-1}: first all
// subsets of the current stage size in lexicographic order, then the next
// size, up to k. The stage starts at 1.
type CombinationIterator struct {
	n, k    int
	stage   int
	idx     []int
	started bool
}

// NewCombinationIterator returns an iterator over subsets of n indices with
// at most k members. k is capped at n.
func NewCombinationIterator(n, k int) *CombinationIterator {
	k = max(0, min(k, n))
	return &CombinationIterator{n: n, k: k, stage: 1, idx: make([]int, k)}
}

// SetStage sets the subset size the iteration starts at, capped like k.
// Setting it to k restricts the iteration to subsets of exactly k members.
func (c *CombinationIterator) SetStage(stage int) {
	c.stage = max(1, min(stage, c.k))
}

// Reset restarts the iteration at stage 1.
func (c *CombinationIterator) Reset() {
	c.stage = 1
	c.started = false
}

// Next returns the next subset in increasing index order, or nil when the
// iteration is exhausted. The slice is reused by the following call.
func (c *CombinationIterator) Next() []int {
	if c.stage > c.k {
		return nil
	}
	if !c.started {
		c.started = true
		return c.first()
	}
	for i := c.stage - 1; i >= 0; i-- {
		if c.idx[i] < c.n-c.stage+i {
			c.idx[i]++
			for j := i + 1; j < c.stage; j++ {
				c.idx[j] = c.idx[j-1] + 1
			}
			return c.idx[:c.stage]
		}
	}
	c.stage++
	if c.stage > c.k {
		return nil
	}
	return c.first()
}

func (c *CombinationIterator) first() []int {
	for i := range c.stage {
		c.idx[i] = i
	}
	return c.idx[:c.stage]
}
