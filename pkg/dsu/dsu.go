// Package dsu implements a disjoint-set (union-find) structure over
// dense integer ordinals, shared by the merge and diff engines wherever
// they need to compute the transitive closure of a pairwise match
// relation deterministically.
package dsu

import "sort"

// DSU is a disjoint-set structure with path halving and union-by-rank.
// On a rank tie the lower ordinal always becomes the new root, regardless
// of which side of the Union call it was passed on — callers that need
// byte-identical output across differently-ordered input (the merge
// engine's commutativity contract) depend on that tie-break rule, not
// just on reaching the same partition.
type DSU struct {
	parent []int
	rank   []int
}

// New returns a DSU over the ordinals [0, n), each initially its own set.
func New(n int) *DSU {
	d := &DSU{parent: make([]int, n), rank: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

// Find returns the representative ordinal for x, compressing the path by
// halving: every visited node is repointed to its grandparent.
func (d *DSU) Find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the sets containing a and b.
func (d *DSU) Union(a, b int) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	} else if d.rank[ra] == d.rank[rb] && rb < ra {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

// Groups returns ordinals bucketed by representative, with both the
// returned roots slice and each group's members in ascending order.
func (d *DSU) Groups() (roots []int, members map[int][]int) {
	members = make(map[int][]int)
	for i := range d.parent {
		r := d.Find(i)
		members[r] = append(members[r], i)
	}
	roots = make([]int, 0, len(members))
	for r := range members {
		roots = append(roots, r)
	}
	sort.Ints(roots)
	return roots, members
}
