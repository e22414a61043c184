package label

// disjointSet tracks label equivalences during the first labeling pass.
// find uses path compression and union is by rank, so resolving all
// provisional labels is near linear in practice.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet() *disjointSet {
	return &disjointSet{}
}

// add creates a new singleton set and returns its index.
func (d *disjointSet) add() int {
	idx := len(d.parent)
	d.parent = append(d.parent, idx)
	d.rank = append(d.rank, 0)
	return idx
}

// find returns the root of x's set, compressing the path along the way.
func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// union merges the sets containing a and b.
func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}
