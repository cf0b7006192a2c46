package tree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// worse orders by larger distance first, then by later insertion.
func (n Neighbor) worse(o Neighbor) bool {
	if n.Distance != o.Distance {
		return n.Distance > o.Distance
	}
	return n.Point.index > o.Point.index
}

// Neighbors implements heap.Interface with the worst candidate at the root.
type Neighbors []Neighbor

func (h Neighbors) Len() int           { return len(h) }
func (h Neighbors) Less(i, j int) bool { return h[i].worse(h[j]) }
func (h Neighbors) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
