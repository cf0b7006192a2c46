package tree

import (
	"container/heap"
	"sort"
	"sync"
)

// This implementation is adapted from github.com/viant/gds/tree/cover.

const (
	defaultBase = 1.3
	// pruneSlack absorbs float32 rounding in the triangle-inequality bound.
	pruneSlack = 1e-5
)

// Tree is a cover tree mapping stored points to values of type T.
type Tree[T any] struct {
	mu       sync.RWMutex
	root     *Node
	base     float32
	distance DistanceFunc
	values   []T
	points   []*Point
	stale    bool
}

// NewTree constructs a cover tree with the provided base and distance. A base
// <= 1 falls back to 1.3; a nil distance falls back to EuclideanDistance.
func NewTree[T any](base float32, distance DistanceFunc) *Tree[T] {
	if base <= 1 {
		base = defaultBase
	}
	if distance == nil {
		distance = EuclideanDistance
	}
	return &Tree[T]{base: base, distance: distance}
}

// Len returns the number of stored points.
func (t *Tree[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}

// Insert adds a value/point pair to the tree and returns its index.
func (t *Tree[T]) Insert(value T, point *Point) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	point.index = int32(len(t.points))
	t.points = append(t.points, point)
	t.values = append(t.values, value)
	t.stale = true
	if t.root == nil {
		t.root = newNode(point, 0)
		return point.index
	}
	d := t.distance(point, t.root.point)
	for d > t.root.coverDist(t.base) {
		t.root.level++
	}
	node := t.root
	for {
		var next *Node
		for _, child := range node.children {
			if t.distance(point, child.point) <= child.coverDist(t.base) {
				next = child
				break
			}
		}
		if next == nil {
			node.children = append(node.children, newNode(point, node.level-1))
			return point.index
		}
		node = next
	}
}

// Value returns the stored value for the given point.
func (t *Tree[T]) Value(point *Point) T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var zero T
	if point == nil || point.index < 0 || int(point.index) >= len(t.values) {
		return zero
	}
	return t.values[point.index]
}

// Point returns the stored point with the given insertion index.
func (t *Tree[T]) Point(index int32) *Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || int(index) >= len(t.points) {
		return nil
	}
	return t.points[index]
}

// KNearestNeighbors returns the k stored points closest to point, nearest
// first. Equal distances are ordered by insertion.
func (t *Tree[T]) KNearestNeighbors(point *Point, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	t.refreshRadii()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.root == nil {
		return nil
	}
	h := &Neighbors{}
	t.search(t.root, t.distance(point, t.root.point), point, k, h)
	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(Neighbor)
	}
	return result
}

func (t *Tree[T]) search(node *Node, dist float32, point *Point, k int, h *Neighbors) {
	cand := Neighbor{Point: node.point, Distance: dist}
	if h.Len() < k {
		heap.Push(h, cand)
	} else if (*h)[0].worse(cand) {
		(*h)[0] = cand
		heap.Fix(h, 0)
	}
	if len(node.children) == 0 {
		return
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, len(node.children))
	for i, child := range node.children {
		cds[i] = childDist{child: child, dist: t.distance(point, child.point)}
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if h.Len() == k && cd.dist-cd.child.radius-pruneSlack > (*h)[0].Distance {
			continue
		}
		t.search(cd.child, cd.dist, point, k, h)
	}
}

func (t *Tree[T]) refreshRadii() {
	t.mu.RLock()
	stale := t.stale
	t.mu.RUnlock()
	if !stale {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stale && t.root != nil {
		t.measure(t.root)
	}
	t.stale = false
}

// measure sets each node's radius to an upper bound of the distance from its
// point to any point in its subtree.
func (t *Tree[T]) measure(n *Node) float32 {
	var r float32
	for _, child := range n.children {
		if d := t.distance(n.point, child.point) + t.measure(child); d > r {
			r = d
		}
	}
	n.radius = r
	return r
}
