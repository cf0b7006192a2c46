package tree

import "math"

// Point is a vector stored in the tree.
type Point struct {
	index  int32
	Vector []float32
}

// NewPoint constructs a point for the given vector.
func NewPoint(vector ...float32) *Point {
	return &Point{index: -1, Vector: vector}
}

// Index returns the insertion index of a stored point, -1 if not stored.
func (p *Point) Index() int32 {
	if p == nil {
		return -1
	}
	return p.index
}

// Node is a cover-tree node. Every child lies within coverDist of its parent.
type Node struct {
	level    int32
	point    *Point
	children []*Node
	radius   float32
}

func newNode(point *Point, level int32) *Node {
	return &Node{level: level, point: point}
}

func (n *Node) coverDist(base float32) float32 {
	return float32(math.Pow(float64(base), float64(n.level)))
}
