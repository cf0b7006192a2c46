// Package tree implements a cover tree for exact k-nearest-neighbor search
// under a metric distance. Subtree radii are measured, not derived from the
// level, so pruning stays exact for any insertion order.
package tree
