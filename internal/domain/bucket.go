package domain

import (
	"math"
	"time"
)

// Bin is a histogram bucket covering [X0, X1).
type Bin struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Count int     `json:"count"`
}

// Bucket is a time-rollup group keyed by its start instant.
type Bucket struct {
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

// HierarchyNode is one node of the tree dataset.
type HierarchyNode struct {
	Name     string          `json:"name"`
	Size     *float64        `json:"size,omitempty"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n HierarchyNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// LeafSize returns the usable size of a leaf. Missing, NaN, and negative
// sizes count as zero.
func (n HierarchyNode) LeafSize() float64 {
	if n.Size == nil {
		return 0
	}
	v := *n.Size
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Total sums leaf sizes over the subtree. Sizes on internal nodes are ignored.
func (n HierarchyNode) Total() float64 {
	if n.IsLeaf() {
		return n.LeafSize()
	}
	var sum float64
	for i := range n.Children {
		sum += n.Children[i].Total()
	}
	return sum
}

// Depth returns the number of levels below the node.
func (n HierarchyNode) Depth() int {
	h := 0
	for i := range n.Children {
		if d := n.Children[i].Depth() + 1; d > h {
			h = d
		}
	}
	return h
}
