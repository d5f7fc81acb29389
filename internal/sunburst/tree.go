// Package sunburst lays out a hierarchy as a radial partition and animates
// zooming between its nodes.
//
// Nodes live in an arena addressed by index; index 0 is the root. Parent and
// child links are indices, and the animated windows are kept in arrays
// parallel to the arena by the Controller.
package sunburst

import (
	"fmt"
	"html"
	"sort"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// Root is the arena index of the tree root.
const Root = 0

// Node is one arena entry.
type Node struct {
	Name     string
	Value    float64
	Depth    int
	Height   int
	Parent   int // -1 for the root
	Children []int
	Layout   Window
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a partitioned hierarchy.
type Tree struct {
	Nodes []Node
}

// Build flattens the hierarchy into an arena, sums values from the leaves,
// orders siblings by descending value, and computes the partition layout.
// Leaf sizes follow [domain.HierarchyNode.LeafSize]; sizes on internal nodes
// are ignored.
func Build(root domain.HierarchyNode) *Tree {
	t := &Tree{}
	t.add(&root, -1, 0)
	t.partition()
	return t
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Height returns the number of levels below the root.
func (t *Tree) Height() int {
	return t.Nodes[Root].Height
}

// Valid reports whether i addresses a node.
func (t *Tree) Valid(i int) bool {
	return i >= 0 && i < len(t.Nodes)
}

// Ancestors returns the chain from i up to, but excluding, the root,
// starting with i itself.
func (t *Tree) Ancestors(i int) []int {
	var chain []int
	for n := i; n > Root; n = t.Nodes[n].Parent {
		chain = append(chain, n)
	}
	return chain
}

// TopLevel returns the root child that i descends from, or -1 for the root.
func (t *Tree) TopLevel(i int) int {
	chain := t.Ancestors(i)
	if len(chain) == 0 {
		return -1
	}
	return chain[len(chain)-1]
}

// Tooltip is the hover text for node i: its name and rounded subtree total.
func (t *Tree) Tooltip(i int) string {
	n := t.Nodes[i]
	return fmt.Sprintf("<strong>%s</strong><br>Value: %s", html.EscapeString(n.Name), FormatValue(n.Value))
}

func (t *Tree) add(n *domain.HierarchyNode, parent, depth int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Name: n.Name, Depth: depth, Parent: parent})
	if n.IsLeaf() {
		t.Nodes[idx].Value = n.LeafSize()
		return idx
	}

	children := make([]int, 0, len(n.Children))
	var value float64
	height := 0
	for i := range n.Children {
		c := t.add(&n.Children[i], idx, depth+1)
		children = append(children, c)
		value += t.Nodes[c].Value
		if h := t.Nodes[c].Height + 1; h > height {
			height = h
		}
	}
	sort.SliceStable(children, func(a, b int) bool {
		return t.Nodes[children[a]].Value > t.Nodes[children[b]].Value
	})

	t.Nodes[idx].Children = children
	t.Nodes[idx].Value = value
	t.Nodes[idx].Height = height
	return idx
}

// partition assigns each node an angular span proportional to its value
// within its parent's span and one radial unit per depth. Parents precede
// their children in the arena, so a single forward pass suffices.
func (t *Tree) partition() {
	t.Nodes[Root].Layout = Window{X0: 0, X1: FullCircle, Y0: 0, Y1: 1}
	for i := range t.Nodes {
		n := t.Nodes[i]
		k := 0.0
		if n.Value > 0 {
			k = (n.Layout.X1 - n.Layout.X0) / n.Value
		}
		x := n.Layout.X0
		for _, c := range n.Children {
			child := &t.Nodes[c]
			x1 := x + child.Value*k
			child.Layout = Window{
				X0: x,
				X1: x1,
				Y0: float64(child.Depth),
				Y1: float64(child.Depth + 1),
			}
			x = x1
		}
	}
}
