package sunburst

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultDuration is the length of a zoom transition.
const DefaultDuration = 750 * time.Millisecond

const (
	internalOpacity = 0.6
	leafOpacity     = 0.4
	dimmedOpacity   = 0.3
)

var (
	// ErrNoSuchNode is returned for an index outside the arena.
	ErrNoSuchNode = errors.New("no such node")
	// ErrLeaf is returned when a leaf is clicked; only internal nodes zoom.
	ErrLeaf = errors.New("leaf nodes cannot be zoomed into")
	// ErrHidden is returned when a node that is not drawn is clicked or hovered.
	ErrHidden = errors.New("node is not visible")
)

var printer = message.NewPrinter(language.English)

// Transition moves one node's window from From to To, starting at Start.
// Attached records whether the arc (or label) is drawn while it runs, which
// holds when it is visible at either end.
type Transition struct {
	Node          int
	From          Window
	To            Window
	Start         time.Time
	ArcAttached   bool
	LabelAttached bool
}

// Hover describes the response to pointing at a node.
type Hover struct {
	Node    int
	Name    string
	Value   float64
	Path    []int
	Tooltip string
}

// Controller holds the zoom state of one sunburst: the current and target
// window of every node, the node backing the centre hub, and the transitions
// in flight. It is not safe for concurrent use.
type Controller struct {
	tree     *Tree
	clock    clockwork.Clock
	duration time.Duration

	current []Window
	target  []Window
	active  []Transition

	focus     int
	hub       int
	highlight []float64
	hovered   int
}

// NewController starts in the initial partition with the hub on the root.
// A zero duration applies clicks immediately.
func NewController(tree *Tree, clock clockwork.Clock, duration time.Duration) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	n := tree.Len()
	c := &Controller{
		tree:      tree,
		clock:     clock,
		duration:  duration,
		current:   make([]Window, n),
		target:    make([]Window, n),
		highlight: make([]float64, n),
		hovered:   -1,
	}
	for i := range tree.Nodes {
		c.current[i] = tree.Nodes[i].Layout
		c.target[i] = tree.Nodes[i].Layout
		c.highlight[i] = 1
	}
	return c
}

// Tree returns the arena the controller animates.
func (c *Controller) Tree() *Tree { return c.tree }

// Focus is the node whose span currently fills the circle.
func (c *Controller) Focus() int { return c.focus }

// Hub is the node a click on the centre zooms to.
func (c *Controller) Hub() int { return c.hub }

// Current returns the window on screen for node i.
func (c *Controller) Current(i int) Window { return c.current[i] }

// Target returns the window node i is moving toward.
func (c *Controller) Target(i int) Window { return c.target[i] }

// Idle reports whether no transition is in flight.
func (c *Controller) Idle() bool { return len(c.active) == 0 }

// Transitions returns a copy of the in-flight transition records.
func (c *Controller) Transitions() []Transition {
	out := make([]Transition, len(c.active))
	copy(out, c.active)
	return out
}

// Click zooms into internal node p. The node must currently be drawn.
func (c *Controller) Click(p int) error {
	if !c.tree.Valid(p) {
		return fmt.Errorf("click %d: %w", p, ErrNoSuchNode)
	}
	if c.tree.Nodes[p].IsLeaf() {
		return fmt.Errorf("click %q: %w", c.tree.Nodes[p].Name, ErrLeaf)
	}
	c.Advance()
	if !c.current[p].ArcVisible() {
		return fmt.Errorf("click %q: %w", c.tree.Nodes[p].Name, ErrHidden)
	}
	c.zoom(p)
	return nil
}

// ClickHub zooms out to the node backing the centre hub.
func (c *Controller) ClickHub() {
	c.Advance()
	c.zoom(c.hub)
}

// zoom retargets every node against p's layout window and starts a
// transition from wherever each node currently is.
func (c *Controller) zoom(p int) {
	pn := c.tree.Nodes[p]
	c.focus = p
	c.hub = pn.Parent
	if c.hub < 0 {
		c.hub = Root
	}

	now := c.clock.Now()
	c.active = c.active[:0]
	for i := range c.tree.Nodes {
		from := c.current[i]
		to := reframe(c.tree.Nodes[i].Layout, pn.Layout, pn.Depth)
		c.target[i] = to
		c.active = append(c.active, Transition{
			Node:          i,
			From:          from,
			To:            to,
			Start:         now,
			ArcAttached:   from.ArcVisible() || to.ArcVisible(),
			LabelAttached: from.LabelVisible() || to.LabelVisible(),
		})
	}
	if c.duration <= 0 {
		c.Advance()
	}
}

// Advance moves every in-flight transition to the clock's current time and
// returns whether the controller is idle. Finished transitions land exactly
// on their target.
func (c *Controller) Advance() bool {
	return c.AdvanceTo(c.clock.Now())
}

// AdvanceTo is Advance at an explicit instant.
func (c *Controller) AdvanceTo(now time.Time) bool {
	if len(c.active) == 0 {
		return true
	}
	remaining := c.active[:0]
	for _, tr := range c.active {
		progress := 1.0
		if c.duration > 0 {
			progress = float64(now.Sub(tr.Start)) / float64(c.duration)
		}
		if progress >= 1 {
			c.current[tr.Node] = tr.To
			continue
		}
		c.current[tr.Node] = tr.From.Lerp(tr.To, EaseCubicInOut(clamp01(progress)))
		remaining = append(remaining, tr)
	}
	c.active = remaining
	return len(c.active) == 0
}

// ArcDrawn reports whether node i's arc is attached to the drawing: while a
// transition runs this follows its record, otherwise the current window.
func (c *Controller) ArcDrawn(i int) bool {
	if tr, ok := c.transition(i); ok {
		return tr.ArcAttached
	}
	return c.current[i].ArcVisible()
}

// LabelDrawn is ArcDrawn for the node's label.
func (c *Controller) LabelDrawn(i int) bool {
	if tr, ok := c.transition(i); ok {
		return tr.LabelAttached
	}
	return c.current[i].LabelVisible()
}

func (c *Controller) transition(i int) (Transition, bool) {
	// Every zoom records all nodes in arena order.
	if i < len(c.active) && c.active[i].Node == i {
		return c.active[i], true
	}
	for _, tr := range c.active {
		if tr.Node == i {
			return tr, true
		}
	}
	return Transition{}, false
}

// FillOpacity is node i's fill opacity derived from its current window.
func (c *Controller) FillOpacity(i int) float64 {
	if !c.current[i].ArcVisible() {
		return 0
	}
	if c.tree.Nodes[i].IsLeaf() {
		return leafOpacity
	}
	return internalOpacity
}

// LabelOpacity is 1 for labels that fit their current window and 0 otherwise.
func (c *Controller) LabelOpacity(i int) float64 {
	if c.current[i].LabelVisible() {
		return 1
	}
	return 0
}

// Clickable reports whether node i responds to clicks. Arcs on screen stay
// clickable while a transition carries them out of view.
func (c *Controller) Clickable(i int) bool {
	return !c.tree.Nodes[i].IsLeaf() && c.current[i].ArcVisible()
}

// Highlight is node i's hover opacity: 1 unless another path is hovered.
func (c *Controller) Highlight(i int) float64 {
	return c.highlight[i]
}

// Hovered returns the hovered node or -1.
func (c *Controller) Hovered() int { return c.hovered }

// Hover highlights the path from the root to node i, dims every other arc,
// and returns the tooltip. Nodes that are not visible do not respond.
func (c *Controller) Hover(i int) (Hover, error) {
	if !c.tree.Valid(i) {
		return Hover{}, fmt.Errorf("hover %d: %w", i, ErrNoSuchNode)
	}
	if !c.current[i].ArcVisible() {
		return Hover{}, fmt.Errorf("hover %q: %w", c.tree.Nodes[i].Name, ErrHidden)
	}
	path := c.tree.Ancestors(i)
	for n := range c.highlight {
		c.highlight[n] = dimmedOpacity
	}
	for _, n := range path {
		c.highlight[n] = 1
	}
	c.hovered = i

	node := c.tree.Nodes[i]
	return Hover{
		Node:    i,
		Name:    node.Name,
		Value:   node.Value,
		Path:    path,
		Tooltip: c.tree.Tooltip(i),
	}, nil
}

// Leave clears the hover highlight.
func (c *Controller) Leave() {
	for n := range c.highlight {
		c.highlight[n] = 1
	}
	c.hovered = -1
}

// FormatValue renders a subtree total as a rounded integer with thousands
// separators.
func FormatValue(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
