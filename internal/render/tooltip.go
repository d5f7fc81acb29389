package render

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/madu12/metro-interstate-traffic-volume/internal/sunburst"
)

// Tooltip fade timings and resting opacity.
const (
	TooltipShowDuration = 200 * time.Millisecond
	TooltipHideDuration = 500 * time.Millisecond
	TooltipOpacity      = 0.9
	tooltipOffsetX      = 5
	tooltipOffsetY      = -28
)

// TooltipState is a snapshot of the overlay.
type TooltipState struct {
	Content string  `json:"content"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Opacity float64 `json:"opacity"`
}

// Tooltip is the single hover overlay shared by every chart on a page. Its
// opacity fades toward a target; a new Show or Hide starts from wherever the
// running fade has reached.
type Tooltip struct {
	mu    sync.Mutex
	clock clockwork.Clock

	content string
	x, y    int

	from, to float64
	start    time.Time
	duration time.Duration
}

// NewTooltip creates a hidden overlay.
func NewTooltip(clock clockwork.Clock) *Tooltip {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tooltip{clock: clock}
}

// Show sets the content, positions the overlay next to the pointer, and fades
// it in.
func (t *Tooltip) Show(content string, x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.content = content
	t.place(x, y)
	t.fadeTo(TooltipOpacity, TooltipShowDuration)
}

// Move follows the pointer without changing the fade.
func (t *Tooltip) Move(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.place(x, y)
}

// Hide fades the overlay out. The content stays until the next Show.
func (t *Tooltip) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fadeTo(0, TooltipHideDuration)
}

// State returns the overlay as of now.
func (t *Tooltip) State() TooltipState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TooltipState{Content: t.content, X: t.x, Y: t.y, Opacity: t.opacity(t.clock.Now())}
}

func (t *Tooltip) place(x, y int) {
	t.x, t.y = x+tooltipOffsetX, y+tooltipOffsetY
}

func (t *Tooltip) fadeTo(target float64, d time.Duration) {
	now := t.clock.Now()
	t.from = t.opacity(now)
	t.to = target
	t.start = now
	t.duration = d
}

func (t *Tooltip) opacity(now time.Time) float64 {
	if t.duration <= 0 {
		return t.to
	}
	progress := float64(now.Sub(t.start)) / float64(t.duration)
	if progress >= 1 {
		return t.to
	}
	if progress <= 0 {
		return t.from
	}
	return t.from + (t.to-t.from)*sunburst.EaseCubicInOut(progress)
}
