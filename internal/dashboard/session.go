package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/madu12/metro-interstate-traffic-volume/internal/describe"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/render"
	"github.com/madu12/metro-interstate-traffic-volume/internal/sunburst"
)

// View is what a chart panel currently shows: the drawn chart and its
// caption, or an error placeholder when the chart could not be drawn.
type View struct {
	Kind      domain.ChartKind `json:"kind"`
	Title     string           `json:"title,omitempty"`
	Caption   string           `json:"caption,omitempty"`
	Selection string           `json:"selection,omitempty"`
	SVG       string           `json:"svg,omitempty"`
	Marks     []render.Mark    `json:"marks,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Frame is one animation frame of the sunburst.
type Frame struct {
	SVG     string              `json:"svg"`
	Marks   []render.Mark       `json:"marks"`
	Focus   int                 `json:"focus"`
	Hub     int                 `json:"hub"`
	Idle    bool                `json:"idle"`
	Tooltip render.TooltipState `json:"tooltip"`
}

// Pointer answers a hover, move or leave. On the sunburst it carries the
// redrawn frame so the path highlight shows.
type Pointer struct {
	Tooltip render.TooltipState `json:"tooltip"`
	Frame   *Frame              `json:"frame,omitempty"`
}

// Session is one open page. Its mutex serializes the page's events the way a
// browser's event loop would.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	selection Selection
	panel     *describe.Panel
	charts    map[domain.ChartKind]render.Chart
	views     map[domain.ChartKind]View
	zoom      *sunburst.Controller
	tooltip   *render.Tooltip
}

// Selection returns a copy of the session's current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// View returns what kind's panel currently shows.
func (s *Session) View(kind domain.ChartKind) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[kind]
	return v, ok
}

// drawn returns kind's last drawn chart. The caller holds s.mu.
func (s *Session) drawn(kind domain.ChartKind) (render.Chart, error) {
	chart, ok := s.charts[kind]
	if !ok {
		return render.Chart{}, errs.NewValidationError(fmt.Sprintf("chart %q has not been drawn", kind))
	}
	return chart, nil
}

// caption returns the caption text written for kind, if any.
func (s *Session) caption(kind domain.ChartKind) string {
	if c, ok := s.panel.Caption(kind); ok {
		return c.Text
	}
	return ""
}
