// Package dashboard wires page interactions to the dataset cache, the
// renderers, the captions and the sunburst zoom controller.
//
// Every operation addresses a session by id. A session handles one event at a
// time; datasets are shared across sessions through the cache.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/madu12/metro-interstate-traffic-volume/internal/config"
	"github.com/madu12/metro-interstate-traffic-volume/internal/describe"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
	"github.com/madu12/metro-interstate-traffic-volume/internal/render"
	"github.com/madu12/metro-interstate-traffic-volume/internal/sunburst"
)

// Datasets provides the memoized datasets.
type Datasets interface {
	Records(ctx context.Context) ([]domain.Record, error)
	Hierarchy(ctx context.Context) (domain.HierarchyNode, error)
}

// Publisher accepts interaction events without blocking.
type Publisher interface {
	Publish(event domain.InteractionEvent) bool
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.InteractionEvent) bool { return false }

// Options configures the renderers and the session store.
type Options struct {
	Histogram    render.HistogramConfig
	Scatter      render.ScatterConfig
	DailyScatter render.ScatterConfig
	TimeSeries   render.TimeSeriesConfig
	Sunburst     render.SunburstConfig
	ZoomDuration time.Duration
	MaxSessions  int
	Clock        clockwork.Clock
}

// OptionsFromConfig derives the dashboard options from the service config.
func OptionsFromConfig(cfg *config.Config) Options {
	layout := render.DefaultLayout()
	layout.Width, layout.Height = cfg.ChartWidth, cfg.ChartHeight
	return Options{
		Histogram:    render.HistogramConfig{Layout: layout, Buckets: cfg.HistogramBuckets},
		Scatter:      render.ScatterConfig{Layout: layout, Nice: cfg.NiceDomains},
		DailyScatter: render.ScatterConfig{Layout: layout.WithBottom(70), Nice: cfg.NiceDomains},
		TimeSeries:   render.TimeSeriesConfig{Layout: layout, Nice: cfg.NiceDomains},
		Sunburst:     render.SunburstConfig{Width: cfg.ChartWidth},
		ZoomDuration: cfg.ZoomDuration,
		MaxSessions:  cfg.MaxSessions,
	}
}

// initialCaptions are written when a page opens, before any chart is drawn.
var initialCaptions = []struct {
	kind     domain.ChartKind
	variable string
}{
	{domain.Histogram, string(domain.TrafficVolume)},
	{domain.WeatherScatter, string(domain.Temp)},
	{domain.TimeSeries, string(domain.Day)},
	{domain.Sunburst, ""},
	{domain.DateScatter, ""},
}

// Dashboard owns the open sessions.
type Dashboard struct {
	data     Datasets
	events   Publisher
	sessions *sessionStore
	opts     Options
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Dashboard. A nil publisher discards interaction events.
func New(data Datasets, events Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	if events == nil {
		events = nopPublisher{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1
	}
	return &Dashboard{
		data:     data,
		events:   events,
		sessions: newSessionStore(opts.MaxSessions, metrics),
		opts:     opts,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// NewSession opens a page: it writes the initial captions and draws the
// histogram tab. A histogram that fails to load is reported in the returned
// view; the session is still created.
func (d *Dashboard) NewSession(ctx context.Context) (*Session, View) {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: d.clock.Now(),
		selection: DefaultSelection(),
		panel:     describe.NewPanel(d.logger, domain.ChartKinds()...),
		charts:    make(map[domain.ChartKind]render.Chart),
		views:     make(map[domain.ChartKind]View),
		tooltip:   render.NewTooltip(d.clock),
	}
	for _, c := range initialCaptions {
		s.panel.Describe(c.kind, c.variable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if closed := d.sessions.open(s); closed != nil {
		d.logger.Debug("session evicted", "session_id", closed.ID, "open_sessions", d.sessions.size())
	}
	d.emit(s.ID, domain.EventSessionStarted, "", "")

	view, _ := d.draw(ctx, s, domain.Histogram)
	return s, view
}

// Session looks up an open session.
func (d *Dashboard) Session(id string) (*Session, error) {
	s, ok := d.sessions.lookup(id)
	if !ok {
		return nil, errs.NewNotFoundError(fmt.Sprintf("session %q not found", id))
	}
	return s, nil
}

// ShowTab activates kind's tab and redraws it for the current selection. The
// sunburst starts over from the root each time its tab is shown.
func (d *Dashboard) ShowTab(ctx context.Context, id string, kind domain.ChartKind) (View, error) {
	s, err := d.Session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.ActiveTab = kind
	d.emit(s.ID, domain.EventTabShown, kind, s.selection.Value(kind))
	return d.draw(ctx, s, kind)
}

// Select stores a dropdown change and redraws the chart it drives.
func (d *Dashboard) Select(ctx context.Context, id string, kind domain.ChartKind, value string) (View, error) {
	s, err := d.Session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.selection.With(kind, value)
	if err != nil {
		return View{}, err
	}
	s.selection = next
	d.emit(s.ID, domain.EventSelectionChanged, kind, value)
	return d.draw(ctx, s, kind)
}

// ClickNode zooms the sunburst into node.
func (d *Dashboard) ClickNode(ctx context.Context, id string, node int) (Frame, error) {
	s, err := d.Session(id)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zoom == nil {
		return Frame{}, errSunburstNotShown
	}
	if err := s.zoom.Click(node); err != nil {
		return Frame{}, zoomError(err)
	}
	d.zoomed(s, node)
	return d.frame(s)
}

// ClickHub zooms the sunburst out to the node behind the centre circle.
func (d *Dashboard) ClickHub(ctx context.Context, id string) (Frame, error) {
	s, err := d.Session(id)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zoom == nil {
		return Frame{}, errSunburstNotShown
	}
	hub := s.zoom.Hub()
	s.zoom.ClickHub()
	d.zoomed(s, hub)
	return d.frame(s)
}

// Frame advances the sunburst animation to now and draws it.
func (d *Dashboard) Frame(ctx context.Context, id string) (Frame, error) {
	s, err := d.Session(id)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zoom == nil {
		return Frame{}, errSunburstNotShown
	}
	s.zoom.Advance()
	return d.frame(s)
}

// Settle runs the sunburst animation to completion on the frame clock and
// returns the final frame.
func (d *Dashboard) Settle(ctx context.Context, id string) (Frame, error) {
	s, err := d.Session(id)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zoom == nil {
		return Frame{}, errSunburstNotShown
	}
	if err := sunburst.NewDriver(s.zoom, d.clock, sunburst.DefaultFrameInterval).Run(ctx, nil); err != nil {
		return Frame{}, fmt.Errorf("settle sunburst: %w", err)
	}
	return d.frame(s)
}

// Hover shows the tooltip for mark index of kind's chart at pointer (x, y).
// On the sunburst it also highlights the node's path.
func (d *Dashboard) Hover(ctx context.Context, id string, kind domain.ChartKind, index, x, y int) (Pointer, error) {
	s, err := d.Session(id)
	if err != nil {
		return Pointer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == domain.Sunburst {
		if s.zoom == nil {
			return Pointer{}, errSunburstNotShown
		}
		h, err := s.zoom.Hover(index)
		if err != nil {
			return Pointer{}, zoomError(err)
		}
		s.tooltip.Show(h.Tooltip, x, y)
		return d.pointer(s, kind)
	}

	chart, err := s.drawn(kind)
	if err != nil {
		return Pointer{}, err
	}
	m, ok := chart.Mark(index)
	if !ok {
		return Pointer{}, errs.NewNotFoundError(fmt.Sprintf("%s mark %d not found", kind, index))
	}
	s.tooltip.Show(m.Tooltip, x, y)
	return d.pointer(s, kind)
}

// Move keeps the tooltip next to the pointer while it travels over a mark.
func (d *Dashboard) Move(ctx context.Context, id string, kind domain.ChartKind, x, y int) (Pointer, error) {
	s, err := d.Session(id)
	if err != nil {
		return Pointer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == domain.Sunburst {
		if s.zoom == nil {
			return Pointer{}, errSunburstNotShown
		}
	} else if _, err := s.drawn(kind); err != nil {
		return Pointer{}, err
	}
	s.tooltip.Move(x, y)
	return Pointer{Tooltip: s.tooltip.State()}, nil
}

// Leave hides the tooltip and, on the sunburst, clears the highlight.
func (d *Dashboard) Leave(ctx context.Context, id string, kind domain.ChartKind) (Pointer, error) {
	s, err := d.Session(id)
	if err != nil {
		return Pointer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == domain.Sunburst && s.zoom != nil {
		s.zoom.Leave()
	}
	s.tooltip.Hide()
	return d.pointer(s, kind)
}

// pointer snapshots the tooltip and, while the sunburst is shown, redraws it
// at its current state.
func (d *Dashboard) pointer(s *Session, kind domain.ChartKind) (Pointer, error) {
	p := Pointer{Tooltip: s.tooltip.State()}
	if kind != domain.Sunburst || s.zoom == nil {
		return p, nil
	}
	frame, err := d.frame(s)
	if err != nil {
		return Pointer{}, err
	}
	p.Frame = &frame
	return p, nil
}

// Tooltip returns the session's tooltip as of now.
func (d *Dashboard) Tooltip(id string) (render.TooltipState, error) {
	s, err := d.Session(id)
	if err != nil {
		return render.TooltipState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip.State(), nil
}

// InteractivePage builds the standalone ECharts page for kind. value selects
// the variable or granularity and defaults to the initial selection.
func (d *Dashboard) InteractivePage(ctx context.Context, kind domain.ChartKind, value string) (render.Page, error) {
	sel := DefaultSelection()
	if value != "" {
		var err error
		if sel, err = sel.With(kind, value); err != nil {
			return nil, err
		}
	}

	if kind == domain.Sunburst {
		root, err := d.data.Hierarchy(ctx)
		if err != nil {
			return nil, err
		}
		return render.EChartsSunburst(sunburst.Build(root), d.opts.Sunburst), nil
	}

	records, err := d.data.Records(ctx)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.Histogram:
		return render.EChartsHistogram(records, sel.HistogramVariable, d.opts.Histogram), nil
	case domain.WeatherScatter:
		return render.EChartsScatter(records, sel.ScatterVariable, d.opts.Scatter), nil
	case domain.TimeSeries:
		return render.EChartsTimeSeries(records, sel.Granularity, d.opts.TimeSeries), nil
	}
	return nil, errs.NewNotFoundError(fmt.Sprintf("no interactive page for chart %q", kind))
}

var errSunburstNotShown = errs.NewValidationError("sunburst tab has not been shown")

// zoomError maps controller errors onto the typed errors.
func zoomError(err error) error {
	switch {
	case errors.Is(err, sunburst.ErrNoSuchNode):
		return errs.NewNotFoundError(err.Error())
	case errors.Is(err, sunburst.ErrLeaf), errors.Is(err, sunburst.ErrHidden):
		return errs.NewValidationError(err.Error())
	}
	return err
}

// draw loads what kind needs, renders it for the session's selection, mounts
// the result in place of the previous chart, and updates the caption. A
// failure mounts an error placeholder and leaves the other charts alone.
func (d *Dashboard) draw(ctx context.Context, s *Session, kind domain.ChartKind) (View, error) {
	start := time.Now()
	chart, err := d.renderChart(ctx, s, kind)
	d.metrics.RenderDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	value := s.selection.Value(kind)
	if err != nil {
		d.metrics.Renders.WithLabelValues(string(kind), "error").Inc()
		d.logger.Error("chart render failed", "session_id", s.ID, "chart", kind, "error", err)
		d.emit(s.ID, domain.EventChartError, kind, value)

		delete(s.charts, kind)
		view := View{Kind: kind, Selection: value, Caption: s.caption(kind), Error: userMessage(err)}
		s.views[kind] = view
		return view, err
	}
	d.metrics.Renders.WithLabelValues(string(kind), "success").Inc()

	s.panel.Describe(kind, value)
	s.charts[kind] = chart
	view := View{
		Kind:      kind,
		Title:     chart.Title,
		Caption:   s.caption(kind),
		Selection: value,
		SVG:       string(chart.SVG),
		Marks:     chart.Marks,
	}
	s.views[kind] = view
	return view, nil
}

func (d *Dashboard) renderChart(ctx context.Context, s *Session, kind domain.ChartKind) (render.Chart, error) {
	if kind.UsesHierarchy() {
		s.zoom = nil
		root, err := d.data.Hierarchy(ctx)
		if err != nil {
			return render.Chart{}, err
		}
		s.zoom = sunburst.NewController(sunburst.Build(root), d.clock, d.opts.ZoomDuration)
		return render.Sunburst(s.zoom, d.opts.Sunburst)
	}

	records, err := d.data.Records(ctx)
	if err != nil {
		return render.Chart{}, err
	}
	sel := s.selection
	switch kind {
	case domain.Histogram:
		return render.Histogram(records, sel.HistogramVariable, d.opts.Histogram)
	case domain.WeatherScatter:
		return render.WeatherScatter(records, sel.ScatterVariable, d.opts.Scatter)
	case domain.DateScatter:
		return render.DailyScatter(records, d.opts.DailyScatter)
	case domain.TimeSeries:
		return render.TimeSeries(records, sel.Granularity, d.opts.TimeSeries)
	}
	return render.Chart{}, errs.NewValidationError(fmt.Sprintf("unknown chart %q", kind))
}

func (d *Dashboard) frame(s *Session) (Frame, error) {
	chart, err := render.Sunburst(s.zoom, d.opts.Sunburst)
	if err != nil {
		return Frame{}, err
	}
	s.charts[domain.Sunburst] = chart
	return Frame{
		SVG:     string(chart.SVG),
		Marks:   chart.Marks,
		Focus:   s.zoom.Focus(),
		Hub:     s.zoom.Hub(),
		Idle:    s.zoom.Idle(),
		Tooltip: s.tooltip.State(),
	}, nil
}

func (d *Dashboard) zoomed(s *Session, node int) {
	d.metrics.ZoomTransitions.Inc()
	e := domain.NewInteractionEvent(s.ID, domain.EventSunburstZoom, domain.Sunburst, strconv.Itoa(node))
	e.Node = node
	d.events.Publish(e)
}

func (d *Dashboard) emit(sessionID string, typ domain.EventType, kind domain.ChartKind, value string) {
	d.events.Publish(domain.NewInteractionEvent(sessionID, typ, kind, value))
}

// userMessage is the text shown in a chart's error placeholder.
func userMessage(err error) string {
	var loadErr *errs.LoadError
	if errors.As(err, &loadErr) {
		return fmt.Sprintf("The %s dataset could not be loaded. Please try again later.", loadErr.Dataset)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "The request was cancelled before the chart was drawn."
	}
	return "The chart could not be drawn."
}
