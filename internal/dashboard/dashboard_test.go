package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madu12/metro-interstate-traffic-volume/internal/describe"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
	"github.com/madu12/metro-interstate-traffic-volume/internal/render"
)

// --- fakes ---

type fakeDatasets struct {
	mu           sync.Mutex
	records      []domain.Record
	hierarchy    domain.HierarchyNode
	recordsErr   error
	hierarchyErr error
}

func (f *fakeDatasets) Records(context.Context) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, f.recordsErr
}

func (f *fakeDatasets) Hierarchy(context.Context) (domain.HierarchyNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hierarchy, f.hierarchyErr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
}

func (p *recordingPublisher) Publish(e domain.InteractionEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return true
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() domain.InteractionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func size(v float64) *float64 { return &v }

func testData() *fakeDatasets {
	start := time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.Record, 100)
	for i := range records {
		records[i] = domain.Record{
			TrafficVolume: float64(i + 1),
			Temp:          260 + float64(i%30),
			DateTime:      start.Add(time.Duration(i) * 6 * time.Hour),
		}
	}
	return &fakeDatasets{
		records: records,
		hierarchy: domain.HierarchyNode{
			Name: "Traffic",
			Children: []domain.HierarchyNode{
				{Name: "A", Children: []domain.HierarchyNode{
					{Name: "a1", Size: size(1)},
					{Name: "a2", Size: size(2)},
				}},
				{Name: "B", Size: size(3)},
			},
		},
	}
}

type harness struct {
	dash    *Dashboard
	data    *fakeDatasets
	events  *recordingPublisher
	clock   *clockwork.FakeClock
	metrics *observability.Metrics
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		data:    testData(),
		events:  &recordingPublisher{},
		clock:   clockwork.NewFakeClock(),
		metrics: observability.NewMetricsForTesting(),
	}
	opts.Clock = h.clock
	if opts.MaxSessions == 0 {
		opts.MaxSessions = 10
	}
	h.dash = New(h.data, h.events, opts, slog.New(slog.NewTextHandler(io.Discard, nil)), h.metrics)
	return h
}

func nodeIndex(t *testing.T, s *Session, name string) int {
	t.Helper()
	for i, n := range s.zoom.Tree().Nodes {
		if n.Name == name {
			return i
		}
	}
	t.Fatalf("node %q not found", name)
	return -1
}

// --- sessions ---

func TestNewSession_DrawsHistogramAndWritesCaptions(t *testing.T) {
	h := newHarness(t, Options{})

	s, view := h.dash.NewSession(context.Background())

	assert.Equal(t, domain.Histogram, view.Kind)
	assert.Equal(t, "Histogram of Traffic Volume", view.Title)
	assert.Equal(t, describe.Lookup(domain.Histogram, "traffic_volume"), view.Caption)
	assert.Equal(t, "traffic_volume", view.Selection)
	assert.Len(t, view.Marks, render.DefaultBuckets)
	assert.Empty(t, view.Error)
	assert.True(t, strings.Contains(view.SVG, "<svg"))

	for _, kind := range domain.ChartKinds() {
		c, ok := s.panel.Caption(kind)
		require.True(t, ok, kind)
		assert.Equal(t, string(kind)+"-description", c.ID)
	}
	dateCaption, _ := s.panel.Caption(domain.DateScatter)
	assert.Equal(t, describe.Lookup(domain.DateScatter, ""), dateCaption.Text)

	assert.Equal(t, []domain.EventType{domain.EventSessionStarted}, h.events.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Renders.WithLabelValues("histogram", "success")))
}

func TestDashboard_UnknownSession(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.dash.ShowTab(context.Background(), "missing", domain.Histogram)
	var notFound *errs.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDashboard_EvictsLeastRecentlyUsedSession(t *testing.T) {
	h := newHarness(t, Options{MaxSessions: 2})
	ctx := context.Background()

	first, _ := h.dash.NewSession(ctx)
	second, _ := h.dash.NewSession(ctx)
	_, err := h.dash.ShowTab(ctx, first.ID, domain.WeatherScatter) // first is now most recent
	require.NoError(t, err)
	h.dash.NewSession(ctx)

	_, err = h.dash.Session(first.ID)
	assert.NoError(t, err)
	_, err = h.dash.Session(second.ID)
	assert.Error(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionsEvicted))
}

// --- tabs and selection ---

func TestShowTab_DrawsCurrentSelection(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	_, err := h.dash.Select(ctx, s.ID, domain.TimeSeries, "month")
	require.NoError(t, err)

	view, err := h.dash.ShowTab(ctx, s.ID, domain.TimeSeries)
	require.NoError(t, err)
	assert.Equal(t, "Time Series Plot: Monthly Traffic Volume", view.Title)
	assert.Equal(t, describe.Lookup(domain.TimeSeries, "month"), view.Caption)
	assert.Equal(t, domain.TimeSeries, s.Selection().ActiveTab)

	e := h.events.last()
	assert.Equal(t, domain.EventTabShown, e.Type)
	assert.Equal(t, "month", e.Value)
}

func TestShowTab_DailyScatter(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	view, err := h.dash.ShowTab(ctx, s.ID, domain.DateScatter)
	require.NoError(t, err)
	assert.Equal(t, "Daily Traffic Volume", view.Title)
	assert.Len(t, view.Marks, 25, "100 records at 6h intervals span 25 days")
}

func TestSelect_RedrawsAndUpdatesCaption(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	view, err := h.dash.Select(ctx, s.ID, domain.Histogram, "temp")
	require.NoError(t, err)
	assert.Equal(t, "Histogram of Temperature", view.Title)
	assert.Equal(t, describe.Lookup(domain.Histogram, "temp"), view.Caption)
	assert.Equal(t, domain.Temp, s.Selection().HistogramVariable)

	stored, ok := s.View(domain.Histogram)
	require.True(t, ok)
	assert.Equal(t, view.Title, stored.Title)

	e := h.events.last()
	assert.Equal(t, domain.EventSelectionChanged, e.Type)
	assert.Equal(t, domain.Histogram, e.Chart)
	assert.Equal(t, "temp", e.Value)
}

func TestSelect_RejectsInvalidValues(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	tests := []struct {
		kind  domain.ChartKind
		value string
	}{
		{domain.WeatherScatter, "traffic_volume"},
		{domain.Histogram, "holiday_indexed"},
		{domain.TimeSeries, "week"},
		{domain.Sunburst, "anything"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.value, func(t *testing.T) {
			_, err := h.dash.Select(ctx, s.ID, tt.kind, tt.value)
			var invalid *errs.ValidationError
			assert.ErrorAs(t, err, &invalid)
		})
	}
	assert.Equal(t, DefaultSelection(), s.Selection())
}

func TestShowTab_LoadFailureShowsPlaceholder(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	h.data.mu.Lock()
	h.data.recordsErr = errs.NewLoadError("tabular", errors.New("connection refused"))
	h.data.mu.Unlock()

	view, err := h.dash.ShowTab(ctx, s.ID, domain.WeatherScatter)
	var loadErr *errs.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "The tabular dataset could not be loaded. Please try again later.", view.Error)
	assert.Empty(t, view.SVG)
	assert.Equal(t, domain.EventChartError, h.events.last().Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Renders.WithLabelValues("weather_scatter", "error")))

	// The histogram drawn earlier and the sunburst are unaffected.
	hist, ok := s.View(domain.Histogram)
	require.True(t, ok)
	assert.Empty(t, hist.Error)
	_, err = h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	assert.NoError(t, err)
}

func TestNewSession_LoadFailureStillOpensSession(t *testing.T) {
	h := newHarness(t, Options{})
	h.data.recordsErr = errs.NewLoadError("tabular", errors.New("boom"))

	s, view := h.dash.NewSession(context.Background())
	assert.NotEmpty(t, view.Error)
	_, err := h.dash.Session(s.ID)
	assert.NoError(t, err)
}

// --- sunburst ---

func TestSunburst_ClickAndHub(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	view, err := h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)
	assert.Equal(t, "Traffic", view.Title)
	assert.Len(t, view.Marks, 4)

	a := nodeIndex(t, s, "A")
	frame, err := h.dash.ClickNode(ctx, s.ID, a)
	require.NoError(t, err)
	assert.Equal(t, a, frame.Focus)
	assert.Equal(t, 0, frame.Hub)
	assert.True(t, frame.Idle)
	assert.Len(t, frame.Marks, 2)

	e := h.events.last()
	assert.Equal(t, domain.EventSunburstZoom, e.Type)
	assert.Equal(t, a, e.Node)

	frame, err = h.dash.ClickHub(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Focus)
	assert.Len(t, frame.Marks, 4)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.ZoomTransitions))
}

func TestSunburst_ClickErrors(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)

	var invalid *errs.ValidationError
	_, err := h.dash.ClickNode(ctx, s.ID, 1)
	require.ErrorAs(t, err, &invalid, "sunburst not shown yet")

	_, err = h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)

	_, err = h.dash.ClickNode(ctx, s.ID, nodeIndex(t, s, "a1"))
	assert.ErrorAs(t, err, &invalid, "leaf")

	var notFound *errs.NotFoundError
	_, err = h.dash.ClickNode(ctx, s.ID, 99)
	assert.ErrorAs(t, err, &notFound)
}

func TestSunburst_FrameAnimatesOnClock(t *testing.T) {
	h := newHarness(t, Options{ZoomDuration: 750 * time.Millisecond})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)
	_, err := h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)

	frame, err := h.dash.ClickNode(ctx, s.ID, nodeIndex(t, s, "A"))
	require.NoError(t, err)
	assert.False(t, frame.Idle)

	h.clock.Advance(375 * time.Millisecond)
	frame, err = h.dash.Frame(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, frame.Idle)

	h.clock.Advance(375 * time.Millisecond)
	frame, err = h.dash.Frame(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, frame.Idle)
	assert.Len(t, frame.Marks, 2)
}

func TestSunburst_ShowTabStartsOver(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)
	_, err := h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)
	_, err = h.dash.ClickNode(ctx, s.ID, nodeIndex(t, s, "A"))
	require.NoError(t, err)

	_, err = h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)
	assert.Equal(t, 0, s.zoom.Focus())
}

func TestSettle_IdleReturnsImmediately(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)
	_, err := h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)

	frame, err := h.dash.Settle(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, frame.Idle)
}

// --- hover ---

func TestHover_ChartMark(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, view := h.dash.NewSession(ctx)

	p, err := h.dash.Hover(ctx, s.ID, domain.Histogram, 0, 100, 100)
	require.NoError(t, err)
	assert.Nil(t, p.Frame)
	assert.Equal(t, view.Marks[0].Tooltip, p.Tooltip.Content)
	assert.Equal(t, 105, p.Tooltip.X)
	assert.Equal(t, 72, p.Tooltip.Y)

	h.clock.Advance(render.TooltipShowDuration)
	tip, err := h.dash.Tooltip(s.ID)
	require.NoError(t, err)
	assert.Equal(t, render.TooltipOpacity, tip.Opacity)

	_, err = h.dash.Leave(ctx, s.ID, domain.Histogram)
	require.NoError(t, err)
	h.clock.Advance(render.TooltipHideDuration)
	tip, _ = h.dash.Tooltip(s.ID)
	assert.Equal(t, 0.0, tip.Opacity)

	var notFound *errs.NotFoundError
	_, err = h.dash.Hover(ctx, s.ID, domain.Histogram, 999, 0, 0)
	assert.ErrorAs(t, err, &notFound)

	var invalid *errs.ValidationError
	_, err = h.dash.Hover(ctx, s.ID, domain.TimeSeries, 0, 0, 0)
	assert.ErrorAs(t, err, &invalid, "time series not drawn yet")
}

func TestMove_FollowsPointerWithoutRestartingFade(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, view := h.dash.NewSession(ctx)

	_, err := h.dash.Hover(ctx, s.ID, domain.Histogram, 0, 100, 100)
	require.NoError(t, err)
	h.clock.Advance(render.TooltipShowDuration / 2)
	before, _ := h.dash.Tooltip(s.ID)

	p, err := h.dash.Move(ctx, s.ID, domain.Histogram, 40, 60)
	require.NoError(t, err)
	assert.Equal(t, view.Marks[0].Tooltip, p.Tooltip.Content)
	assert.Equal(t, 45, p.Tooltip.X)
	assert.Equal(t, 32, p.Tooltip.Y)
	assert.Equal(t, before.Opacity, p.Tooltip.Opacity)

	h.clock.Advance(render.TooltipShowDuration / 2)
	tip, _ := h.dash.Tooltip(s.ID)
	assert.Equal(t, render.TooltipOpacity, tip.Opacity)

	var invalid *errs.ValidationError
	_, err = h.dash.Move(ctx, s.ID, domain.TimeSeries, 0, 0)
	assert.ErrorAs(t, err, &invalid, "time series not drawn yet")
	_, err = h.dash.Move(ctx, s.ID, domain.Sunburst, 0, 0)
	assert.ErrorIs(t, err, errSunburstNotShown)
	_, err = h.dash.Move(ctx, "missing", domain.Histogram, 0, 0)
	var notFound *errs.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHover_SunburstHighlightsPath(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	s, _ := h.dash.NewSession(ctx)
	view, err := h.dash.ShowTab(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)

	a2 := nodeIndex(t, s, "a2")
	p, err := h.dash.Hover(ctx, s.ID, domain.Sunburst, a2, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, "<strong>a2</strong><br>Value: 2", p.Tooltip.Content)
	assert.Equal(t, 1.0, s.zoom.Highlight(nodeIndex(t, s, "A")))
	assert.Equal(t, 0.3, s.zoom.Highlight(nodeIndex(t, s, "B")))
	require.NotNil(t, p.Frame, "the dimmed arcs are redrawn")
	assert.NotEqual(t, view.SVG, p.Frame.SVG)
	assert.True(t, p.Frame.Idle)

	p, err = h.dash.Leave(ctx, s.ID, domain.Sunburst)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.zoom.Highlight(nodeIndex(t, s, "B")))
	assert.Equal(t, -1, s.zoom.Hovered())
	require.NotNil(t, p.Frame)
	assert.Equal(t, view.SVG, p.Frame.SVG)

	p, err = h.dash.Move(ctx, s.ID, domain.Sunburst, 30, 40)
	require.NoError(t, err)
	assert.Equal(t, 35, p.Tooltip.X)
	assert.Nil(t, p.Frame)
}

// --- interactive pages ---

func TestInteractivePage(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	for _, tc := range []struct {
		kind  domain.ChartKind
		value string
	}{
		{domain.Histogram, "temp"},
		{domain.WeatherScatter, ""},
		{domain.TimeSeries, "year"},
		{domain.Sunburst, ""},
	} {
		page, err := h.dash.InteractivePage(ctx, tc.kind, tc.value)
		require.NoError(t, err, tc.kind)
		require.NotNil(t, page)
	}

	var notFound *errs.NotFoundError
	_, err := h.dash.InteractivePage(ctx, domain.DateScatter, "")
	assert.ErrorAs(t, err, &notFound)

	var invalid *errs.ValidationError
	_, err = h.dash.InteractivePage(ctx, domain.Histogram, "nope")
	assert.ErrorAs(t, err, &invalid)
}

// --- store ---

func TestSessionStore_LookupRefreshesRecency(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	st := newSessionStore(2, metrics)
	a, b, c := &Session{ID: "a"}, &Session{ID: "b"}, &Session{ID: "c"}

	assert.Nil(t, st.open(a))
	assert.Nil(t, st.open(b))
	_, ok := st.lookup("a")
	require.True(t, ok)

	closed := st.open(c)
	require.NotNil(t, closed)
	assert.Equal(t, "b", closed.ID)
	assert.Equal(t, 2, st.size())
	_, ok = st.lookup("b")
	assert.False(t, ok)

	assert.Nil(t, st.open(a), "reopening a held id closes nothing")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsEvicted))
}

func TestSessionStore_EvictsInOpenOrder(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	st := newSessionStore(1, metrics)

	for _, id := range []string{"a", "b", "c"} {
		st.open(&Session{ID: id})
	}

	_, ok := st.lookup("c")
	assert.True(t, ok)
	assert.Equal(t, 1, st.size())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsEvicted))
}

func TestOptionsAndSelection(t *testing.T) {
	assert.Len(t, Options(domain.Histogram), 5)
	assert.Len(t, Options(domain.WeatherScatter), 4)
	assert.Len(t, Options(domain.TimeSeries), 4)
	assert.Nil(t, Options(domain.Sunburst))

	sel := DefaultSelection()
	assert.Equal(t, "temp", sel.Value(domain.WeatherScatter))
	assert.Equal(t, "", sel.Value(domain.DateScatter))
}
