package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/madu12/metro-interstate-traffic-volume/internal/dashboard"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
	"github.com/madu12/metro-interstate-traffic-volume/internal/render"
)

// Dashboard is the interaction wiring the handlers drive.
type Dashboard interface {
	NewSession(ctx context.Context) (*dashboard.Session, dashboard.View)
	ShowTab(ctx context.Context, id string, kind domain.ChartKind) (dashboard.View, error)
	Select(ctx context.Context, id string, kind domain.ChartKind, value string) (dashboard.View, error)
	ClickNode(ctx context.Context, id string, node int) (dashboard.Frame, error)
	ClickHub(ctx context.Context, id string) (dashboard.Frame, error)
	Frame(ctx context.Context, id string) (dashboard.Frame, error)
	Settle(ctx context.Context, id string) (dashboard.Frame, error)
	Hover(ctx context.Context, id string, kind domain.ChartKind, index, x, y int) (dashboard.Pointer, error)
	Move(ctx context.Context, id string, kind domain.ChartKind, x, y int) (dashboard.Pointer, error)
	Leave(ctx context.Context, id string, kind domain.ChartKind) (dashboard.Pointer, error)
	Tooltip(id string) (render.TooltipState, error)
	InteractivePage(ctx context.Context, kind domain.ChartKind, value string) (render.Page, error)
}

const sessionCookie = "trafficviz_session"

type handlers struct {
	dash Dashboard
}

func newHandlers(dash Dashboard) *handlers {
	return &handlers{dash: dash}
}

func (h *handlers) sessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.createSession)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/tabs/{kind}", h.showTab)
		r.Put("/selection/{kind}", h.selectValue)
		r.Post("/sunburst/nodes/{node}/click", h.clickNode)
		r.Post("/sunburst/hub", h.clickHub)
		r.Post("/sunburst/frame", h.frame)
		r.Get("/hover/{kind}/{index}", h.hover)
		r.Put("/hover/{kind}", h.move)
		r.Delete("/hover/{kind}", h.leave)
		r.Get("/tooltip", h.tooltip)
	})
	return r
}

type sessionResponse struct {
	ID   string         `json:"id"`
	View dashboard.View `json:"view"`
}

type selectionRequest struct {
	Value string `json:"value"`
}

type pointerRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	s, view := h.dash.NewSession(r.Context())
	observability.FromContext(r.Context()).Info("session started", "session_id", s.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, View: view})
}

func (h *handlers) showTab(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	view, err := h.dash.ShowTab(r.Context(), chi.URLParam(r, "id"), kind)
	writeView(w, r, view, err)
}

func (h *handlers) selectValue(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errs.NewValidationError("request body must be JSON with a \"value\" field"))
		return
	}
	view, err := h.dash.Select(r.Context(), chi.URLParam(r, "id"), kind, req.Value)
	writeView(w, r, view, err)
}

func (h *handlers) clickNode(w http.ResponseWriter, r *http.Request) {
	node, err := intParam(r, "node")
	if err != nil {
		handleError(w, r, err)
		return
	}
	frame, err := h.dash.ClickNode(r.Context(), chi.URLParam(r, "id"), node)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (h *handlers) clickHub(w http.ResponseWriter, r *http.Request) {
	frame, err := h.dash.ClickHub(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// frame advances the sunburst animation to now, so it is a POST.
// ?settle=true runs the animation to the end on the frame ticker and holds
// the session until it has.
func (h *handlers) frame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		frame dashboard.Frame
		err   error
	)
	if settle, _ := strconv.ParseBool(r.URL.Query().Get("settle")); settle {
		frame, err = h.dash.Settle(r.Context(), id)
	} else {
		frame, err = h.dash.Frame(r.Context(), id)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (h *handlers) hover(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		handleError(w, r, err)
		return
	}
	x, _ := strconv.Atoi(r.URL.Query().Get("x"))
	y, _ := strconv.Atoi(r.URL.Query().Get("y"))

	p, err := h.dash.Hover(r.Context(), chi.URLParam(r, "id"), kind, index, x, y)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errs.NewValidationError("request body must be JSON with \"x\" and \"y\" fields"))
		return
	}
	p, err := h.dash.Move(r.Context(), chi.URLParam(r, "id"), kind, req.X, req.Y)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) leave(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	p, err := h.dash.Leave(r.Context(), chi.URLParam(r, "id"), kind)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) tooltip(w http.ResponseWriter, r *http.Request) {
	tip, err := h.dash.Tooltip(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

// interactivePage serves the standalone ECharts page. The variable (or, for
// the time series, level) query parameter picks what is plotted.
func (h *handlers) interactivePage(w http.ResponseWriter, r *http.Request) {
	kind, err := chartKind(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	q := r.URL.Query()
	value := q.Get("variable")
	if kind == domain.TimeSeries {
		value = q.Get("level")
	}

	page, err := h.dash.InteractivePage(r.Context(), kind, value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		observability.FromContext(r.Context()).Error("render interactive page", "chart", kind, "error", err)
	}
}

// writeView answers a tab or selection change. A dataset that failed to load
// still returns the view, whose error placeholder the page shows, with a 502.
func writeView(w http.ResponseWriter, r *http.Request, view dashboard.View, err error) {
	var loadErr *errs.LoadError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case errors.As(err, &loadErr) && view.Error != "":
		observability.FromContext(r.Context()).Error("dataset load failed",
			"dataset", loadErr.Dataset, "chart", view.Kind, "error", loadErr.Message)
		writeJSON(w, http.StatusBadGateway, view)
	default:
		handleError(w, r, err)
	}
}

func chartKind(r *http.Request) (domain.ChartKind, error) {
	kind, err := domain.ParseChartKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", errs.NewValidationError(err.Error())
	}
	return kind, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValidationError(fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return n, nil
}
