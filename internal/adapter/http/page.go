package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/madu12/metro-interstate-traffic-volume/internal/dashboard"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

var tabLabels = map[domain.ChartKind]string{
	domain.Histogram:      "Histogram",
	domain.WeatherScatter: "Weather Scatter",
	domain.DateScatter:    "Daily Scatter",
	domain.TimeSeries:     "Time Series",
	domain.Sunburst:       "Sunburst",
}

type pageTab struct {
	Kind        domain.ChartKind
	Label       string
	ContainerID string
	Options     []dashboard.Option
	Selected    string
	Active      bool
}

type pageData struct {
	SessionID string
	Tabs      []pageTab
	Initial   dashboard.View
	// InitialSVG is drawn by the renderer, never from request input.
	InitialSVG template.HTML
}

// page opens a new session and serves the chart page with the histogram tab
// already drawn.
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	s, view := h.dash.NewSession(r.Context())
	sel := s.Selection()

	data := pageData{
		SessionID:  s.ID,
		Initial:    view,
		InitialSVG: template.HTML(view.SVG), //nolint:gosec // renderer output
	}
	for _, kind := range domain.ChartKinds() {
		data.Tabs = append(data.Tabs, pageTab{
			Kind:        kind,
			Label:       tabLabels[kind],
			ContainerID: kind.ContainerID(),
			Options:     dashboard.Options(kind),
			Selected:    sel.Value(kind),
			Active:      kind == sel.ActiveTab,
		})
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		observability.FromContext(r.Context()).Error("render page", "error", err)
	}
}
