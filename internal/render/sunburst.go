package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/sunburst"
)

const (
	paletteSize   = 10
	padAngle      = 0.005
	arcStep       = math.Pi / 90
	labelFontSize = 12
)

// SunburstConfig sizes the sunburst canvas. The canvas is Width wide and
// 0.7×Width tall, the ring unit is Width/12, and the centre sits at
// (Width/2, Width/4).
type SunburstConfig struct {
	Width int
}

func (c SunburstConfig) geometry() (width, height, cx, cy int, radius float64) {
	width = c.Width
	if width <= 0 {
		width = DefaultLayout().Width
	}
	return width, width * 7 / 10, width / 2, width / 4, float64(width) / 12
}

// Sunburst draws the controller's current frame: every attached arc with its
// fill and hover opacity, the labels that fit, and the hub circle. Arcs take
// the colour of their top-level ancestor. Marks are the drawn arcs, indexed
// by arena node.
func Sunburst(c *sunburst.Controller, cfg SunburstConfig) (Chart, error) {
	width, height, cx, cy, radius := cfg.geometry()
	tree := c.Tree()

	r, err := chart.SVG(width, height)
	if err != nil {
		return Chart{}, fmt.Errorf("create sunburst canvas: %w", err)
	}

	colors := topLevelColors(tree)
	var marks []Mark
	for i := sunburst.Root + 1; i < tree.Len(); i++ {
		if !c.ArcDrawn(i) {
			continue
		}
		w := c.Current(i)
		alpha := c.FillOpacity(i) * c.Highlight(i)
		drawArc(r, cx, cy, w, radius, colors[tree.TopLevel(i)].WithAlpha(uint8(math.Round(alpha*255))))
		marks = append(marks, Mark{
			Index:   i,
			X:       (w.X0 + w.X1) / 2,
			Y:       (w.Y0 + w.Y1) / 2,
			Tooltip: tree.Tooltip(i),
		})
	}

	if font, err := chart.GetDefaultFont(); err == nil {
		r.SetFont(font)
		r.SetFontSize(labelFontSize)
		for i := sunburst.Root + 1; i < tree.Len(); i++ {
			if !c.LabelDrawn(i) {
				continue
			}
			if op := c.LabelOpacity(i); op > 0 {
				drawLabel(r, cx, cy, c.Current(i).Label(radius), tree.Nodes[i].Name, op)
			}
		}
	}

	r.SetFillColor(drawing.ColorTransparent)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.Circle(radius, cx, cy)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return Chart{}, fmt.Errorf("render sunburst: %w", err)
	}
	return Chart{Kind: domain.Sunburst, Title: tree.Nodes[sunburst.Root].Name, SVG: buf.Bytes(), Marks: marks}, nil
}

// drawArc fills the annular sector of w as a polygon sampled every arcStep
// radians. Angles run clockwise from twelve o'clock.
func drawArc(r chart.Renderer, cx, cy int, w sunburst.Window, radius float64, fill drawing.Color) {
	pad := math.Min((w.X1-w.X0)/2, padAngle) / 2
	a0, a1 := w.X0+pad, w.X1-pad
	inner := w.Y0 * radius
	outer := math.Max(inner, w.Y1*radius-1)
	steps := max(1, int(math.Ceil((a1-a0)/arcStep)))

	point := func(rad, a float64) (int, int) {
		return cx + int(math.Round(rad*math.Sin(a))), cy - int(math.Round(rad*math.Cos(a)))
	}
	angle := func(s int) float64 {
		return a0 + (a1-a0)*float64(s)/float64(steps)
	}

	r.SetFillColor(fill)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.MoveTo(point(outer, a0))
	for s := 1; s <= steps; s++ {
		r.LineTo(point(outer, angle(s)))
	}
	for s := steps; s >= 0; s-- {
		r.LineTo(point(inner, angle(s)))
	}
	r.Close()
	r.Fill()
}

// drawLabel centres text on the label anchor, rotated to follow the arc and
// flipped on the left half so it reads left to right.
func drawLabel(r chart.Renderer, cx, cy int, p sunburst.LabelPlacement, name string, opacity float64) {
	theta := p.Angle * math.Pi / 180
	x := float64(cx) + p.Distance*math.Sin(theta)
	y := float64(cy) - p.Distance*math.Cos(theta)

	rot := p.Angle - 90
	if p.Flip {
		rot += 180
	}
	phi := rot * math.Pi / 180

	body := html.EscapeString(name)
	box := r.MeasureText(body)
	halfW := float64(box.Width()) / 2
	dy := 0.35 * labelFontSize
	sx := x - halfW*math.Cos(phi) - dy*math.Sin(phi)
	sy := y - halfW*math.Sin(phi) + dy*math.Cos(phi)

	r.SetFontColor(drawing.ColorBlack.WithAlpha(uint8(math.Round(opacity * 255))))
	r.SetTextRotation(phi)
	r.Text(body, int(math.Round(sx)), int(math.Round(sy)))
	r.ClearTextRotation()
}

// topLevelColors assigns each root child a palette colour by name in sibling
// order, cycling after paletteSize names. Entry -1 (the root) is neutral.
func topLevelColors(tree *sunburst.Tree) map[int]drawing.Color {
	palette := Rainbow(paletteSize)
	colors := map[int]drawing.Color{-1: drawing.ColorBlack}
	byName := make(map[string]int)
	for _, c := range tree.Nodes[sunburst.Root].Children {
		name := tree.Nodes[c].Name
		idx, ok := byName[name]
		if !ok {
			idx = len(byName)
			byName[name] = idx
		}
		colors[c] = palette[idx%len(palette)]
	}
	return colors
}

// Rainbow samples n evenly spaced colours from the cubehelix rainbow, from
// t=0 to t=1 inclusive.
func Rainbow(n int) []drawing.Color {
	out := make([]drawing.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = rainbowAt(t)
	}
	return out
}

func rainbowAt(t float64) drawing.Color {
	if t < 0 || t > 1 {
		t -= math.Floor(t)
	}
	ts := math.Abs(t - 0.5)
	return cubehelix(360*t-100, 1.5-1.5*ts, 0.8-0.9*ts)
}

// cubehelix converts a cubehelix (hue degrees, saturation, lightness) colour
// to RGB.
func cubehelix(h, s, l float64) drawing.Color {
	h = (h + 120) * math.Pi / 180
	a := s * l * (1 - l)
	cosh, sinh := math.Cos(h), math.Sin(h)
	return drawing.Color{
		R: channel(l + a*(-0.14861*cosh+1.78277*sinh)),
		G: channel(l + a*(-0.29227*cosh-0.90649*sinh)),
		B: channel(l + a*(1.97294*cosh)),
		A: 255,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}
