package sunburst

import "math"

// FullCircle is the angular extent of the sunburst.
const FullCircle = 2 * math.Pi

const (
	// innerRing and outerRing bound the visible radial band: the hub sits
	// inside ring 1 and only two rings are drawn beyond it.
	innerRing = 1
	outerRing = 3

	// minLabelArea is the smallest angular×radial area that gets a label.
	minLabelArea = 0.03
)

// Window is an arc's angular span [X0, X1] in radians and radial span
// [Y0, Y1] in ring units.
type Window struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// ArcVisible reports whether the arc lies inside the drawn band with a
// positive angular span.
func (w Window) ArcVisible() bool {
	return w.Y1 <= outerRing && w.Y0 >= innerRing && w.X1 > w.X0
}

// LabelVisible reports whether the arc is drawn and large enough to label.
func (w Window) LabelVisible() bool {
	return w.Y1 <= outerRing && w.Y0 >= innerRing && (w.Y1-w.Y0)*(w.X1-w.X0) > minLabelArea
}

// Lerp interpolates from w toward to by t in [0, 1].
func (w Window) Lerp(to Window, t float64) Window {
	return Window{
		X0: w.X0 + (to.X0-w.X0)*t,
		X1: w.X1 + (to.X1-w.X1)*t,
		Y0: w.Y0 + (to.Y0-w.Y0)*t,
		Y1: w.Y1 + (to.Y1-w.Y1)*t,
	}
}

// LabelPlacement locates an arc label: rotate by Angle degrees (0 at twelve
// o'clock, clockwise), move out Distance pixels, and turn the text upside
// down when Flip is set so it reads left to right.
type LabelPlacement struct {
	Angle    float64
	Distance float64
	Flip     bool
}

// Label returns the label placement for the window at the given ring radius.
func (w Window) Label(radius float64) LabelPlacement {
	angle := (w.X0 + w.X1) / 2 * 180 / math.Pi
	return LabelPlacement{
		Angle:    angle,
		Distance: (w.Y0 + w.Y1) / 2 * radius,
		Flip:     angle >= 180,
	}
}

// reframe rescales d's layout window against the clicked node's layout
// window so that the clicked span becomes the full circle and its depth
// becomes the hub.
func reframe(d, p Window, depth int) Window {
	span := p.X1 - p.X0
	x := func(v float64) float64 {
		if span <= 0 {
			return 0
		}
		return clamp01((v-p.X0)/span) * FullCircle
	}
	return Window{
		X0: x(d.X0),
		X1: x(d.X1),
		Y0: math.Max(0, d.Y0-float64(depth)),
		Y1: math.Max(0, d.Y1-float64(depth)),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// EaseCubicInOut is the default tween easing, shared by every animated overlay.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
