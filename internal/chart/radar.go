// Package chart computes chart geometry and renders SVG/PNG charts.
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Point is a position in screen coordinates (y grows downward).
type Point struct {
	X float64
	Y float64
}

// RingFractions are the grid rings drawn behind a radar.
var RingFractions = []float64{0.25, 0.5, 0.75, 1}

// AxisAngle is the screen angle of axis index out of axes. Axis 0 points
// straight up and later axes follow clockwise.
func AxisAngle(index, axes int) float64 {
	if axes <= 0 {
		return -math.Pi / 2
	}
	return -math.Pi/2 + 2*math.Pi*float64(index)/float64(axes)
}

// RadarPoint places value on axis index. The distance from center is
// radius * value/maxValue, with the ratio clamped to [0, 1].
func RadarPoint(index, axes int, value, maxValue, radius float64, center Point) Point {
	frac := 0.0
	if maxValue > 0 && !math.IsNaN(value) {
		frac = math.Max(0, math.Min(1, value/maxValue))
	}
	angle := AxisAngle(index, axes)
	return Point{
		X: center.X + radius*frac*math.Cos(angle),
		Y: center.Y + radius*frac*math.Sin(angle),
	}
}

// Axis is one spoke of a radar.
type Axis struct {
	Angle float64
	End   Point
	Label Point
}

// RadarGeometry is everything needed to draw one radar series.
type RadarGeometry struct {
	Center  Point
	Radius  float64
	Axes    []Axis
	Rings   [][]Point
	Polygon []Point
	Missing []bool
}

// labelMargin is the share of the half-size reserved for axis labels.
const labelMargin = 0.22

// Radar computes the geometry for values inside a size x size square.
// A nil value is drawn at the center and flagged in Missing.
func Radar(values []*float64, maxValue float64, size int) RadarGeometry {
	n := len(values)
	half := float64(size) / 2
	g := RadarGeometry{
		Center:  Point{X: half, Y: half},
		Radius:  half * (1 - labelMargin),
		Polygon: make([]Point, n),
		Missing: make([]bool, n),
	}

	for i := 0; i < n; i++ {
		g.Axes = append(g.Axes, Axis{
			Angle: AxisAngle(i, n),
			End:   RadarPoint(i, n, 1, 1, g.Radius, g.Center),
			Label: RadarPoint(i, n, 1, 1, g.Radius+half*labelMargin*0.55, g.Center),
		})
	}
	for _, f := range RingFractions {
		ring := make([]Point, n)
		for i := range ring {
			ring[i] = RadarPoint(i, n, f, 1, g.Radius, g.Center)
		}
		g.Rings = append(g.Rings, ring)
	}
	for i, v := range values {
		if v == nil {
			g.Polygon[i] = g.Center
			g.Missing[i] = true
			continue
		}
		g.Polygon[i] = RadarPoint(i, n, *v, maxValue, g.Radius, g.Center)
	}
	return g
}

// Series is one company drawn on a radar.
type Series struct {
	Name   string
	Values []*float64
	Color  string // hex, no leading #
}

// SubIndexLabels are the radar axis labels in canonical order.
func SubIndexLabels() []string {
	var labels []string
	for _, s := range models.SubIndices {
		labels = append(labels, s.Label())
	}
	return labels
}

// CompanySeries builds the four-axis sub-index series for a company.
func CompanySeries(c *models.CompanyScore, color string) Series {
	var values []*float64
	for _, s := range c.SubIndexScores() {
		values = append(values, s.Score)
	}
	if color == "" {
		color = common.ScoreColor(c.RaymondsIndex).Hex()
	}
	return Series{Name: c.CompanyName, Values: values, Color: color}
}

// ComparePalette colours overlaid series in selection order.
var ComparePalette = []string{"2563eb", "dc2626", "059669", "d97706", "7c3aed", "0891b2"}

// RenderRadarSVG draws rings, spokes, labels and one filled polygon per series.
func RenderRadarSVG(size int, labels []string, series ...Series) ([]byte, error) {
	return renderRadar(chart.SVG, size, labels, series)
}

// RenderRadarPNG is RenderRadarSVG rasterised.
func RenderRadarPNG(size int, labels []string, series ...Series) ([]byte, error) {
	return renderRadar(chart.PNG, size, labels, series)
}

func renderRadar(provider chart.RendererProvider, size int, labels []string, series []Series) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("radar size must be positive, got %d", size)
	}
	if len(labels) < 3 {
		return nil, fmt.Errorf("radar needs at least 3 axes, got %d", len(labels))
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return nil, fmt.Errorf("series %q has %d values for %d axes", s.Name, len(s.Values), len(labels))
		}
	}

	r, err := provider(size, size)
	if err != nil {
		return nil, fmt.Errorf("renderer init failed: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("font load failed: %w", err)
	}

	base := Radar(make([]*float64, len(labels)), 100, size)
	grid := drawing.ColorFromHex("e5e7eb")

	// rings
	for _, ring := range base.Rings {
		r.ResetStyle()
		r.SetStrokeColor(grid)
		r.SetStrokeWidth(1)
		polygon(r, ring)
		r.Stroke()
	}

	// spokes
	for _, axis := range base.Axes {
		r.ResetStyle()
		r.SetStrokeColor(grid)
		r.SetStrokeWidth(1)
		r.MoveTo(px(base.Center.X), px(base.Center.Y))
		r.LineTo(px(axis.End.X), px(axis.End.Y))
		r.Stroke()
	}

	for _, s := range series {
		g := Radar(s.Values, 100, size)
		color := drawing.ColorFromHex(s.Color)
		r.ResetStyle()
		r.SetStrokeColor(color)
		r.SetFillColor(color.WithAlpha(64))
		r.SetStrokeWidth(2)
		polygon(r, g.Polygon)
		r.FillStroke()
	}

	r.ResetStyle()
	r.SetFont(font)
	r.SetFontColor(drawing.ColorFromHex("374151"))
	r.SetFontSize(float64(size) / 32)
	for i, axis := range base.Axes {
		box := r.MeasureText(labels[i])
		x := axis.Label.X - float64(box.Width())/2
		y := axis.Label.Y + float64(box.Height())/2
		r.Text(labels[i], px(x), px(y))
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func polygon(r chart.Renderer, pts []Point) {
	if len(pts) == 0 {
		return
	}
	r.MoveTo(px(pts[0].X), px(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(px(p.X), px(p.Y))
	}
	r.Close()
}

func px(v float64) int {
	return int(math.Round(v))
}
