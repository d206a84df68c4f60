package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Format selects the encoded output of a rendered chart.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// RenderStockChart renders monthly closes as a line with a dashed
// start-price reference. The line is green for a gain and red for a loss.
func RenderStockChart(series *models.StockPriceSeries, format Format) ([]byte, error) {
	if series == nil || len(series.Prices) < 2 {
		n := 0
		if series != nil {
			n = len(series.Prices)
		}
		return nil, fmt.Errorf("need at least 2 data points, got %d", n)
	}

	xValues := make([]time.Time, 0, len(series.Prices))
	closes := make([]float64, 0, len(series.Prices))
	for _, p := range series.Prices {
		ts, err := p.Time()
		if err != nil {
			return nil, err
		}
		xValues = append(xValues, ts)
		closes = append(closes, p.Close)
	}

	start, end := closes[0], closes[len(closes)-1]
	if series.Performance != nil {
		start, end = series.Performance.StartPrice, series.Performance.EndPrice
	}
	lineColor := common.ReturnColor(end - start)
	if lineColor == common.ColorGray {
		lineColor = common.ColorBlue
	}

	priceSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex(lineColor.Hex()),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: closes,
	}

	startLine := make([]float64, len(closes))
	for i := range startLine {
		startLine[i] = start
	}
	startSeries := chart.TimeSeries{
		Name: "Start",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex(common.ColorGray.Hex()),
			StrokeWidth:     1,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: startLine,
	}

	dateLayout := "Jan 06"
	if len(xValues) > 60 {
		dateLayout = "2006"
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s)", series.Ticker, series.Period),
		Width:  900,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format(dateLayout)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return common.FormatPrice(f)
				}
				return ""
			},
		},
		Series: []chart.Series{priceSeries, startSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(format.provider(), &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
