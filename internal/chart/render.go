package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/strategy/indicators"
)

var (
	colorUp       = drawing.ColorFromHex("008000")
	colorDown     = drawing.ColorFromHex("ff0000")
	colorRising   = drawing.ColorFromHex("3d9970")
	colorFalling  = drawing.ColorFromHex("ff4136")
	colorVolume   = drawing.Color{R: 0, G: 0, B: 0, A: 128}
	pricePanelPct = 0.7
)

// TrendColor returns the marker colour of a trend. Undefined trends are never drawn.
func TrendColor(t domain.Trend) drawing.Color {
	if t == domain.TrendDown {
		return colorDown
	}
	return colorUp
}

// Options controls the rendered image.
type Options struct {
	Title         string
	Width         int
	Height        int
	WidthFraction float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1600
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.WidthFraction <= 0 {
		o.WidthFraction = DefaultWidthFraction
	}
	return o
}

// Input is what gets drawn: klines and the hilo series computed from them.
type Input struct {
	Klines []*domain.Kline
	Series *indicators.HiloSeries
}

// Title formats the default chart title.
func Title(symbol string, period int) string {
	return fmt.Sprintf("%s - Hilo Activator Stairs (Period: %d)", symbol, period)
}

// Render writes a PNG with a price panel (candles and hilo markers) above a volume panel.
func Render(w io.Writer, in Input, opts Options) error {
	opts = opts.withDefaults()
	klines := compact(in.Klines)
	if len(klines) < 2 {
		return fmt.Errorf("render needs at least two klines, got %d: %w", len(klines), ports.ErrNoData)
	}

	widths := CandleWidths(klines, opts.WidthFraction)
	var markers []Marker
	if in.Series != nil {
		markers = Markers(in.Klines, in.Series, opts.WidthFraction)
	}

	xFormatter := timeFormatter(MedianGap(klines))
	priceHeight := int(float64(opts.Height) * pricePanelPct)

	price := gochart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: priceHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{ValueFormatter: xFormatter},
		YAxis: gochart.YAxis{Name: "Price", ValueFormatter: floatFormatter},
		Series: []gochart.Series{
			&candleSeries{klines: klines, widths: widths},
			&markerSeries{markers: markers},
		},
	}

	volume := gochart.Chart{
		Width:  opts.Width,
		Height: opts.Height - priceHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 10, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis:  gochart.XAxis{ValueFormatter: xFormatter},
		YAxis:  gochart.YAxis{Name: "Volume", ValueFormatter: floatFormatter},
		Series: []gochart.Series{&volumeSeries{klines: klines, widths: widths}},
	}
	if maxVolume(klines) <= 0 {
		// go-chart rejects a zero y-range delta
		volume.YAxis.Range = &gochart.ContinuousRange{Min: 0, Max: 1}
	}

	top, err := renderImage(&price)
	if err != nil {
		return fmt.Errorf("failed to render price panel: %w", err)
	}
	bottom, err := renderImage(&volume)
	if err != nil {
		return fmt.Errorf("failed to render volume panel: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, top.Bounds().Dy()+bottom.Bounds().Dy()))
	draw.Draw(canvas, top.Bounds().Sub(top.Bounds().Min), top, top.Bounds().Min, draw.Src)
	lower := image.Rect(0, top.Bounds().Dy(), bottom.Bounds().Dx(), top.Bounds().Dy()+bottom.Bounds().Dy())
	draw.Draw(canvas, lower, bottom, bottom.Bounds().Min, draw.Src)

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

func renderImage(c *gochart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func compact(klines []*domain.Kline) []*domain.Kline {
	out := make([]*domain.Kline, 0, len(klines))
	for _, k := range klines {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

func maxVolume(klines []*domain.Kline) float64 {
	m := 0.0
	for _, k := range klines {
		if k.Volume > m {
			m = k.Volume
		}
	}
	return m
}

func floatFormatter(v interface{}) string {
	if vf, isFloat := v.(float64); isFloat {
		return fmt.Sprintf("%.2f", vf)
	}
	return ""
}

func timeFormatter(gap time.Duration) gochart.ValueFormatter {
	layout := "01-02 15:04"
	if gap >= 24*time.Hour {
		layout = "2006-01-02"
	}
	return func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return time.Unix(0, int64(vf)).UTC().Format(layout)
		}
		return ""
	}
}

func timeToFloat(t time.Time) float64 {
	return float64(t.UnixNano())
}

// point translates data coordinates into canvas pixels.
func point(box gochart.Box, xrange, yrange gochart.Range, x, y float64) (int, int) {
	return box.Left + xrange.Translate(x), box.Bottom - yrange.Translate(y)
}

func rect(r gochart.Renderer, x0, y0, x1, y1 int) {
	if x1-x0 < 1 {
		x1 = x0 + 1
	}
	if y0 == y1 {
		y1 = y0 + 1
	}
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.LineTo(x0, y0)
	r.Close()
	r.FillStroke()
}

var (
	_ gochart.Series                = &candleSeries{}
	_ gochart.BoundedValuesProvider = &candleSeries{}
	_ gochart.Series                = &markerSeries{}
	_ gochart.Series                = &volumeSeries{}
	_ gochart.BoundedValuesProvider = &volumeSeries{}
)

// candleSeries draws OHLC candles and provides the price panel ranges.
type candleSeries struct {
	klines []*domain.Kline
	widths []time.Duration
}

func (cs *candleSeries) GetName() string             { return "OHLC" }
func (cs *candleSeries) GetStyle() gochart.Style      { return gochart.Style{StrokeWidth: 1.0} }
func (cs *candleSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (cs *candleSeries) Validate() error             { return nil }
func (cs *candleSeries) Len() int                    { return len(cs.klines) }

func (cs *candleSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	k := cs.klines[index]
	return timeToFloat(k.OpenTime), k.High, k.Low
}

func (cs *candleSeries) Render(r gochart.Renderer, box gochart.Box, xrange, yrange gochart.Range, style gochart.Style) {
	for i, k := range cs.klines {
		color := colorRising
		if k.Close < k.Open {
			color = colorFalling
		}
		r.SetStrokeColor(color)
		r.SetFillColor(color)
		r.SetStrokeWidth(1)

		center := timeToFloat(k.OpenTime)
		half := float64(cs.widths[i]) / 2

		wx, wy0 := point(box, xrange, yrange, center, k.High)
		_, wy1 := point(box, xrange, yrange, center, k.Low)
		r.MoveTo(wx, wy0)
		r.LineTo(wx, wy1)
		r.Stroke()

		bx0, by0 := point(box, xrange, yrange, center-half, k.Open)
		bx1, by1 := point(box, xrange, yrange, center+half, k.Close)
		rect(r, bx0, by0, bx1, by1)
	}
}

// markerSeries draws the hilo stairs. It does not influence the axis ranges.
type markerSeries struct {
	markers []Marker
}

func (ms *markerSeries) GetName() string             { return "Hilo" }
func (ms *markerSeries) GetStyle() gochart.Style      { return gochart.Style{StrokeWidth: 2.0} }
func (ms *markerSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (ms *markerSeries) Validate() error             { return nil }

func (ms *markerSeries) Render(r gochart.Renderer, box gochart.Box, xrange, yrange gochart.Range, style gochart.Style) {
	for _, m := range ms.markers {
		r.SetStrokeColor(TrendColor(m.Trend))
		r.SetStrokeWidth(2)
		x0, y := point(box, xrange, yrange, timeToFloat(m.Start), m.Price)
		x1, _ := point(box, xrange, yrange, timeToFloat(m.End), m.Price)
		r.MoveTo(x0, y)
		r.LineTo(x1, y)
		r.Stroke()
	}
}

// volumeSeries draws one bar per kline from zero to its volume.
type volumeSeries struct {
	klines []*domain.Kline
	widths []time.Duration
}

func (vs *volumeSeries) GetName() string             { return "Volume" }
func (vs *volumeSeries) GetStyle() gochart.Style      { return gochart.Style{StrokeWidth: 1.0} }
func (vs *volumeSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (vs *volumeSeries) Validate() error             { return nil }
func (vs *volumeSeries) Len() int                    { return len(vs.klines) }

func (vs *volumeSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	k := vs.klines[index]
	return timeToFloat(k.OpenTime), 0, k.Volume
}

func (vs *volumeSeries) Render(r gochart.Renderer, box gochart.Box, xrange, yrange gochart.Range, style gochart.Style) {
	r.SetStrokeColor(colorVolume)
	r.SetFillColor(colorVolume)
	r.SetStrokeWidth(1)
	for i, k := range vs.klines {
		center := timeToFloat(k.OpenTime)
		half := float64(vs.widths[i]) / 2
		x0, y0 := point(box, xrange, yrange, center-half, 0)
		x1, y1 := point(box, xrange, yrange, center+half, k.Volume)
		rect(r, x0, y1, x1, y0)
	}
}
