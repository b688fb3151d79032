package chart

import (
	"time"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/indicators"
)

// Marker is a horizontal hilo segment centred on one kline.
type Marker struct {
	Index int
	Start time.Time
	End   time.Time
	Price float64
	Trend domain.Trend
}

// Markers maps a hilo series to draw commands. Bars without a level or trend, and
// bars whose width cannot be measured, produce no marker.
func Markers(klines []*domain.Kline, series *indicators.HiloSeries, fraction float64) []Marker {
	if series == nil {
		return nil
	}
	n := len(klines)
	if series.Len() < n {
		n = series.Len()
	}

	widths := CandleWidths(klines, fraction)
	markers := make([]Marker, 0, n)
	for i := 0; i < n; i++ {
		p := series.Points[i]
		if klines[i] == nil || !p.Level.Defined || !p.Trend.IsDefined() || widths[i] <= 0 {
			continue
		}
		half := widths[i] / 2
		markers = append(markers, Marker{
			Index: i,
			Start: klines[i].OpenTime.Add(-half),
			End:   klines[i].OpenTime.Add(half),
			Price: p.Level.Value,
			Trend: p.Trend,
		})
	}
	return markers
}
