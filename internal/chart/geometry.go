// Package chart turns klines and a hilo series into draw commands and PNG charts.
package chart

import (
	"sort"
	"time"

	"hiloActivator/internal/domain"
)

// DefaultWidthFraction is the share of the bar spacing a marker occupies.
const DefaultWidthFraction = 0.8

// CandleWidths returns one width per kline: the gap to the previous kline scaled by
// fraction. The first kline uses the median gap. With fewer than two klines there
// is no gap to measure and every width is zero.
func CandleWidths(klines []*domain.Kline, fraction float64) []time.Duration {
	widths := make([]time.Duration, len(klines))
	gaps := make([]time.Duration, len(klines))
	known := make([]time.Duration, 0, len(klines))
	for i := 1; i < len(klines); i++ {
		if klines[i] == nil || klines[i-1] == nil {
			continue
		}
		gaps[i] = klines[i].OpenTime.Sub(klines[i-1].OpenTime)
		known = append(known, gaps[i])
	}
	if len(known) == 0 {
		return widths
	}

	gaps[0] = medianDuration(known)
	for i, g := range gaps {
		widths[i] = time.Duration(float64(g) * fraction)
	}
	return widths
}

// MedianGap returns the median spacing between consecutive klines, or zero.
func MedianGap(klines []*domain.Kline) time.Duration {
	widths := CandleWidths(klines, 1)
	if len(widths) == 0 {
		return 0
	}
	return widths[0]
}

func medianDuration(values []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
