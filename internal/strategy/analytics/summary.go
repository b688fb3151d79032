package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/indicators"
)

// LevelStats describes the distribution of the defined hilo levels.
type LevelStats struct {
	Count int
	Mean  float64
	Std   float64 // sample standard deviation, NaN with fewer than two values
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// DescribeLevels computes count, mean, std, min, quartiles and max of the defined levels.
// Quartiles use linear interpolation between closest ranks. All statistics are NaN when
// no level is defined.
func DescribeLevels(series *indicators.HiloSeries) LevelStats {
	values := make([]float64, 0, series.Len())
	for _, l := range series.Levels() {
		if l.Defined {
			values = append(values, l.Value)
		}
	}
	return Describe(values)
}

// Describe computes descriptive statistics for values.
func Describe(values []float64) LevelStats {
	nan := math.NaN()
	s := LevelStats{Count: len(values), Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	if len(values) == 0 {
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	if len(sorted) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly at rank p*(n-1) of sorted.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// TrendSummary reports the regime history of a hilo series.
type TrendSummary struct {
	UpBars        int
	DownBars      int
	UndefinedBars int
	Flips         int // transitions between up and down
	Current       domain.Trend
	LastLevel     domain.Level
	BarsInTrend   int // consecutive bars carrying the current trend
	LastFlipIndex int // index of the bar where the current trend started, -1 if none
}

// SummarizeTrend walks the series once and counts regimes and flips.
func SummarizeTrend(series *indicators.HiloSeries) TrendSummary {
	s := TrendSummary{LastFlipIndex: -1}
	prev := domain.TrendUndefined
	for i, p := range series.Points {
		switch p.Trend {
		case domain.TrendUp:
			s.UpBars++
		case domain.TrendDown:
			s.DownBars++
		default:
			s.UndefinedBars++
		}

		if p.Trend.IsDefined() && p.Trend != prev {
			if prev.IsDefined() {
				s.Flips++
			}
			s.LastFlipIndex = i
		}
		prev = p.Trend
	}

	if last, ok := series.Last(); ok {
		s.Current = last.Trend
		s.LastLevel = last.Level
		if s.LastFlipIndex >= 0 {
			s.BarsInTrend = series.Len() - s.LastFlipIndex
		}
	}
	return s
}
