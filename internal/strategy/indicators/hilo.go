package indicators

import (
	"fmt"
	"math"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
)

// HiloConfig holds the hilo activator parameters.
type HiloConfig struct {
	IndicatorConfig
	Shift     int               // bars the high/low smoothing lags behind the current bar
	Smoothing MovingAverageType // SMA or EMA
}

// Validate rejects parameters the engine cannot run with.
func (c HiloConfig) Validate() error {
	if c.Period < 2 {
		return fmt.Errorf("hilo period must be at least 2, got %d: %w", c.Period, ports.ErrInvalidParameter)
	}
	if c.Shift < 0 {
		return fmt.Errorf("hilo shift must not be negative, got %d: %w", c.Shift, ports.ErrInvalidParameter)
	}
	if !c.Smoothing.Valid() {
		return fmt.Errorf("unsupported hilo smoothing %q: %w", c.Smoothing, ports.ErrInvalidParameter)
	}
	return nil
}

// WarmUp is the number of leading bars that never carry a level.
func (c HiloConfig) WarmUp() int {
	return c.Period + c.Shift - 1
}

// HiloPoint is the indicator output for one bar.
type HiloPoint struct {
	Level   domain.Level // reference level drawn for the bar
	Trend   domain.Trend
	HiLevel domain.Level // smoothed, shifted highs
	LoLevel domain.Level // smoothed, shifted lows
}

// HiloSeries is aligned with the klines it was computed from.
type HiloSeries struct {
	Config HiloConfig
	Points []HiloPoint
}

// Len returns the number of points.
func (s *HiloSeries) Len() int {
	return len(s.Points)
}

// Last returns the final point, if any.
func (s *HiloSeries) Last() (HiloPoint, bool) {
	if len(s.Points) == 0 {
		return HiloPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// FirstTrendIndex returns the index of the first bar with a defined trend, or -1.
func (s *HiloSeries) FirstTrendIndex() int {
	for i, p := range s.Points {
		if p.Trend.IsDefined() {
			return i
		}
	}
	return -1
}

// Levels returns the reference level of every point.
func (s *HiloSeries) Levels() []domain.Level {
	out := make([]domain.Level, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Level
	}
	return out
}

// Hilo implements the hilo activator ("stairs" variant).
//
// For each bar with both smoothed levels defined:
//   - close above the high level switches the trend up and draws the low level,
//   - close below the low level switches the trend down and draws the high level,
//   - anything in between keeps the previous trend and draws the matching level.
//
// A bar in the ambiguous zone with no previous trend stays undefined. A bar whose
// close or levels are not finite is left undefined and does not change the carried
// trend. The EMA is seeded with the first shifted value and levels are reported
// only after Period+Shift-1 bars for both smoothing types.
type Hilo struct {
	config HiloConfig
}

// NewHilo creates a hilo activator after validating its configuration.
func NewHilo(config HiloConfig) (*Hilo, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Hilo{config: config}, nil
}

// Name returns the name of the indicator
func (h *Hilo) Name() string {
	return fmt.Sprintf("HILO_%s_%d_%d", h.config.Smoothing, h.config.Period, h.config.Shift)
}

// Config returns the indicator parameters.
func (h *Hilo) Config() HiloConfig {
	return h.config
}

// RequiredDataPoints returns the number of klines needed before levels are defined.
func (h *Hilo) RequiredDataPoints() int {
	return h.config.Period + h.config.Shift
}

// Compute recomputes the full series from klines. It never fails: short or empty
// input yields points that are all undefined.
func (h *Hilo) Compute(klines []*domain.Kline) *HiloSeries {
	series := &HiloSeries{Config: h.config, Points: make([]HiloPoint, len(klines))}
	if len(klines) == 0 {
		return series
	}

	// the configuration was validated in NewHilo, so smoothing cannot fail here
	hi, _ := ShiftedSmooth(h.config.Smoothing, domain.Highs(klines), h.config.Period, h.config.Shift)
	lo, _ := ShiftedSmooth(h.config.Smoothing, domain.Lows(klines), h.config.Period, h.config.Shift)
	closes := domain.Closes(klines)

	trend := domain.TrendUndefined
	for i := h.config.WarmUp(); i < len(klines); i++ {
		if !hi[i].Defined || !lo[i].Defined || math.IsNaN(closes[i]) || math.IsInf(closes[i], 0) {
			continue
		}
		p := HiloPoint{HiLevel: hi[i], LoLevel: lo[i]}

		switch {
		case closes[i] > hi[i].Value:
			trend = domain.TrendUp
		case closes[i] < lo[i].Value:
			trend = domain.TrendDown
		}

		p.Trend = trend
		switch trend {
		case domain.TrendUp:
			p.Level = lo[i]
		case domain.TrendDown:
			p.Level = hi[i]
		}
		series.Points[i] = p
	}
	return series
}

// ComputeHilo validates config and computes the series in one step.
func ComputeHilo(klines []*domain.Kline, config HiloConfig) (*HiloSeries, error) {
	h, err := NewHilo(config)
	if err != nil {
		return nil, err
	}
	return h.Compute(klines), nil
}
