package indicators

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// ParseMovingAverageType accepts "sma"/"simple" and "ema"/"exponential" in any case.
func ParseMovingAverageType(s string) (MovingAverageType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SMA", "SIMPLE":
		return SimpleMovingAverage, nil
	case "EMA", "EXPONENTIAL":
		return ExponentialMovingAverage, nil
	default:
		return "", fmt.Errorf("unsupported moving average type %q: %w", s, ports.ErrInvalidParameter)
	}
}

// Valid reports whether t is a supported moving average type.
func (t MovingAverageType) Valid() bool {
	return t == SimpleMovingAverage || t == ExponentialMovingAverage
}

// SMA returns the simple moving average of values over period.
// Entries before index period-1 are undefined, as is any window holding a NaN or ±Inf.
// A period below 1 yields an all-undefined series.
func SMA(values []float64, period int) []domain.Level {
	out := make([]domain.Level, len(values))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = domain.FiniteLevel(floats.Sum(values[i-period+1:i+1]) / float64(period))
	}
	return out
}

// EMA returns the exponential moving average of values with span period.
// It is seeded with the first finite value. Non-finite values leave their entry
// undefined and do not touch the running average.
func EMA(values []float64, period int) []domain.Level {
	out := make([]domain.Level, len(values))
	if period < 1 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	seeded := false
	ema := 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if seeded {
			ema = alpha*v + (1-alpha)*ema
		} else {
			ema, seeded = v, true
		}
		out[i] = domain.LevelOf(ema)
	}
	return out
}

// Smooth applies the moving average of type t to values.
func Smooth(t MovingAverageType, values []float64, period int) ([]domain.Level, error) {
	switch t {
	case SimpleMovingAverage:
		return SMA(values, period), nil
	case ExponentialMovingAverage:
		return EMA(values, period), nil
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s: %w", t, ports.ErrInvalidParameter)
	}
}

// ShiftedSmooth smooths values lagged by shift bars, so out[i] only depends on values[:i-shift+1].
// The first shift entries are always undefined.
func ShiftedSmooth(t MovingAverageType, values []float64, period, shift int) ([]domain.Level, error) {
	if shift < 0 {
		return nil, fmt.Errorf("shift must not be negative, got %d: %w", shift, ports.ErrInvalidParameter)
	}
	out := make([]domain.Level, len(values))
	if shift >= len(values) {
		return out, nil
	}
	smoothed, err := Smooth(t, values[:len(values)-shift], period)
	if err != nil {
		return nil, err
	}
	copy(out[shift:], smoothed)
	return out, nil
}
