package domain

import (
	"math"
	"strconv"
)

// Level is a price level that may not be defined yet (warm-up, no trend).
type Level struct {
	Value   float64
	Defined bool
}

// LevelOf returns a defined level.
func LevelOf(v float64) Level {
	return Level{Value: v, Defined: true}
}

// FiniteLevel returns a defined level for finite v and an undefined one for NaN or ±Inf.
func FiniteLevel(v float64) Level {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Level{}
	}
	return LevelOf(v)
}

// String formats the level, or "-" when undefined.
func (l Level) String() string {
	if !l.Defined {
		return "-"
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64)
}

// Trend is the hilo activator regime for a bar.
type Trend int8

const (
	TrendUndefined Trend = iota
	TrendUp
	TrendDown
)

// String returns "up", "down" or an empty string for an undefined trend.
func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return ""
	}
}

// IsDefined reports whether a trend has been established.
func (t Trend) IsDefined() bool {
	return t == TrendUp || t == TrendDown
}
