package domain

import (
	"math"
	"time"
)

// Kline represents a single candlestick (OHLCV bar).
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Exchange symbol (e.g., "BTCUSDT")
	Interval  string    // Kline interval (e.g., "1d", "4h")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Highs returns the high prices of klines in order. Nil klines map to NaN.
func Highs(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		if k == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = k.High
	}
	return out
}

// Lows returns the low prices of klines in order.
func Lows(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		if k == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = k.Low
	}
	return out
}

// Closes returns the close prices of klines in order.
func Closes(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		if k == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = k.Close
	}
	return out
}
