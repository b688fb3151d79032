package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func klinesAt(offsets ...time.Duration) []*domain.Kline {
	out := make([]*domain.Kline, len(offsets))
	for i, off := range offsets {
		out[i] = &domain.Kline{
			OpenTime: t0.Add(off),
			Open:     100, High: 110, Low: 90, Close: 105, Volume: 10,
		}
	}
	return out
}

func TestCandleWidths(t *testing.T) {
	h := time.Hour
	tests := []struct {
		name     string
		klines   []*domain.Kline
		fraction float64
		want     []time.Duration
	}{
		{
			name:     "empty",
			klines:   nil,
			fraction: 0.8,
			want:     []time.Duration{},
		},
		{
			name:     "single kline has no gap",
			klines:   klinesAt(0),
			fraction: 0.8,
			want:     []time.Duration{0},
		},
		{
			name:     "regular spacing",
			klines:   klinesAt(0, 24*h, 48*h, 72*h),
			fraction: 0.8,
			want: []time.Duration{
				time.Duration(0.8 * float64(24*h)),
				time.Duration(0.8 * float64(24*h)),
				time.Duration(0.8 * float64(24*h)),
				time.Duration(0.8 * float64(24*h)),
			},
		},
		{
			name:     "first bar uses median of an odd gap count",
			klines:   klinesAt(0, h, 3*h, 8*h),
			fraction: 1,
			want:     []time.Duration{2 * h, h, 2 * h, 5 * h},
		},
		{
			name:     "first bar uses mean of middle gaps for an even count",
			klines:   klinesAt(0, h, 4*h),
			fraction: 1,
			want:     []time.Duration{2*h + 30*time.Minute, h, 3 * h},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandleWidths(tt.klines, tt.fraction)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i], "width %d", i)
			}
		})
	}
}

func TestCandleWidths_NilKlines(t *testing.T) {
	klines := klinesAt(0, time.Hour, 2*time.Hour)
	klines[1] = nil

	assert.NotPanics(t, func() {
		widths := CandleWidths(klines, 1)
		assert.Len(t, widths, 3)
		assert.Zero(t, widths[1])
		assert.Zero(t, widths[2])
	})
}

func TestMedianGap(t *testing.T) {
	assert.Zero(t, MedianGap(nil))
	assert.Zero(t, MedianGap(klinesAt(0)))
	assert.Equal(t, 4*time.Hour, MedianGap(klinesAt(0, 4*time.Hour, 8*time.Hour, 20*time.Hour)))
}
