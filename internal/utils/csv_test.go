package utils

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/indicators"
)

func testKlines() []*domain.Kline {
	open := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*domain.Kline{
		{OpenTime: open, CloseTime: open.Add(24*time.Hour - time.Millisecond), Symbol: "BTCUSDT", Interval: "1d",
			Open: 42000.5, High: 43000, Low: 41000.25, Close: 42500, Volume: 1234.5},
		{OpenTime: open.Add(24 * time.Hour), CloseTime: open.Add(48*time.Hour - time.Millisecond), Symbol: "BTCUSDT", Interval: "1d",
			Open: 42500, High: 44000, Low: 42000, Close: 43900, Volume: 999},
	}
}

func TestWriteAndReadKlinesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klines.csv")
	want := testKlines()

	require.NoError(t, WriteKlinesToCSV(want, path))
	got, err := ReadKlinesFromCSV(path)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.True(t, want[i].OpenTime.Equal(got[i].OpenTime))
		assert.True(t, want[i].CloseTime.Equal(got[i].CloseTime), "close time keeps milliseconds")
		assert.Equal(t, want[i].Symbol, got[i].Symbol)
		assert.Equal(t, want[i].Interval, got[i].Interval)
		assert.Equal(t, want[i].Open, got[i].Open)
		assert.Equal(t, want[i].High, got[i].High)
		assert.Equal(t, want[i].Low, got[i].Low)
		assert.Equal(t, want[i].Close, got[i].Close)
		assert.Equal(t, want[i].Volume, got[i].Volume)
	}
}

func TestReadKlines(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{
			name:  "empty input",
			input: "",
			want:  0,
		},
		{
			name:  "reordered columns and unix millis",
			input: "close,open_time,high,low,open\n105,1704067200000,110,90,100\n",
			want:  1,
		},
		{
			name:    "missing column",
			input:   "open_time,open,high,close\n1704067200000,1,2,3\n",
			wantErr: `missing column "low"`,
		},
		{
			name:    "bad number",
			input:   "open_time,open,high,low,close\n1704067200000,1,2,x,3\n",
			wantErr: "line 2: low",
		},
		{
			name:    "bad time",
			input:   "open_time,open,high,low,close\nyesterday,1,2,1,3\n",
			wantErr: "line 2: open_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadKlines(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestReadKlines_UnixMillis(t *testing.T) {
	got, err := ReadKlines(strings.NewReader("open_time,open,high,low,close\n1704067200000,100,110,90,105\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].OpenTime)
	assert.Zero(t, got[0].Volume)
}

func TestWriteHiloCSV(t *testing.T) {
	klines := testKlines()
	series := &indicators.HiloSeries{Points: []indicators.HiloPoint{
		{},
		{Level: domain.LevelOf(42000), Trend: domain.TrendUp, HiLevel: domain.LevelOf(43500), LoLevel: domain.LevelOf(42000)},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteHiloCSV(&buf, klines, series))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "hilo", rows[0][6])
	assert.Equal(t, []string{"", "", "", ""}, rows[1][6:])
	assert.Equal(t, []string{"42000", "43500", "42000", "up"}, rows[2][6:])
}
