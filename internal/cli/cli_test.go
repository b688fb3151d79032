package cli

import (
	"bytes"
	"encoding/csv"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BINANCE_API_KEY", "BINANCE_API_SECRET", "IS_TESTNET", "SYMBOL", "INTERVAL", "LIMIT",
		"HILO_PERIOD", "HILO_SHIFT", "HILO_SMOOTHING", "HILO_SYMBOL", "HILO_INTERVAL", "HILO_LIMIT",
		"HILO_INPUT", "HILO_DEBUG", "CACHE_DB_PATH", "CACHE_TTL_SECONDS", "REQUEST_RATE_PER_SECOND",
		"MAX_RETRIES", "CHART_WIDTH", "CHART_HEIGHT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func writeInput(t *testing.T, n int) string {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]*domain.Kline, n)
	for i := range klines {
		c := 100 + 20*math.Sin(float64(i)/8)
		open := start.Add(time.Duration(i) * 24 * time.Hour)
		klines[i] = &domain.Kline{
			OpenTime: open, CloseTime: open.Add(24*time.Hour - time.Millisecond),
			Symbol: "BTCUSDT", Interval: "1d",
			Open: c - 1, High: c + 2, Low: c - 2, Close: c + 1, Volume: 500 + float64(i),
		}
	}
	path := filepath.Join(t.TempDir(), "btc.csv")
	require.NoError(t, utils.WriteKlinesToCSV(klines, path))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestComputeCmd(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 150)

	out, _, err := run(t, "compute", "--input", input, "--limit", "120", "--period", "10", "--smoothing", "sma")
	require.NoError(t, err)

	assert.Contains(t, out, "BTCUSDT 1d hilo SMA(10, shift 1)")
	assert.Contains(t, out, "current trend")
	assert.Contains(t, out, "hilo levels")
	assert.Contains(t, out, "last 10 values")
}

func TestComputeCmd_CSVOut(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 80)
	csvOut := filepath.Join(t.TempDir(), "hilo.csv")

	out, _, err := run(t, "compute", "--input", input, "--limit", "60", "--raw", "--csv-out", csvOut)
	require.NoError(t, err)
	assert.Contains(t, out, "raw data")
	assert.Contains(t, out, "hilo values written to")

	f, err := os.Open(csvOut)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 61, "header plus one row per kline")
}

func TestComputeCmd_InvalidParameters(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 60)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"shift out of range", []string{"--shift", "20"}, "HILO_SHIFT"},
		{"period out of range", []string{"--period", "1"}, "HILO_PERIOD"},
		{"unknown smoothing", []string{"--smoothing", "wma"}, "unsupported moving average type"},
		{"unknown interval", []string{"--interval", "2d"}, "INTERVAL"},
		{"limit out of range", []string{"--limit", "5"}, "LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compute", "--input", input}, tt.args...)
			_, _, err := run(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestComputeCmd_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HILO_PERIOD", "12")
	input := writeInput(t, 80)

	out, _, err := run(t, "compute", "--input", input, "--limit", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "EMA(12, shift 1)")
}

func TestRenderCmd(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 90)
	outPath := filepath.Join(t.TempDir(), "chart.png")

	out, _, err := run(t, "render", "--input", input, "--limit", "90", "--out", outPath, "--width", "640", "--height", "400")
	require.NoError(t, err)
	assert.Contains(t, out, "chart written to")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestRenderCmd_FailureLeavesNoFile(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 1)
	outPath := filepath.Join(t.TempDir(), "chart.png")

	_, _, err := run(t, "render", "--input", input, "--out", outPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNoData)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no chart file is written when rendering fails")
}

func TestScanCmd(t *testing.T) {
	clearEnv(t)
	input := writeInput(t, 120)

	out, _, err := run(t, "scan", "--input", input, "--tickers", "BTC/USDT,ETH/USDT", "--limit", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "hilo scan")
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "ETH/USDT")
	assert.Contains(t, out, "no market data available")
}

func TestAssetsCmd(t *testing.T) {
	out, _, err := run(t, "assets")
	require.NoError(t, err)
	assert.Contains(t, out, "GALA/USDT")
	assert.Contains(t, out, "BTCUSDT")
}

func TestDebugFlagLogsToStderr(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "json")
	input := writeInput(t, 60)

	_, stderr, err := run(t, "compute", "--input", input, "--limit", "60", "--debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"level":"debug"`)
}
