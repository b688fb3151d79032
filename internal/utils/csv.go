package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/indicators"
)

var klineHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteKlinesToCSV writes klines to filename with a header row.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteKlines(file, klines)
}

// WriteKlines writes klines as CSV to w. Nil klines are skipped.
func WriteKlines(w io.Writer, klines []*domain.Kline) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(klineHeader); err != nil {
		return err
	}

	for _, k := range klines {
		if k == nil {
			continue
		}
		writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339Nano),
			k.CloseTime.UTC().Format(time.RFC3339Nano),
			k.Symbol,
			k.Interval,
			formatFloat(k.Open),
			formatFloat(k.High),
			formatFloat(k.Low),
			formatFloat(k.Close),
			formatFloat(k.Volume),
		})
	}
	writer.Flush()
	return writer.Error()
}

// ReadKlinesFromCSV reads a file produced by WriteKlinesToCSV.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	klines, err := ReadKlines(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return klines, nil
}

// ReadKlines parses CSV kline rows. Columns are located by header name, so extra
// columns and a different order are accepted. Times are RFC 3339 or unix milliseconds.
func ReadKlines(r io.Reader) ([]*domain.Kline, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"open_time", "open", "high", "low", "close"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		if i, ok := col[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		k := &domain.Kline{
			Symbol:   field(record, "symbol"),
			Interval: field(record, "interval"),
		}
		if k.OpenTime, err = parseTime(field(record, "open_time")); err != nil {
			return nil, fmt.Errorf("line %d: open_time: %w", line, err)
		}
		if raw := field(record, "close_time"); raw != "" {
			if k.CloseTime, err = parseTime(raw); err != nil {
				return nil, fmt.Errorf("line %d: close_time: %w", line, err)
			}
		}
		for _, f := range []struct {
			name     string
			dst      *float64
			optional bool
		}{
			{"open", &k.Open, false},
			{"high", &k.High, false},
			{"low", &k.Low, false},
			{"close", &k.Close, false},
			{"volume", &k.Volume, true},
		} {
			raw := field(record, f.name)
			if raw == "" && f.optional {
				continue
			}
			if *f.dst, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.name, err)
			}
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// WriteHiloCSV writes one row per kline with its hilo level and trend.
// Undefined levels and trends are written as empty cells.
func WriteHiloCSV(w io.Writer, klines []*domain.Kline, series *indicators.HiloSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"open_time", "open", "high", "low", "close", "volume", "hilo", "hi_level", "lo_level", "trend"}); err != nil {
		return err
	}

	for i, k := range klines {
		if k == nil {
			continue
		}
		var p indicators.HiloPoint
		if series != nil && i < series.Len() {
			p = series.Points[i]
		}
		writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339),
			formatFloat(k.Open),
			formatFloat(k.High),
			formatFloat(k.Low),
			formatFloat(k.Close),
			formatFloat(k.Volume),
			formatLevel(p.Level),
			formatLevel(p.HiLevel),
			formatLevel(p.LoLevel),
			p.Trend.String(),
		})
	}
	writer.Flush()
	return writer.Error()
}

func parseTime(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLevel(l domain.Level) string {
	if !l.Defined {
		return ""
	}
	return formatFloat(l.Value)
}
