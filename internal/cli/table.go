package cli

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hiloActivator/internal/app"
	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/analytics"
)

func newDefaultTableStyle() table.Style {
	style := table.Style{
		Name:    "StyleRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsDefault,
	}
	style.Format.Header = text.FormatDefault
	return style
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(newDefaultTableStyle())
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func trendCell(t domain.Trend) string {
	switch t {
	case domain.TrendUp:
		return text.FgGreen.Sprint(t.String())
	case domain.TrendDown:
		return text.FgRed.Sprint(t.String())
	}
	return "-"
}

func priceCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func levelCell(l domain.Level) string {
	if !l.Defined {
		return "-"
	}
	return priceCell(l.Value)
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func renderSummary(w io.Writer, a *app.Analysis) {
	req := a.Request
	t := newTable(w, fmt.Sprintf("%s %s hilo %s(%d, shift %d)",
		domain.ExchangeSymbol(req.Symbol), req.Interval, req.Hilo.Smoothing, req.Hilo.Period, req.Hilo.Shift))
	t.AppendRows([]table.Row{
		{"bars", len(a.Klines)},
		{"current trend", trendCell(a.Trend.Current)},
		{"last hilo", levelCell(a.Trend.LastLevel)},
		{"bars in trend", a.Trend.BarsInTrend},
		{"flips", a.Trend.Flips},
		{"up / down / undefined", fmt.Sprintf("%d / %d / %d", a.Trend.UpBars, a.Trend.DownBars, a.Trend.UndefinedBars)},
	})
	t.Render()

	renderLevelStats(w, a.Levels)
}

func renderLevelStats(w io.Writer, s analytics.LevelStats) {
	t := newTable(w, "hilo levels")
	t.AppendHeader(table.Row{"count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	t.AppendRow(table.Row{
		s.Count, priceCell(s.Mean), priceCell(s.Std), priceCell(s.Min),
		priceCell(s.Q25), priceCell(s.Q50), priceCell(s.Q75), priceCell(s.Max),
	})
	t.Render()
}

// renderRecent prints the last n bars, or every bar when n <= 0.
func renderRecent(w io.Writer, a *app.Analysis, n int, title string) {
	start := 0
	if n > 0 && len(a.Klines) > n {
		start = len(a.Klines) - n
	}

	t := newTable(w, title)
	t.AppendHeader(table.Row{"time", "open", "high", "low", "close", "volume", "hilo", "trend"})
	for i := start; i < len(a.Klines); i++ {
		k := a.Klines[i]
		if k == nil {
			continue
		}
		p := a.Series.Points[i]
		t.AppendRow(table.Row{
			timeCell(k.OpenTime), priceCell(k.Open), priceCell(k.High), priceCell(k.Low),
			priceCell(k.Close), priceCell(k.Volume), levelCell(p.Level), trendCell(p.Trend),
		})
	}
	t.Render()
}

func renderScan(w io.Writer, results []app.ScanResult) {
	t := newTable(w, "hilo scan")
	t.AppendHeader(table.Row{"ticker", "period", "close", "hilo", "trend", "bars in trend", "error"})
	for _, r := range results {
		if r.Err != nil {
			t.AppendRow(table.Row{r.Ticker, "-", "-", "-", "-", "-", r.Err.Error()})
			continue
		}
		t.AppendRow(table.Row{
			r.Ticker, r.Period, priceCell(r.Close), levelCell(r.Trend.LastLevel),
			trendCell(r.Trend.Current), r.Trend.BarsInTrend, "",
		})
	}
	t.Render()
}

func renderAssets(w io.Writer, assets []domain.Asset) {
	t := newTable(w, "presets")
	t.AppendHeader(table.Row{"id", "ticker", "symbol", "period"})
	for _, a := range assets {
		t.AppendRow(table.Row{a.ID, a.Ticker, domain.ExchangeSymbol(a.Ticker), a.Period})
	}
	t.Render()
}
