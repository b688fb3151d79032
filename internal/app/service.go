package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hiloActivator/internal/chart"
	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/strategy/analytics"
	"hiloActivator/internal/strategy/indicators"
)

const defaultScanConcurrency = 4

// HiloService loads klines and runs the hilo activator over them.
type HiloService struct {
	logger   ports.Logger
	market   ports.MarketDataClient
	cache    ports.KlineCache // optional
	cacheTTL time.Duration
}

// NewHiloService creates a new application service instance. cache may be nil.
func NewHiloService(
	logger ports.Logger,
	market ports.MarketDataClient,
	cache ports.KlineCache,
	cacheTTL time.Duration,
) (*HiloService, error) {
	if logger == nil || market == nil {
		return nil, fmt.Errorf("missing required dependencies for HiloService")
	}
	if cacheTTL < 0 {
		return nil, fmt.Errorf("cache TTL cannot be negative: %w", ports.ErrConfigurationError)
	}
	return &HiloService{
		logger:   logger,
		market:   market,
		cache:    cache,
		cacheTTL: cacheTTL,
	}, nil
}

// LoadKlines returns cached klines when a fresh batch exists and fetches them
// otherwise. Fetch failures and empty responses wrap ports.ErrNoData; cache
// failures are logged and do not fail the call.
func (s *HiloService) LoadKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	key := ports.KlineCacheKey{Symbol: domain.ExchangeSymbol(symbol), Interval: interval, Limit: limit}
	fields := map[string]interface{}{"symbol": key.Symbol, "interval": interval, "limit": limit}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key, s.cacheTTL)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "Kline cache lookup failed, fetching from source", mergeFields(fields, "error", err.Error()))
		case len(cached) > 0:
			s.logger.Debug(ctx, "Kline cache hit", fields)
			return cached, nil
		}
	}

	klines, err := s.market.GetKlines(ctx, key.Symbol, interval, limit)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch klines", fields)
		return nil, fmt.Errorf("load klines for %s %s failed: %w: %w", key.Symbol, interval, ports.ErrNoData, err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("load klines for %s %s failed: %w", key.Symbol, interval, ports.ErrNoData)
	}
	s.logger.Debug(ctx, "Fetched klines", mergeFields(fields, "count", len(klines)))

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, klines); err != nil {
			s.logger.Warn(ctx, "Failed to cache klines", mergeFields(fields, "error", err.Error()))
		}
	}
	return klines, nil
}

// Request describes one analysis run.
type Request struct {
	Symbol   string // BASE/QUOTE or exchange symbol
	Interval string
	Limit    int
	Hilo     indicators.HiloConfig // Period 0 selects the asset preset
	// WidthFraction scales marker widths, chart.DefaultWidthFraction when zero.
	WidthFraction float64
}

// Analysis is the result of Analyze.
type Analysis struct {
	Request Request // with the effective period filled in
	Klines  []*domain.Kline
	Series  *indicators.HiloSeries
	Markers []chart.Marker
	Levels  analytics.LevelStats
	Trend   analytics.TrendSummary
}

func (r Request) normalize() (Request, error) {
	if strings.TrimSpace(r.Symbol) == "" {
		return r, fmt.Errorf("symbol is required: %w", ports.ErrInvalidRequest)
	}
	if r.Interval == "" {
		return r, fmt.Errorf("interval is required: %w", ports.ErrInvalidRequest)
	}
	if r.Limit <= 0 {
		return r, fmt.Errorf("limit must be positive, got %d: %w", r.Limit, ports.ErrInvalidRequest)
	}
	if r.Hilo.Period == 0 {
		r.Hilo.Period = domain.PeriodFor(r.Symbol)
	}
	if r.WidthFraction <= 0 {
		r.WidthFraction = chart.DefaultWidthFraction
	}
	if err := r.Hilo.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// Analyze validates the request, loads klines and computes the hilo series with
// its draw markers and summaries.
func (s *HiloService) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	klines, err := s.LoadKlines(ctx, req.Symbol, req.Interval, req.Limit)
	if err != nil {
		return nil, err
	}

	hilo, err := indicators.NewHilo(req.Hilo)
	if err != nil {
		return nil, err
	}
	if len(klines) < hilo.RequiredDataPoints() {
		s.logger.Warn(ctx, "Not enough klines for a defined level", map[string]interface{}{
			"indicator": hilo.Name(),
			"bars":      len(klines),
			"required":  hilo.RequiredDataPoints(),
		})
	}
	series := hilo.Compute(klines)

	a := &Analysis{
		Request: req,
		Klines:  klines,
		Series:  series,
		Markers: chart.Markers(klines, series, req.WidthFraction),
		Levels:  analytics.DescribeLevels(series),
		Trend:   analytics.SummarizeTrend(series),
	}
	s.logger.Info(ctx, "Hilo computed", map[string]interface{}{
		"symbol":    domain.ExchangeSymbol(req.Symbol),
		"indicator": hilo.Name(),
		"bars":      len(klines),
		"trend":     a.Trend.Current.String(),
		"markers":   len(a.Markers),
	})
	return a, nil
}

// ScanRequest evaluates the current trend of several assets.
type ScanRequest struct {
	Tickers     []string // empty scans every preset in domain.Assets
	Interval    string
	Limit       int
	Period      int // 0 uses each asset's preset
	Shift       int
	Smoothing   indicators.MovingAverageType
	Concurrency int
}

// ScanResult is the outcome for one asset. Err is set when the asset could not
// be analyzed; the other assets are unaffected.
type ScanResult struct {
	Ticker    string
	Period    int
	Close     float64
	Trend     analytics.TrendSummary
	CloseTime time.Time
	Err       error
}

// Scan analyzes every requested ticker with bounded parallelism. Results keep the
// order of the tickers. Only cancellation of ctx fails the scan as a whole.
func (s *HiloService) Scan(ctx context.Context, req ScanRequest) ([]ScanResult, error) {
	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = make([]string, len(domain.Assets))
		for i, a := range domain.Assets {
			tickers[i] = a.Ticker
		}
	}
	limit := req.Concurrency
	if limit <= 0 {
		limit = defaultScanConcurrency
	}

	results := make([]ScanResult, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, ticker := range tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ScanResult{Ticker: ticker, Err: err}
				return nil
			}
			results[i] = s.scanOne(gctx, ticker, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("scan interrupted: %w: %w", ports.ErrContextCanceled, err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "Scan finished", map[string]interface{}{"assets": len(results), "failed": failed})
	return results, nil
}

func (s *HiloService) scanOne(ctx context.Context, ticker string, req ScanRequest) ScanResult {
	res := ScanResult{Ticker: ticker}
	a, err := s.Analyze(ctx, Request{
		Symbol:   ticker,
		Interval: req.Interval,
		Limit:    req.Limit,
		Hilo: indicators.HiloConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: req.Period},
			Shift:           req.Shift,
			Smoothing:       req.Smoothing,
		},
	})
	if err != nil {
		res.Err = err
		s.logger.Warn(ctx, "Scan skipped asset", map[string]interface{}{"ticker": ticker, "error": err.Error()})
		return res
	}

	res.Period = a.Request.Hilo.Period
	res.Trend = a.Trend
	if last := a.Klines[len(a.Klines)-1]; last != nil {
		res.Close = last.Close
		res.CloseTime = last.CloseTime
	}
	return res
}

func mergeFields(fields map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
