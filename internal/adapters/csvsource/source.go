// Package csvsource serves klines from a CSV file written by utils.WriteKlinesToCSV.
package csvsource

import (
	"context"
	"fmt"
	"sync"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/utils"
)

// Source implements ports.MarketDataClient over a CSV file. The file is read once,
// on the first request.
type Source struct {
	path   string
	logger ports.Logger

	once   sync.Once
	klines []*domain.Kline
	err    error
}

// New creates a source for path. The file is not opened until klines are requested.
func New(path string, logger ports.Logger) *Source {
	return &Source{path: path, logger: logger}
}

func (s *Source) load(ctx context.Context) ([]*domain.Kline, error) {
	s.once.Do(func() {
		s.klines, s.err = utils.ReadKlinesFromCSV(s.path)
		if s.err == nil {
			s.logger.Debug(ctx, "Loaded klines from CSV", map[string]interface{}{"path": s.path, "count": len(s.klines)})
		}
	})
	return s.klines, s.err
}

// GetKlines returns the last limit rows matching symbol and interval. Rows without a
// symbol or interval column match anything. limit <= 0 returns every matching row.
func (s *Source) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("GetKlines failed: %w: %w", ports.ErrContextCanceled, err)
	}
	all, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetKlines failed: %w: %w", ports.ErrNoData, err)
	}

	want := domain.ExchangeSymbol(symbol)
	matched := make([]*domain.Kline, 0, len(all))
	for _, k := range all {
		if k.Symbol != "" && want != "" && domain.ExchangeSymbol(k.Symbol) != want {
			continue
		}
		if k.Interval != "" && interval != "" && k.Interval != interval {
			continue
		}
		c := *k
		if c.Symbol == "" {
			c.Symbol = want
		}
		if c.Interval == "" {
			c.Interval = interval
		}
		matched = append(matched, &c)
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("GetKlines failed: %w: no %s %s rows in %s", ports.ErrNoData, want, interval, s.path)
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}
