package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	maxKlinesPerRequest = 1500
)

// Client implements the ports.ExchangeClient interface using the go-binance library.
// Every request waits on a client-side rate limiter and transient failures are retried
// with exponential backoff.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	limiter       *rate.Limiter
	maxRetries    int
	retryInterval time.Duration
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // overrides the testnet/production URL when set
	Logger     ports.Logger

	RequestsPerSecond    float64       // <= 0 disables the limiter
	MaxRetries           int           // retries after the first attempt
	RetryInitialInterval time.Duration // first backoff delay (default 500ms)
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty, only public endpoints are available")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"baseURL": client.BaseURL,
		"testnet": cfg.UseTestnet,
	})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	interval := cfg.RetryInitialInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		limiter:       rate.NewLimiter(limit, 1),
		maxRetries:    retries,
		retryInterval: interval,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1001, -1016: // Internal disconnect, service shutting down
			mappedErr = ports.ErrExchangeUnavailable
		case -1003, -1015: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1007, -1021: // Backend timeout, timestamp outside recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrInvalidSymbol
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130:
			mappedErr = ports.ErrInvalidRequest
		case -2014, -2015: // API-key format invalid, or IP/permissions
			mappedErr = ports.ErrInvalidAPIKeys
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Debug(ctx, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case isConnectionError(err):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Debug(ctx, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "EOF")
}

// do runs call under the rate limiter and retries it while the mapped error is transient.
func (c *Client) do(ctx context.Context, operation string, call func() error) error {
	attempt := 0
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(c.handleError(ctx, err, operation))
		}
		err := c.handleError(ctx, call(), operation)
		if err == nil {
			return nil
		}
		if !ports.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxElapsedTime = 0
	notify := func(err error, wait time.Duration) {
		c.logger.Warn(ctx, "Retrying exchange request", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"wait":      wait.String(),
			"error":     err.Error(),
		})
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx), notify)
	if err != nil {
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), map[string]interface{}{"attempts": attempt})
	}
	return err
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.do(ctx, op, func() error {
		return c.futuresClient.NewPingService().Do(ctx)
	})
	if err != nil {
		return err
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	var serverTimeMs int64
	err := c.do(ctx, "GetServerTime", func() (err error) {
		serverTimeMs, err = c.futuresClient.NewServerTimeService().Do(ctx)
		return err
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(serverTimeMs).UTC(), nil
}

// GetKlines retrieves the latest limit klines for the given symbol.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	op := "GetKlines"
	var binanceKlines []*futures.Kline
	err := c.do(ctx, op, func() (err error) {
		binanceKlines, err = c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.translateAll(ctx, op, binanceKlines, symbol, interval)
}

// GetKlinesRange fetches all klines for a symbol/interval between start and end time.
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	op := "GetKlinesRange"
	var allKlines []*domain.Kline
	from := start

	for {
		var page []*futures.Kline
		err := c.do(ctx, op, func() (err error) {
			page, err = c.futuresClient.NewKlinesService().
				Symbol(symbol).
				Interval(interval).
				StartTime(from.UnixMilli()).
				EndTime(end.UnixMilli()).
				Limit(maxKlinesPerRequest).
				Do(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		klines, err := c.translateAll(ctx, op, page, symbol, interval)
		if err != nil {
			return nil, err
		}
		allKlines = append(allKlines, klines...)

		from = time.UnixMilli(page[len(page)-1].CloseTime + 1)
		if from.After(end) || len(page) < maxKlinesPerRequest {
			break
		}
	}

	return allKlines, nil
}

func (c *Client) translateAll(ctx context.Context, op string, page []*futures.Kline, symbol, interval string) ([]*domain.Kline, error) {
	out := make([]*domain.Kline, 0, len(page))
	for _, bk := range page {
		dk, err := translateBinanceKline(bk, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
		}
		out = append(out, dk)
	}
	return out, nil
}

func translateBinanceKline(bk *futures.Kline, symbol, interval string) (*domain.Kline, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open price", bk.Open, new(float64)},
		{"high price", bk.High, new(float64)},
		{"low price", bk.Low, new(float64)},
		{"close price", bk.Close, new(float64)},
		{"volume", bk.Volume, new(float64)},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %w", f.name, f.raw, err)
		}
		*f.dst = v
	}

	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime).UTC(),
		CloseTime: time.UnixMilli(bk.CloseTime).UTC(),
		Symbol:    symbol,
		Interval:  interval,
		Open:      *fields[0].dst,
		High:      *fields[1].dst,
		Low:       *fields[2].dst,
		Close:     *fields[3].dst,
		Volume:    *fields[4].dst,
	}, nil
}
