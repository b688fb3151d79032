package cli

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"hiloActivator/config"
	"hiloActivator/internal/adapters/binanceclient"
	"hiloActivator/internal/adapters/csvsource"
	"hiloActivator/internal/adapters/logger"
	"hiloActivator/internal/adapters/sqlite"
	"hiloActivator/internal/app"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/strategy/indicators"
)

// runtime holds the wired application for one command invocation.
type runtime struct {
	cfg     *config.Config
	logger  *logger.Logger
	service *app.HiloService
	closers []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Error(context.Background(), err, "Error closing resource")
		}
	}
}

// loadConfig reads the environment and applies flag or HILO_* overrides from v.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if v.IsSet("symbol") {
		cfg.Symbol = v.GetString("symbol")
	}
	if v.IsSet("interval") {
		cfg.Interval = v.GetString("interval")
	}
	if v.IsSet("limit") {
		cfg.Limit = v.GetInt("limit")
	}
	if v.IsSet("period") {
		cfg.Period = v.GetInt("period")
	}
	if v.IsSet("shift") {
		cfg.Shift = v.GetInt("shift")
	}
	if v.IsSet("smoothing") {
		if cfg.Smoothing, err = indicators.ParseMovingAverageType(v.GetString("smoothing")); err != nil {
			return nil, err
		}
	}
	if v.GetBool("debug") {
		cfg.LogLevel = logrus.DebugLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRuntime wires logger, market data source, cache and service.
func newRuntime(v *viper.Viper, logOut io.Writer) (*runtime, error) {
	// 1. Load Configuration
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	// 2. Initialize Logger
	appLogger := logger.NewWithWriter(logOut, cfg.LogLevel, cfg.LogFormat)
	rt := &runtime{cfg: cfg, logger: appLogger}
	ctx := context.Background()

	// 3. Market data source: a CSV file when --input is given, the exchange otherwise
	var market ports.MarketDataClient
	var cache ports.KlineCache
	if input := v.GetString("input"); input != "" {
		market = csvsource.New(input, appLogger.WithPrefix("csv"))
		appLogger.Debug(ctx, "Using CSV market data", map[string]interface{}{"path": input})
	} else {
		repo, err := sqlite.NewRepository(sqlite.Config{
			DBPath: cfg.CacheDBPath,
			Logger: appLogger.WithPrefix("cache"),
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, repo.Close)
		if n, err := repo.Purge(ctx, cfg.CacheTTL); err != nil {
			appLogger.Warn(ctx, "Failed to purge expired klines", map[string]interface{}{"error": err.Error()})
		} else if n > 0 {
			appLogger.Debug(ctx, "Purged expired kline batches", map[string]interface{}{"count": n})
		}
		cache = repo

		client, err := binanceclient.New(binanceclient.Config{
			APIKey:            cfg.APIKey,
			SecretKey:         cfg.SecretKey,
			UseTestnet:        cfg.IsTestnet,
			Logger:            appLogger.WithPrefix("binance"),
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxRetries:        cfg.MaxRetries,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		if _, err := app.CheckExchange(ctx, appLogger, client); err != nil {
			rt.Close()
			return nil, err
		}
		market = client
	}

	// 4. Initialize Application Service
	service, err := app.NewHiloService(appLogger, market, cache, cfg.CacheTTL)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.service = service
	return rt, nil
}

// request builds the analysis request for the configured symbol.
func (r *runtime) request() app.Request {
	return app.Request{
		Symbol:   r.cfg.Symbol,
		Interval: r.cfg.Interval,
		Limit:    r.cfg.Limit,
		Hilo:     r.cfg.HiloConfig(),
	}
}
