package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hiloActivator/config"
	"hiloActivator/internal/adapters/binanceclient"
	"hiloActivator/internal/adapters/logger"
	"hiloActivator/internal/app"
	"hiloActivator/internal/domain"
	"hiloActivator/internal/utils"
)

// fetch_klines downloads a kline range into a CSV file usable with `hilo --input`.
func main() {
	days := flag.Int("days", 365, "how many days back to fetch")
	outDir := flag.String("out-dir", "data", "directory for the CSV file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	appLogger.Debug(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.APIKey,
		SecretKey:         cfg.SecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxRetries:        cfg.MaxRetries,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 4. Anchor the range on the exchange clock
	end, err := app.CheckExchange(context.Background(), appLogger, binanceClient)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Exchange is not reachable")
		log.Fatalf("FATAL: Exchange is not reachable: %v", err)
	}

	symbol := domain.ExchangeSymbol(cfg.Symbol)
	interval := cfg.Interval
	start := end.AddDate(0, 0, -*days)

	fmt.Printf("Fetching klines for %s %s from %s to %s...\n", symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	klines, err := binanceClient.GetKlinesRange(context.Background(), symbol, interval, start, end)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched klines", map[string]interface{}{"count": len(klines)})

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Error creating %s: %v", *outDir, err)
	}
	filename := filepath.Join(*outDir, fmt.Sprintf("%s_%s_%s_to_%s.csv",
		strings.ToLower(symbol), interval, start.Format("20060102"), end.Format("20060102")))
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
