package domain

import "strings"

// Asset is a tradable pair with its preferred hilo period.
type Asset struct {
	ID     int
	Ticker string // BASE/QUOTE notation (e.g., "BTC/USDT")
	Period int
}

// DefaultPeriod is used for tickers without a preset.
const DefaultPeriod = 40

// Assets lists the preset tickers and their tuned periods.
var Assets = []Asset{
	{ID: 1, Ticker: "BTC/USDT", Period: 40},
	{ID: 2, Ticker: "ETH/USDT", Period: 23},
	{ID: 3, Ticker: "ADA/USDT", Period: 43},
	{ID: 4, Ticker: "NEO/USDT", Period: 30},
	{ID: 5, Ticker: "LINK/USDT", Period: 31},
	{ID: 6, Ticker: "MANA/USDT", Period: 52},
	{ID: 7, Ticker: "SUSHI/USDT", Period: 40},
	{ID: 8, Ticker: "ATOM/USDT", Period: 20},
	{ID: 9, Ticker: "FTM/USDT", Period: 52},
	{ID: 12, Ticker: "XRP/USDT", Period: 40},
	{ID: 13, Ticker: "SOL/USDT", Period: 38},
	{ID: 14, Ticker: "DOGE/USDT", Period: 42},
	{ID: 15, Ticker: "BNB/USDT", Period: 50},
	{ID: 16, Ticker: "LTC/USDT", Period: 33},
	{ID: 17, Ticker: "DOT/USDT", Period: 37},
	{ID: 18, Ticker: "AVAX/USDT", Period: 46},
	{ID: 20, Ticker: "MATIC/USDT", Period: 29},
	{ID: 21, Ticker: "AXS/USDT", Period: 32},
	{ID: 22, Ticker: "ALGO/USDT", Period: 27},
	{ID: 23, Ticker: "AAVE/USDT", Period: 35},
	{ID: 24, Ticker: "UNI/USDT", Period: 39},
	{ID: 25, Ticker: "FIL/USDT", Period: 34},
	{ID: 26, Ticker: "SAND/USDT", Period: 28},
	{ID: 27, Ticker: "CRV/USDT", Period: 41},
	{ID: 28, Ticker: "FTT/USDT", Period: 36},
	{ID: 29, Ticker: "VET/USDT", Period: 30},
	{ID: 30, Ticker: "THETA/USDT", Period: 31},
	{ID: 31, Ticker: "GALA/USDT", Period: 43},
}

// FindAsset looks up a preset by ticker or exchange symbol, case-insensitively.
func FindAsset(name string) (Asset, bool) {
	symbol := ExchangeSymbol(name)
	for _, a := range Assets {
		if ExchangeSymbol(a.Ticker) == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// PeriodFor returns the preset period of a ticker, or DefaultPeriod.
func PeriodFor(name string) int {
	if a, ok := FindAsset(name); ok {
		return a.Period
	}
	return DefaultPeriod
}

// ExchangeSymbol converts "btc/usdt" style tickers to "BTCUSDT".
func ExchangeSymbol(ticker string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ticker), "/", ""))
}
