// Package cli implements the hilo command line.
package cli

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the command tree. Persistent flags are bound to a viper
// instance that also reads HILO_* environment variables.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "hilo",
		Short: "hilo activator indicator",
		Long:  "compute and chart the hilo activator stairs over exchange klines",

		// SilenceUsage is an option to silence usage when an error occurs.
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("symbol", "BTC/USDT", "the trading pair, e.g. BTC/USDT or ETHUSDT")
	flags.String("interval", "1d", "interval of the klines, e.g. 1d, 4h, 1h, 15m, 5m")
	flags.Int("limit", 120, "number of klines to load (50..1000)")
	flags.Int("period", 0, "hilo period (2..100), 0 uses the asset preset")
	flags.Int("shift", 1, "bars the hilo levels lag behind (0..10)")
	flags.String("smoothing", "EMA", "smoothing of highs and lows: SMA or EMA")
	flags.String("input", "", "read klines from a CSV file instead of the exchange")
	flags.Bool("debug", false, "debug flag")

	v.SetEnvPrefix("HILO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := v.BindPFlags(flags); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	root.AddCommand(
		newComputeCmd(v),
		newRenderCmd(v),
		newScanCmd(v),
		newAssetsCmd(),
	)
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
