package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hiloActivator/internal/app"
)

// hilo scan --interval 4h --tickers BTC/USDT,ETH/USDT
func newScanCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "report the current hilo trend of every preset asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, err := cmd.Flags().GetStringSlice("tickers")
			if err != nil {
				return err
			}
			concurrency, err := cmd.Flags().GetInt("concurrency")
			if err != nil {
				return err
			}

			rt, err := newRuntime(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			// a single explicit --period applies to every asset, otherwise presets are used
			results, err := rt.service.Scan(cmd.Context(), app.ScanRequest{
				Tickers:     tickers,
				Interval:    rt.cfg.Interval,
				Limit:       rt.cfg.Limit,
				Period:      rt.cfg.Period,
				Shift:       rt.cfg.Shift,
				Smoothing:   rt.cfg.Smoothing,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			renderScan(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringSlice("tickers", nil, "tickers to scan (default: every preset)")
	cmd.Flags().Int("concurrency", 4, "number of assets analyzed in parallel")
	return cmd
}
