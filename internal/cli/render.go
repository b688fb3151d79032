package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hiloActivator/internal/chart"
	"hiloActivator/internal/domain"
)

// hilo render --symbol SOL/USDT --out sol.png
func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render the candlestick chart with the hilo stairs to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			width, err := cmd.Flags().GetInt("width")
			if err != nil {
				return err
			}
			height, err := cmd.Flags().GetInt("height")
			if err != nil {
				return err
			}

			rt, err := newRuntime(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if width <= 0 {
				width = rt.cfg.ChartWidth
			}
			if height <= 0 {
				height = rt.cfg.ChartHeight
			}
			if outPath == "" {
				outPath = strings.ToLower(domain.ExchangeSymbol(rt.cfg.Symbol)) + "_hilo.png"
			}

			analysis, err := rt.service.Analyze(cmd.Context(), rt.request())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			err = chart.Render(&buf, chart.Input{Klines: analysis.Klines, Series: analysis.Series}, chart.Options{
				Title:         chart.Title(rt.cfg.Symbol, analysis.Request.Hilo.Period),
				Width:         width,
				Height:        height,
				WidthFraction: analysis.Request.WidthFraction,
			})
			if err != nil {
				return err
			}
			// written only after a successful render, so a failure leaves no partial file
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("can not write %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().String("out", "", "output PNG path (default <symbol>_hilo.png)")
	cmd.Flags().Int("width", 0, "image width in pixels (default CHART_WIDTH)")
	cmd.Flags().Int("height", 0, "image height in pixels (default CHART_HEIGHT)")
	return cmd
}
