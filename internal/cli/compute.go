package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hiloActivator/internal/utils"
)

// hilo compute --symbol ETH/USDT --interval 4h --last 20
func newComputeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "compute the hilo activator and print a summary with the latest values",
		RunE: func(cmd *cobra.Command, args []string) error {
			last, err := cmd.Flags().GetInt("last")
			if err != nil {
				return err
			}
			raw, err := cmd.Flags().GetBool("raw")
			if err != nil {
				return err
			}
			csvOut, err := cmd.Flags().GetString("csv-out")
			if err != nil {
				return err
			}

			rt, err := newRuntime(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			analysis, err := rt.service.Analyze(cmd.Context(), rt.request())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderSummary(out, analysis)
			if raw {
				renderRecent(out, analysis, 0, "raw data")
			} else {
				renderRecent(out, analysis, last, fmt.Sprintf("last %d values", last))
			}

			if csvOut != "" {
				f, err := os.Create(csvOut)
				if err != nil {
					return fmt.Errorf("can not create %s: %w", csvOut, err)
				}
				defer f.Close()
				if err := utils.WriteHiloCSV(f, analysis.Klines, analysis.Series); err != nil {
					return fmt.Errorf("can not write %s: %w", csvOut, err)
				}
				fmt.Fprintf(out, "hilo values written to %s\n", csvOut)
			}
			return nil
		},
	}

	cmd.Flags().Int("last", 10, "number of recent values to print")
	cmd.Flags().Bool("raw", false, "print every kline with its hilo value")
	cmd.Flags().String("csv-out", "", "also write every kline with its hilo value to this CSV file")
	return cmd
}
