package cli

import (
	"github.com/spf13/cobra"

	"hiloActivator/internal/domain"
)

func newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "list the preset tickers and their hilo periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderAssets(cmd.OutOrStdout(), domain.Assets)
			return nil
		},
	}
}
