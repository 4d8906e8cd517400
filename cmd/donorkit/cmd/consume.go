package cmd

import (
	"github.com/PaulFidika/donorkit/lang"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Use one print from the active entitlement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		ctx := lang.WithLanguage(cmd.Context(), cfg.Lang)
		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		svc, err := newService(cfg, b, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		// The renderer prints the refreshed badge line on success.
		_, err = svc.ConsumeRecord(ctx)
		return err
	},
}
