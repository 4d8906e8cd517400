package cmd

import (
	"fmt"

	"github.com/PaulFidika/donorkit/lang"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active entitlement",
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
		rec, err := svc.Status(ctx)
		if err != nil {
			return err
		}
		if statusJSON {
			if rec == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "null")
				return nil
			}
			raw, err := rec.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		}
		describe(cmd.OutOrStdout(), rec)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the stored record as JSON")
}
