package cmd

import (
	"errors"

	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/PaulFidika/donorkit/lang"
	"github.com/spf13/cobra"
)

var redeemCmd = &cobra.Command{
	Use:     "redeem CODE",
	Aliases: []string{"activate"},
	Short:   "Redeem a donor code",
	Args:    cobra.ExactArgs(1),
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
		_, err = svc.Redeem(ctx, args[0])
		if errors.Is(err, entitlements.ErrInvalidCode) {
			return errReported
		}
		return err
	},
}
