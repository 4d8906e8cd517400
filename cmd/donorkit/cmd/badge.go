package cmd

import (
	"fmt"
	"os"

	"github.com/PaulFidika/donorkit/badge"
	"github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/lang"
	"github.com/spf13/cobra"
)

var badgePage string

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Render the premium badge into an HTML page",
	Long: `Render the premium badge into an HTML page and print the result.

Without --page a blank document is used. Rendering is idempotent: a page that
already carries a badge ends up with exactly one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		ctx := lang.WithLanguage(cmd.Context(), cfg.Lang)

		page := badge.BlankPage()
		if badgePage != "" {
			f, err := os.Open(badgePage)
			if err != nil {
				return err
			}
			page, err = badge.NewPage(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parse %s: %w", badgePage, err)
			}
		}

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		svc, err := newService(cfg, b, cmd.OutOrStdout(), core.WithRenderer(badge.NewRenderer(page)))
		if err != nil {
			return err
		}
		if err := svc.RefreshBadge(ctx); err != nil {
			return err
		}
		out, err := page.HTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	badgeCmd.Flags().StringVarP(&badgePage, "page", "p", "", "HTML file to render into")
}
