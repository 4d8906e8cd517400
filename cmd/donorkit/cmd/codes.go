package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var showCodes bool

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the entitlement tiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		sc, err := cfg.serviceConfig()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIER\tLABEL\tDURATION\tPRINTS\tCODES")
		for _, t := range sc.Catalog.Tiers() {
			codes := fmt.Sprint(len(t.Codes))
			if showCodes {
				codes = strings.Join(t.Codes, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Label, t.Duration, t.Quota, codes)
		}
		return w.Flush()
	},
}

func init() {
	codesCmd.Flags().BoolVar(&showCodes, "show", false, "list every code instead of a count")
}
