// File: cmd/journal.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sipb/gosapweb/internal/observability"
	"github.com/sipb/gosapweb/internal/store"
)

// newJournalCmd creates the `journal` command, listing locally recorded
// submissions without touching the portal.
func newJournalCmd() *cobra.Command {
	var limit int

	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "List locally recorded submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal is disabled in the configuration")
			}
			j, err := store.Open(cfg.Journal.Path, observability.GetLogger())
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no submissions recorded")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUBMITTED\tRFP\tPAYEE\tNAME\tTOTAL\tRECEIPTS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d.%02d\t%d\n",
					e.SubmittedAt.Local().Format("2006-01-02 15:04"),
					e.RFPNumber, e.PayeeName, e.RequestName,
					e.TotalCents/100, e.TotalCents%100, e.Receipts)
			}
			return w.Flush()
		},
	}

	journalCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to list")
	return journalCmd
}

func init() {
	rootCmd.AddCommand(newJournalCmd())
}
