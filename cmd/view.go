// File: cmd/view.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sipb/gosapweb/internal/browser"
	"github.com/sipb/gosapweb/internal/observability"
	"github.com/sipb/gosapweb/internal/rfp"
)

// newViewCmd creates and configures the `view` command.
func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <rfp-number>",
		Short: "Look up an existing RFP and print its details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			session, err := browser.NewProfileStore(cfg, logger).Load(ctx)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			details, err := rfp.NewViewer(session, cfg, logger).View(ctx, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rows := []struct{ label, value string }{
				{"RFP Number", details.RFPNumber},
				{"Name", details.Name},
				{"Type", details.Type},
				{"Payee", details.Payee},
				{"Company Code", details.CompanyCode},
				{"Payment Method", details.PaymentMethod},
				{"Inbox", details.Inbox},
			}
			for _, r := range rows {
				if r.value != "" {
					fmt.Fprintf(w, "%s:\t%s\n", r.label, r.value)
				}
			}
			for i, li := range details.LineItems {
				fmt.Fprintf(w, "Line %d:\t%s  %s  %s  %s  %s\n",
					i+1, li.ServiceDate, li.GLAccount, li.CostObject, li.Amount, li.Description)
			}
			return w.Flush()
		},
	}
}

func init() {
	rootCmd.AddCommand(newViewCmd())
}
