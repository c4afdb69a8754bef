// File: cmd/submit.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/browser"
	"github.com/sipb/gosapweb/internal/observability"
	"github.com/sipb/gosapweb/internal/rfp"
	"github.com/sipb/gosapweb/internal/store"
)

// newSubmitCmd creates and configures the `submit` command.
func newSubmitCmd() *cobra.Command {
	var headful bool

	submitCmd := &cobra.Command{
		Use:   "submit <request.yaml>",
		Short: "Submit a reimbursement RFP described by a request file",
		Long: `Submit reads a YAML request file, opens the configured browser
profile, and files the reimbursement into the portal. On success the
assigned RFP number is printed and recorded in the local journal.

A failed submission is never retried automatically; inspect the error,
check the portal, and decide.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			req, err := loadRequestFile(args[0])
			if err != nil {
				return err
			}
			if headful {
				cfg.Browser.Headless = false
			}

			session, err := browser.NewProfileStore(cfg, logger).Load(ctx)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			result, err := rfp.NewSubmitter(session, cfg, logger).Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "RFP %s created\n", result.RFPNumber)

			if cfg.Journal.Enabled {
				journal, err := store.Open(cfg.Journal.Path, logger)
				if err != nil {
					// The RFP exists either way; a broken journal must not
					// make a successful submission look failed.
					logger.Warn("Journal unavailable, submission not recorded locally", zap.Error(err))
					return nil
				}
				defer journal.Close()
				if _, err := journal.Record(ctx, result.RFPNumber, req.Payee.DisplayName,
					req.Name, req.TotalCents(), req.LineItems, len(req.Receipts)); err != nil {
					logger.Warn("Failed to journal submission", zap.Error(err))
				}
			}
			return nil
		},
	}

	submitCmd.Flags().BoolVar(&headful, "headful", false, "show the browser window while submitting")
	return submitCmd
}

func init() {
	rootCmd.AddCommand(newSubmitCmd())
}
