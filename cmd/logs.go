// File: cmd/logs.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/observability"
	"github.com/xkilldash9x/cafeposter-cli/internal/store"
)

// newLogsCmd creates the `logs` command: the posting audit trail.
func newLogsCmd(cfg *config.Config) *cobra.Command {
	var (
		account    string
		failedOnly bool
	)

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the recorded posting attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			sink := store.NewLogSink(cfg.Store.LogsDir, observability.GetLogger())
			records, err := sink.List()
			if err != nil {
				return err
			}

			// The summary always counts every attempt for the account scope;
			// --failed only narrows the table rows.
			var shown []store.Record
			total, successes := 0, 0
			for _, rec := range records {
				if account != "" && rec.AccountID != account {
					continue
				}
				total++
				if rec.Success {
					successes++
				}
				if failedOnly && rec.Success {
					continue
				}
				shown = append(shown, rec)
			}

			if total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No posting attempts recorded.")
				return nil
			}
			if len(shown) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed attempts.")
			} else {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tACCOUNT\tTITLE\tRESULT\tARTICLE")
				for _, rec := range shown {
					result := "ok"
					detail := rec.ArticleURL
					if !rec.Success {
						result = "failed"
						detail = rec.Diagnostic
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						rec.Timestamp.Format("2006-01-02 15:04:05"), rec.AccountID, rec.Title, result, detail)
				}
				w.Flush()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d attempts, %d succeeded, %d failed.\n",
				total, successes, total-successes)
			return nil
		},
	}

	logsCmd.Flags().StringVar(&account, "account", "", "Only show attempts for this account")
	logsCmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed attempts")
	return logsCmd
}
