// File: cmd/login.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cafeposter-cli/internal/browser"
	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/observability"
	"github.com/xkilldash9x/cafeposter-cli/internal/session"
	"github.com/xkilldash9x/cafeposter-cli/internal/store"
)

// launcherAdapter bridges the concrete browser launcher to the registry's
// interface; the concrete session pointer becomes an opaque handle.
type launcherAdapter struct {
	launcher *browser.Launcher
}

func (a launcherAdapter) Launch(ctx context.Context, accountID, secret string, ordinal int) (session.Handle, error) {
	s, err := a.launcher.Launch(ctx, accountID, secret, ordinal)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// harvesterAdapter narrows a registry handle back to the concrete session
// the cookie harvester operates on.
type harvesterAdapter struct {
	harvester *browser.Harvester
}

func (a harvesterAdapter) Harvest(ctx context.Context, h session.Handle) (map[string]string, error) {
	s, ok := h.(*browser.Session)
	if !ok {
		return nil, fmt.Errorf("unexpected handle type %T", h)
	}
	return a.harvester.Harvest(ctx, s)
}

// newLoginCmd creates the `login` command: it launches one browser per
// stored account and then drives an interactive confirmation loop until the
// operator has finished or abandoned every login.
func newLoginCmd(cfg *config.Config) *cobra.Command {
	var only []string

	loginCmd := &cobra.Command{
		Use:   "login [account ...]",
		Short: "Open login windows for the stored accounts and harvest their sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// The browser settings are only enforced here; the other commands
			// never spawn a process.
			if err := cfg.Validate(); err != nil {
				return err
			}

			creds := store.NewCredentials(cfg.Store.CredentialsFile, logger)
			entries, err := creds.Load()
			if err != nil {
				return err
			}
			accounts := selectAccounts(entries, append(args, only...))
			if len(accounts) == 0 {
				return fmt.Errorf("no matching accounts; add some with `cafeposter accounts add`")
			}

			sessions := store.NewSessions(cfg.Store.SessionsDir, logger)
			registry := session.NewRegistry(
				launcherAdapter{launcher: browser.NewLauncher(cfg.Browser, logger)},
				harvesterAdapter{harvester: browser.NewHarvester(logger)},
				logger,
			)

			registry.StartBatch(ctx, accounts)
			printStatus(cmd, registry)
			if registry.LiveCount() == 0 {
				return fmt.Errorf("no browser came up; check browser.chrome_path and the logs")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\nFinish each login in its window, then confirm it here.")
			fmt.Fprintln(cmd.OutOrStdout(), "Commands: status | done <account> | cancel <account> | quit")
			runLoginLoop(ctx, cmd, registry, sessions, logger)

			// Whatever is still pending when the loop ends is abandoned.
			if err := registry.CancelAll(ctx); err != nil {
				logger.Warn("Cancelling pending logins reported an error.", zap.Error(err))
			}
			printStatus(cmd, registry)
			return nil
		},
	}

	loginCmd.Flags().StringSliceVar(&only, "account", nil, "Restrict the batch to these account ids (repeatable)")
	return loginCmd
}

// selectAccounts filters the stored credentials down to the requested ids,
// preserving file order so ordinals stay stable across runs.
func selectAccounts(entries []store.Credential, only []string) []session.Account {
	wanted := make(map[string]bool, len(only))
	for _, id := range only {
		wanted[strings.TrimSpace(id)] = true
	}

	var accounts []session.Account
	for _, entry := range entries {
		if len(wanted) > 0 && !wanted[entry.ID] {
			continue
		}
		accounts = append(accounts, session.Account{ID: entry.ID, Secret: entry.Secret})
	}
	return accounts
}

// runLoginLoop reads operator commands from stdin until every login reached
// a terminal state or the operator quits.
func runLoginLoop(ctx context.Context, cmd *cobra.Command, registry *session.Registry, sessions *store.Sessions, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	out := cmd.OutOrStdout()

	for registry.LiveCount() > 0 {
		fmt.Fprint(out, "cafeposter> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "status":
			printStatus(cmd, registry)
		case "done":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: done <account>")
				continue
			}
			hs, err := registry.ConfirmLogin(ctx, fields[1])
			if err != nil {
				fmt.Fprintf(out, "confirm failed: %v\n", err)
				continue
			}
			if err := sessions.Save(hs); err != nil {
				logger.Error("Failed to persist harvested session.",
					zap.String("account", hs.AccountID), zap.Error(err))
				fmt.Fprintf(out, "session harvested but not persisted: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Session for %q saved (%d cookies).\n", hs.AccountID, len(hs.Cookies))
		case "cancel":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: cancel <account>")
				continue
			}
			if err := registry.Cancel(fields[1]); err != nil {
				fmt.Fprintf(out, "cancel failed: %v\n", err)
			}
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
	fmt.Fprintln(out, "All logins settled.")
}

// printStatus renders the registry snapshot as an aligned table.
func printStatus(cmd *cobra.Command, registry *session.Registry) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tSTATE\tENDPOINT\tERROR")
	for _, st := range registry.Snapshot() {
		errText := ""
		if st.Err != nil {
			errText = st.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.AccountID, st.State, st.DebugEndpoint, errText)
	}
	w.Flush()
}
