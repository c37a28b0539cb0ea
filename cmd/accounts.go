// File: cmd/accounts.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cafeposter-cli/internal/config"
	"github.com/xkilldash9x/cafeposter-cli/internal/observability"
	"github.com/xkilldash9x/cafeposter-cli/internal/store"
)

// newAccountsCmd creates the `accounts` command group managing the flat
// credential file.
func newAccountsCmd(cfg *config.Config) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the stored login credentials",
	}
	accountsCmd.AddCommand(
		newAccountsListCmd(cfg),
		newAccountsAddCmd(cfg),
		newAccountsRemoveCmd(cfg),
	)
	return accountsCmd
}

func newAccountsListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored account ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := store.NewCredentials(cfg.Store.CredentialsFile, observability.GetLogger())
			entries, err := creds.Load()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts stored.")
				return nil
			}
			for i, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, entry.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d account slots used.\n", len(entries), config.MaxAccounts)
			return nil
		},
	}
}

func newAccountsAddCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <secret>",
		Short: "Add or update an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, secret := strings.TrimSpace(args[0]), args[1]
			creds := store.NewCredentials(cfg.Store.CredentialsFile, observability.GetLogger())
			entries, err := creds.Load()
			if err != nil {
				return err
			}

			updated := false
			for i := range entries {
				if entries[i].ID == id {
					entries[i].Secret = secret
					updated = true
					break
				}
			}
			if !updated {
				if len(entries) >= config.MaxAccounts {
					return fmt.Errorf("all %d account slots are in use", config.MaxAccounts)
				}
				entries = append(entries, store.Credential{ID: id, Secret: secret})
			}

			if err := creds.Save(entries); err != nil {
				return err
			}
			if updated {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated account %q.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added account %q.\n", id)
			}
			return nil
		},
	}
}

func newAccountsRemoveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an account and its stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			logger := observability.GetLogger()
			creds := store.NewCredentials(cfg.Store.CredentialsFile, logger)
			entries, err := creds.Load()
			if err != nil {
				return err
			}

			kept := entries[:0]
			for _, entry := range entries {
				if entry.ID != id {
					kept = append(kept, entry)
				}
			}
			if len(kept) == len(entries) {
				return fmt.Errorf("no stored account %q", id)
			}
			if err := creds.Save(kept); err != nil {
				return err
			}

			// A removed account's harvested session must not stay usable.
			sessions := store.NewSessions(cfg.Store.SessionsDir, logger)
			if err := sessions.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed account %q.\n", id)
			return nil
		},
	}
}
