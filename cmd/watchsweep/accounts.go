package main

import (
	"github.com/spf13/cobra"

	"github.com/plexutil/watchsweep/internal/events"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List registered accounts",
	Example: `  watchsweep accounts
  watchsweep accounts --json`,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	accts, err := apiClient.Accounts.List()
	if err != nil {
		return err
	}

	if jsonOutput {
		out := make([]map[string]interface{}, 0, len(accts))
		for _, acct := range accts {
			out = append(out, map[string]interface{}{
				"username": acct.Username,
				"role":     string(acct.Role),
				"token":    events.RedactToken(acct.Token),
			})
		}
		printJSON(out)
		return nil
	}

	if len(accts) == 0 {
		printInfo("No accounts registered. Run 'watchsweep login' first.")
		return nil
	}

	for _, acct := range accts {
		printInfo("%-20s %-10s %s", acct.Username, acct.Role, events.RedactToken(acct.Token))
	}
	return nil
}
