package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the server bearer token",
}

var authSetupCmd = &cobra.Command{
	Use:   "setup <token>",
	Short: "Register the bearer token on a fresh server",
	Long: `Register the bearer token on a server that has none yet.

A server accepts exactly one token for its lifetime. Registering the same
token again succeeds; a different one is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.SetupAuth(ctx(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token set")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is registered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		configured, err := api.AuthStatus(ctx(cmd))
		if err != nil {
			return err
		}
		if configured {
			fmt.Fprintln(cmd.OutOrStdout(), "configured")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "not configured")
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetupCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
