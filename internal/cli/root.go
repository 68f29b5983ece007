// Package cli provides the Cobra commands of fsctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/fsgate/pkg/client"
)

var (
	serverURL string
	token     string
	timeout   time.Duration

	api     *client.Client
	rootCmd = &cobra.Command{
		Use:   "fsctl",
		Short: "Command line client for fsgate",
		Long: `fsctl talks to an fsgate server: a REST API that exposes one
directory behind a bearer token.

The server address and token default to $FSGATE_URL and $FSGATE_TOKEN.

Examples:
  fsctl auth setup s3cret          # Register the token on a fresh server
  fsctl ls docs                    # List a directory
  fsctl put notes.txt "hello"      # Create or overwrite a text file
  fsctl upload ./photo.png img/    # Upload a local file
  fsctl archive docs -o docs.tgz   # Download a directory as a tarball`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := client.DefaultConfig()
			if serverURL != "" {
				cfg.BaseURL = serverURL
			}
			cfg.Token = token
			cfg.Timeout = timeout
			api = client.New(cfg)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", os.Getenv("FSGATE_URL"), "server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FSGATE_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "request timeout")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
