package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var (
	searchBase  string
	searchLimit int
	archiveOut  string
	archiveFmt  string
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show metadata of a file or directory as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := api.Metadata(ctx(cmd), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), meta)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Find paths matching a glob such as '**/*.md'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := api.Search(ctx(cmd), searchBase, args[0], searchLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range result.Matches {
			fmt.Fprintln(out, m.Path)
		}
		if result.Truncated {
			fmt.Fprintln(cmd.ErrOrStderr(), "(results truncated)")
		}
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <dir>",
	Short: "Download a directory as a compressed tarball",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if archiveOut != "" && archiveOut != "-" {
			f, err := os.Create(archiveOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		n, err := api.Archive(ctx(cmd), args[0], archiveFmt, w)
		if err != nil {
			if archiveOut != "" && archiveOut != "-" {
				_ = os.Remove(archiveOut)
			}
			return err
		}
		if w != cmd.OutOrStdout() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", n, archiveOut)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := api.Health(ctx(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), h)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchBase, "path", "", "directory to search under")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of matches")
	archiveCmd.Flags().StringVarP(&archiveOut, "output", "o", "", "output file (default stdout)")
	archiveCmd.Flags().StringVar(&archiveFmt, "format", "tar.gz", "tar.gz or tar.zst")
	rootCmd.AddCommand(statCmd, searchCmd, archiveCmd, healthCmd)
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
