package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/fsgate/pkg/client"
)

var (
	dirStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)

	mkdirParents bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		entries, err := api.ListDirectory(ctx(cmd), dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := api.Download(ctx(cmd), args[0], cmd.OutOrStdout())
		return err
	},
}

var putCmd = &cobra.Command{
	Use:   "put <file> [content]",
	Short: "Create or overwrite a text file",
	Long: `Create or overwrite a text file. Without a content argument the
content is read from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := ""
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			content = string(data)
		}
		return api.CreateFile(ctx(cmd), args[0], content)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <file> <content>",
	Short: "Replace the content of an existing file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.UpdateFile(ctx(cmd), args[0], args[1])
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <local> [remote]",
	Short: "Upload a local file",
	Long: `Upload a local file as raw bytes. A remote path ending in "/" is a
directory and keeps the local file name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		remote := uploadTarget(args[0], args[1:])
		if err := api.UploadStream(ctx(cmd), remote, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", remote)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.DeleteFile(ctx(cmd), args[0])
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <dir>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !mkdirParents {
			return api.CreateDirectory(ctx(cmd), args[0])
		}
		// The server creates one level at a time
		var current string
		for _, segment := range strings.Split(strings.Trim(args[0], "/"), "/") {
			current = path.Join(current, segment)
			err := api.CreateDirectory(ctx(cmd), current)
			if err != nil && client.CodeOf(err) != "ALREADY_EXISTS" {
				return err
			}
		}
		return nil
	},
}

var rmdirCmd = &cobra.Command{
	Use:   "rmdir <dir>",
	Short: "Delete an empty directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.DeleteDirectory(ctx(cmd), args[0])
	},
}

func init() {
	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "create missing parents, ignore existing directories")
	rootCmd.AddCommand(lsCmd, catCmd, putCmd, editCmd, uploadCmd, rmCmd, mkdirCmd, rmdirCmd)
}

func uploadTarget(local string, rest []string) string {
	if len(rest) == 0 {
		return filepath.Base(local)
	}
	if strings.HasSuffix(rest[0], "/") {
		return rest[0] + filepath.Base(local)
	}
	return rest[0]
}

func renderEntries(entries []client.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Error != "":
			rows = append(rows, []string{failStyle.Render(e.Name), "?", e.Error})
		case e.IsDirectory:
			rows = append(rows, []string{dirStyle.Render(e.Name + "/"), "-", e.Modified.Local().Format(time.DateTime)})
		default:
			rows = append(rows, []string{e.Name, strconv.FormatInt(e.Size, 10), e.Modified.Local().Format(time.DateTime)})
		}
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("NAME", "SIZE", "MODIFIED").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Inherit(cellStyle)
			}
			return cellStyle
		}).
		String()
}
