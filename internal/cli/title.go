package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// TitleOptions holds flags for the title command.
type TitleOptions struct {
	*RootOptions
	Database string
	Document string
}

// NewTitleCommand creates the title command.
func NewTitleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TitleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "title <title>",
		Short: "Set a document's title",
		Long: `Set a document's descriptive title. The title is metadata only; it
never enters the operation log.

Example:
  inkwell title --db notes.db --doc inbox "Meeting notes"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTitle(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runTitle(opts *TitleOptions, title string, cmd *cobra.Command) error {
	doc, cleanup, err := openDocument(opts.Database, opts.Document)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := doc.SetTitle(context.Background(), title); err != nil {
		return WrapExitError(ExitCommandError, "set title", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "title set for %s\n", opts.Document)
	return nil
}
