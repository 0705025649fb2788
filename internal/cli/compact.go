package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// CompactOptions holds flags for the compact command.
type CompactOptions struct {
	*RootOptions
	Database string
	Document string
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Force a snapshot of a document",
		Long: `Load a document and create a snapshot immediately, outside the
engine's threshold/time policy. Retention still applies: only the 5 most
recent snapshots are kept.

Example:
  inkwell compact --db notes.db --doc inbox`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runCompact(opts *CompactOptions, cmd *cobra.Command) error {
	doc, cleanup, err := openDocument(opts.Database, opts.Document)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := doc.Compact(context.Background()); err != nil {
		return WrapExitError(ExitCommandError, "compact document", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "snapshot created for %s\n", opts.Document)
	return nil
}
