package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/inkwell/internal/store"
)

// DocumentsOptions holds flags for the documents command.
type DocumentsOptions struct {
	*RootOptions
	Database string
}

// NewDocumentsCommand creates the documents command.
func NewDocumentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List all documents in a database",
		Long: `List every document's metadata: id, title, block count, and last
update time.

Example:
  inkwell documents --db notes.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocuments(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDocuments(opts *DocumentsOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	docs, err := st.ListDocuments(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "list documents", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), docs)
	}

	out := cmd.OutOrStdout()
	for _, doc := range docs {
		updated := time.UnixMilli(doc.UpdatedAt).UTC().Format(time.RFC3339)
		line := fmt.Sprintf("%-24s  blocks=%-4d  updated=%s", doc.ID, doc.BlockCount, updated)
		if doc.Title != "" {
			line += "  " + doc.Title
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d documents\n", len(docs))
	return nil
}
