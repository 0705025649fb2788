package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/inkwell/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Document string
	Offset   int64
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a document's operation log",
		Long: `List a document's operation-log records in application order, with
provenance.

Example:
  inkwell history --db notes.db --doc inbox
  inkwell history --db notes.db --doc inbox --offset 200`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "start at ordinal offset")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	records, err := st.ReadOperations(context.Background(), opts.Document, opts.Offset)
	if err != nil {
		return WrapExitError(ExitCommandError, "read operations", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), records)
	}

	out := cmd.OutOrStdout()
	for _, rec := range records {
		at := time.UnixMilli(rec.AppliedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%6d  %s  %-6s  %-24s  source=%s", rec.ID, at, rec.OperationType, rec.BlockID, rec.Source)
		if rec.UserID != "" {
			fmt.Fprintf(out, " user=%s", rec.UserID)
		}
		if rec.BatchID != "" {
			fmt.Fprintf(out, " batch=%s", rec.BatchID)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d operations\n", len(records))
	return nil
}
