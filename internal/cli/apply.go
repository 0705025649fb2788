package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/inkwell/internal/engine"
	"github.com/roach88/inkwell/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Database string
	Document string
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <batch-file>",
		Short: "Apply an operation batch to a document",
		Long: `Apply a YAML operation batch to a document as one transaction.

The batch file is validated against the batch schema, then every
operation is persisted to the operation log and applied in order. Per-
operation failures are reported in the result without aborting the rest
of the batch.

Example:
  inkwell apply --db notes.db --doc inbox batch.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runApply(opts *ApplyOptions, batchPath string, cmd *cobra.Command) error {
	ops, origin, err := LoadBatch(batchPath)
	if err != nil {
		return err
	}
	slog.Debug("batch loaded", "file", batchPath, "operations", len(ops), "source", origin.Source)

	doc, cleanup, err := openDocument(opts.Database, opts.Document)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := doc.Apply(context.Background(), ops, origin)
	if err != nil {
		return WrapExitError(ExitCommandError, "apply batch", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "batch %s: applied %d/%d operations\n", result.BatchID, result.OperationsApplied, len(ops))
	for _, opErr := range result.Errors {
		fmt.Fprintf(out, "  operation %d (%s): %s\n", opErr.Index, opErr.BlockID, opErr.Message)
	}
	return nil
}

// openDocument opens the store, engine, and document handle, returning a
// cleanup func that tears all three down.
func openDocument(dbPath, docID string) (*engine.Document, func(), error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}

	eng := engine.New(st)
	doc, err := eng.Open(context.Background(), docID)
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("open document %s", docID), err)
	}

	cleanup := func() {
		eng.Shutdown()
		if err := st.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}
	return doc, cleanup, nil
}
