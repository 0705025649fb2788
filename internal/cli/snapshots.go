package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/inkwell/internal/store"
)

// SnapshotsOptions holds flags for the snapshots command.
type SnapshotsOptions struct {
	*RootOptions
	Database string
	Document string
}

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List a document's snapshots",
		Long: `List a document's retained snapshots, newest first, with the
historical operation count each one captures.

Example:
  inkwell snapshots --db notes.db --doc inbox`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshots(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runSnapshots(opts *SnapshotsOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	snaps, err := st.ListSnapshots(context.Background(), opts.Document)
	if err != nil {
		return WrapExitError(ExitCommandError, "list snapshots", err)
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), snaps)
	}

	out := cmd.OutOrStdout()
	for _, snap := range snaps {
		created := time.UnixMilli(snap.CreatedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%s  %s  operations=%d\n", snap.ID, created, snap.OperationCount)
	}
	fmt.Fprintf(out, "%d snapshots\n", len(snaps))
	return nil
}
