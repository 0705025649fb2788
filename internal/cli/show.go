package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/inkwell/internal/block"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Document string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a document's current block list",
		Long: `Load a document (snapshot plus log tail) and print its current
blocks.

Example:
  inkwell show --db notes.db --doc inbox
  inkwell show --db notes.db --doc inbox --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Document, "doc", "", "document id (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	doc, cleanup, err := openDocument(opts.Database, opts.Document)
	if err != nil {
		return err
	}
	defer cleanup()

	blocks := doc.Blocks()
	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), blocks)
	}

	renderBlocks(cmd.OutOrStdout(), blocks, 0)
	return nil
}

// renderBlocks prints a block list as an indented outline, one block per
// line: type, id, then a text preview if the props carry one.
func renderBlocks(w io.Writer, blocks []block.Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, b := range blocks {
		line := fmt.Sprintf("%s- [%s] %s", indent, b.Type, b.ID)
		if text := propText(b.Props); text != "" {
			line += ": " + text
		}
		fmt.Fprintln(w, line)
		if len(b.Children) > 0 {
			renderBlocks(w, b.Children, depth+1)
		}
	}
}

// propText extracts a displayable text prop, if any.
func propText(props map[string]any) string {
	if props == nil {
		return ""
	}
	if text, ok := props["text"].(string); ok {
		return text
	}
	return ""
}
