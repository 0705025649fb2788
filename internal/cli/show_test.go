package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/inkwell/internal/block"
)

func TestRenderBlocks_Golden(t *testing.T) {
	blocks := []block.Block{
		{ID: "h1", Type: "heading", Props: map[string]any{"text": "Title", "level": 1}},
		{ID: "p1", Type: "paragraph", Props: map[string]any{"text": "hello world"}},
		{
			ID:   "l1",
			Type: "bulletListItem",
			Children: []block.Block{
				{ID: "c1", Type: "paragraph", Props: map[string]any{"text": "nested"}},
				{ID: "c2", Type: "paragraph"},
			},
		},
	}

	var out bytes.Buffer
	renderBlocks(&out, blocks, 0)

	g := goldie.New(t)
	g.Assert(t, "show_outline", out.Bytes())
}

func TestPropText(t *testing.T) {
	if got := propText(nil); got != "" {
		t.Errorf("propText(nil) = %q", got)
	}
	if got := propText(map[string]any{"level": 2}); got != "" {
		t.Errorf("propText without text prop = %q", got)
	}
	if got := propText(map[string]any{"text": "body"}); got != "body" {
		t.Errorf("propText = %q, want body", got)
	}
}
