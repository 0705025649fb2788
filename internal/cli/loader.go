package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/inkwell/internal/block"
)

//go:embed batch_schema.cue
var batchSchemaCUE string

// Batch is an operation batch file: one origin plus the operations to
// apply under it, in order.
type Batch struct {
	Origin     OriginSpec      `yaml:"origin"`
	Operations []OperationSpec `yaml:"operations"`
}

// OriginSpec is the YAML form of a transaction origin.
type OriginSpec struct {
	Source    string         `yaml:"source"`
	UserID    string         `yaml:"userId,omitempty"`
	RequestID string         `yaml:"requestId,omitempty"`
	BatchID   string         `yaml:"batchId,omitempty"`
	Metadata  map[string]any `yaml:"metadata,omitempty"`
}

// OperationSpec is the YAML form of one operation.
type OperationSpec struct {
	Type      string     `yaml:"type"`
	BlockID   string     `yaml:"blockId"`
	Position  *int       `yaml:"position,omitempty"`
	Block     *BlockSpec `yaml:"block,omitempty"`
	PrevBlock *BlockSpec `yaml:"prevBlock,omitempty"`
}

// BlockSpec is the YAML form of a block.
type BlockSpec struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Props    map[string]any `yaml:"props,omitempty"`
	Content  []any          `yaml:"content,omitempty"`
	Children []BlockSpec    `yaml:"children,omitempty"`
}

// LoadBatch reads, schema-validates, and decodes an operation batch
// file. Validation failures return ExitFailure errors; I/O failures
// return ExitCommandError.
func LoadBatch(path string) ([]block.Operation, block.Origin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, block.Origin{}, WrapExitError(ExitCommandError, fmt.Sprintf("read batch file %s", path), err)
	}

	if err := validateBatchData(data); err != nil {
		return nil, block.Origin{}, WrapExitError(ExitFailure, fmt.Sprintf("invalid batch file %s", path), err)
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, block.Origin{}, WrapExitError(ExitFailure, fmt.Sprintf("decode batch file %s", path), err)
	}

	ops := make([]block.Operation, len(batch.Operations))
	for i, spec := range batch.Operations {
		ops[i] = spec.toOperation()
	}

	return ops, batch.Origin.toOrigin(), nil
}

// ValidateBatch checks a batch file against the embedded CUE schema
// without applying it.
func ValidateBatch(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("read batch file %s", path), err)
	}
	if err := validateBatchData(data); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("invalid batch file %s", path), err)
	}
	return nil
}

// validateBatchData unifies the decoded YAML with the closed #Batch
// definition. Closed structs mean unknown fields are rejected, not
// silently dropped.
func validateBatchData(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("empty batch file")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(batchSchemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile batch schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Batch"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Batch: %w", err)
	}

	unified := def.Unify(ctx.Encode(raw))
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return err
	}
	return nil
}

func (s OriginSpec) toOrigin() block.Origin {
	return block.Origin{
		Source:    block.Source(s.Source),
		UserID:    s.UserID,
		RequestID: s.RequestID,
		BatchID:   s.BatchID,
		Metadata:  s.Metadata,
	}
}

func (s OperationSpec) toOperation() block.Operation {
	op := block.Operation{
		Type:     block.OpType(s.Type),
		BlockID:  s.BlockID,
		Position: s.Position,
	}
	if s.Block != nil {
		b := s.Block.toBlock()
		op.Block = &b
	}
	if s.PrevBlock != nil {
		b := s.PrevBlock.toBlock()
		op.PrevBlock = &b
	}
	return op
}

func (s BlockSpec) toBlock() block.Block {
	b := block.Block{
		ID:      s.ID,
		Type:    s.Type,
		Props:   s.Props,
		Content: s.Content,
	}
	if len(s.Children) > 0 {
		b.Children = make([]block.Block, len(s.Children))
		for i, c := range s.Children {
			b.Children[i] = c.toBlock()
		}
	}
	return b
}
