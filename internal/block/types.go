package block

import "encoding/json"

// DocRoot is the reserved block id that signals a bulk update: an update
// operation targeting DocRoot replaces the entire block list with the
// children of the operation's block.
const DocRoot = "document-root"

// Block is the atomic addressable content unit of a document. Identity
// (ID) is stable across edits; a document is an ordered sequence of
// blocks with optional nested children.
type Block struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Content  []any          `json:"content,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// Clone returns a deep copy of the block. Props and Content are copied
// through JSON, which is acceptable because both are JSON-shaped by
// construction.
func (b Block) Clone() Block {
	out := Block{ID: b.ID, Type: b.Type}
	if b.Props != nil {
		out.Props = cloneJSONMap(b.Props)
	}
	if b.Content != nil {
		out.Content = cloneJSONSlice(b.Content)
	}
	if b.Children != nil {
		out.Children = make([]Block, len(b.Children))
		for i, c := range b.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// CloneBlocks deep-copies a block list. The engine hands copies to
// subscribers so observers can never mutate live state.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

func cloneJSONMap(m map[string]any) map[string]any {
	data, err := json.Marshal(m)
	if err != nil {
		// Props came from JSON or YAML decoding; re-marshal cannot fail.
		panic("block: clone props: " + err.Error())
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic("block: clone props: " + err.Error())
	}
	return out
}

func cloneJSONSlice(s []any) []any {
	data, err := json.Marshal(s)
	if err != nil {
		panic("block: clone content: " + err.Error())
	}
	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		panic("block: clone content: " + err.Error())
	}
	return out
}

// OpType identifies one of the four documented mutations.
type OpType string

const (
	OpInsert OpType = "insert"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
	OpMove   OpType = "move"
)

// Valid reports whether t is one of the four known operation types.
func (t OpType) Valid() bool {
	switch t {
	case OpInsert, OpUpdate, OpDelete, OpMove:
		return true
	}
	return false
}

// Source identifies who or what produced a transaction.
type Source string

const (
	SourceUser   Source = "user"
	SourceLLM    Source = "llm"
	SourceSync   Source = "sync"
	SourceSystem Source = "system"
	SourcePaste  Source = "paste"
	SourceDrop   Source = "drop"
	SourceUndo   Source = "undo"
)

// Operation is the unit of mutation against a single block.
//
// Position is a pointer so "absent" (append at end for insert) is
// distinguishable from an explicit 0. Timestamp is epoch milliseconds,
// wall clock; ordering authority is the operation log, not this field.
type Operation struct {
	Type      OpType `json:"type"`
	BlockID   string `json:"blockId"`
	Position  *int   `json:"position,omitempty"`
	Block     *Block `json:"block,omitempty"`
	PrevBlock *Block `json:"prevBlock,omitempty"`
	Source    Source `json:"source,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	UserID    string `json:"userId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	BatchID   string `json:"batchId,omitempty"`
}

// Origin is provenance for a whole transaction batch. Consumers use it
// to tell locally authored edits from system or assistant changes and to
// avoid feedback loops.
type Origin struct {
	Source    Source         `json:"source"`
	RequestID string         `json:"requestId,omitempty"`
	BatchID   string         `json:"batchId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SystemOrigin returns an origin tagged with the system source, used for
// synthetic notifications such as the cold-load event.
func SystemOrigin(timestamp int64) Origin {
	return Origin{Source: SourceSystem, Timestamp: timestamp}
}

// Record is one persisted operation-log row. OperationData and
// OriginData hold the serialized Operation and Origin; the remaining
// columns are denormalized for querying.
type Record struct {
	ID            int64
	DocumentID    string
	OperationType OpType
	BlockID       string
	OperationData string
	AppliedAt     int64
	Source        Source
	UserID        string
	Checksum      string
	BatchID       string
	RequestID     string
	OriginData    string
}

// Operation decodes the serialized operation payload.
func (r Record) Operation() (Operation, error) {
	var op Operation
	if err := json.Unmarshal([]byte(r.OperationData), &op); err != nil {
		return Operation{}, err
	}
	return op, nil
}

// Origin decodes the serialized origin payload.
func (r Record) Origin() (Origin, error) {
	var o Origin
	if err := json.Unmarshal([]byte(r.OriginData), &o); err != nil {
		return Origin{}, err
	}
	return o, nil
}

// OpError describes the failure of a single operation within a batch.
// Index is the operation's position in the submitted batch.
type OpError struct {
	Index   int    `json:"index"`
	BlockID string `json:"blockId,omitempty"`
	Message string `json:"message"`
}

// Conflict describes a detected concurrent-edit conflict. The single
// local writer model never produces these; the field exists so the
// Result shape is stable for callers that will eventually see sync.
type Conflict struct {
	BlockID string `json:"blockId"`
	Reason  string `json:"reason"`
}

// Result is the structured outcome of a transaction. Per-operation
// failures are recorded in Errors and are non-fatal to the batch.
type Result struct {
	Success           bool       `json:"success"`
	OperationsApplied int        `json:"operationsApplied"`
	Errors            []OpError  `json:"errors"`
	Conflicts         []Conflict `json:"conflicts"`
	BatchID           string     `json:"batchId"`
}

// Notification is the coalesced state-change event pushed to
// subscribers after a debounce window closes. UpdateVector is the total
// historical operation count for the document at emit time; BlockCount
// duplicates len(Blocks) for consumer sanity checks.
type Notification struct {
	Blocks       []Block `json:"blocks"`
	Origin       Origin  `json:"origin"`
	UpdateVector int64   `json:"updateVector"`
	Timestamp    int64   `json:"timestamp"`
	BlockCount   int     `json:"blockCount"`
}
