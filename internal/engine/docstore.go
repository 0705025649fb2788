package engine

import "github.com/roach88/inkwell/internal/block"

// memStore holds the canonical ordered block list for one open document.
// All mutations happen under the owning Document's lock, strictly inside
// one enclosing transaction, so observers see one coalesced change per
// batch.
//
// Failure policy: mutations targeting an unknown block id are silently
// ignored rather than raised as errors. This is a deliberate
// availability-over-strictness choice; callers that need strict
// precondition checking must validate before submitting.
type memStore struct {
	blocks []block.Block
}

func newMemStore(blocks []block.Block) *memStore {
	return &memStore{blocks: blocks}
}

// apply executes a single operation deterministically. It never fails:
// malformed or absent-target operations degrade to no-ops.
func (m *memStore) apply(op block.Operation) {
	switch op.Type {
	case block.OpInsert:
		m.insert(op)
	case block.OpUpdate:
		m.update(op)
	case block.OpDelete:
		m.delete(op.BlockID)
	case block.OpMove:
		m.move(op)
	}
}

// insert places op.Block at op.Position (default: append at end).
// If a block with the same id already exists, the existing block is
// replaced in place and the position is ignored: ids stay unique in live
// state without making insert fallible.
func (m *memStore) insert(op block.Operation) {
	if op.Block == nil {
		return
	}
	b := *op.Block
	if idx := m.indexOf(b.ID); idx >= 0 {
		m.blocks[idx] = b
		return
	}
	pos := m.clamp(op.Position)
	m.blocks = append(m.blocks, block.Block{})
	copy(m.blocks[pos+1:], m.blocks[pos:])
	m.blocks[pos] = b
}

// update replaces the block matching op.BlockID. The reserved id
// DocRoot signals a bulk operation: the entire block list is replaced
// atomically with the children of op.Block.
func (m *memStore) update(op block.Operation) {
	if op.Block == nil {
		return
	}
	if op.BlockID == block.DocRoot {
		m.blocks = append([]block.Block(nil), op.Block.Children...)
		return
	}
	if idx := m.indexOf(op.BlockID); idx >= 0 {
		m.blocks[idx] = *op.Block
	}
}

// delete removes the block matching id; no-op if absent.
func (m *memStore) delete(id string) {
	if idx := m.indexOf(id); idx >= 0 {
		m.blocks = append(m.blocks[:idx], m.blocks[idx+1:]...)
	}
}

// move removes the block at its current index and reinserts it at
// op.Position; no-op if absent.
func (m *memStore) move(op block.Operation) {
	idx := m.indexOf(op.BlockID)
	if idx < 0 {
		return
	}
	b := m.blocks[idx]
	m.blocks = append(m.blocks[:idx], m.blocks[idx+1:]...)
	pos := m.clamp(op.Position)
	m.blocks = append(m.blocks, block.Block{})
	copy(m.blocks[pos+1:], m.blocks[pos:])
	m.blocks[pos] = b
}

// indexOf returns the index of the block with the given id, or -1.
func (m *memStore) indexOf(id string) int {
	for i := range m.blocks {
		if m.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// clamp resolves an optional position against the current list length:
// nil or out-of-range positions become "append at end", negatives become 0.
func (m *memStore) clamp(pos *int) int {
	if pos == nil {
		return len(m.blocks)
	}
	p := *pos
	if p < 0 {
		return 0
	}
	if p > len(m.blocks) {
		return len(m.blocks)
	}
	return p
}

// snapshot returns a deep copy of the current block list.
func (m *memStore) snapshot() []block.Block {
	return block.CloneBlocks(m.blocks)
}

func (m *memStore) len() int {
	return len(m.blocks)
}
