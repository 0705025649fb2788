package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/inkwell/internal/block"
	"github.com/roach88/inkwell/internal/store"
)

// Document is a handle to one open document. Obtained from Engine.Open,
// released with Engine.Close. All methods are safe for concurrent use;
// mutations serialize on the document lock.
type Document struct {
	id    string
	store *store.Store
	now   func() time.Time

	mu    sync.Mutex
	mem   *memStore
	snaps *snapshotter
	bcast *broadcaster
	total int64 // last known persisted operation count
}

// ID returns the document id.
func (d *Document) ID() string {
	return d.id
}

// Blocks returns a deep copy of the current block list.
func (d *Document) Blocks() []block.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mem.snapshot()
}

// Subscribe registers a bounded notification subscriber. The returned
// cancel func must be called when the subscriber goes away.
func (d *Document) Subscribe(buffer int) (<-chan block.Notification, func()) {
	return d.bcast.subscribe(buffer)
}

// Apply runs a batch of operations sharing one origin as a single
// logical transaction: for each operation in order, persist to the
// operation log, then apply to the in-memory store. Per-operation
// failures are accumulated in the Result's error list without aborting
// the remaining operations; the batch as a whole still reports success
// once the loop ran to completion.
//
// After the loop the snapshot policy is consulted (compaction failures
// are logged, never surfaced) and one debounced notification is
// scheduled, tagged with the batch origin.
func (d *Document) Apply(ctx context.Context, ops []block.Operation, origin block.Origin) (block.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	nowMS := d.now().UnixMilli()
	if origin.BatchID == "" {
		origin.BatchID = uuid.Must(uuid.NewV7()).String()
	}
	if origin.Timestamp == 0 {
		origin.Timestamp = nowMS
	}

	originData, err := json.Marshal(origin)
	if err != nil {
		return block.Result{}, fmt.Errorf("apply: marshal origin: %w", err)
	}

	res := block.Result{
		Success:   true,
		Errors:    []block.OpError{},
		Conflicts: []block.Conflict{},
		BatchID:   origin.BatchID,
	}

	var applied int64
	for i := range ops {
		op := ops[i]
		stampOperation(&op, origin, nowMS)

		rec, err := d.buildRecord(op, string(originData))
		if err != nil {
			res.Errors = append(res.Errors, block.OpError{
				Index:   i,
				BlockID: op.BlockID,
				Message: err.Error(),
			})
			continue
		}

		// Persist first: the log is the source of truth. A failed write
		// means this operation is never applied in memory.
		if _, err := d.store.AppendOperation(ctx, rec); err != nil {
			perr := &EngineError{
				Code:       ErrCodePersistence,
				DocumentID: d.id,
				Message:    "operation log write failed",
				Err:        err,
			}
			res.Errors = append(res.Errors, block.OpError{
				Index:   i,
				BlockID: op.BlockID,
				Message: perr.Error(),
			})
			continue
		}

		d.mem.apply(op)
		res.OperationsApplied++
		applied++
	}

	d.snaps.noteApplied(applied)
	d.finishTransaction(ctx, origin, nowMS, applied)

	return res, nil
}

// finishTransaction runs the post-batch bookkeeping: metadata touch,
// snapshot policy, debounced notification. All failures here are logged
// only; the transaction itself has already committed to the log.
//
// If the authoritative operation count is unavailable, the last known
// total advanced by this batch's applied count stands in, and the
// snapshot consult is skipped for this transaction. UpdateVector must
// never regress: subscribers use it for gap detection.
func (d *Document) finishTransaction(ctx context.Context, origin block.Origin, nowMS int64, applied int64) {
	total, err := d.store.CountOperations(ctx, d.id)
	if err != nil {
		slog.Warn("operation count unavailable", "doc", d.id, "error", err)
		d.total += applied
		total = d.total
	} else {
		d.total = total
		if err := d.snaps.maybeCompact(ctx, d.mem.blocks, total); err != nil {
			slog.Warn("snapshot compaction failed", "doc", d.id, "error", err)
		}
	}

	if err := d.store.TouchDocument(ctx, d.id, d.mem.len(), nowMS); err != nil {
		slog.Warn("document metadata update failed", "doc", d.id, "error", err)
	}

	d.bcast.publish(block.Notification{
		Blocks:       d.mem.snapshot(),
		Origin:       origin,
		UpdateVector: total,
		Timestamp:    nowMS,
		BlockCount:   d.mem.len(),
	})
}

// Compact forces a snapshot outside the threshold/time policy. Used by
// operator tooling; the engine itself only compacts via the policy.
func (d *Document) Compact(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	total, err := d.store.CountOperations(ctx, d.id)
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	return d.snaps.compact(ctx, d.mem.blocks, total)
}

// SetTitle updates the document's descriptive metadata title.
func (d *Document) SetTitle(ctx context.Context, title string) error {
	return d.store.SetDocumentTitle(ctx, d.id, title, d.now().UnixMilli())
}

// stampOperation fills per-operation provenance fields from the batch
// origin where the caller left them empty.
func stampOperation(op *block.Operation, origin block.Origin, nowMS int64) {
	op.BatchID = origin.BatchID
	if op.Source == "" {
		op.Source = origin.Source
	}
	if op.Timestamp == 0 {
		op.Timestamp = nowMS
	}
	if op.UserID == "" {
		op.UserID = origin.UserID
	}
	if op.RequestID == "" {
		op.RequestID = origin.RequestID
	}
}

// buildRecord serializes an operation into its persisted row form.
func (d *Document) buildRecord(op block.Operation, originData string) (block.Record, error) {
	checksum, err := block.Checksum(op)
	if err != nil {
		return block.Record{}, fmt.Errorf("checksum operation: %w", err)
	}

	data, err := json.Marshal(op)
	if err != nil {
		return block.Record{}, fmt.Errorf("marshal operation: %w", err)
	}

	return block.Record{
		DocumentID:    d.id,
		OperationType: op.Type,
		BlockID:       op.BlockID,
		OperationData: string(data),
		AppliedAt:     op.Timestamp,
		Source:        op.Source,
		UserID:        op.UserID,
		Checksum:      checksum,
		BatchID:       op.BatchID,
		RequestID:     op.RequestID,
		OriginData:    originData,
	}, nil
}
