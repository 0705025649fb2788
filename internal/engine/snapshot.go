package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/inkwell/internal/block"
	"github.com/roach88/inkwell/internal/store"
)

// Snapshot policy. A document with no snapshot gets one as soon as a
// single operation exists (bootstrap); afterwards a new snapshot
// requires BOTH thresholds since the last one.
const (
	snapshotBootstrapOps = 1
	snapshotMinOps       = 200
	snapshotMinInterval  = 2 * time.Minute
	snapshotRetain       = 5
)

// snapshotter tracks one document's compaction state and decides, after
// each transaction, whether to compact the live block list into a new
// snapshot.
type snapshotter struct {
	store *store.Store
	docID string
	now   func() time.Time

	hasSnapshot bool
	sinceLast   int64     // operations applied since the last snapshot
	lastCreated time.Time // creation time of the last snapshot
}

func newSnapshotter(s *store.Store, docID string, now func() time.Time) *snapshotter {
	return &snapshotter{store: s, docID: docID, now: now}
}

// init seeds the counters from load state: the total historical
// operation count and the latest snapshot, if one exists.
func (sn *snapshotter) init(total int64, latest *store.Snapshot) {
	if latest == nil {
		sn.sinceLast = total
		return
	}
	sn.hasSnapshot = true
	sn.sinceLast = total - latest.OperationCount
	sn.lastCreated = time.UnixMilli(latest.CreatedAt)
}

// noteApplied records n newly applied operations toward the threshold.
func (sn *snapshotter) noteApplied(n int64) {
	sn.sinceLast += n
}

// maybeCompact creates a snapshot if the policy says one is due.
// Returns nil when no snapshot is due. A returned error is an
// ErrCodeSnapshot EngineError: non-fatal, live state is unaffected.
func (sn *snapshotter) maybeCompact(ctx context.Context, blocks []block.Block, total int64) error {
	if !sn.due(total) {
		return nil
	}
	return sn.compact(ctx, blocks, total)
}

// due evaluates the threshold/time policy.
func (sn *snapshotter) due(total int64) bool {
	if !sn.hasSnapshot {
		return total >= snapshotBootstrapOps
	}
	if sn.sinceLast < snapshotMinOps {
		return false
	}
	return sn.now().Sub(sn.lastCreated) >= snapshotMinInterval
}

// compact serializes the block list and commits a new snapshot with
// operationCount = total, then prunes retention immediately.
func (sn *snapshotter) compact(ctx context.Context, blocks []block.Block, total int64) error {
	data, err := block.EncodeState(blocks)
	if err != nil {
		return newSnapshotError(sn.docID, err)
	}

	created := sn.now()
	snap := store.Snapshot{
		ID:             uuid.Must(uuid.NewV7()).String(),
		DocumentID:     sn.docID,
		Data:           data,
		CreatedAt:      created.UnixMilli(),
		OperationCount: total,
	}
	if err := sn.store.WriteSnapshot(ctx, snap); err != nil {
		return newSnapshotError(sn.docID, err)
	}

	if err := sn.store.PruneSnapshots(ctx, sn.docID, snapshotRetain); err != nil {
		return newSnapshotError(sn.docID, err)
	}

	sn.hasSnapshot = true
	sn.sinceLast = 0
	sn.lastCreated = created
	return nil
}
