package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/inkwell/internal/block"
	"github.com/roach88/inkwell/internal/store"
)

// Engine is the registry of open documents over one shared store.
//
// Documents are opened and closed explicitly; the engine never caches a
// document past Close. Opening loads state via snapshot-plus-replay and
// emits exactly one synthetic system-origin notification describing the
// loaded state, so subscribers always initialize deterministically,
// including for an empty document.
type Engine struct {
	store    *store.Store
	now      func() time.Time
	debounce time.Duration

	mu   sync.Mutex
	docs map[string]*Document
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Used by tests to drive the
// snapshot cadence policy deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithDebounce overrides the notification debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// New creates an Engine over an opened store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		now:      time.Now,
		debounce: DefaultDebounce,
		docs:     make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open returns a handle to the document, loading it if it is not already
// open. Load follows the snapshot-plus-replay algorithm: the latest
// snapshot (if any) initializes the block list and the log tail from the
// snapshot's operation count is replayed on top; with no snapshot the
// entire log is replayed from an empty list. Both paths are
// state-equivalent.
//
// A malformed stored operation makes the load fail with an
// ErrCodeReplay EngineError; the document is not opened.
func (e *Engine) Open(ctx context.Context, documentID string) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if doc, ok := e.docs[documentID]; ok {
		return doc, nil
	}

	doc, err := e.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	e.docs[documentID] = doc
	return doc, nil
}

// load materializes a document from durable state.
func (e *Engine) load(ctx context.Context, documentID string) (*Document, error) {
	var blocks []block.Block
	var offset int64
	var latest *store.Snapshot

	snap, err := e.store.LatestSnapshot(ctx, documentID)
	switch {
	case err == nil:
		blocks, err = block.DecodeState(snap.Data)
		if err != nil {
			return nil, &EngineError{
				Code:       ErrCodeReplay,
				DocumentID: documentID,
				Message:    fmt.Sprintf("corrupt snapshot %s", snap.ID),
				Err:        err,
			}
		}
		offset = snap.OperationCount
		latest = &snap
	case errors.Is(err, store.ErrNoSnapshot):
		// Full replay from an empty document.
	default:
		return nil, fmt.Errorf("load %s: %w", documentID, err)
	}

	records, err := e.store.ReadOperations(ctx, documentID, offset)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", documentID, err)
	}

	mem := newMemStore(blocks)
	for _, rec := range records {
		op, err := rec.Operation()
		if err != nil {
			// Fatal to opening this document: a partially replayed
			// state must never be exposed.
			return nil, newReplayError(documentID, rec.ID, err)
		}
		mem.apply(op)
	}

	total := offset + int64(len(records))
	snaps := newSnapshotter(e.store, documentID, e.now)
	snaps.init(total, latest)

	doc := &Document{
		id:    documentID,
		store: e.store,
		now:   e.now,
		mem:   mem,
		snaps: snaps,
		bcast: newBroadcaster(e.debounce),
		total: total,
	}

	slog.Debug("document loaded",
		"doc", documentID,
		"blocks", mem.len(),
		"replayed", len(records),
		"from_snapshot", latest != nil,
	)

	// A cold load produces no natural transaction event, so emit one
	// synthetic notification (system origin) describing the loaded
	// state, even when it is empty.
	nowMS := e.now().UnixMilli()
	doc.bcast.publish(block.Notification{
		Blocks:       mem.snapshot(),
		Origin:       block.SystemOrigin(nowMS),
		UpdateVector: total,
		Timestamp:    nowMS,
		BlockCount:   mem.len(),
	})

	return doc, nil
}

// Close releases one document handle: the broadcaster shuts down, all
// subscriber channels close, and the in-memory state is dropped. Durable
// state is untouched; the document can be reopened at any time.
func (e *Engine) Close(documentID string) {
	e.mu.Lock()
	doc, ok := e.docs[documentID]
	delete(e.docs, documentID)
	e.mu.Unlock()

	if ok {
		doc.bcast.close()
	}
}

// Shutdown closes every open document. The underlying store is owned by
// the caller and is not closed here.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	docs := e.docs
	e.docs = make(map[string]*Document)
	e.mu.Unlock()

	for _, doc := range docs {
		doc.bcast.close()
	}
}
