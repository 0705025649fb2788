// Package engine is the inkwell document engine: the live in-memory
// block state per document, the transaction path that records every
// mutation in the operation log before applying it, snapshot compaction,
// and debounced change notifications.
//
// # Architecture
//
// Engine is an explicit registry of open documents. Callers Open a
// document to get a *Document handle and Close it when done; there is no
// implicit process-lifetime cache. All state flows through four parts:
//
//   - memStore (docstore.go): the canonical ordered block list for one
//     open document, mutated only under the document lock.
//   - Document.Apply (coordinator.go): applies a batch of operations
//     sharing one origin. Per operation: persist to the log, then apply
//     in memory. Per-operation failures are recorded in the Result and
//     do not abort the rest of the batch.
//   - snapshotter (snapshot.go): bounds cold-load replay cost. Policy:
//     first snapshot as soon as one operation exists; afterwards only
//     when at least 200 operations AND 2 minutes have accumulated since
//     the last one. At most 5 snapshots are retained per document.
//   - broadcaster (broadcast.go): trailing-edge debounce of change
//     notifications, one per burst, carrying the last origin.
//
// # Concurrency
//
// Single local writer. Each transaction runs synchronously to completion
// under the document mutex, so there is no torn-read window within a
// transaction. The only asynchronous behavior is the debounce timer.
package engine
