// Package block defines the core data model for the inkwell document
// engine: blocks, operations, transaction origins, and the persisted and
// broadcast forms derived from them.
//
// The package also owns the two serializations that must stay stable
// across releases:
//
//   - Canonical JSON (canonical.go): NFC-normalized, sorted-key, no HTML
//     escaping. Used only for checksum computation.
//   - Versioned state encoding (encode.go): the snapshot byte format.
//     EncodeState/DecodeState are the documented reader/writer contract;
//     decoding rejects unknown versions.
//
// Everything else in the module (store, engine, cli) consumes these types
// and never defines its own wire shapes.
package block
