package block

import (
	"encoding/json"
	"fmt"
)

// StateVersion is the current snapshot encoding version. Bump only with
// a corresponding DecodeState branch for the old version.
const StateVersion = 1

// stateEnvelope is the on-disk snapshot format: a versioned JSON
// envelope around the full ordered block list. The format is explicit
// and owned by this package so snapshots stay readable independently of
// any particular in-memory representation.
type stateEnvelope struct {
	Version int     `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// EncodeState serializes a block list into the versioned snapshot
// encoding. A nil block list encodes as an empty document.
func EncodeState(blocks []Block) ([]byte, error) {
	env := stateEnvelope{Version: StateVersion, Blocks: blocks}
	if env.Blocks == nil {
		env.Blocks = []Block{}
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// DecodeState parses a snapshot produced by EncodeState. Unknown
// versions are rejected rather than guessed at.
func DecodeState(data []byte) ([]Block, error) {
	var env stateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if env.Version != StateVersion {
		return nil, fmt.Errorf("decode state: unsupported version %d (want %d)", env.Version, StateVersion)
	}
	if env.Blocks == nil {
		env.Blocks = []Block{}
	}
	return env.Blocks, nil
}
