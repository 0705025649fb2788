package block

import (
	"encoding/hex"
	"fmt"
	"hash/crc32"
)

// Domain prefix for operation checksums. The version suffix allows a
// future algorithm change without ambiguity against old rows.
const domainOperation = "inkwell/operation/v1"

// Checksum computes the informational integrity checksum stored with
// every operation-log row: CRC-32 (IEEE) over the canonical JSON of the
// operation, with a domain prefix and null separator, hex encoded.
//
// The checksum is deliberately non-cryptographic and is never verified
// on read. It exists so external tooling can spot gross corruption in an
// exported log, not as a tamper guarantee.
func Checksum(op Operation) (string, error) {
	canonical, err := marshalCanonical(op)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}

	h := crc32.NewIEEE()
	h.Write([]byte(domainOperation))
	h.Write([]byte{0x00})
	h.Write(canonical)

	sum := h.Sum(nil)
	return hex.EncodeToString(sum), nil
}
