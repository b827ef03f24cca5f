package util

import (
	"math"

	"github.com/bsv-blockchain/indexprefix/errors"
)

// DecodeVarIntForIndex decodes the variable length integer used by Bitcoin Core's
// block index and chainstate (serialize.h VARINT). Each byte carries 7 bits, most
// significant group first, and every continuation adds one so that each value has
// a single encoding. It is not the CompactSize encoding used on the wire.
//
// Returns the value and the number of bytes consumed.
func DecodeVarIntForIndex(data []byte) (uint64, int, error) {
	var n uint64

	for i, b := range data {
		if n > math.MaxUint64>>7 {
			return 0, 0, errors.NewProcessingError("varint too large")
		}

		n = (n << 7) | uint64(b&0x7f)

		if b&0x80 == 0 {
			return n, i + 1, nil
		}

		if n == math.MaxUint64 {
			return 0, 0, errors.NewProcessingError("varint too large")
		}

		n++
	}

	return 0, 0, errors.NewProcessingError("varint truncated after %d bytes", len(data))
}

// EncodeVarIntForIndex is the inverse of DecodeVarIntForIndex.
func EncodeVarIntForIndex(n uint64) []byte {
	var tmp [10]byte

	i := len(tmp) - 1
	tmp[i] = byte(n & 0x7f)

	for n > 0x7f {
		n = (n >> 7) - 1
		i--
		tmp[i] = byte(n&0x7f) | 0x80
	}

	out := make([]byte, len(tmp)-i)
	copy(out, tmp[i:])

	return out
}
