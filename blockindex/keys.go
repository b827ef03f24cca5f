// Package blockindex reads and writes Bitcoin Core block index stores and builds
// reduced copies of them holding only the entries for a prefix of the chain.
//
// A block index store is the LevelDB found in <datadir>/blocks/index. Every block
// the node knows about has one entry keyed by 'b' followed by the block hash in
// its internal (reversed) byte order.
package blockindex

import (
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/indexprefix/errors"
)

const (
	// BlockIndexPrefix is the key type tag of block index entries.
	BlockIndexPrefix byte = 'b'

	// BlockIndexKeySize is the size of a block index key, tag plus hash.
	BlockIndexKeySize = 1 + chainhash.HashSize
)

// BlockIndexKey returns the storage key for the block with the given hash.
//
// chainhash.Hash already holds its bytes in storage order, the reverse of the
// displayed hex string, so no reversal happens here.
func BlockIndexKey(hash *chainhash.Hash) []byte {
	key := make([]byte, BlockIndexKeySize)
	key[0] = BlockIndexPrefix
	copy(key[1:], hash[:])

	return key
}

// HashFromBlockIndexKey is the inverse of BlockIndexKey.
func HashFromBlockIndexKey(key []byte) (*chainhash.Hash, error) {
	if len(key) != BlockIndexKeySize {
		return nil, errors.NewInvalidArgumentError("block index key must be %d bytes, got %d", BlockIndexKeySize, len(key))
	}

	if key[0] != BlockIndexPrefix {
		return nil, errors.NewInvalidArgumentError("block index key must start with %q, got 0x%02x", BlockIndexPrefix, key[0])
	}

	return chainhash.NewHash(key[1:])
}
