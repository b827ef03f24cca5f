package blockindex

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// HeightResolver maps a block height to the hash of the block at that height.
type HeightResolver interface {
	HashAtHeight(ctx context.Context, height uint32) (*chainhash.Hash, error)
}

// BoundedResolver is a HeightResolver that only knows heights up to MaxHeight.
type BoundedResolver interface {
	HeightResolver
	MaxHeight() uint32
}
