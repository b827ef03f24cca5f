package blockindex

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/bsv-blockchain/indexprefix/errors"
)

// signetHashes are the first blocks of the default signet chain.
var signetHashes = []string{
	"00000008819873e925422c1ff0f99f7cc9bbb232af63a077a480a3633bee1ef6",
	"00000086d6b2636cb2a392d45edc4ec544a10024d30141c9adf4bfd9de533b53",
	"00000032bb881de703dcc968e8258080c7ed4a2933e3a35888fa0b2f75f36029",
}

// TableResolver resolves heights from a fixed list of hashes, index = height.
type TableResolver struct {
	hashes []*chainhash.Hash
}

// NewTableResolver builds a resolver from hashes in display (big-endian hex) order.
func NewTableResolver(hashes ...string) (*TableResolver, error) {
	if len(hashes) == 0 {
		return nil, errors.NewInvalidArgumentError("table resolver needs at least one hash")
	}

	t := &TableResolver{hashes: make([]*chainhash.Hash, len(hashes))}

	for height, s := range hashes {
		hash, err := chainhash.NewHashFromStr(s)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("invalid hash %q at height %d", s, height, err)
		}

		t.hashes[height] = hash
	}

	return t, nil
}

// TableResolverForNetwork returns the built-in table for a named network.
// Signet knows its first three blocks, the other networks only their genesis.
func TableResolverForNetwork(network string) (*TableResolver, error) {
	if network == "signet" {
		return NewTableResolver(signetHashes...)
	}

	params, err := chaincfg.GetChainParams(network)
	if err != nil {
		return nil, errors.NewConfigurationError("no hash table for network %q", network, err)
	}

	genesis, err := chainhash.NewHash(params.GenesisHash[:])
	if err != nil {
		return nil, errors.NewConfigurationError("invalid genesis hash for network %q", network, err)
	}

	return &TableResolver{hashes: []*chainhash.Hash{genesis}}, nil
}

func (t *TableResolver) HashAtHeight(_ context.Context, height uint32) (*chainhash.Hash, error) {
	if uint64(height) >= uint64(len(t.hashes)) {
		return nil, errors.NewInvalidArgumentError("height %d is beyond the table, which ends at %d", height, t.MaxHeight())
	}

	return t.hashes[height], nil
}

func (t *TableResolver) MaxHeight() uint32 {
	// constructors never build an empty table
	return uint32(len(t.hashes) - 1) //nolint:gosec // bounded by the table literals
}
