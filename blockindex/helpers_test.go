package blockindex

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/stretchr/testify/require"
)

// testChain is a synthetic chain whose entries decode to valid records.
type testChain struct {
	hashes []*chainhash.Hash
	values [][]byte
}

// hexHashes returns the hashes in display order, ready for NewTableResolver.
func (c *testChain) hexHashes() []string {
	s := make([]string, len(c.hashes))
	for i, h := range c.hashes {
		s[i] = h.String()
	}

	return s
}

func (c *testChain) resolver(t *testing.T) *TableResolver {
	t.Helper()

	r, err := NewTableResolver(c.hexHashes()...)
	require.NoError(t, err)

	return r
}

func newTestChain(t *testing.T, length int) *testChain {
	t.Helper()

	c := &testChain{}

	var prev chainhash.Hash

	for height := 0; height < length; height++ {
		raw := make([]byte, BlockHeaderSize)
		binary.LittleEndian.PutUint32(raw[0:4], 1)
		copy(raw[4:36], prev[:])
		binary.LittleEndian.PutUint32(raw[68:72], uint32(1600000000+height*600))
		binary.LittleEndian.PutUint32(raw[72:76], 0x1e0377ae)
		binary.LittleEndian.PutUint32(raw[76:80], uint32(height))

		header, err := NewBlockHeaderFromBytes(raw)
		require.NoError(t, err)

		record := &BlockIndexRecord{
			ClientVersion: 220000,
			Height:        uint32(height),
			Status:        BlockValidScripts | BlockHaveData | BlockHaveUndo,
			TxCount:       1,
			File:          0,
			DataPos:       uint64(8 + height*300),
			UndoPos:       uint64(8 + height*40),
			BlockHeader:   header,
		}

		hash := header.Hash()
		c.hashes = append(c.hashes, hash)
		c.values = append(c.values, SerializeBlockIndex(record))
		prev = *hash
	}

	return c
}

// writeSourceDB creates a store holding every entry of the chain plus a few
// unrelated keys, closes it and returns its path.
func writeSourceDB(t *testing.T, c *testChain, skipHeights ...int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index")

	db, err := CreateIndexDB(path)
	require.NoError(t, err)

	skip := make(map[int]bool, len(skipHeights))
	for _, h := range skipHeights {
		skip[h] = true
	}

	for height, hash := range c.hashes {
		if skip[height] {
			continue
		}

		require.NoError(t, db.Put(BlockIndexKey(hash), c.values[height]))
	}

	require.NoError(t, db.Put([]byte("R"), []byte{0}))
	require.NoError(t, db.Put([]byte("l"), []byte{1, 2, 3}))
	require.NoError(t, db.Put(append([]byte{'f'}, 0, 0, 0, 0), []byte{9}))

	require.NoError(t, db.Close())

	return path
}

// memStore is an in-memory Source and Destination that counts its calls.
type memStore struct {
	data  map[string][]byte
	gets  int
	puts  int
	order [][]byte

	getErr error
	putErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	m.gets++

	if m.getErr != nil {
		return nil, m.getErr
	}

	v, ok := m.data[string(key)]
	if !ok {
		return nil, errNotFoundForTest(key)
	}

	return v, nil
}

func (m *memStore) Put(key, value []byte) error {
	m.puts++

	if m.putErr != nil {
		return m.putErr
	}

	m.data[string(key)] = append([]byte(nil), value...)
	m.order = append(m.order, append([]byte(nil), key...))

	return nil
}

func errNotFoundForTest(key []byte) error {
	return errors.NewNotFoundError("key %x not found", key)
}
