package blockindex

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/util"
)

// Block validation statuses
const (
	BlockValidReserved     = 1
	BlockValidTree         = 2
	BlockValidTransactions = 3
	BlockValidChain        = 4
	BlockValidScripts      = 5
	BlockValidMask         = BlockValidReserved | BlockValidTree | BlockValidTransactions | BlockValidChain | BlockValidScripts

	BlockHaveData = 8  // full block available in blk*.dat
	BlockHaveUndo = 16 // undo data available in rev*.dat
)

// BlockHeaderSize is the size of a serialized block header.
const BlockHeaderSize = 80

// BlockHeader is the 80 byte header stored at the end of every block index entry.
type BlockHeader struct {
	Version        uint32
	HashPrevBlock  chainhash.Hash
	HashMerkleRoot chainhash.Hash
	Timestamp      uint32
	Bits           uint32
	Nonce          uint32

	raw [BlockHeaderSize]byte
}

// NewBlockHeaderFromBytes parses a serialized block header.
func NewBlockHeaderFromBytes(b []byte) (*BlockHeader, error) {
	if len(b) < BlockHeaderSize {
		return nil, errors.NewProcessingError("block header length is less than %d", BlockHeaderSize)
	}

	bh := &BlockHeader{
		Version:   binary.LittleEndian.Uint32(b[0:4]),
		Timestamp: binary.LittleEndian.Uint32(b[68:72]),
		Bits:      binary.LittleEndian.Uint32(b[72:76]),
		Nonce:     binary.LittleEndian.Uint32(b[76:80]),
	}

	copy(bh.HashPrevBlock[:], b[4:36])
	copy(bh.HashMerkleRoot[:], b[36:68])
	copy(bh.raw[:], b[:BlockHeaderSize])

	return bh, nil
}

// Hash returns the double SHA-256 of the header, which is the block hash.
func (bh *BlockHeader) Hash() *chainhash.Hash {
	hash := chainhash.DoubleHashH(bh.raw[:])
	return &hash
}

// Bytes returns the serialized header.
func (bh *BlockHeader) Bytes() []byte {
	b := make([]byte, BlockHeaderSize)
	copy(b, bh.raw[:])

	return b
}

// BlockIndexRecord is the decoded value of a block index entry.
type BlockIndexRecord struct {
	ClientVersion uint64
	Height        uint32
	Status        uint64
	TxCount       uint64
	File          uint64
	DataPos       uint64
	UndoPos       uint64
	BlockHeader   *BlockHeader
}

// InActiveChain reports whether the block was validated at least up to its transactions.
func (r *BlockIndexRecord) InActiveChain() bool {
	return r.Status&BlockValidMask > BlockValidTree
}

func (r *BlockIndexRecord) String() string {
	return fmt.Sprintf("height=%d status=%d active=%t txs=%d file=%d dataPos=%d undoPos=%d hash=%s",
		r.Height, r.Status, r.InActiveChain(), r.TxCount, r.File, r.DataPos, r.UndoPos, r.BlockHeader.Hash())
}

// DeserializeBlockIndex decodes a block index entry value. The layout is a
// sequence of index varints (client version, height, status, tx count, and file,
// data and undo positions depending on the status bits) followed by the block
// header. Any bytes after the header are ignored.
func DeserializeBlockIndex(data []byte) (*BlockIndexRecord, error) {
	var (
		pos    int
		fields [4]uint64
	)

	for i := range fields {
		val, n, err := util.DecodeVarIntForIndex(data[pos:])
		if err != nil {
			return nil, errors.NewProcessingError("could not read block index field %d", i, err)
		}

		fields[i] = val
		pos += n
	}

	height, err := safeconversion.Uint64ToUint32(fields[1])
	if err != nil {
		return nil, errors.NewProcessingError("block index height out of range", err)
	}

	record := &BlockIndexRecord{
		ClientVersion: fields[0],
		Height:        height,
		Status:        fields[2],
		TxCount:       fields[3],
	}

	readOptional := func(target *uint64, name string) error {
		val, n, err := util.DecodeVarIntForIndex(data[pos:])
		if err != nil {
			return errors.NewProcessingError("could not read block index %s", name, err)
		}

		*target = val
		pos += n

		return nil
	}

	if record.Status&(BlockHaveData|BlockHaveUndo) != 0 {
		if err = readOptional(&record.File, "file number"); err != nil {
			return nil, err
		}
	}

	if record.Status&BlockHaveData != 0 {
		if err = readOptional(&record.DataPos, "data position"); err != nil {
			return nil, err
		}
	}

	if record.Status&BlockHaveUndo != 0 {
		if err = readOptional(&record.UndoPos, "undo position"); err != nil {
			return nil, err
		}
	}

	if len(data[pos:]) < BlockHeaderSize {
		return nil, errors.NewProcessingError("block header length is less than %d", BlockHeaderSize)
	}

	if record.BlockHeader, err = NewBlockHeaderFromBytes(data[pos : pos+BlockHeaderSize]); err != nil {
		return nil, err
	}

	return record, nil
}

// SerializeBlockIndex is the inverse of DeserializeBlockIndex.
func SerializeBlockIndex(r *BlockIndexRecord) []byte {
	b := make([]byte, 0, 32+BlockHeaderSize)

	b = append(b, util.EncodeVarIntForIndex(r.ClientVersion)...)
	b = append(b, util.EncodeVarIntForIndex(uint64(r.Height))...)
	b = append(b, util.EncodeVarIntForIndex(r.Status)...)
	b = append(b, util.EncodeVarIntForIndex(r.TxCount)...)

	if r.Status&(BlockHaveData|BlockHaveUndo) != 0 {
		b = append(b, util.EncodeVarIntForIndex(r.File)...)
	}

	if r.Status&BlockHaveData != 0 {
		b = append(b, util.EncodeVarIntForIndex(r.DataPos)...)
	}

	if r.Status&BlockHaveUndo != 0 {
		b = append(b, util.EncodeVarIntForIndex(r.UndoPos)...)
	}

	return append(b, r.BlockHeader.Bytes()...)
}
