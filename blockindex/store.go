package blockindex

import (
	"fmt"
	"io"
	"os"

	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/util"
)

// Source is the store entries are read from.
type Source interface {
	// Get returns the value stored under key, or an ERR_NOT_FOUND error when there is none.
	Get(key []byte) ([]byte, error)
}

// Destination is the store entries are written to.
type Destination interface {
	Put(key, value []byte) error
}

// IndexDB is a block index LevelDB, either an existing node's index opened
// read-only or a freshly created copy.
type IndexDB struct {
	db       *leveldb.DB
	path     string
	readOnly bool
}

// OpenIndexDB opens an existing block index store for reading.
//
// The store is opened without compression, matching the options bitcoind
// uses, so that nothing is ever rewritten in a format the node cannot read.
func OpenIndexDB(path string) (*IndexDB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("couldn't find block index at %s", path, err)
	}

	if !info.IsDir() {
		return nil, errors.NewStorageUnavailableError("block index path %s is not a directory", path)
	}

	db, err := openLevelDB(path, &opt.Options{
		Compression:    opt.NoCompression,
		ErrorIfMissing: true,
		ReadOnly:       true,
	})
	if err != nil {
		return nil, errors.NewStorageUnavailableError("couldn't open block index at %s", path, err)
	}

	return &IndexDB{db: db, path: path, readOnly: true}, nil
}

var openLevelDB = leveldb.OpenFile

// CreateIndexDB creates a new, empty block index store at path.
//
// The directory is created without parents and must not exist yet: a copy is
// never merged into an existing store.
func CreateIndexDB(path string) (*IndexDB, error) {
	if err := os.Mkdir(path, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, errors.NewDestinationExistsError("destination %s already exists", path, err)
		}

		return nil, errors.NewStorageUnavailableError("couldn't create destination directory %s", path, err)
	}

	db, err := openLevelDB(path, &opt.Options{
		Compression:  opt.NoCompression,
		ErrorIfExist: true,
	})
	if err != nil {
		// the directory was made above, whatever leveldb left in it goes too
		_ = os.RemoveAll(path)

		if os.IsExist(err) {
			return nil, errors.NewDestinationExistsError("destination %s already holds a database", path, err)
		}

		return nil, errors.NewStorageUnavailableError("couldn't create block index at %s", path, err)
	}

	return &IndexDB{db: db, path: path}, nil
}

// Path returns the directory the store lives in.
func (in *IndexDB) Path() string {
	return in.path
}

func (in *IndexDB) Get(key []byte) ([]byte, error) {
	value, err := in.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, errors.NewNotFoundError("key %x not found in %s", key, in.path)
		}

		return nil, errors.NewStorageError("couldn't read key %x from %s", key, in.path, err)
	}

	return value, nil
}

func (in *IndexDB) Put(key, value []byte) error {
	if in.readOnly {
		return errors.NewStorageError("block index at %s is read-only", in.path)
	}

	if err := in.db.Put(key, value, nil); err != nil {
		return errors.NewStorageError("couldn't write key %x to %s", key, in.path, err)
	}

	return nil
}

// ForEach calls fn for every entry whose key starts with prefix, in key order.
// A nil prefix visits the whole store. The slices passed to fn are only valid
// for the duration of the call.
func (in *IndexDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	var slice *util.Range
	if prefix != nil {
		slice = util.BytesPrefix(prefix)
	}

	iter := in.db.NewIterator(slice, nil)
	defer iter.Release()

	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	if err := iter.Error(); err != nil {
		return errors.NewStorageError("couldn't iterate %s", in.path, err)
	}

	return nil
}

// Keys returns a copy of every key in the store, in key order.
func (in *IndexDB) Keys() ([][]byte, error) {
	return in.collectKeys(nil)
}

// BlockIndexKeys returns a copy of every block index key in the store, in key order.
func (in *IndexDB) BlockIndexKeys() ([][]byte, error) {
	return in.collectKeys([]byte{BlockIndexPrefix})
}

func (in *IndexDB) collectKeys(prefix []byte) ([][]byte, error) {
	var keys [][]byte

	err := in.ForEach(prefix, func(key, _ []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// DumpRecords writes the first count block index entries to w, decoding each
// value where possible. A count of zero or less dumps every entry.
func (in *IndexDB) DumpRecords(w io.Writer, count int) error {
	var i int

	errStop := errors.NewProcessingError("stop")

	err := in.ForEach([]byte{BlockIndexPrefix}, func(key, value []byte) error {
		var hashStr string

		hash, err := HashFromBlockIndexKey(key)
		if err != nil {
			hashStr = err.Error()
		} else {
			hashStr = hash.String()
		}

		var recordStr string

		record, err := DeserializeBlockIndex(value)
		if err != nil {
			recordStr = err.Error()
		} else {
			recordStr = record.String()
		}

		if _, err = fmt.Fprintf(w, "Key %d (%d): %x\nHash: %s\nValue (%d): %x\nRecord: %s\n\n",
			i, len(key), key, hashStr, len(value), value, recordStr); err != nil {
			return errors.NewProcessingError("couldn't write record %d", i, err)
		}

		i++

		if i == count {
			return errStop
		}

		return nil
	})
	if err != nil && err != errStop {
		return err
	}

	return nil
}

func (in *IndexDB) Close() error {
	if err := in.db.Close(); err != nil {
		return errors.NewStorageError("couldn't close block index at %s", in.path, err)
	}

	return nil
}
