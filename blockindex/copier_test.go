package blockindex

import (
	"context"
	"strconv"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/ulogger"
	"github.com/bsv-blockchain/indexprefix/util/test/mocklogger"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceFromChain(c *testChain, skipHeights ...int) *memStore {
	skip := make(map[int]bool)
	for _, h := range skipHeights {
		skip[h] = true
	}

	s := newMemStore()

	for height, hash := range c.hashes {
		if !skip[height] {
			s.data[string(BlockIndexKey(hash))] = c.values[height]
		}
	}

	// an entry beyond the prefix that must never be copied
	s.data["R"] = []byte{1}

	return s
}

func TestCopy(t *testing.T) {
	chain := newTestChain(t, 30)
	source := sourceFromChain(chain)
	destination := newMemStore()

	copier := NewPrefixCopier(ulogger.NewVerboseTestLogger(t))

	result, err := copier.Copy(context.Background(), source, destination, 24, chain.resolver(t))
	require.NoError(t, err)

	assert.Equal(t, uint32(25), result.Copied)
	assert.Equal(t, uint32(0), result.Skipped)
	assert.Equal(t, uint32(24), result.LastHeight)

	// exactly key(0)..key(24), written in height order, values byte for byte
	require.Len(t, destination.data, 25)
	require.Len(t, destination.order, 25)

	for height := 0; height <= 24; height++ {
		key := BlockIndexKey(chain.hashes[height])
		assert.Equal(t, key, destination.order[height])
		assert.Equal(t, chain.values[height], destination.data[string(key)])
	}

	assert.Equal(t, 25, source.gets)
}

func TestCopyThreeFixedHashes(t *testing.T) {
	resolver, err := TableResolverForNetwork("signet")
	require.NoError(t, err)

	source := newMemStore()

	for height, s := range signetHashes {
		hash, err := chainhash.NewHashFromStr(s)
		require.NoError(t, err)

		source.data[string(BlockIndexKey(hash))] = []byte{byte(height), 0xaa, 0xbb}
	}

	destination := newMemStore()

	_, err = NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), source, destination, 2, resolver)
	require.NoError(t, err)

	require.Len(t, destination.data, 3)

	for height, s := range signetHashes {
		hash, err := chainhash.NewHashFromStr(s)
		require.NoError(t, err)

		key := BlockIndexKey(hash)
		assert.Equal(t, byte('b'), key[0])
		assert.Equal(t, []byte{byte(height), 0xaa, 0xbb}, destination.data[string(key)])
	}
}

func TestCopyProgress(t *testing.T) {
	tests := []struct {
		name      string
		maxHeight uint32
		interval  uint32
		expected  []uint32
	}{
		{"zero", 0, 0, []uint32{0}},
		{"below interval", 9, 0, []uint32{0}},
		{"ends on multiple", 20, 0, []uint32{0, 10, 20}},
		{"ends past multiple", 25, 0, []uint32{0, 10, 20}},
		{"custom interval", 7, 3, []uint32{0, 3, 6}},
	}

	chain := newTestChain(t, 26)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []uint32

			copier := NewPrefixCopier(ulogger.TestLogger{},
				WithProgressInterval(tt.interval),
				WithProgressFunc(func(p Progress) {
					assert.Equal(t, tt.maxHeight, p.Total)
					seen = append(seen, p.Processed)
				}),
			)

			_, err := copier.Copy(context.Background(), sourceFromChain(chain), newMemStore(), tt.maxHeight, chain.resolver(t))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, seen)
		})
	}
}

func TestCopyDefaultProgressLog(t *testing.T) {
	chain := newTestChain(t, 21)
	logger := mocklogger.NewTestLogger()

	_, err := NewPrefixCopier(logger).Copy(context.Background(), sourceFromChain(chain, 5), newMemStore(), 20, chain.resolver(t))
	require.Error(t, err)

	logger.Reset()

	_, err = NewPrefixCopier(logger, WithMissingEntryPolicy(MissingEntrySkip)).
		Copy(context.Background(), sourceFromChain(chain, 5), newMemStore(), 20, chain.resolver(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"processed height 0 of 20",
		"processed height 10 of 20",
		"processed height 20 of 20",
	}, logger.Lines("Infof"))

	logger.AssertNumberOfCalls(t, "Warnf", 1)
	logger.AssertNumberOfCalls(t, "Debugf", 20)
	assert.Contains(t, logger.Lines("Warnf")[0], "at height 5, skipping")
}

func TestCopyMissingEntry(t *testing.T) {
	initPrometheusMetrics()

	chain := newTestChain(t, 5)

	t.Run("fail", func(t *testing.T) {
		destination := newMemStore()

		result, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), sourceFromChain(chain, 3), destination, 4, chain.resolver(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

		var tErr *errors.Error
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, uint32(3), tErr.GetData("height"))
		assert.Equal(t, PhaseRead, tErr.GetData("phase"))

		// heights before the gap stay in the destination
		assert.Len(t, destination.data, 3)
		assert.Equal(t, uint32(3), result.Copied)
	})

	t.Run("skip", func(t *testing.T) {
		destination := newMemStore()

		skippedBefore := testutil.ToFloat64(prometheusPrefixCopyEntriesSkipped)

		result, err := NewPrefixCopier(ulogger.TestLogger{}, WithMissingEntryPolicy(MissingEntrySkip)).
			Copy(context.Background(), sourceFromChain(chain, 1, 3), destination, 4, chain.resolver(t))
		require.NoError(t, err)

		assert.Equal(t, uint32(3), result.Copied)
		assert.Equal(t, uint32(2), result.Skipped)
		assert.Len(t, destination.data, 3)
		assert.NotContains(t, destination.data, string(BlockIndexKey(chain.hashes[1])))
		assert.InDelta(t, 2, testutil.ToFloat64(prometheusPrefixCopyEntriesSkipped)-skippedBefore, 0)
	})
}

func TestCopyStoreErrors(t *testing.T) {
	initPrometheusMetrics()

	chain := newTestChain(t, 3)

	t.Run("read", func(t *testing.T) {
		source := sourceFromChain(chain)
		source.getErr = errors.NewStorageError("disk on fire")

		failuresBefore := testutil.ToFloat64(prometheusPrefixCopyFailures.WithLabelValues(PhaseRead))

		_, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), source, newMemStore(), 2, chain.resolver(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStorageError))
		assert.False(t, errors.Is(err, errors.ErrBlockNotFound))
		assert.Contains(t, err.Error(), "phase=read")
		assert.InDelta(t, 1, testutil.ToFloat64(prometheusPrefixCopyFailures.WithLabelValues(PhaseRead))-failuresBefore, 0)
	})

	t.Run("write", func(t *testing.T) {
		destination := newMemStore()
		destination.putErr = errors.NewStorageError("read-only file system")

		_, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), sourceFromChain(chain), destination, 2, chain.resolver(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStorageError))
		assert.Contains(t, err.Error(), "phase=write")
		assert.Contains(t, err.Error(), "height=0")
		assert.Equal(t, 1, destination.puts)
	})
}

type failingResolver struct {
	hashes  []*chainhash.Hash
	failAt  uint32
	err     error
	heights []uint32
}

func (r *failingResolver) HashAtHeight(_ context.Context, height uint32) (*chainhash.Hash, error) {
	r.heights = append(r.heights, height)

	if height == r.failAt {
		return nil, r.err
	}

	return r.hashes[height], nil
}

func TestCopyResolutionError(t *testing.T) {
	chain := newTestChain(t, 6)

	resolver := &failingResolver{
		hashes: chain.hashes,
		failAt: 4,
		err:    errors.NewNetworkTimeoutError("explorer too slow"),
	}

	destination := newMemStore()

	_, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), sourceFromChain(chain), destination, 5, resolver)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrResolution))
	assert.True(t, errors.Is(err, errors.ErrNetworkTimeout))
	assert.True(t, errors.IsNetworkError(err))
	assert.Contains(t, err.Error(), "phase=resolve")

	// resolved strictly in order and stopped at the failure
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, resolver.heights)
	assert.Len(t, destination.data, 4)
}

func TestCopyRemoteResolutionError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	chain := newTestChain(t, 6)

	for height := 0; height < 3; height++ {
		httpmock.RegisterResponder("GET", "https://explorer.test/api/block-height/"+strconv.Itoa(height),
			httpmock.NewStringResponder(200, chain.hashes[height].String()+"\n"))
	}

	httpmock.RegisterResponder("GET", "https://explorer.test/api/block-height/3",
		httpmock.NewStringResponder(500, "upstream unavailable"))

	source := sourceFromChain(chain)
	destination := newMemStore()

	_, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), source, destination, 5,
		NewRemoteResolver("https://explorer.test/api", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrResolution))
	assert.True(t, errors.Is(err, errors.ErrServiceError))
	assert.Contains(t, err.Error(), "phase=resolve")
	assert.Contains(t, err.Error(), "height=3")

	// nothing past the failing height was requested, read or written
	assert.Equal(t, 0, httpmock.GetCallCountInfo()["GET https://explorer.test/api/block-height/4"])
	assert.Equal(t, 3, source.gets)
	require.Len(t, destination.data, 3)

	for height := 0; height < 3; height++ {
		assert.Equal(t, chain.values[height], destination.data[string(BlockIndexKey(chain.hashes[height]))])
	}
}

func TestCopyBoundedResolver(t *testing.T) {
	chain := newTestChain(t, 3)
	source := sourceFromChain(chain)
	destination := newMemStore()

	_, err := NewPrefixCopier(ulogger.TestLogger{}).Copy(context.Background(), source, destination, 3, chain.resolver(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	assert.Equal(t, 0, source.gets)
	assert.Equal(t, 0, destination.puts)
}

func TestCopyVerify(t *testing.T) {
	chain := newTestChain(t, 4)

	t.Run("valid", func(t *testing.T) {
		_, err := NewPrefixCopier(ulogger.TestLogger{}, WithVerify(true)).
			Copy(context.Background(), sourceFromChain(chain), newMemStore(), 3, chain.resolver(t))
		require.NoError(t, err)
	})

	t.Run("wrong entry", func(t *testing.T) {
		source := sourceFromChain(chain)
		// height 2 points at the entry of height 1
		source.data[string(BlockIndexKey(chain.hashes[2]))] = chain.values[1]

		destination := newMemStore()

		_, err := NewPrefixCopier(ulogger.TestLogger{}, WithVerify(true)).
			Copy(context.Background(), source, destination, 3, chain.resolver(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
		assert.Contains(t, err.Error(), "phase=verify")
		assert.Len(t, destination.data, 2)
	})

	t.Run("undecodable", func(t *testing.T) {
		source := sourceFromChain(chain)
		source.data[string(BlockIndexKey(chain.hashes[0]))] = []byte{0x01}

		_, err := NewPrefixCopier(ulogger.TestLogger{}, WithVerify(true)).
			Copy(context.Background(), source, newMemStore(), 3, chain.resolver(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))
	})

	t.Run("not verified by default", func(t *testing.T) {
		source := sourceFromChain(chain)
		source.data[string(BlockIndexKey(chain.hashes[0]))] = []byte{0x01}

		_, err := NewPrefixCopier(ulogger.TestLogger{}).
			Copy(context.Background(), source, newMemStore(), 3, chain.resolver(t))
		require.NoError(t, err)
	})
}

func TestParseMissingEntryPolicy(t *testing.T) {
	p, err := ParseMissingEntryPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, MissingEntrySkip, p)
	assert.Equal(t, "skip", p.String())

	p, err = ParseMissingEntryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MissingEntryFail, p)

	_, err = ParseMissingEntryPolicy("ignore")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
