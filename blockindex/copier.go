package blockindex

import (
	"context"
	"time"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/settings"
	"github.com/bsv-blockchain/indexprefix/ulogger"
)

// Phases reported in the "phase" data of copy errors and in the failure metric.
const (
	PhaseResolve = "resolve"
	PhaseRead    = "read"
	PhaseWrite   = "write"
	PhaseVerify  = "verify"
)

// DefaultProgressInterval is the number of heights between progress reports.
const DefaultProgressInterval = 10

// MissingEntryPolicy decides what happens when the source has no entry for a height.
type MissingEntryPolicy int

const (
	// MissingEntryFail aborts the copy with a block not found error.
	MissingEntryFail MissingEntryPolicy = iota
	// MissingEntrySkip logs the gap and moves on to the next height.
	MissingEntrySkip
)

func (p MissingEntryPolicy) String() string {
	if p == MissingEntrySkip {
		return settings.MissingEntriesSkip
	}

	return settings.MissingEntriesFail
}

// ParseMissingEntryPolicy parses the prefixcopy_missingEntries setting.
func ParseMissingEntryPolicy(s string) (MissingEntryPolicy, error) {
	switch s {
	case settings.MissingEntriesFail, "":
		return MissingEntryFail, nil
	case settings.MissingEntriesSkip:
		return MissingEntrySkip, nil
	default:
		return MissingEntryFail, errors.NewConfigurationError("unknown missing entry policy %q", s)
	}
}

// Progress is reported every few heights while copying.
type Progress struct {
	Processed uint32
	Total     uint32
}

type ProgressFunc func(Progress)

// Result summarises a finished copy.
type Result struct {
	Copied     uint32
	Skipped    uint32
	LastHeight uint32
}

type Option func(*PrefixCopier)

func WithMissingEntryPolicy(policy MissingEntryPolicy) Option {
	return func(c *PrefixCopier) {
		c.missingPolicy = policy
	}
}

// WithVerify decodes every copied entry and checks that it describes the
// block at the height it was resolved for.
func WithVerify(verify bool) Option {
	return func(c *PrefixCopier) {
		c.verify = verify
	}
}

// WithProgressFunc replaces the default progress log line.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *PrefixCopier) {
		c.progressFn = fn
	}
}

// WithProgressInterval sets how many heights pass between progress reports. Zero keeps the default.
func WithProgressInterval(interval uint32) Option {
	return func(c *PrefixCopier) {
		if interval > 0 {
			c.progressInterval = interval
		}
	}
}

func WithMetrics(enabled bool) Option {
	return func(c *PrefixCopier) {
		c.metrics = enabled
	}
}

// PrefixCopier copies the block index entries of heights 0..N from one store
// to another. It does not own either store.
type PrefixCopier struct {
	logger           ulogger.Logger
	missingPolicy    MissingEntryPolicy
	verify           bool
	progressFn       ProgressFunc
	progressInterval uint32
	metrics          bool
}

func NewPrefixCopier(logger ulogger.Logger, opts ...Option) *PrefixCopier {
	c := &PrefixCopier{
		logger:           logger,
		progressInterval: DefaultProgressInterval,
		metrics:          true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.progressFn == nil {
		c.progressFn = func(p Progress) {
			c.logger.Infof("processed height %d of %d", p.Processed, p.Total)
		}
	}

	if c.metrics {
		initPrometheusMetrics()
	}

	return c
}

// Copy resolves every height from 0 to maxHeight inclusive, in order, and copies
// the source entry for that block to the destination. Each entry is written on
// its own as soon as it is read; a failure leaves the entries of the heights
// before it in the destination.
//
// A bounded resolver that cannot resolve maxHeight is rejected before either
// store is touched.
func (c *PrefixCopier) Copy(ctx context.Context, source Source, destination Destination, maxHeight uint32, resolver HeightResolver) (*Result, error) {
	if err := CheckResolverBound(resolver, maxHeight); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{}

	for height := uint32(0); ; height++ {
		copied, err := c.copyHeight(ctx, source, destination, height, resolver)
		if err != nil {
			return result, err
		}

		if copied {
			result.Copied++
		} else {
			result.Skipped++
		}

		result.LastHeight = height

		if height%c.progressInterval == 0 {
			c.progressFn(Progress{Processed: height, Total: maxHeight})
		}

		if height == maxHeight {
			break
		}
	}

	if c.metrics {
		prometheusPrefixCopyDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

// copyHeight copies the entry of a single height. It returns false when the
// entry was missing and skipped.
func (c *PrefixCopier) copyHeight(ctx context.Context, source Source, destination Destination, height uint32, resolver HeightResolver) (bool, error) {
	resolveStart := time.Now()

	hash, err := resolver.HashAtHeight(ctx, height)
	if err != nil {
		return false, c.fail(errors.ERR_RESOLUTION, PhaseResolve, height, err, "[Copy] failed to resolve height %d", height)
	}

	if c.metrics {
		prometheusPrefixCopyResolve.Observe(time.Since(resolveStart).Seconds())
	}

	key := BlockIndexKey(hash)

	value, err := source.Get(key)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			return false, c.fail(errors.ERR_STORAGE_ERROR, PhaseRead, height, err, "[Copy] failed to read block %s at height %d", hash, height)
		}

		if c.missingPolicy == MissingEntrySkip {
			c.logger.Warnf("[Copy] no entry for block %s at height %d, skipping", hash, height)

			if c.metrics {
				prometheusPrefixCopyEntriesSkipped.Inc()
			}

			return false, nil
		}

		return false, c.fail(errors.ERR_BLOCK_NOT_FOUND, PhaseRead, height, err, "[Copy] no entry for block %s at height %d", hash, height)
	}

	if c.verify {
		if err = verifyEntry(value, hash, height); err != nil {
			return false, c.fail(errors.ERR_BLOCK_INVALID, PhaseVerify, height, err, "[Copy] entry for block %s does not match height %d", hash, height)
		}
	}

	if err = destination.Put(key, value); err != nil {
		return false, c.fail(errors.ERR_STORAGE_ERROR, PhaseWrite, height, err, "[Copy] failed to write block %s at height %d", hash, height)
	}

	if c.metrics {
		prometheusPrefixCopyEntriesCopied.Inc()
	}

	c.logger.Debugf("[Copy] copied block %s at height %d (%d bytes)", hash, height, len(value))

	return true, nil
}

func (c *PrefixCopier) fail(code errors.ERR, phase string, height uint32, cause error, format string, args ...interface{}) error {
	if cause != nil {
		args = append(args, cause)
	}

	err := errors.New(code, format, args...)
	err.SetData("height", height)
	err.SetData("phase", phase)

	if c.metrics {
		prometheusPrefixCopyFailures.WithLabelValues(phase).Inc()
	}

	return err
}

// CheckResolverBound fails when resolver is bounded and cannot resolve maxHeight.
func CheckResolverBound(resolver HeightResolver, maxHeight uint32) error {
	if resolver == nil {
		return errors.NewInvalidArgumentError("no height resolver")
	}

	if bounded, ok := resolver.(BoundedResolver); ok && maxHeight > bounded.MaxHeight() {
		return errors.NewInvalidArgumentError("max height %d is beyond the resolver, which ends at %d", maxHeight, bounded.MaxHeight())
	}

	return nil
}

func verifyEntry(value []byte, hash *chainhash.Hash, height uint32) error {
	record, err := DeserializeBlockIndex(value)
	if err != nil {
		return err
	}

	if record.Height != height {
		return errors.NewBlockInvalidError("entry has height %d", record.Height)
	}

	if headerHash := record.BlockHeader.Hash(); !headerHash.IsEqual(hash) {
		return errors.NewBlockInvalidError("entry header hashes to %s", headerHash)
	}

	return nil
}
