package blockindex

import (
	"context"

	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/settings"
	"github.com/bsv-blockchain/indexprefix/ulogger"
	"github.com/bsv-blockchain/indexprefix/util"
)

// NewResolverFromSettings returns the resolver selected by prefixcopy_resolver.
func NewResolverFromSettings(tSettings *settings.Settings) (HeightResolver, error) {
	switch tSettings.PrefixCopy.Resolver {
	case settings.ResolverTable:
		return TableResolverForNetwork(tSettings.Network)
	case settings.ResolverRemote:
		if tSettings.PrefixCopy.APIEndpoint == "" {
			return nil, errors.NewConfigurationError("prefixcopy_apiEndpoint is required for the remote resolver")
		}

		return NewRemoteResolver(tSettings.PrefixCopy.APIEndpoint, nil), nil
	default:
		return nil, errors.NewConfigurationError("unknown resolver %q", tSettings.PrefixCopy.Resolver)
	}
}

// CopyPrefix copies the block index entries of heights 0..prefixcopy_maxHeight
// from the store at prefixcopy_sourcePath into a new store created at
// prefixcopy_destinationPath. Both stores are closed before it returns.
//
// The destination must not exist. When it does, CopyPrefix fails before
// reading anything from the source.
func CopyPrefix(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, resolver HeightResolver) (result *Result, err error) {
	cfg := tSettings.PrefixCopy

	policy, err := ParseMissingEntryPolicy(cfg.MissingEntries)
	if err != nil {
		return nil, err
	}

	if err = CheckResolverBound(resolver, cfg.MaxHeight); err != nil {
		return nil, err
	}

	source, err := OpenIndexDB(cfg.SourcePath)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			logger.Errorf("[CopyPrefix] %v", closeErr)

			if err == nil {
				err = closeErr
			}
		}
	}()

	destination, err := CreateIndexDB(cfg.DestinationPath)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := destination.Close(); closeErr != nil {
			logger.Errorf("[CopyPrefix] %v", closeErr)

			if err == nil {
				err = closeErr
			}
		}
	}()

	logger.Infof("[CopyPrefix] copying heights 0 to %d from %s to %s", cfg.MaxHeight, source.Path(), destination.Path())

	copier := NewPrefixCopier(logger,
		WithMissingEntryPolicy(policy),
		WithVerify(cfg.Verify),
		WithProgressInterval(cfg.ProgressInterval),
		WithMetrics(cfg.MetricsEnabled),
	)

	result, err = copier.Copy(ctx, source, destination, cfg.MaxHeight, resolver)
	if err != nil {
		return result, err
	}

	logger.Infof("[CopyPrefix] done, %s entries copied, %s skipped", util.FormatNumber(uint64(result.Copied)), util.FormatNumber(uint64(result.Skipped)))

	return result, nil
}
