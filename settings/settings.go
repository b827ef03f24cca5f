package settings

import (
	"github.com/bsv-blockchain/indexprefix/errors"
)

func NewSettings() *Settings {
	maxHeight, err := getUint32("prefixcopy_maxHeight", 2)
	if err != nil {
		panic(err)
	}

	progressInterval, err := getUint32("prefixcopy_progressInterval", 10)
	if err != nil {
		panic(err)
	}

	return &Settings{
		ClientName: getString("clientName", "prefixcopy"),
		Network:    getString("network", "signet"),
		Logger: LoggerSettings{
			Level: getString("logLevel", "INFO"),
			Type:  getString("logger_type", "zerolog"),
		},
		PrefixCopy: PrefixCopySettings{
			Resolver:         getString("prefixcopy_resolver", ResolverTable),
			APIEndpoint:      getString("prefixcopy_apiEndpoint", "https://mempool.space/signet/api/"),
			SourcePath:       getString("prefixcopy_sourcePath", "./signet/index"),
			DestinationPath:  getString("prefixcopy_destinationPath", "./pruned-db"),
			MaxHeight:        maxHeight,
			MissingEntries:   getString("prefixcopy_missingEntries", MissingEntriesFail),
			Verify:           getBool("prefixcopy_verify", false),
			ProgressInterval: progressInterval,
			MetricsEnabled:   getBool("prefixcopy_metricsEnabled", true),

			MetricsListenAddress: getString("prefixcopy_metricsListenAddress", ""),
		},
	}
}

// Validate checks the values that cannot be checked by type alone.
func (s *Settings) Validate() error {
	switch s.PrefixCopy.Resolver {
	case ResolverTable:
		if s.Network == "" {
			return errors.NewConfigurationError("network must be set for the %q resolver", ResolverTable)
		}
	case ResolverRemote:
		if s.PrefixCopy.APIEndpoint == "" {
			return errors.NewConfigurationError("prefixcopy_apiEndpoint must be set for the %q resolver", ResolverRemote)
		}
	default:
		return errors.NewConfigurationError("unknown resolver %q, expected %q or %q", s.PrefixCopy.Resolver, ResolverTable, ResolverRemote)
	}

	switch s.PrefixCopy.MissingEntries {
	case MissingEntriesFail, MissingEntriesSkip:
	default:
		return errors.NewConfigurationError("unknown missing entry policy %q, expected %q or %q", s.PrefixCopy.MissingEntries, MissingEntriesFail, MissingEntriesSkip)
	}

	if s.PrefixCopy.SourcePath == "" || s.PrefixCopy.DestinationPath == "" {
		return errors.NewConfigurationError("source and destination paths must both be set")
	}

	if s.PrefixCopy.ProgressInterval == 0 {
		return errors.NewConfigurationError("prefixcopy_progressInterval must be greater than zero")
	}

	return nil
}
