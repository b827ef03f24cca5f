package settings

const (
	ResolverTable  = "table"
	ResolverRemote = "remote"

	MissingEntriesFail = "fail"
	MissingEntriesSkip = "skip"
)

type LoggerSettings struct {
	Level string
	Type  string
}

type PrefixCopySettings struct {
	// Resolver selects how heights are mapped to hashes, ResolverTable or ResolverRemote.
	Resolver    string
	APIEndpoint string

	SourcePath      string
	DestinationPath string
	MaxHeight       uint32

	// MissingEntries is the policy for a height whose key is absent from the source.
	MissingEntries string
	Verify         bool

	ProgressInterval uint32
	MetricsEnabled   bool

	// MetricsListenAddress serves /metrics while a copy runs, when set.
	MetricsListenAddress string
}

type Settings struct {
	ClientName string
	Network    string
	Logger     LoggerSettings
	PrefixCopy PrefixCopySettings
}
