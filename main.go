package main

import (
	"os"

	"github.com/bsv-blockchain/indexprefix/cmd/prefixcopy/prefixcopy"
	"github.com/ordishs/gocore"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "prefixcopy"

// Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	prefixcopy.Start(os.Args, version, commit)
}
