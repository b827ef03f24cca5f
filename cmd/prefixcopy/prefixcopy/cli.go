// Package prefixcopy is the command line front end of the block index prefix copier.
//
// Commands:
//
//	copy     copy the block index entries of heights 0..N into a new store
//	inspect  print the block index entries of a store
//	resolve  print the hash and storage key of a height
//
// Every flag overrides the matching setting, see settings.NewSettings.
package prefixcopy

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/bsv-blockchain/indexprefix/blockindex"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/settings"
	"github.com/bsv-blockchain/indexprefix/ulogger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// resolverFlags returns new flag values on every call, commands must not share them.
func resolverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "resolver",
			Usage: "how heights are mapped to hashes: table or remote",
		},
		&cli.StringFlag{
			Name:  "network",
			Usage: "network of the built-in hash table (signet, mainnet, testnet, regtest, stn)",
		},
		&cli.StringFlag{
			Name:  "api-endpoint",
			Usage: "block explorer API base URL for the remote resolver",
		},
	}
}

// Start runs the command line in args (program name first) and exits the
// process with a non-zero status on failure.
func Start(args []string, version, commit string) {
	tSettings := settings.NewSettings()
	logger := ulogger.InitLogger(tSettings.ClientName, tSettings)

	app := NewApp(logger, tSettings)
	app.Version = fmt.Sprintf("%s (%s)", version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := app.RunContext(ctx, args)

	stop()

	if err != nil {
		logger.Errorf("%s", describeFailure(err))
		os.Exit(1)
	}
}

// NewApp builds the command line application on top of the given settings,
// which the command flags modify in place.
func NewApp(logger ulogger.Logger, tSettings *settings.Settings) *cli.App {
	return &cli.App{
		Name:  "prefixcopy",
		Usage: "Build a reduced copy of a block index holding only heights 0..N",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN, ERROR or FATAL",
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("log-level") {
				logger.SetLogLevel(c.String("log-level"))
			}

			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "copy",
				Usage: "Copy the block index entries of heights 0..max-height into a new store",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "existing block index directory, e.g. ~/.bitcoin/signet/blocks/index",
					},
					&cli.StringFlag{
						Name:  "destination",
						Usage: "directory to create, must not exist",
					},
					&cli.UintFlag{
						Name:  "max-height",
						Usage: "last height to copy",
					},
					&cli.StringFlag{
						Name:  "missing-entries",
						Usage: "what to do when the source has no entry for a height: fail or skip",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "decode every entry and check it belongs to its height",
					},
					&cli.UintFlag{
						Name:  "progress-interval",
						Usage: "heights between progress lines, 10 unless set; other values change how often progress is reported",
					},
					&cli.StringFlag{
						Name:  "metrics-listen-address",
						Usage: "serve prometheus metrics on this address while copying",
					},
				}, resolverFlags()...),
				Action: func(c *cli.Context) error {
					return copyAction(c, logger, tSettings)
				},
			},
			{
				Name:  "inspect",
				Usage: "Print the block index entries of a store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Usage:    "block index directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "number of entries to print, 0 for all",
						Value: 10,
					},
				},
				Action: inspectAction,
			},
			{
				Name:  "resolve",
				Usage: "Print the hash and storage key of a height",
				Flags: append([]cli.Flag{
					&cli.UintFlag{
						Name:     "height",
						Usage:    "block height",
						Required: true,
					},
				}, resolverFlags()...),
				Action: func(c *cli.Context) error {
					return resolveAction(c, tSettings)
				},
			},
		},
	}
}

func copyAction(c *cli.Context, logger ulogger.Logger, tSettings *settings.Settings) error {
	if err := applyFlags(c, tSettings); err != nil {
		return err
	}

	if err := tSettings.Validate(); err != nil {
		return err
	}

	resolver, err := blockindex.NewResolverFromSettings(tSettings)
	if err != nil {
		return err
	}

	listenAddress := tSettings.PrefixCopy.MetricsListenAddress
	if listenAddress == "" {
		_, err = blockindex.CopyPrefix(c.Context, logger, tSettings, resolver)
		return err
	}

	// bind before the destination exists, a busy port must not leave a copy behind
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return errors.NewConfigurationError("couldn't listen for metrics on %s", listenAddress, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// the metrics server only observes the copy, its failures never stop it
	var g errgroup.Group

	g.Go(func() error {
		logger.Infof("[copy] serving metrics on http://%s/metrics", listener.Addr())

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[copy] metrics server on %s stopped: %v", listener.Addr(), err)
		}

		return nil
	})

	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()

		_, err := blockindex.CopyPrefix(c.Context, logger, tSettings, resolver)

		return err
	})

	return g.Wait()
}

func inspectAction(c *cli.Context) error {
	db, err := blockindex.OpenIndexDB(c.String("path"))
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	return db.DumpRecords(c.App.Writer, c.Int("count"))
}

func resolveAction(c *cli.Context, tSettings *settings.Settings) error {
	if err := applyFlags(c, tSettings); err != nil {
		return err
	}

	resolver, err := blockindex.NewResolverFromSettings(tSettings)
	if err != nil {
		return err
	}

	height, err := safeconversion.Uint64ToUint32(uint64(c.Uint("height")))
	if err != nil {
		return err
	}

	hash, err := resolver.HashAtHeight(c.Context, height)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(c.App.Writer, "height: %d\nhash:   %s\nkey:    %s\n",
		height, hash, hex.EncodeToString(blockindex.BlockIndexKey(hash)))

	return err
}

// applyFlags copies the flags given on the command line over the settings.
func applyFlags(c *cli.Context, tSettings *settings.Settings) error {
	cfg := &tSettings.PrefixCopy

	stringFlags := map[string]*string{
		"resolver":               &cfg.Resolver,
		"network":                &tSettings.Network,
		"api-endpoint":           &cfg.APIEndpoint,
		"source":                 &cfg.SourcePath,
		"destination":            &cfg.DestinationPath,
		"missing-entries":        &cfg.MissingEntries,
		"metrics-listen-address": &cfg.MetricsListenAddress,
	}

	for name, target := range stringFlags {
		if c.IsSet(name) {
			*target = c.String(name)
		}
	}

	uintFlags := map[string]*uint32{
		"max-height":        &cfg.MaxHeight,
		"progress-interval": &cfg.ProgressInterval,
	}

	for name, target := range uintFlags {
		if !c.IsSet(name) {
			continue
		}

		value, err := safeconversion.Uint64ToUint32(uint64(c.Uint(name)))
		if err != nil {
			return errors.NewConfigurationError("invalid --%s", name, err)
		}

		*target = value
	}

	if c.IsSet("verify") {
		cfg.Verify = c.Bool("verify")
	}

	return nil
}

// describeFailure names the height and phase a copy stopped at, when known.
func describeFailure(err error) string {
	var tErr *errors.Error
	if !errors.As(err, &tErr) {
		return err.Error()
	}

	category := errors.GetErrorCategory(err)

	if height, phase := tErr.GetData("height"), tErr.GetData("phase"); height != nil && phase != nil {
		return fmt.Sprintf("copy failed at height %v during %v (%s error), the destination holds the heights before it: %v", height, phase, category, err)
	}

	return fmt.Sprintf("%s error: %v", category, err)
}
