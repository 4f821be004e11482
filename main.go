package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/johnstarich/tally/consts"
	"github.com/johnstarich/tally/payee"
	"github.com/johnstarich/tally/pipe"
	"github.com/johnstarich/tally/pipeline"
	"github.com/johnstarich/tally/report"
	"github.com/johnstarich/tally/server"
	"github.com/johnstarich/tally/source"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type options struct {
	url              string
	file             string
	pageSize         int
	locations        string
	strictDuplicates bool
	rate             float64
	retries          int
	timeout          time.Duration
	cacheTTL         time.Duration
	isServer         bool
	port             uint
	autoSync         bool
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("DEVELOPMENT") == "true" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadSource(opts options, logger *zap.Logger) (source.Source, error) {
	if opts.file == "" {
		return source.NewHTTP(source.HTTPConfig{
			BaseURL:           opts.url,
			Timeout:           opts.timeout,
			RequestsPerSecond: opts.rate,
			Retries:           opts.retries,
			CacheTTL:          opts.cacheTTL,
		}, logger)
	}

	file, err := os.Open(opts.file)
	if err != nil {
		return nil, errors.Wrapf(err, "Error opening records file '%s'", opts.file)
	}
	defer file.Close()
	return source.LoadStatic(file, opts.pageSize)
}

func start(ctx context.Context, opts options, out io.Writer) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	src, err := loadSource(opts, logger)
	if err != nil {
		return err
	}
	pipelineOpts := []pipeline.Option{pipeline.WithLocations(payee.ParseLocations(opts.locations))}
	if opts.strictDuplicates {
		pipelineOpts = append(pipelineOpts, pipeline.WithBucketScan())
	}
	p := pipeline.New(src, logger, pipelineOpts...)

	if opts.isServer {
		gin.SetMode(gin.ReleaseMode)
		err := server.Run(ctx, opts.autoSync, fmt.Sprintf("0.0.0.0:%d", opts.port), p, logger)
		if err != nil {
			logger.Error("Server run failed", zap.Error(err))
		}
		return err
	}

	var result pipeline.Result
	var runErr error
	return pipe.OpFuncs{
		func() error {
			result, runErr = p.Run(ctx)
			if runErr != nil && !source.IsUnavailable(runErr) {
				return runErr
			}
			if err := result.RejectedErr(); err != nil {
				logger.Warn("Some records were rejected", zap.Int("rejected", len(result.Rejected)), zap.Error(err))
			}
			return nil
		},
		func() error {
			return report.Write(out, result)
		},
		func() error {
			if runErr != nil {
				return errors.Wrap(runErr, "Report is incomplete")
			}
			return nil
		},
	}.Do()
}

func usage(flagSet *flag.FlagSet) string {
	oldOutput := flagSet.Output()
	buf := bytes.NewBuffer(nil)
	flagSet.SetOutput(buf)
	flagSet.Usage()
	flagSet.SetOutput(oldOutput)
	return buf.String()
}

func requireOneFlag(flagSet *flag.FlagSet, names ...string) error {
	setFlags := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	var found []string
	for _, name := range names {
		if setFlags[name] {
			found = append(found, name)
		}
	}
	if len(found) != 1 {
		return errors.Errorf("Exactly one of these flags is required: %s", strings.Join(names, ", "))
	}
	return nil
}

func parseOptions(args []string) (opts options, printVersion bool, err error) {
	flagSet := flag.NewFlagSet("tally", flag.ContinueOnError)
	flagSet.StringVar(&opts.url, "url", "", "Base URL of the transaction source. Pages are fetched from URL/transactions/{page}.json")
	flagSet.StringVar(&opts.file, "file", "", "Path to a JSON file containing an array of records, used instead of -url")
	flagSet.IntVar(&opts.pageSize, "page-size", 10, "Number of records per page when reading from -file")
	flagSet.StringVar(&opts.locations, "locations", strings.Join(payee.DefaultLocations, ","), "Comma separated, ordered list of location names removed from company names")
	flagSet.BoolVar(&opts.strictDuplicates, "strict-duplicates", false, "Compare every accepted transaction with a matching amount when detecting duplicates")
	flagSet.Float64Var(&opts.rate, "rate", 0, "Maximum requests per second to the source. Zero is unlimited")
	flagSet.IntVar(&opts.retries, "retries", 2, "Number of retries for failed page requests")
	flagSet.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for each page request")
	flagSet.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "How long fetched pages are reused between syncs. Zero disables the cache")
	flagSet.BoolVar(&opts.isServer, "server", false, "Starts the report http server and syncs on an interval until terminated")
	flagSet.UintVar(&opts.port, "port", 0, "Sets the port the server listens on. Defaults to 8080. Implies -server")
	noSyncLoop := flagSet.Bool("no-auto-sync", false, "Disables auto-sync")
	requestVersion := flagSet.Bool("version", false, "Print the version and exit")
	if err := flagSet.Parse(args); err != nil {
		return opts, false, err
	}
	if *requestVersion {
		return opts, true, nil
	}

	if err := requireOneFlag(flagSet, "url", "file"); err != nil {
		return opts, false, errors.Errorf("%s\n%s", err.Error(), usage(flagSet))
	}
	if opts.pageSize < 1 {
		return opts, false, errors.Errorf("Page size must be a positive integer: %d", opts.pageSize)
	}
	opts.autoSync = !*noSyncLoop
	opts.isServer = opts.isServer || opts.port != 0
	if opts.port == 0 {
		opts.port = 8080
	}
	if opts.isServer && uint(uint16(opts.port)) != opts.port {
		return opts, false, errors.Errorf("Port number must be a positive 16-bit integer: %d", opts.port)
	}
	return opts, false, nil
}

func handleErrors(ctx context.Context, args []string, out io.Writer) (usageErr bool, err error) {
	opts, printVersion, err := parseOptions(args)
	if err != nil {
		return true, err
	}
	if printVersion {
		fmt.Fprintln(out, consts.Version)
		return false, nil
	}
	return false, start(ctx, opts, out)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		s := <-c
		fmt.Fprintln(os.Stderr, `{"level":"info","msg":"Handling signal: `+s.String()+`"}`)
		cancel()
		<-c
		os.Exit(1)
	}()

	usageErr, err := handleErrors(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if usageErr {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
