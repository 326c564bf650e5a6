package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newscrawl/internal/config"
	"newscrawl/internal/crawler"
	"newscrawl/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// crawlFlags is the surface shared by both triggers.
type crawlFlags struct {
	category    string
	sink        string
	baseURL     string
	workers     int
	maxPages    int
	retries     int
	timeoutSec  int
	delayMs     int
	userAgent   string
	obeyRobots  bool
	perHost     float64
	metricsAddr string
}

func (f *crawlFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "publisher media code to crawl (required)")
	cmd.Flags().StringVar(&f.sink, "sink", "postgres", "storage backend: postgres or mongo")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "portal base URL override")
	cmd.Flags().IntVar(&f.workers, "workers", 32, "number of parallel fetchers")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "stop enqueuing after N pages (0 = unbounded)")
	cmd.Flags().IntVar(&f.retries, "retries", 3, "fetch retries before a page is abandoned")
	cmd.Flags().IntVar(&f.timeoutSec, "timeout", 10, "per-fetch timeout (sec)")
	cmd.Flags().IntVar(&f.delayMs, "delay", 200, "base per-request delay (ms), randomized 0.5x-1.5x")
	cmd.Flags().StringVar(&f.userAgent, "user-agent", "newscrawl/1.0", "HTTP User-Agent string")
	cmd.Flags().BoolVar(&f.obeyRobots, "obey-robots", false, "honor robots.txt")
	cmd.Flags().Float64Var(&f.perHost, "max-per-host", 16, "max requests/sec to one host")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", ":2112", "prometheus endpoint address (empty disables)")
	_ = cmd.MarkFlagRequired("category")
}

func (f *crawlFlags) options() crawler.Options {
	return crawler.Options{
		BaseURL:         f.baseURL,
		Category:        f.category,
		Workers:         f.workers,
		MaxPages:        f.maxPages,
		MaxRetries:      f.retries,
		FetchTimeout:    time.Duration(f.timeoutSec) * time.Second,
		Delay:           time.Duration(f.delayMs) * time.Millisecond,
		RandomizeDelay:  true,
		UserAgent:       f.userAgent,
		ObeyRobots:      f.obeyRobots,
		RequestsPerHost: f.perHost,
		MetricsAddr:     f.metricsAddr,
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newscrawl",
		Short:         "News portal article crawler",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newFollowCmd(), newBackfillCmd())
	return root
}

func newFollowCmd() *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Follow list and article links from the live index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.options()
			opts.Follow = true
			return runCrawl(cmd.Context(), opts, flags.sink)
		},
	}
	flags.register(cmd)
	return cmd
}

func newBackfillCmd() *cobra.Command {
	flags := &crawlFlags{}
	var start, end string
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Walk a date range backward, newest date first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.options()
			opts.StartDate = start
			opts.EndDate = end
			return runCrawl(cmd.Context(), opts, flags.sink)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&start, "start", "", "inclusive start date, YYYYMMDD (the later date)")
	cmd.Flags().StringVar(&end, "end", "", "inclusive end date, YYYYMMDD (the earlier date)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runCrawl(ctx context.Context, opts crawler.Options, sinkKind string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg := config.Load()
	sink, err := buildSink(ctx, sinkKind, cfg, log)
	if err != nil {
		log.Error("sink connection failed", zap.String("sink", sinkKind), zap.Error(err))
		return err
	}
	defer func() {
		if cerr := sink.Close(context.Background()); cerr != nil {
			log.Warn("sink close failed", zap.Error(cerr))
		}
	}()

	eng, err := crawler.New(ctx, opts, sink, log)
	if err != nil {
		log.Error("crawl aborted before any fetch", zap.Error(err))
		return err
	}
	return eng.Run(ctx)
}

func buildSink(ctx context.Context, kind string, cfg *config.Config, log *zap.Logger) (storage.Sink, error) {
	switch kind {
	case "mongo":
		return storage.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, log)
	case "postgres":
		return storage.NewPostgres(ctx, cfg.Postgres, log)
	default:
		return nil, fmt.Errorf("unknown sink %q (want postgres or mongo)", kind)
	}
}
