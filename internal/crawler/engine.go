// internal/crawler/engine.go
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"newscrawl/internal/frontier"
	"newscrawl/internal/hostman"
	"newscrawl/internal/parser"
	"newscrawl/internal/storage"
)

const defaultBaseURL = parser.DefaultBaseURL

// Engine drives one crawl run: a dispatcher feeds frontier tasks to a worker
// pool, each worker fetches a page and turns it into follow-up tasks and/or
// a stored record. The engine performs no blocking I/O of its own beyond the
// delegated fetches.
type Engine struct {
	opts    Options
	sink    storage.Sink
	queue   *frontier.Queue
	dedup   *frontier.Dedup
	visited *frontier.Visited
	hosts   *hostman.Manager
	client  *http.Client
	log     *zap.Logger

	// pending counts enqueued-but-unfinished tasks; the run is over when
	// it drains.
	pending sync.WaitGroup
}

// New prepares the sink partition and primes the dedup filter. A failure
// here is the one fatal fault of the pipeline: the run aborts before any
// fetch is issued.
func New(ctx context.Context, opts Options, sink storage.Sink, log *zap.Logger) (*Engine, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if err := sink.EnsurePartition(ctx, opts.Category); err != nil {
		return nil, fmt.Errorf("prepare partition %s: %w", opts.Category, err)
	}
	ids, err := sink.KnownIDs(ctx, opts.Category)
	if err != nil {
		return nil, fmt.Errorf("prime dedup filter for %s: %w", opts.Category, err)
	}
	log.Info("dedup filter primed",
		zap.String("category", opts.Category),
		zap.Int("known_ids", len(ids)))

	return &Engine{
		opts:    opts,
		sink:    sink,
		queue:   frontier.NewQueue(),
		dedup:   frontier.NewDedup(ids),
		visited: frontier.NewVisited(),
		hosts:   hostman.New(opts.UserAgent, opts.ObeyRobots, opts.RequestsPerHost, opts.RobotsTimeout),
		client:  &http.Client{},
		log:     log,
	}, nil
}

// Run walks the frontier until it drains or ctx is canceled. Per-item faults
// are logged and skipped; they never stop the run.
func (e *Engine) Run(ctx context.Context) error {
	if e.opts.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(e.opts.MetricsAddr, mux); err != nil {
				e.log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if e.opts.Follow {
		e.enqueue(frontier.Task{
			Kind: frontier.KindList,
			URL:  parser.FollowSeedURL(e.opts.BaseURL, e.opts.Category),
		})
	} else {
		e.enqueue(frontier.Task{
			Kind: frontier.KindList,
			URL:  parser.ListURL(e.opts.BaseURL, e.opts.Category, e.opts.StartDate, 1),
			Date: e.opts.StartDate,
			Page: 1,
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan frontier.Task, e.opts.Workers*2)

	// Dispatcher: move tasks from the frontier to the worker channel.
	go func() {
		for {
			t, ok := e.queue.Pop()
			if !ok {
				select {
				case <-ctx.Done():
					return
				case <-time.After(50 * time.Millisecond):
					continue
				}
			}
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, jobs)
		}()
	}

	start := time.Now()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			e.log.Info("progress",
				zap.Duration("elapsed", time.Since(start).Round(time.Second)),
				zap.Int("visited", e.visited.Size()),
				zap.Int("queued", e.queue.Size()))
		}
	}()

	drained := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(drained)
	}()

	var runErr error
	select {
	case <-drained:
	case <-ctx.Done():
		runErr = ctx.Err()
	}
	cancel()
	wg.Wait()

	e.log.Info("crawl finished",
		zap.Int("visited", e.visited.Size()),
		zap.Int("total_queued", e.queue.TotalQueued()),
		zap.Duration("elapsed", time.Since(start).Round(time.Second)))
	return runErr
}

// enqueue admits a task unless its URL was already seen this run or the page
// cap is hit. Marking visited at enqueue time keeps duplicate links found on
// different list pages from ever entering the queue.
func (e *Engine) enqueue(t frontier.Task) {
	if e.opts.MaxPages > 0 && e.visited.Size() >= e.opts.MaxPages {
		return
	}
	if e.visited.Has(t.URL) {
		return
	}
	e.visited.Add(t.URL)
	e.pending.Add(1)
	e.queue.Enqueue(t)
}
