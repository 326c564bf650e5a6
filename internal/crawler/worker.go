package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"newscrawl/internal/frontier"
	"newscrawl/internal/metrics"
	"newscrawl/internal/parser"
	"newscrawl/internal/storage"
)

// maxBody caps how much of a response we read. Article pages are well under
// this; anything bigger is not a page we want.
const maxBody = 4 << 20

func (e *Engine) worker(ctx context.Context, jobs <-chan frontier.Task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-jobs:
			if !ok {
				return
			}
			e.process(ctx, t)
			e.pending.Done()
		}
	}
}

// process runs one task to completion. Every failure path here is local:
// log, count, move on.
func (e *Engine) process(ctx context.Context, t frontier.Task) {
	body, finalURL, err := e.fetch(ctx, t.URL)
	if err != nil {
		metrics.FetchErrors.Inc()
		e.log.Warn("fetch abandoned", zap.String("url", t.URL), zap.Error(err))
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.log.Warn("unparseable document", zap.String("url", t.URL), zap.Error(err))
		return
	}

	switch t.Kind {
	case frontier.KindList:
		if e.opts.Follow {
			e.processFollow(doc)
		} else {
			e.processList(doc, t)
		}
	case frontier.KindArticle:
		e.processArticle(ctx, doc, finalURL)
	}
}

// processList handles one backfill list page: article links first (headline
// set, then secondary set, both in document order), then the same-date
// pagination target, then the date rollover.
func (e *Engine) processList(doc *goquery.Document, t frontier.Task) {
	step := parser.WalkList(doc, t.Date, t.Page, e.opts.EndDate, e.dedup.Has)

	e.log.Info("list page parsed",
		zap.String("date", t.Date),
		zap.Int("page", t.Page),
		zap.Int("articles", len(step.ArticleURLs)))

	for _, u := range step.ArticleURLs {
		e.enqueue(frontier.Task{Kind: frontier.KindArticle, URL: u})
	}
	if step.NextPage > 0 {
		e.enqueue(frontier.Task{
			Kind: frontier.KindList,
			URL:  parser.ListURL(e.opts.BaseURL, e.opts.Category, t.Date, step.NextPage),
			Date: t.Date,
			Page: step.NextPage,
		})
	} else {
		e.log.Info("date exhausted", zap.String("date", t.Date))
	}
	if step.NextDate != "" {
		e.enqueue(frontier.Task{
			Kind: frontier.KindList,
			URL:  parser.ListURL(e.opts.BaseURL, e.opts.Category, step.NextDate, 1),
			Date: step.NextDate,
			Page: 1,
		})
	}
}

// processFollow handles one auto-follow list page: every admitted link is
// either another list page or an article fetch.
func (e *Engine) processFollow(doc *goquery.Document) {
	for _, u := range parser.FollowLinks(doc, e.opts.BaseURL, e.opts.Category) {
		if parser.IsListURL(u) {
			e.enqueue(frontier.Task{Kind: frontier.KindList, URL: u})
			continue
		}
		aid := queryParam(u, "aid")
		if aid == "" || e.dedup.Has(aid) {
			continue
		}
		e.enqueue(frontier.Task{Kind: frontier.KindArticle, URL: u})
	}
}

// processArticle extracts the record and hands it to the sink. An
// unidentifiable article (no aid/oid) is skipped; a duplicate is
// success-equivalent; any other sink fault drops the record and continues.
func (e *Engine) processArticle(ctx context.Context, doc *goquery.Document, pageURL string) {
	rec, err := parser.Extract(doc, pageURL)
	if err != nil {
		e.log.Warn("unidentifiable article skipped", zap.String("url", pageURL), zap.Error(err))
		return
	}

	res, err := e.sink.Put(ctx, rec)
	if err != nil {
		metrics.SinkFailures.Inc()
		e.log.Warn("record dropped",
			zap.String("article_id", rec.ArticleID),
			zap.String("media_code", rec.MediaCode),
			zap.Error(err))
		return
	}
	switch res {
	case storage.DuplicateIgnored:
		metrics.DuplicatesIgnored.Inc()
		e.log.Info("duplicate ignored", zap.String("article_id", rec.ArticleID))
	default:
		metrics.ArticlesStored.Inc()
		e.log.Info("article stored",
			zap.String("article_id", rec.ArticleID),
			zap.String("title", rec.Title),
			zap.String("category", rec.Category),
			zap.String("site", rec.Site))
	}
}

// fetch applies politeness (robots, per-host rate limit, delay with jitter)
// and retries, returning the body and the post-redirect URL.
func (e *Engine) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("bad url: %w", err)
	}

	allowed, wait := e.hosts.Check(u)
	if !allowed {
		return nil, "", fmt.Errorf("disallowed by robots.txt: %s", u.Host)
	}

	var lastErr error
	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if err := wait(ctx); err != nil {
			return nil, "", err
		}
		if err := e.politePause(ctx); err != nil {
			return nil, "", err
		}

		body, finalURL, err := e.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, finalURL, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("after %d attempts: %w", e.opts.MaxRetries+1, lastErr)
}

func (e *Engine) fetchOnce(ctx context.Context, rawURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("status %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", err
	}
	metrics.PagesFetched.Inc()
	metrics.BytesFetched.Add(float64(len(b)))

	// Redirects can rewrite the query string the extractor depends on, so
	// report the URL the response actually came from.
	return b, resp.Request.URL.String(), nil
}

// politePause sleeps the configured delay, scaled to 0.5x..1.5x when jitter
// is on.
func (e *Engine) politePause(ctx context.Context) error {
	d := e.opts.Delay
	if d <= 0 {
		return nil
	}
	if e.opts.RandomizeDelay {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func queryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}
