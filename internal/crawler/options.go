package crawler

import (
	"errors"
	"fmt"
	"time"
)

// Options configures one crawl run. Defaults mirror the portal-friendly
// policy the crawler has always run with: 3 retries, 10s timeout, 200ms
// randomized delay, 32 workers.
type Options struct {
	BaseURL  string
	Category string // publisher media code, e.g. "001"

	// Backfill trigger: walk list pages backward from StartDate to EndDate
	// (both inclusive, 8-digit YYYYMMDD, StartDate >= EndDate).
	StartDate string
	EndDate   string

	// Follow trigger: ignore the date range and follow list/article links
	// from the undated index instead.
	Follow bool

	Workers         int
	MaxPages        int // 0 = unbounded; safety cap for follow mode
	MaxRetries      int
	FetchTimeout    time.Duration
	Delay           time.Duration // politeness pause before each request
	RandomizeDelay  bool          // scale Delay by 0.5x..1.5x per request
	UserAgent       string
	ObeyRobots      bool
	RequestsPerHost float64
	RobotsTimeout   time.Duration
	MetricsAddr     string // "" disables the /metrics endpoint
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Workers <= 0 {
		o.Workers = 32
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "newscrawl/1.0"
	}
	if o.RequestsPerHost <= 0 {
		o.RequestsPerHost = 16
	}
	if o.RobotsTimeout <= 0 {
		o.RobotsTimeout = 5 * time.Second
	}
	return o
}

func (o Options) validate() error {
	if o.Category == "" {
		return errors.New("category (media code) is required")
	}
	if o.Follow {
		return nil
	}
	if len(o.StartDate) != 8 || len(o.EndDate) != 8 {
		return fmt.Errorf("dates must be 8-digit YYYYMMDD, got start=%q end=%q", o.StartDate, o.EndDate)
	}
	if o.StartDate < o.EndDate {
		return fmt.Errorf("start date %s is earlier than end date %s; the walk moves backward in time", o.StartDate, o.EndDate)
	}
	return nil
}
