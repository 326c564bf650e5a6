package hostman

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// HostInfo stores crawl policy & limiter for one host.
type HostInfo struct {
	robots  *robotstxt.RobotsData // nil if fetch failed or robots ignored
	limiter *rate.Limiter         // per-host token bucket
}

// Manager holds HostInfo for every domain we touch. With ObeyRobots off the
// robots.txt fetch is skipped entirely and only the rate limit applies; the
// portal's robots file disallows the list pages, so the default run ignores
// it the way the original crawler did.
type Manager struct {
	mu         sync.RWMutex
	hosts      map[string]*HostInfo
	userAgent  string
	obeyRobots bool
	rps        float64       // requests per second
	timeout    time.Duration // robots.txt download timeout
}

// New returns a ready Manager.
func New(ua string, obeyRobots bool, rps float64, robotsTimeout time.Duration) *Manager {
	return &Manager{
		userAgent:  ua,
		hosts:      make(map[string]*HostInfo),
		obeyRobots: obeyRobots,
		rps:        rps,
		timeout:    robotsTimeout,
	}
}

// Check returns (allowed, waitFn). waitFn blocks on the token bucket.
func (m *Manager) Check(u *url.URL) (bool, func(ctx context.Context) error) {
	m.mu.RLock()
	h, ok := m.hosts[u.Host]
	m.mu.RUnlock()

	if !ok {
		burst := int(m.rps)
		if burst < 1 {
			burst = 1
		}
		h = &HostInfo{
			limiter: rate.NewLimiter(rate.Limit(m.rps), burst),
		}
		if m.obeyRobots {
			// Fetch robots.txt once per host.
			h.robots = fetchRobots(u.Scheme, u.Host, m.userAgent, m.timeout)
		}

		m.mu.Lock()
		m.hosts[u.Host] = h
		m.mu.Unlock()
	}

	allowed := true
	if h.robots != nil {
		grp := h.robots.FindGroup(m.userAgent)
		allowed = grp.Test(u.Path)
	}

	return allowed, h.limiter.Wait
}

// --- helpers -------------------------------------------------------------

func fetchRobots(scheme, host, ua string, timeout time.Duration) *robotstxt.RobotsData {
	robotsURL := scheme + "://" + host + "/robots.txt"

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", ua)

	resp, err := http.DefaultClient.Do(req)
	if err != nil || resp.StatusCode >= 400 {
		return nil // treat as no robots file
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return robots
}
