package pubip

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultURL answers a GET with the caller's public IP as plain text.
	DefaultURL = "https://api.ipify.org"
	// DefaultTTL is how long a fetched address stays fresh.
	DefaultTTL = 5 * time.Minute
	// Placeholder is displayed until the first successful fetch.
	Placeholder = "?"

	fetchTimeout = 10 * time.Second
	maxBodyBytes = 256
)

type result struct {
	addr string
	err  error
}

// Cache resolves the machine's public address on demand, with a TTL.
// All mutable fields belong to the fast loop: RefreshIfStale and Poll must
// be called from there, and the fetch goroutine communicates only through
// the results channel. One fetch may be in flight at a time; a failed
// attempt is not retried until staleness is re-evaluated on a later tick.
type Cache struct {
	client    *http.Client
	url       string
	userAgent string
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger

	value         string
	lastRefreshed time.Time
	inFlight      bool
	results       chan result
}

// Option adjusts a Cache at construction.
type Option func(*Cache)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithClient overrides the HTTP client, for tests.
func WithClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

func New(url string, ttl time.Duration, userAgent string, log zerolog.Logger, opts ...Option) *Cache {
	if url == "" {
		url = DefaultURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		client:    &http.Client{Timeout: fetchTimeout},
		url:       url,
		userAgent: userAgent,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
		value:     Placeholder,
		results:   make(chan result, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Value returns the last successfully fetched address, or the placeholder.
func (c *Cache) Value() string { return c.value }

// Poll applies a completed fetch, if any, without blocking. A failure
// leaves the value and the refresh timestamp untouched, so the next
// staleness check may try again.
func (c *Cache) Poll() {
	select {
	case res := <-c.results:
		c.inFlight = false
		if res.err != nil {
			c.log.Debug().Err(res.err).Msg("public address fetch failed, keeping last value")
			return
		}
		c.value = res.addr
		c.lastRefreshed = c.now()
	default:
	}
}

// RefreshIfStale starts a background fetch when the feature is enabled, the
// TTL has elapsed, and no fetch is already in flight. The fetch is never
// cancelled; a slow response simply lands on a later Poll.
func (c *Cache) RefreshIfStale(enabled bool) {
	if !enabled || c.inFlight {
		return
	}
	if !c.lastRefreshed.IsZero() && c.now().Sub(c.lastRefreshed) < c.ttl {
		return
	}
	c.inFlight = true
	go func() {
		addr, err := c.fetch()
		c.results <- result{addr: addr, err: err}
	}()
}

func (c *Cache) fetch() (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", c.url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	addr := strings.TrimSpace(string(body))
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("malformed address %q", addr)
	}
	return addr, nil
}
