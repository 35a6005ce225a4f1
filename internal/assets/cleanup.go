package assets

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Destroyer is the capability Cleanup needs from the asset client.
type Destroyer interface {
	Destroy(ctx context.Context, assetURL string) error
}

// Cleanup deletes orphaned remote assets without blocking or failing the
// operation that orphaned them. Each URL is attempted once on its own
// goroutine with a bounded timeout; failures are logged and dropped — the
// entity mutation that triggered the cleanup has already committed.
type Cleanup struct {
	client  Destroyer
	log     zerolog.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// NewCleanup wraps client in a best-effort deletion helper.
func NewCleanup(client Destroyer, log zerolog.Logger) *Cleanup {
	return &Cleanup{
		client:  client,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// Enqueue schedules best-effort deletion of every URL and returns
// immediately. Empty URLs are skipped. A nil Cleanup is a no-op, so callers
// without an asset backend configured need no special casing.
func (c *Cleanup) Enqueue(urls ...string) {
	if c == nil {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		c.wg.Add(1)
		go c.attempt(u)
	}
}

// Wait blocks until every scheduled deletion attempt has settled. Intended
// for shutdown and tests; request paths never call it.
func (c *Cleanup) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

func (c *Cleanup) attempt(url string) {
	defer c.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.client.Destroy(ctx, url)
	switch {
	case err == nil:
		c.log.Debug().Str("asset", url).Msg("orphaned asset deleted")
	case err == ErrNotFound:
		c.log.Debug().Str("asset", url).Msg("orphaned asset already gone")
	default:
		c.log.Warn().Err(err).Str("asset", url).Msg("asset cleanup failed")
	}
}
