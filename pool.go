package hcpdf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one page is available.
	MinPoolSize = 1

	// MaxPoolSize caps auto-sized pools; each page is a renderer process.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2

	// DefaultAcquireTimeout bounds how long a request waits for an idle page.
	DefaultAcquireTimeout = 60 * time.Second
)

// PoolStats is a snapshot of the pool's state.
type PoolStats struct {
	Size    int `json:"size"`
	Created int `json:"created"`
	Idle    int `json:"idle"`
	InUse   int `json:"in_use"`
	Waiting int `json:"waiting"`
}

// PagePool leases a bounded number of browser pages.
// The sem channel is the admission control: one token per leased page,
// blocked requests are served in arrival order.
// Pages are created lazily on first lease unless Warm is called.
type PagePool struct {
	size           int
	factory        PageFactory
	acquireTimeout time.Duration
	sem            chan struct{}
	done           chan struct{}
	waiting        atomic.Int32

	mu      sync.Mutex
	idle    []Page
	created int
	closed  bool
}

// NewPagePool creates a pool with capacity for n pages built by factory.
func NewPagePool(n int, factory PageFactory) *PagePool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &PagePool{
		size:           n,
		factory:        factory,
		acquireTimeout: DefaultAcquireTimeout,
		sem:            make(chan struct{}, n),
		done:           make(chan struct{}),
		idle:           make([]Page, 0, n),
	}
}

// SetAcquireTimeout changes how long RunOnPage waits for an idle page.
// Zero or negative disables the pool's own timeout (ctx still applies).
func (p *PagePool) SetAcquireTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquireTimeout = d
}

// Warm creates pages until the pool is full, so the first requests do not
// pay the page creation cost. Each creation holds a token, so pages made by
// Warm and by concurrent leases never exceed the pool size.
func (p *PagePool) Warm(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.mu.Lock()
		closed, full := p.closed, p.created >= p.size
		p.mu.Unlock()
		if closed {
			return ErrPoolClosed
		}
		if full {
			return nil
		}

		if err := p.admit(ctx, 0); err != nil {
			return err
		}
		if done, err := p.warmOne(); done || err != nil {
			return err
		}
	}
}

// warmOne creates one idle page while holding a token. It reports done
// when the pool is already full.
func (p *PagePool) warmOne() (done bool, err error) {
	defer func() { <-p.sem }()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return true, ErrPoolClosed
	}
	if p.created >= p.size {
		p.mu.Unlock()
		return true, nil
	}
	p.created++
	p.mu.Unlock()

	page, err := p.factory()
	if err != nil {
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		return true, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = page.Close()
		return true, ErrPoolClosed
	}
	p.idle = append(p.idle, page)
	return false, nil
}

// RunOnPage leases a page, runs fn with exclusive access to it, and returns
// the page to the pool when fn returns or panics.
func (p *PagePool) RunOnPage(ctx context.Context, fn func(ctx context.Context, page Page) error) error {
	page, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(page)

	return fn(ctx, page)
}

// acquire takes a token, then an idle page or a newly created one.
func (p *PagePool) acquire(ctx context.Context) (Page, error) {
	p.mu.Lock()
	closed, timeout := p.closed, p.acquireTimeout
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	if err := p.admit(ctx, timeout); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.sem
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		page := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return page, nil
	}
	// Every page not idle is held by a token holder, so with no idle page
	// and a token in hand created is below size.
	p.created++
	p.mu.Unlock()

	page, err := p.factory()
	if err != nil {
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		<-p.sem
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return page, nil
}

// admit blocks until a token is free. Blocked callers are admitted in
// arrival order.
func (p *PagePool) admit(ctx context.Context, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	p.waiting.Add(1)
	defer p.waiting.Add(-1)

	select {
	case p.sem <- struct{}{}:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return fmt.Errorf("%w after %s", ErrPoolTimeout, timeout)
	}
}

// release resets the page and puts it back. A page that cannot be reset is
// closed and its slot freed for a fresh page.
func (p *PagePool) release(page Page) {
	resetErr := page.Reset()

	p.mu.Lock()
	if p.closed || resetErr != nil {
		if !p.closed {
			p.created--
		}
		p.mu.Unlock()
		_ = page.Close()
		<-p.sem
		return
	}
	p.idle = append(p.idle, page)
	p.mu.Unlock()
	<-p.sem
}

// Close closes idle pages and stops further leases. Pages still leased are
// closed when their callback returns. Returns an aggregated error if
// multiple pages fail to close.
func (p *PagePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	pages := p.idle
	p.idle = nil
	p.mu.Unlock()

	var errs []error
	for _, page := range pages {
		if err := page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PagePool) Size() int {
	return p.size
}

// Stats returns a snapshot of the pool's state.
func (p *PagePool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Size:    p.size,
		Created: p.created,
		Idle:    len(p.idle),
		InUse:   len(p.sem),
		Waiting: int(p.waiting.Load()),
	}
}

// ResolvePoolSize determines the pool size.
// Priority: explicit pages > GOMAXPROCS-based calculation.
func ResolvePoolSize(pages int) int {
	// Explicit value takes priority
	if pages > 0 {
		return pages
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
