package hcpdf

import (
	"context"
	"time"
)

// Page is one browser tab driven by the render pipeline.
// Implementations are not safe for concurrent use; the PagePool guarantees
// a page is only ever handed to one callback at a time.
type Page interface {
	// SetCookies sets cookies scoped to pageURL.
	SetCookies(ctx context.Context, pageURL string, cookies []Cookie) error

	// Navigate loads url and returns once the network is idle.
	Navigate(ctx context.Context, url string) error

	// SetContent replaces the document with html and returns once the DOM
	// is ready and the network is idle.
	SetContent(ctx context.Context, html string) error

	// SetViewport overrides the viewport size.
	SetViewport(ctx context.Context, width, height int) error

	// WaitForSelector blocks until selector matches or timeout elapses.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Eval runs a JavaScript function and returns its result as a string.
	Eval(ctx context.Context, js string) (string, error)

	// PDF prints the current document.
	PDF(ctx context.Context, opts PDFOptions) ([]byte, error)

	// Screenshot captures the current document as PNG.
	Screenshot(ctx context.Context, geom ScreenshotGeometry) ([]byte, error)

	// Reset returns the page to a blank state for the next lease.
	Reset() error

	// Close releases the tab.
	Close() error
}

// PageFactory creates a fresh page for the pool.
type PageFactory func() (Page, error)
