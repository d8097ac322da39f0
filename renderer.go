package hcpdf

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// PageRunner runs a unit of work on an exclusively leased page.
// *PagePool is the production implementation.
type PageRunner interface {
	RunOnPage(ctx context.Context, fn func(ctx context.Context, page Page) error) error
}

// Compile-time interface check
var _ PageRunner = (*PagePool)(nil)

// Renderer drives leased pages through the PDF and screenshot pipelines.
// Safe for concurrent use; concurrency is bounded by the PageRunner.
type Renderer struct {
	cfg     rendererConfig
	runner  PageRunner
	presets *Presets
	log     *slog.Logger
}

// NewRenderer creates a Renderer backed by runner and presets.
func NewRenderer(runner PageRunner, presets *Presets, opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			defaultPreset:  DefaultPresetName,
			readyTimeout:   defaultReadyTimeout,
			settleDelay:    defaultSettleDelay,
			forwardCookies: true,
			readyWait:      true,
		},
		runner:  runner,
		presets: presets,
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Presets returns the full preset table.
func (r *Renderer) Presets() map[string]PDFOptions {
	return r.presets.All()
}

// ResolvePDFOptions returns the preset for name (or the default preset when
// name is empty). Unknown names fall back to the empty option record.
func (r *Renderer) ResolvePDFOptions(ctx context.Context, name string) PDFOptions {
	opts, ok := r.presets.Resolve(name, r.cfg.defaultPreset)
	if !ok {
		r.warnUnknownPreset(ctx, name)
	}
	return opts
}

// requestedPDFOptions resolves a request's preset. nil selects the default
// preset; an explicit name, even an empty one, is looked up as given.
func (r *Renderer) requestedPDFOptions(ctx context.Context, name *string) PDFOptions {
	if name == nil {
		return r.ResolvePDFOptions(ctx, "")
	}
	opts, ok := r.presets.Lookup(*name)
	if !ok {
		r.warnUnknownPreset(ctx, *name)
	}
	return opts
}

func (r *Renderer) warnUnknownPreset(ctx context.Context, name string) {
	r.log.WarnContext(ctx, "pdf option not found, using empty options",
		"pdf_option", name, "default", r.cfg.defaultPreset)
}

// PDFFromURL navigates to req.URL and prints it.
func (r *Renderer) PDFFromURL(ctx context.Context, req URLRequest) ([]byte, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}

	var buf []byte
	err := r.runner.RunOnPage(ctx, func(ctx context.Context, page Page) error {
		if r.cfg.forwardCookies && len(req.Cookies) > 0 {
			if err := page.SetCookies(ctx, req.URL, req.Cookies); err != nil {
				return fmt.Errorf("setting cookies: %w", err)
			}
		}

		if err := page.Navigate(ctx, req.URL); err != nil {
			return err
		}

		if req.WaitForReady && r.cfg.readyWait {
			if err := page.WaitForSelector(ctx, ReadySelector, r.cfg.readyTimeout); err != nil {
				return err
			}
		}

		var err error
		buf, err = page.PDF(ctx, r.requestedPDFOptions(ctx, req.PDFOption))
		return err
	})
	if err != nil {
		return nil, &RenderError{Op: "pdf", URL: req.URL, Err: err}
	}
	if len(buf) == 0 {
		return nil, &RenderError{Op: "pdf", URL: req.URL, Err: fmt.Errorf("%w: empty output", ErrPDFGeneration)}
	}

	return buf, nil
}

// PDFFromHTML injects req.HTML as the page content and prints it.
func (r *Renderer) PDFFromHTML(ctx context.Context, req HTMLRequest) ([]byte, error) {
	if req.HTML == "" {
		return nil, ErrHTMLRequired
	}

	opts := r.requestedPDFOptions(ctx, req.PDFOption)

	var buf []byte
	err := r.runner.RunOnPage(ctx, func(ctx context.Context, page Page) error {
		if err := page.SetContent(ctx, req.HTML); err != nil {
			return err
		}

		var err error
		buf, err = page.PDF(ctx, opts)
		return err
	})
	if err != nil {
		return nil, &RenderError{Op: "pdf", HTMLSize: len(req.HTML), Err: err}
	}
	if len(buf) == 0 {
		return nil, &RenderError{Op: "pdf", HTMLSize: len(req.HTML), Err: fmt.Errorf("%w: empty output", ErrPDFGeneration)}
	}

	return buf, nil
}

// ScreenshotFromURL navigates to req.URL and captures a PNG.
func (r *Renderer) ScreenshotFromURL(ctx context.Context, req URLRequest) ([]byte, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}

	geom := NewScreenshotGeometry(req.Width, req.Height)
	buf, err := r.screenshot(ctx, geom, func(ctx context.Context, page Page) error {
		return page.Navigate(ctx, req.URL)
	})
	if err != nil {
		return nil, &RenderError{Op: "screenshot", URL: req.URL, Err: err}
	}

	return buf, nil
}

// ScreenshotFromHTML injects req.HTML and captures a PNG.
func (r *Renderer) ScreenshotFromHTML(ctx context.Context, req HTMLRequest) ([]byte, error) {
	if req.HTML == "" {
		return nil, ErrHTMLRequired
	}

	geom := NewScreenshotGeometry(req.Width, req.Height)
	buf, err := r.screenshot(ctx, geom, func(ctx context.Context, page Page) error {
		return page.SetContent(ctx, req.HTML)
	})
	if err != nil {
		return nil, &RenderError{Op: "screenshot", HTMLSize: len(req.HTML), Err: err}
	}

	return buf, nil
}

// screenshot runs the shared capture sequence: viewport, load, settle,
// consent dismissal, capture.
func (r *Renderer) screenshot(ctx context.Context, geom ScreenshotGeometry, load func(context.Context, Page) error) ([]byte, error) {
	var buf []byte
	err := r.runner.RunOnPage(ctx, func(ctx context.Context, page Page) error {
		if geom.IsClip() {
			if err := page.SetViewport(ctx, geom.Clip.Width, geom.Clip.Height); err != nil {
				return fmt.Errorf("setting viewport: %w", err)
			}
		}

		if err := load(ctx, page); err != nil {
			return err
		}

		if err := sleep(ctx, r.cfg.settleDelay); err != nil {
			return err
		}

		dismissConsentBanner(ctx, page, r.log)

		var err error
		buf, err = page.Screenshot(ctx, geom)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrScreenshot)
	}

	return buf, nil
}

// validateURL rejects empty values and values without a scheme.
func validateURL(raw string) error {
	if raw == "" {
		return ErrURLRequired
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, raw)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
