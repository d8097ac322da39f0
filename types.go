package hcpdf

import (
	"log/slog"
	"time"
)

// ReadySelector marks a page as ready for printing when wait_for_ready is set.
const ReadySelector = `html[data-pdf-ready="true"]`

// Default pipeline timings.
const (
	defaultReadyTimeout = 30 * time.Second
	defaultSettleDelay  = 500 * time.Millisecond
)

// URLRequest asks for a render of a remote page.
type URLRequest struct {
	URL          string
	PDFOption    *string  // preset name; nil uses the renderer default
	Width        string   // screenshot clip width, numeric string
	Height       string   // screenshot clip height, numeric string
	Cookies      []Cookie // forwarded to the page before navigation
	WaitForReady bool     // wait for ReadySelector after load
}

// HTMLRequest asks for a render of an inline HTML document.
type HTMLRequest struct {
	HTML      string
	PDFOption *string
	Width     string
	Height    string
}

// PresetName returns a pointer to name for the PDFOption request fields.
func PresetName(name string) *string {
	return &name
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	defaultPreset  string
	readyTimeout   time.Duration
	settleDelay    time.Duration
	forwardCookies bool
	readyWait      bool
}

// WithDefaultPreset sets the preset used when a request names none.
func WithDefaultPreset(name string) Option {
	return func(r *Renderer) {
		r.cfg.defaultPreset = name
	}
}

// WithReadyTimeout bounds the wait for ReadySelector.
// Panics if d is not positive (programmer error).
func WithReadyTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("hcpdf: WithReadyTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.readyTimeout = d
	}
}

// WithSettleDelay sets the pause before a screenshot is captured, giving
// client-side rendering time to finish. Zero disables it.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Renderer) {
		r.cfg.settleDelay = max(d, 0)
	}
}

// WithCookieForwarding toggles forwarding of inbound cookies to the page.
func WithCookieForwarding(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.forwardCookies = enabled
	}
}

// WithReadyWait toggles support for the wait_for_ready request flag.
func WithReadyWait(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.readyWait = enabled
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}
