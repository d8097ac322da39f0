package hcpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for invalid requests. These are always client-fixable.
var (
	ErrURLRequired  = errors.New("url is required")
	ErrHTMLRequired = errors.New("html is required")
	ErrInvalidBody  = errors.New("malformed request body")
	ErrInvalidURL   = errors.New("invalid url")
)

// Sentinel errors for render failures.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrReadyTimeout   = errors.New("timed out waiting for ready marker")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrScreenshot     = errors.New("screenshot capture failed")
	ErrPoolClosed     = errors.New("page pool is closed")
	ErrPoolTimeout    = errors.New("timed out waiting for an idle page")
)

// Sentinel errors for startup configuration.
var (
	ErrPresetSource  = errors.New("failed to load preset PDF options")
	ErrInvalidPreset = errors.New("invalid preset PDF options")
	ErrInvalidFormat = errors.New("invalid paper format")
	ErrInvalidMargin = errors.New("invalid margin")
)

// IsInvalidRequest reports whether err is caused by a missing or malformed
// request field.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrURLRequired) ||
		errors.Is(err, ErrHTMLRequired) ||
		errors.Is(err, ErrInvalidBody) ||
		errors.Is(err, ErrInvalidURL)
}

// IsConfigFailure reports whether err prevents the service from starting.
func IsConfigFailure(err error) bool {
	return errors.Is(err, ErrPresetSource) || errors.Is(err, ErrInvalidPreset)
}

// RenderError describes a failed render with the context needed for
// diagnostics. The HTML body itself is never kept, only its size.
type RenderError struct {
	Op       string // "pdf", "screenshot"
	URL      string
	HTMLSize int
	Err      error
}

func (e *RenderError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s from html (%d bytes): %v", e.Op, e.HTMLSize, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
