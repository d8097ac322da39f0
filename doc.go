// Package hcpdf renders URLs and inline HTML to PDF documents and PNG
// screenshots using a bounded pool of headless Chrome pages.
//
// # Quick Start
//
// Launch a browser, build a page pool and presets, then render:
//
//	browser, err := hcpdf.LaunchBrowser(hcpdf.BrowserOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer browser.Close()
//
//	pool := hcpdf.NewPagePool(hcpdf.ResolvePoolSize(0), browser.NewPage)
//	defer pool.Close()
//
//	presets, err := hcpdf.LoadPresets(ctx, hcpdf.BuiltinSource{Settings: hcpdf.DefaultSettings()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := hcpdf.NewRenderer(pool, presets)
//	pdf, err := r.PDFFromURL(ctx, hcpdf.URLRequest{URL: "https://example.com"})
//
// # Presets
//
// PDF output options are selected by name from an immutable table loaded
// once at startup. An empty name selects the default preset (DEFAULT unless
// changed with WithDefaultPreset). An unknown name renders with the empty
// option record, which means Chrome's own defaults. The table comes from
// BuiltinSource or from a YAML file via FileSource.
//
// # Page Pool
//
// PagePool leases pages exclusively: one render per page at a time, with
// waiting requests admitted in arrival order. A page is reset to a blank
// document when its lease ends, and replaced if the reset fails. Pool size
// defaults to GOMAXPROCS/2, clamped to [MinPoolSize, MaxPoolSize]:
//
//	pool := hcpdf.NewPagePool(hcpdf.ResolvePoolSize(0), browser.NewPage)
//
// # Render Pipelines
//
// URL renders set forwarded cookies, navigate and optionally wait for
// ReadySelector before printing. HTML renders inject the document and
// print it. Screenshots apply an optional clip viewport, load the page,
// pause briefly, try to dismiss cookie-consent banners and capture PNG.
// Consent dismissal is best-effort and never fails a render.
//
// # Errors
//
// Missing or malformed input returns errors matched by IsInvalidRequest.
// Render failures are returned as *RenderError wrapping one of the Err*
// sentinels:
//
//	var rerr *hcpdf.RenderError
//	if errors.As(err, &rerr) {
//	    log.Printf("render %s failed: %v", rerr.Op, rerr.Err)
//	}
//
// # Browser Requirements
//
// Chrome or Chromium must be installed or downloadable by go-rod.
// Set ROD_BROWSER_BIN to use a specific binary. In containers, set
// ROD_NO_SANDBOX=1 or BrowserOptions.NoSandbox.
package hcpdf
