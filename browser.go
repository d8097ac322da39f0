package hcpdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-hcpdf/internal/process"
)

// Browser timing defaults.
const (
	defaultPageTimeout = 30 * time.Second
	resetTimeout       = 5 * time.Second

	// networkIdleWindow is how long the page must issue no requests to be
	// considered loaded.
	networkIdleWindow = 500 * time.Millisecond
)

// Viewport is a browser window size in CSS pixels.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// BrowserOptions configures the browser process and every page it opens.
type BrowserOptions struct {
	Bin                string   // Chrome binary; empty uses ROD_BROWSER_BIN or rod's download
	NoSandbox          bool     // forced on in CI and containers
	Args               []string // extra command-line switches, e.g. "--disable-gpu"
	UserAgent          string
	AcceptLanguage     string
	EmulateScreenMedia bool
	Viewport           *Viewport
	PageTimeout        time.Duration // bounds navigation and content loading
}

// Browser owns one headless Chrome process and opens pages in it.
type Browser struct {
	opts     BrowserOptions
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// LaunchBrowser starts headless Chrome and connects to it.
func LaunchBrowser(opts BrowserOptions) (*Browser, error) {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = defaultPageTimeout
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := opts.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if opts.NoSandbox || os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	for _, arg := range opts.Args {
		name, value, hasValue := parseSwitch(arg)
		if name == "" {
			continue
		}
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &Browser{opts: opts, launcher: l, browser: b}, nil
}

// parseSwitch splits "--name=value" into its parts.
func parseSwitch(arg string) (name, value string, hasValue bool) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	name, value, hasValue = strings.Cut(arg, "=")
	return strings.TrimSpace(name), value, hasValue
}

// NewPage opens a tab in its own browser context, so every pooled page has
// a private cookie jar. It satisfies PageFactory.
func (b *Browser) NewPage() (Page, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: creating browser context: %v", ErrPageCreate, err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := b.configure(page); err != nil {
		_ = page.Close()
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	return &rodPage{page: page, context: incognito, opts: b.opts}, nil
}

// configure applies user agent, media emulation and viewport.
func (b *Browser) configure(page *rod.Page) error {
	if b.opts.UserAgent != "" || b.opts.AcceptLanguage != "" {
		ua := b.opts.UserAgent
		if ua == "" {
			version, err := proto.BrowserGetVersion{}.Call(b.browser)
			if err != nil {
				return fmt.Errorf("reading browser version: %w", err)
			}
			ua = version.UserAgent
		}
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: b.opts.AcceptLanguage,
		}); err != nil {
			return fmt.Errorf("setting user agent: %w", err)
		}
	}

	if b.opts.EmulateScreenMedia {
		if err := (proto.EmulationSetEmulatedMedia{Media: "screen"}).Call(page); err != nil {
			return fmt.Errorf("emulating screen media: %w", err)
		}
	}

	return applyViewport(page, b.opts.Viewport)
}

// Close closes the browser and kills the Chrome process tree.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}

	err := b.browser.Close()
	b.browser = nil

	if b.launcher != nil {
		pid := b.launcher.PID()
		b.launcher.Kill()
		process.KillTree(pid)
		b.launcher = nil
	}

	return err
}

// applyViewport sets vp, or clears any override when vp is nil.
func applyViewport(page *rod.Page, vp *Viewport) error {
	if vp == nil || vp.Width <= 0 || vp.Height <= 0 {
		return proto.EmulationClearDeviceMetricsOverride{}.Call(page)
	}
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	})
}

// rodPage implements Page with go-rod. context is the page's own browser
// context; closing it disposes the page's cookies and storage.
type rodPage struct {
	page    *rod.Page
	context *rod.Browser
	opts    BrowserOptions
}

// bind returns the page bound to ctx with the page timeout applied.
func (p *rodPage) bind(ctx context.Context, timeout time.Duration) (*rod.Page, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return p.page.Context(ctx), ctx, cancel
}

func (p *rodPage) SetCookies(ctx context.Context, pageURL string, cookies []Cookie) error {
	pg, _, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:  c.Name,
			Value: c.Value,
			URL:   pageURL,
		})
	}
	return pg.SetCookies(params)
}

// Navigate registers the idle waiter before navigating so the initial burst
// of requests is observed.
func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg, ctx, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	waitIdle := pg.WaitRequestIdle(networkIdleWindow, nil, nil, nil)

	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	waitIdle()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: waiting for network idle: %v", ErrPageLoad, err)
	}
	return nil
}

func (p *rodPage) SetContent(ctx context.Context, html string) error {
	pg, ctx, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	waitIdle := pg.WaitRequestIdle(networkIdleWindow, nil, nil, nil)

	if err := pg.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: setting content: %v", ErrPageLoad, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	waitIdle()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: waiting for network idle: %v", ErrPageLoad, err)
	}
	return nil
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int) error {
	pg, _, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	return applyViewport(pg, &Viewport{Width: width, Height: height})
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	pg, ctx, cancel := p.bind(ctx, timeout)
	defer cancel()

	if _, err := pg.Element(selector); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s after %s", ErrReadyTimeout, selector, timeout)
		}
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Eval(ctx context.Context, js string) (string, error) {
	pg, _, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	res, err := pg.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.String(), nil
}

func (p *rodPage) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	params, err := buildPrintParams(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pg, _, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	reader, err := pg.PDF(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	defer reader.Close()

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

func (p *rodPage) Screenshot(ctx context.Context, geom ScreenshotGeometry) ([]byte, error) {
	pg, _, cancel := p.bind(ctx, p.opts.PageTimeout)
	defer cancel()

	req := &proto.PageCaptureScreenshot{
		Format:                proto.PageCaptureScreenshotFormatPng,
		FromSurface:           true,
		CaptureBeyondViewport: geom.CaptureBeyondViewport,
	}
	if geom.Clip != nil {
		req.Clip = &proto.PageViewport{
			X:      float64(geom.Clip.X),
			Y:      float64(geom.Clip.Y),
			Width:  float64(geom.Clip.Width),
			Height: float64(geom.Clip.Height),
			Scale:  1,
		}
	}

	buf, err := pg.Screenshot(geom.FullPage, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return buf, nil
}

// Reset uses a fresh background context: the request context may already
// be done when the page is returned.
func (p *rodPage) Reset() error {
	pg, _, cancel := p.bind(context.Background(), resetTimeout)
	defer cancel()

	if err := pg.Navigate("about:blank"); err != nil {
		return fmt.Errorf("navigating to about:blank: %w", err)
	}
	if err := p.clearCookies(pg); err != nil {
		return fmt.Errorf("clearing cookies: %w", err)
	}
	return applyViewport(pg, p.opts.Viewport)
}

// clearCookies empties the cookie jar of the page's browser context only.
func (p *rodPage) clearCookies(pg *rod.Page) error {
	return p.context.Context(pg.GetContext()).SetCookies(nil)
}

// cookies returns the cookies the page would send to pageURL.
func (p *rodPage) cookies(pageURL string) ([]*proto.NetworkCookie, error) {
	return p.page.Cookies([]string{pageURL})
}

func (p *rodPage) Close() error {
	return errors.Join(p.page.Close(), p.context.Close())
}
