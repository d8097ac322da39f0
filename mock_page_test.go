package hcpdf

// Notes:
// - mockPage implements Page for unit tests; it records calls in order
// - Each method can be made to fail through its *Err field
// - resetErr lets pool tests exercise page replacement after a failed reset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

type mockPage struct {
	mu    sync.Mutex
	calls []string

	cookies      []Cookie
	cookieURL    string
	navigated    string
	content      string
	viewport     [2]int
	selector     string
	readyTimeout time.Duration
	pdfOpts      PDFOptions
	geom         ScreenshotGeometry

	evalResult string
	evalPanic  bool

	cookiesErr  error
	navigateErr error
	contentErr  error
	selectorErr error
	evalErr     error
	pdfErr      error
	shotErr     error
	resetErr    error
	closeErr    error

	pdfBytes  []byte
	shotBytes []byte

	resets atomic.Int32
	closed atomic.Bool
}

func newMockPage() *mockPage {
	return &mockPage{
		pdfBytes:   []byte("%PDF-1.4 mock"),
		shotBytes:  []byte("\x89PNG mock"),
		evalResult: "none",
	}
}

func (m *mockPage) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockPage) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockPage) SetCookies(_ context.Context, pageURL string, cookies []Cookie) error {
	m.record("cookies")
	m.cookieURL = pageURL
	m.cookies = cookies
	return m.cookiesErr
}

func (m *mockPage) Navigate(_ context.Context, url string) error {
	m.record("navigate")
	m.navigated = url
	return m.navigateErr
}

func (m *mockPage) SetContent(_ context.Context, html string) error {
	m.record("content")
	m.content = html
	return m.contentErr
}

func (m *mockPage) SetViewport(_ context.Context, width, height int) error {
	m.record("viewport")
	m.viewport = [2]int{width, height}
	return nil
}

func (m *mockPage) WaitForSelector(_ context.Context, selector string, timeout time.Duration) error {
	m.record("wait")
	m.selector = selector
	m.readyTimeout = timeout
	return m.selectorErr
}

func (m *mockPage) Eval(_ context.Context, _ string) (string, error) {
	m.record("eval")
	if m.evalPanic {
		panic("eval exploded")
	}
	return m.evalResult, m.evalErr
}

func (m *mockPage) PDF(_ context.Context, opts PDFOptions) ([]byte, error) {
	m.record("pdf")
	m.pdfOpts = opts
	if m.pdfErr != nil {
		return nil, m.pdfErr
	}
	return m.pdfBytes, nil
}

func (m *mockPage) Screenshot(_ context.Context, geom ScreenshotGeometry) ([]byte, error) {
	m.record("screenshot")
	m.geom = geom
	if m.shotErr != nil {
		return nil, m.shotErr
	}
	return m.shotBytes, nil
}

func (m *mockPage) Reset() error {
	m.resets.Add(1)
	return m.resetErr
}

func (m *mockPage) Close() error {
	m.closed.Store(true)
	return m.closeErr
}

// pageRunner hands the same page to every callback, like a pool of one
// without the admission control.
type pageRunner struct {
	page *mockPage
	err  error
	runs int
}

func (r *pageRunner) RunOnPage(ctx context.Context, fn func(ctx context.Context, page Page) error) error {
	r.runs++
	if r.err != nil {
		return r.err
	}
	return fn(ctx, r.page)
}

// countingFactory creates mockPages and counts them.
type countingFactory struct {
	mu      sync.Mutex
	pages   []*mockPage
	err     error
	prepare func(*mockPage)
}

func (f *countingFactory) New() (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p := newMockPage()
	if f.prepare != nil {
		f.prepare(p)
	}
	f.pages = append(f.pages, p)
	return p, nil
}

func (f *countingFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

var errMock = errors.New("mock failure")
