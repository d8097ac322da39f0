package hcpdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// paperSize is a page size in inches (portrait).
type paperSize struct {
	width  float64
	height float64
}

// paperFormats maps lowercase format names to their portrait dimensions.
var paperFormats = map[string]paperSize{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// Units per inch for CSS length units accepted in margins.
const (
	pxPerInch = 96
	cmPerInch = 2.54
	mmPerInch = 25.4
)

// lookupPaper returns the dimensions of a format (case-insensitive).
func lookupPaper(format string) (paperSize, error) {
	size, ok := paperFormats[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return paperSize{}, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return size, nil
}

// parseLength converts a CSS length ("18px", "1cm", "10mm", "0.5in", "12")
// to inches. Bare numbers are pixels. Empty means unset.
func parseLength(s string) (*float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}

	divisor := float64(pxPerInch)
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "in"):
		num, divisor = strings.TrimSuffix(s, "in"), 1
	case strings.HasSuffix(s, "cm"):
		num, divisor = strings.TrimSuffix(s, "cm"), cmPerInch
	case strings.HasSuffix(s, "mm"):
		num, divisor = strings.TrimSuffix(s, "mm"), mmPerInch
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
	}
	return floatPtr(v / divisor), nil
}

// buildPrintParams converts preset options to the DevTools print request.
// A zero PDFOptions yields Chrome's defaults.
func buildPrintParams(opts PDFOptions) (*proto.PagePrintToPDF, error) {
	req := &proto.PagePrintToPDF{
		Landscape:         opts.Landscape,
		PrintBackground:   opts.PrintBackground,
		PreferCSSPageSize: opts.PreferCSSPageSize,
	}

	if opts.Format != "" {
		size, err := lookupPaper(opts.Format)
		if err != nil {
			return nil, err
		}
		req.PaperWidth = floatPtr(size.width)
		req.PaperHeight = floatPtr(size.height)
	}

	if opts.Scale != 0 {
		req.Scale = floatPtr(opts.Scale)
	}

	if m := opts.Margin; m != nil {
		var err error
		if req.MarginTop, err = parseLength(m.Top); err != nil {
			return nil, err
		}
		if req.MarginBottom, err = parseLength(m.Bottom); err != nil {
			return nil, err
		}
		if req.MarginLeft, err = parseLength(m.Left); err != nil {
			return nil, err
		}
		if req.MarginRight, err = parseLength(m.Right); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
