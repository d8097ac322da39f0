package hcpdf

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/alnah/go-hcpdf/internal/yamlutil"
)

// DefaultPresetName is the preset used when a request names none.
const DefaultPresetName = "DEFAULT"

// Scale bounds accepted by Chrome's print engine.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// Margin holds CSS lengths for each page edge ("18px", "10mm", "0.5in").
type Margin struct {
	Top    string `yaml:"top,omitempty" json:"top,omitempty"`
	Bottom string `yaml:"bottom,omitempty" json:"bottom,omitempty"`
	Left   string `yaml:"left,omitempty" json:"left,omitempty"`
	Right  string `yaml:"right,omitempty" json:"right,omitempty"`
}

// PDFOptions is a concrete output-option record for PDF rendering.
// The zero value means "browser defaults".
type PDFOptions struct {
	Format            string  `yaml:"format,omitempty" json:"format,omitempty"`
	Landscape         bool    `yaml:"landscape,omitempty" json:"landscape,omitempty"`
	Margin            *Margin `yaml:"margin,omitempty" json:"margin,omitempty"`
	PrintBackground   bool    `yaml:"printBackground,omitempty" json:"printBackground,omitempty"`
	PreferCSSPageSize bool    `yaml:"preferCSSPageSize,omitempty" json:"preferCSSPageSize,omitempty"`
	Scale             float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Validate checks that the format, margins and scale are usable.
func (o PDFOptions) Validate() error {
	if _, err := buildPrintParams(o); err != nil {
		return err
	}
	if o.Scale != 0 && (o.Scale < MinScale || o.Scale > MaxScale) {
		return fmt.Errorf("scale must be between %.1f and %.1f, got %.2f", MinScale, MaxScale, o.Scale)
	}
	return nil
}

// Presets is an immutable table of named PDF options.
// Safe for concurrent use.
type Presets struct {
	table map[string]PDFOptions
}

// NewPresets validates and copies table. Keys are case-sensitive.
func NewPresets(table map[string]PDFOptions) (*Presets, error) {
	copied := make(map[string]PDFOptions, len(table))
	for name, opts := range table {
		if name == "" {
			return nil, fmt.Errorf("%w: empty preset name", ErrInvalidPreset)
		}
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
		}
		copied[name] = cloneOptions(opts)
	}
	return &Presets{table: copied}, nil
}

// Lookup returns the options registered under name.
func (p *Presets) Lookup(name string) (PDFOptions, bool) {
	opts, ok := p.table[name]
	if !ok {
		return PDFOptions{}, false
	}
	return cloneOptions(opts), true
}

// Resolve looks up name, or defaultName when name is empty.
// A miss returns the empty option record and false; it never fails.
func (p *Presets) Resolve(name, defaultName string) (PDFOptions, bool) {
	if name == "" {
		name = defaultName
	}
	return p.Lookup(name)
}

// All returns a copy of the full table.
func (p *Presets) All() map[string]PDFOptions {
	out := make(map[string]PDFOptions, len(p.table))
	for name, opts := range p.table {
		out[name] = cloneOptions(opts)
	}
	return out
}

// Names returns the preset names in sorted order.
func (p *Presets) Names() []string {
	return slices.Sorted(maps.Keys(p.table))
}

// Len returns the number of presets.
func (p *Presets) Len() int {
	return len(p.table)
}

func cloneOptions(o PDFOptions) PDFOptions {
	if o.Margin != nil {
		m := *o.Margin
		o.Margin = &m
	}
	return o
}

// DefaultPDFSettings configures the DEFAULT entry of the built-in table.
type DefaultPDFSettings struct {
	Format          string
	Landscape       bool
	Margin          string
	PrintBackground bool
}

// DefaultSettings returns the stock DEFAULT preset settings.
func DefaultSettings() DefaultPDFSettings {
	return DefaultPDFSettings{
		Format:          "A4",
		Landscape:       false,
		Margin:          "18px",
		PrintBackground: true,
	}
}

// DefaultPresetTable builds the built-in preset table.
func DefaultPresetTable(s DefaultPDFSettings) map[string]PDFOptions {
	margin := func() *Margin {
		return &Margin{Top: s.Margin, Bottom: s.Margin, Left: s.Margin, Right: s.Margin}
	}
	zero := func() *Margin {
		return &Margin{Top: "0mm", Bottom: "0mm", Left: "0mm", Right: "0mm"}
	}

	return map[string]PDFOptions{
		DefaultPresetName: {
			Format:            s.Format,
			Landscape:         s.Landscape,
			Margin:            margin(),
			PrintBackground:   s.PrintBackground,
			PreferCSSPageSize: true,
		},
		"A4":              {Format: "a4", Margin: margin(), PrintBackground: true, PreferCSSPageSize: true},
		"A3":              {Format: "a3", Margin: margin(), PrintBackground: true, PreferCSSPageSize: true},
		"A4L":             {Format: "a4", Landscape: true, Margin: margin(), PrintBackground: true, PreferCSSPageSize: true},
		"A3L":             {Format: "a3", Landscape: true, Margin: margin(), PrintBackground: true, PreferCSSPageSize: true},
		"A4Full":          {Format: "a4", Margin: zero(), PrintBackground: true, PreferCSSPageSize: true},
		"A4LandscapeFull": {Format: "a4", Landscape: true, Margin: zero(), PrintBackground: true, PreferCSSPageSize: true},
	}
}

// PresetSource supplies the preset table at startup.
type PresetSource interface {
	Load(ctx context.Context) (map[string]PDFOptions, error)
}

// Compile-time interface checks
var (
	_ PresetSource = BuiltinSource{}
	_ PresetSource = FileSource{}
)

// BuiltinSource serves DefaultPresetTable.
type BuiltinSource struct {
	Settings DefaultPDFSettings
}

// Load implements PresetSource.
func (s BuiltinSource) Load(_ context.Context) (map[string]PDFOptions, error) {
	return DefaultPresetTable(s.Settings), nil
}

// FileSource reads a YAML (or JSON) file mapping preset names to options.
// Unknown option keys are rejected.
type FileSource struct {
	Path string
}

// Load implements PresetSource.
func (s FileSource) Load(ctx context.Context) (map[string]PDFOptions, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("preset file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var table map[string]PDFOptions
	if err := yamlutil.ReadFileStrict(s.Path, &table); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%s: no presets defined", s.Path)
	}
	return table, nil
}

// LoadPresets loads and validates the table from src.
// Every failure wraps ErrPresetSource or ErrInvalidPreset and must stop startup.
func LoadPresets(ctx context.Context, src PresetSource) (*Presets, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrPresetSource)
	}
	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetSource, err)
	}
	return NewPresets(table)
}
