package yamlutil_test

// Notes:
// - TestInputSizeLimit mutates the package-level MaxInputSize and does not
//   run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-hcpdf/internal/yamlutil"
)

type testMargin struct {
	Top    string `yaml:"top"`
	Bottom string `yaml:"bottom"`
}

type testPreset struct {
	Format    string      `yaml:"format"`
	Landscape bool        `yaml:"landscape"`
	Scale     float64     `yaml:"scale"`
	Margin    *testMargin `yaml:"margin"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict_Values - Parses YAML into Go values
// ---------------------------------------------------------------------------

func TestUnmarshalStrict_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "nested struct",
			data: []byte("format: a4\nlandscape: true\nmargin:\n  top: 10mm\n"),
			dest: &testPreset{},
			check: func(t *testing.T, v any) {
				p := v.(*testPreset)
				if p.Format != "a4" || !p.Landscape {
					t.Errorf("got %+v, want format a4 landscape", p)
				}
				if p.Margin == nil || p.Margin.Top != "10mm" {
					t.Errorf("Margin = %+v, want top 10mm", p.Margin)
				}
			},
		},
		{
			name: "JSON is accepted",
			data: []byte(`{"format": "letter", "scale": 0.5}`),
			dest: &testPreset{},
			check: func(t *testing.T, v any) {
				p := v.(*testPreset)
				if p.Format != "letter" || p.Scale != 0.5 {
					t.Errorf("got %+v, want letter at 0.5", p)
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testPreset{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("format: a4"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid syntax",
			data:    []byte("format: [unclosed"),
			dest:    &testPreset{},
			wantErr: errors.New("yamlutil:"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			assertErr(t, err, tt.wantErr)
			if tt.wantErr == nil && tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name: "known fields only",
			data: []byte("format: a4\nscale: 1.5"),
		},
		{
			name:    "unknown top-level field",
			data:    []byte("format: a4\npaper: a4"),
			wantErr: errors.New("yamlutil:"),
		},
		{
			name:    "unknown nested field",
			data:    []byte("margin:\n  middle: 1cm"),
			wantErr: errors.New("yamlutil:"),
		},
		{
			name:    "empty data",
			data:    []byte{},
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var p testPreset
			err := yamlutil.UnmarshalStrict(tt.data, &p)
			assertErr(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict_Map - Decodes a named table of records
// ---------------------------------------------------------------------------

func TestUnmarshalStrict_Map(t *testing.T) {
	t.Parallel()

	data := []byte("A4:\n  format: a4\nA4L:\n  format: a4\n  landscape: true\n")

	var table map[string]testPreset
	if err := yamlutil.UnmarshalStrict(data, &table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("len = %d, want 2", len(table))
	}
	if !table["A4L"].Landscape {
		t.Error("A4L.Landscape = false, want true")
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - Reads and strictly decodes a file
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "presets.yaml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		var p testPreset
		if err := yamlutil.ReadFileStrict(write(t, "format: a5\n"), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Format != "a5" {
			t.Errorf("Format = %q, want %q", p.Format, "a5")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		var p testPreset
		if err := yamlutil.ReadFileStrict(write(t, "size: a5\n"), &p); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var p testPreset
		err := yamlutil.ReadFileStrict(filepath.Join(t.TempDir(), "nope.yaml"), &p)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("errors.Is(err, os.ErrNotExist) = false, got: %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		var p testPreset
		err := yamlutil.ReadFileStrict(write(t, ""), &p)
		if !errors.Is(err, yamlutil.ErrNilData) {
			t.Errorf("errors.Is(err, ErrNilData) = false, got: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 100)
		copy(data, []byte("format: x"))
		for i := len("format: x"); i < len(data); i++ {
			data[i] = ' '
		}
		var p testPreset
		if err := yamlutil.UnmarshalStrict(data, &p); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input exceeding limit fails with sizes", func(t *testing.T) {
		yamlutil.MaxInputSize = 50
		var p testPreset
		err := yamlutil.UnmarshalStrict(make([]byte, 100), &p)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Fatalf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
		if !strings.Contains(err.Error(), "100 bytes") || !strings.Contains(err.Error(), "max 50") {
			t.Errorf("error should contain sizes, got: %s", err)
		}
	})

	t.Run("file exceeding limit is not read", func(t *testing.T) {
		yamlutil.MaxInputSize = 10
		path := filepath.Join(t.TempDir(), "big.yaml")
		if err := os.WriteFile(path, []byte("format: this-is-too-long\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		var p testPreset
		err := yamlutil.ReadFileStrict(path, &p)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})
}

func assertErr(t *testing.T, err, want error) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if errors.Is(err, want) {
		return
	}
	if !strings.Contains(err.Error(), want.Error()) {
		t.Fatalf("error = %q, want containing %q", err, want)
	}
}
