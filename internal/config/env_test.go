package config

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("overrides every section", func(t *testing.T) {
		t.Parallel()

		cfg := Default()
		err := cfg.ApplyEnv(mapLookup(map[string]string{
			"HCPDF_ADDRESS":              "127.0.0.1",
			"HCPDF_PORT":                 "9090",
			"HCPDF_BEARER_SECRET":        "token",
			"HCPDF_BODY_LIMIT":           "2097152",
			"HCPDF_BROWSER_ARGS":         "--disable-gpu, ,--lang=fr",
			"HCPDF_PAGES":                "3",
			"HCPDF_USER_AGENT":           "hcpdf-test",
			"HCPDF_ACCEPT_LANGUAGE":      "fr-FR",
			"HCPDF_EMULATE_SCREEN_MEDIA": "true",
			"HCPDF_VIEWPORT":             "800x600",
			"HCPDF_PAGE_TIMEOUT_MS":      "5000",
			"HCPDF_PRESET_FILE":          "/etc/presets.yaml",
			"HCPDF_DEFAULT_PRESET":       "A4L",
			"HCPDF_COOKIE_FORWARDING":    "false",
			"HCPDF_READY_WAIT":           "0",
			"HCPDF_SETTLE_DELAY_MS":      "0",
			"HCPDF_PDF_FORMAT":           "letter",
			"HCPDF_PDF_LANDSCAPE":        "1",
			"HCPDF_PDF_MARGIN":           "1cm",
			"HCPDF_PDF_PRINT_BACKGROUND": "false",
			"HCPDF_LOG_LEVEL":            "debug",
			"HCPDF_LOG_FORMAT":           "text",
		}))
		if err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		want := &Config{
			Server: ServerConfig{Address: "127.0.0.1", Port: 9090, BearerSecret: "token", BodyLimit: 2097152},
			Browser: BrowserConfig{
				Args:               []string{"--disable-gpu", "--lang=fr"},
				Pages:              3,
				UserAgent:          "hcpdf-test",
				AcceptLanguage:     "fr-FR",
				EmulateScreenMedia: true,
				Viewport:           "800x600",
				PageTimeoutMs:      5000,
			},
			Render: RenderConfig{
				PresetFile:       "/etc/presets.yaml",
				DefaultPreset:    "A4L",
				ReadyTimeoutMs:   30000,
				AcquireTimeoutMs: 60000,
			},
			PDF: PDFConfig{Format: "letter", Landscape: true, Margin: "1cm"},
			Log: LogConfig{Level: "debug", Format: "text"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("ApplyEnv() mismatch (-want +got):\n%s", diff)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		t.Parallel()

		cfg := Default()
		if err := cfg.ApplyEnv(mapLookup(map[string]string{"HCPDF_PORT": "", "HCPDF_ADDRESS": ""})); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.Addr() != Default().Addr() {
			t.Errorf("Addr() = %q, want default", cfg.Addr())
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"HCPDF_PORT", "HCPDF_PAGES", "HCPDF_BODY_LIMIT", "HCPDF_READY_WAIT", "HCPDF_PDF_LANDSCAPE"} {
			cfg := Default()
			err := cfg.ApplyEnv(mapLookup(map[string]string{name: "not-a-value"}))
			if !errors.Is(err, ErrInvalidEnv) {
				t.Errorf("%s: error = %v, want ErrInvalidEnv", name, err)
				continue
			}
			if !strings.Contains(err.Error(), name) {
				t.Errorf("%s: error = %q, want variable name", name, err)
			}
		}
	})
}

func TestUnknownEnv(t *testing.T) {
	t.Parallel()

	environ := []string{
		"HOME=/root",
		"HCPDF_PORT=80",
		"HCPDF_CONFIG=/etc/hcpdf.yaml",
		"HCPDF_PROT=80",
		"HCPDF_LOGLEVEL=debug",
	}

	got := UnknownEnv(environ)
	want := []string{"HCPDF_LOGLEVEL", "HCPDF_PROT"}
	if !slices.Equal(got, want) {
		t.Errorf("UnknownEnv() = %v, want %v", got, want)
	}
}

func TestEnvNames(t *testing.T) {
	t.Parallel()

	names := EnvNames()
	for _, want := range []string{EnvConfigPath, EnvContainer, "HCPDF_PORT", "HCPDF_BEARER_SECRET", "HCPDF_VIEWPORT"} {
		if !slices.Contains(names, want) {
			t.Errorf("EnvNames() missing %s", want)
		}
	}
	for _, name := range names {
		if !strings.HasPrefix(name, EnvPrefix) {
			t.Errorf("%s lacks %s prefix", name, EnvPrefix)
		}
	}
}
