package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HCPDF_"

// envBinding applies one HCPDF_* variable to the config.
type envBinding struct {
	name  string
	apply func(c *Config, value string) error
}

// envBindings lists valid HCPDF_* variables in documentation order.
var envBindings = []envBinding{
	// Server
	{"HCPDF_ADDRESS", stringVar(func(c *Config) *string { return &c.Server.Address })},
	{"HCPDF_PORT", intVar(func(c *Config) *int { return &c.Server.Port })},
	{"HCPDF_BEARER_SECRET", stringVar(func(c *Config) *string { return &c.Server.BearerSecret })},
	{"HCPDF_BODY_LIMIT", func(c *Config, v string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return err
		}
		c.Server.BodyLimit = n
		return nil
	}},

	// Browser
	{"HCPDF_BROWSER_BIN", stringVar(func(c *Config) *string { return &c.Browser.Bin })},
	{"HCPDF_BROWSER_ARGS", listVar(func(c *Config) *[]string { return &c.Browser.Args })},
	{"HCPDF_PAGES", intVar(func(c *Config) *int { return &c.Browser.Pages })},
	{"HCPDF_USER_AGENT", stringVar(func(c *Config) *string { return &c.Browser.UserAgent })},
	{"HCPDF_ACCEPT_LANGUAGE", stringVar(func(c *Config) *string { return &c.Browser.AcceptLanguage })},
	{"HCPDF_EMULATE_SCREEN_MEDIA", boolVar(func(c *Config) *bool { return &c.Browser.EmulateScreenMedia })},
	{"HCPDF_VIEWPORT", stringVar(func(c *Config) *string { return &c.Browser.Viewport })},
	{"HCPDF_PAGE_TIMEOUT_MS", intVar(func(c *Config) *int { return &c.Browser.PageTimeoutMs })},

	// Render
	{"HCPDF_PRESET_FILE", stringVar(func(c *Config) *string { return &c.Render.PresetFile })},
	{"HCPDF_DEFAULT_PRESET", stringVar(func(c *Config) *string { return &c.Render.DefaultPreset })},
	{"HCPDF_COOKIE_FORWARDING", boolVar(func(c *Config) *bool { return &c.Render.CookieForwarding })},
	{"HCPDF_READY_WAIT", boolVar(func(c *Config) *bool { return &c.Render.ReadyWait })},
	{"HCPDF_READY_TIMEOUT_MS", intVar(func(c *Config) *int { return &c.Render.ReadyTimeoutMs })},
	{"HCPDF_SETTLE_DELAY_MS", intVar(func(c *Config) *int { return &c.Render.SettleDelayMs })},
	{"HCPDF_ACQUIRE_TIMEOUT_MS", intVar(func(c *Config) *int { return &c.Render.AcquireTimeoutMs })},

	// DEFAULT preset
	{"HCPDF_PDF_FORMAT", stringVar(func(c *Config) *string { return &c.PDF.Format })},
	{"HCPDF_PDF_LANDSCAPE", boolVar(func(c *Config) *bool { return &c.PDF.Landscape })},
	{"HCPDF_PDF_MARGIN", stringVar(func(c *Config) *string { return &c.PDF.Margin })},
	{"HCPDF_PDF_PRINT_BACKGROUND", boolVar(func(c *Config) *bool { return &c.PDF.PrintBackground })},

	// Logging
	{"HCPDF_LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Log.Level })},
	{"HCPDF_LOG_FORMAT", stringVar(func(c *Config) *string { return &c.Log.Format })},
}

// EnvConfigPath names the variable holding the config file path. It is read
// by the command before the file is loaded, not by ApplyEnv.
const EnvConfigPath = "HCPDF_CONFIG"

// EnvContainer set to "1" marks a container runtime that leaves no other
// trace. Read by the doctor command.
const EnvContainer = "HCPDF_CONTAINER"

func stringVar(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func listVar(field func(*Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = splitList(v)
		return nil
	}
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ApplyEnv overrides fields from HCPDF_* variables found by lookup.
// Empty values are ignored. Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, b.name, v, err)
		}
	}
	return nil
}

// EnvNames returns every recognized variable name.
func EnvNames() []string {
	names := make([]string, 0, len(envBindings)+2)
	names = append(names, EnvConfigPath, EnvContainer)
	for _, b := range envBindings {
		names = append(names, b.name)
	}
	return names
}

// UnknownEnv returns HCPDF_* names in environ (KEY=VALUE form) that are not
// recognized, sorted. Used to warn about typos.
func UnknownEnv(environ []string) []string {
	known := make(map[string]bool, len(envBindings)+2)
	for _, name := range EnvNames() {
		known[name] = true
	}

	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) && !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
