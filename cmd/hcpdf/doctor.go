package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	hcpdf "github.com/alnah/go-hcpdf"
	"github.com/alnah/go-hcpdf/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	Config   configInfo  `json:"config"`
	Presets  presetsInfo `json:"presets"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	Container     bool     `json:"container"`
	ContainerHint string   `json:"container_hint,omitempty"`
	CI            bool     `json:"ci"`
	NoSandbox     string   `json:"rod_no_sandbox"`
	UnknownVars   []string `json:"unknown_vars,omitempty"`
}

// configInfo holds the effective configuration summary.
type configInfo struct {
	Valid         bool   `json:"valid"`
	Addr          string `json:"addr,omitempty"`
	Pages         int    `json:"pages,omitempty"`
	Auth          bool   `json:"auth"`
	DefaultPreset string `json:"default_preset,omitempty"`
}

// presetsInfo holds preset table results.
type presetsInfo struct {
	Source string   `json:"source,omitempty"`
	Names  []string `json:"names,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	configPath := fs.StringP("config", "c", "", "config file path or name")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitConfig
	}

	result := runDoctor(*configPath, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configPath string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			NoSandbox: lookup(env, "ROD_NO_SANDBOX"),
		},
	}

	cfg := checkConfig(result, configPath, env)
	checkChrome(result, cfg, env)
	checkEnvironment(result, env)
	if cfg != nil {
		checkPresets(result, cfg)
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

func lookup(env *Environment, key string) string {
	v, _ := env.LookupEnv(key)
	return v
}

// checkConfig loads and validates the effective configuration.
func checkConfig(result *doctorResult, configPath string, env *Environment) *config.Config {
	cfg, err := loadConfig(configPath, env)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		result.Errors = append(result.Errors, "Config: "+firstLine(err.Error()))
		return nil
	}

	result.Config = configInfo{
		Valid:         true,
		Addr:          cfg.Addr(),
		Pages:         hcpdf.ResolvePoolSize(cfg.Browser.Pages),
		Auth:          cfg.Server.BearerSecret != "",
		DefaultPreset: cfg.Render.DefaultPreset,
	}
	return cfg
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, cfg *config.Config, env *Environment) {
	chromePath := lookup(env, "ROD_BROWSER_BIN")
	if cfg != nil && cfg.Browser.Bin != "" {
		chromePath = cfg.Browser.Bin
	}

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set HCPDF_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path comes from local config
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1" && (cfg == nil || !cfg.Browser.NoSandbox)
}

// checkEnvironment detects container and CI environments and typos in
// HCPDF_* variables.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if lookup(env, v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Chrome.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the sandbox is enabled. Set ROD_NO_SANDBOX=1")
	}

	result.Env.UnknownVars = config.UnknownEnv(env.Environ())
	for _, name := range result.Env.UnknownVars {
		result.Warnings = append(result.Warnings, "Unknown variable "+name+" is ignored")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(env *Environment) (bool, string) {
	if lookup(env, config.EnvContainer) == "1" {
		return true, config.EnvContainer + "=1"
	}
	if v := lookup(env, "container"); v != "" {
		return true, "container=" + v
	}
	if lookup(env, "KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	if env.InContainer != nil && env.InContainer() {
		return true, "/.dockerenv"
	}
	return false, ""
}

// checkPresets loads the preset table the server would start with.
func checkPresets(result *doctorResult, cfg *config.Config) {
	result.Presets.Source = "built-in"
	if cfg.Render.PresetFile != "" {
		result.Presets.Source = cfg.Render.PresetFile
	}

	presets, err := hcpdf.LoadPresets(context.Background(), presetSource(cfg))
	if err != nil {
		result.Errors = append(result.Errors, "Presets: "+err.Error())
		return
	}
	result.Presets.Names = presets.Names()

	if _, ok := presets.Lookup(cfg.Render.DefaultPreset); !ok {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Default preset %q is not defined; requests without pdf_option get empty options", cfg.Render.DefaultPreset))
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "hcpdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Listen: %s\n", r.Config.Addr)
		fmt.Fprintf(w, "  [OK] Pages: %d\n", r.Config.Pages)
		if r.Config.Auth {
			fmt.Fprintln(w, "  [OK] Auth: bearer token")
		} else {
			fmt.Fprintln(w, "  [OK] Auth: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Invalid")
	}
	if len(r.Presets.Names) > 0 {
		fmt.Fprintf(w, "  [OK] Presets (%s): %s\n", r.Presets.Source, strings.Join(r.Presets.Names, ", "))
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
