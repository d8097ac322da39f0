package main

import (
	"errors"

	hcpdf "github.com/alnah/go-hcpdf"
	"github.com/alnah/go-hcpdf/internal/config"
)

// Exit codes for the hcpdf command.
// Follows Unix conventions: 0=success, 1=general, 2=usage/config, and custom codes < 126.
const (
	ExitSuccess = 0 // Clean shutdown
	ExitGeneral = 1 // General/unexpected error
	ExitConfig  = 2 // Invalid flags, config, environment, or presets
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, hcpdf.ErrBrowserConnect) ||
		errors.Is(err, hcpdf.ErrPageCreate) {
		return ExitBrowser
	}

	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrInvalidEnv) ||
		hcpdf.IsConfigFailure(err) {
		return ExitConfig
	}

	return ExitGeneral
}
