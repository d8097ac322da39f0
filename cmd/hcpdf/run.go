package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alnah/go-hcpdf/internal/config"
	"github.com/alnah/go-hcpdf/internal/hints"
)

// run dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, serve runs.
func run(ctx context.Context, args []string, env *Environment) int {
	var cmd string
	var rest []string
	if len(args) > 1 {
		cmd, rest = args[1], args[2:]
	}

	switch cmd {
	case "serve":
		return reportErr(env.Stderr, runServe(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "hcpdf %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		printUsage(env.Stdout)
		return ExitSuccess
	case "":
		return reportErr(env.Stderr, runServe(ctx, nil, env))
	default:
		if cmd[0] == '-' {
			return reportErr(env.Stderr, runServe(ctx, args[1:], env))
		}
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", cmd)
		printUsage(env.Stderr)
		return ExitConfig
	}
}

// reportErr prints err and maps it to an exit code.
func reportErr(w io.Writer, err error) int {
	if err == nil || errors.Is(err, errHelp) {
		return ExitSuccess
	}
	fmt.Fprintln(w, err)
	return exitCodeFor(err)
}

// errHelp is returned when --help was requested on a subcommand.
var errHelp = errors.New("help requested")

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: hcpdf [serve] [flags]
       hcpdf doctor [--json] [--config PATH]
       hcpdf version

Serves PDF and PNG renders of URLs and HTML over HTTP.

Commands:
  serve    start the HTTP server (default)
  doctor   check Chrome, configuration and presets

Run "hcpdf serve --help" for serve flags. Every setting can also be set
with an HCPDF_* environment variable or in the config file.`)
}

// loadConfig builds the effective configuration.
// Precedence: flags > environment > config file > defaults.
func loadConfig(path string, env *Environment) (*config.Config, error) {
	if path == "" {
		if v, ok := env.LookupEnv(config.EnvConfigPath); ok {
			path = v
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound([]string{path}))
			}
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(env.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
