package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-hcpdf/internal/config"
)

// errUsage marks invalid command lines.
var errUsage = errors.New("usage error")

// serveFlags holds flags for the serve command. Zero values mean "not set";
// fs.Changed decides whether a flag overrides file and environment.
type serveFlags struct {
	config     string
	address    string
	port       int
	pages      int
	presetFile string
	logLevel   string
	logFormat  string
	verbose    bool

	fs *flag.FlagSet
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringVarP(&f.config, "config", "c", "", "config file path or name (env "+config.EnvConfigPath+")")
	fs.StringVar(&f.address, "address", "", "listen address")
	fs.IntVarP(&f.port, "port", "p", 0, "listen port")
	fs.IntVar(&f.pages, "pages", 0, "browser pages in the pool (0 = auto)")
	fs.StringVar(&f.presetFile, "presets", "", "preset file (YAML or JSON)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "json or text")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "shorthand for --log-level debug")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errHelp
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	f.fs = fs
	return f, nil
}

// apply overrides cfg with the flags given on the command line.
func (f *serveFlags) apply(cfg *config.Config) {
	if f.fs.Changed("address") {
		cfg.Server.Address = f.address
	}
	if f.fs.Changed("port") {
		cfg.Server.Port = f.port
	}
	if f.fs.Changed("pages") {
		cfg.Browser.Pages = f.pages
	}
	if f.fs.Changed("presets") {
		cfg.Render.PresetFile = f.presetFile
	}
	if f.fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if f.fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
}
