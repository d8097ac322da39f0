package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"go.uber.org/automaxprocs/maxprocs"

	hcpdf "github.com/alnah/go-hcpdf"
	"github.com/alnah/go-hcpdf/internal/config"
	"github.com/alnah/go-hcpdf/internal/hints"
	"github.com/alnah/go-hcpdf/internal/logger"
	"github.com/alnah/go-hcpdf/internal/server"
)

// runServe loads configuration and presets, starts Chrome and the page
// pool, and serves until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.config, env)
	if err != nil {
		return err
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: env.Stderr,
	})
	for _, name := range config.UnknownEnv(env.Environ()) {
		log.Warn("unknown environment variable ignored", "name", name)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()

	presets, err := hcpdf.LoadPresets(ctx, presetSource(cfg))
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForPresetSource(cfg.Render.PresetFile))
	}
	log.Info("presets loaded", "count", presets.Len(), "names", presets.Names())

	opts, err := browserOptions(cfg)
	if err != nil {
		return err
	}
	browser, err := hcpdf.LaunchBrowser(opts)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Warn("closing browser", "error", err)
		}
	}()

	pool := hcpdf.NewPagePool(hcpdf.ResolvePoolSize(cfg.Browser.Pages), browser.NewPage)
	pool.SetAcquireTimeout(cfg.Render.AcquireTimeout())
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing page pool", "error", err)
		}
	}()

	if err := pool.Warm(ctx); err != nil {
		return fmt.Errorf("warming page pool: %w%s", err, hints.ForBrowserConnect())
	}
	log.Info("page pool ready", "pages", pool.Size())

	renderer := hcpdf.NewRenderer(pool, presets,
		hcpdf.WithDefaultPreset(cfg.Render.DefaultPreset),
		hcpdf.WithReadyTimeout(cfg.Render.ReadyTimeout()),
		hcpdf.WithSettleDelay(cfg.Render.SettleDelay()),
		hcpdf.WithCookieForwarding(cfg.Render.CookieForwarding),
		hcpdf.WithReadyWait(cfg.Render.ReadyWait),
		hcpdf.WithLogger(log.WithComponent("renderer").Logger),
	)

	srv := server.New(renderer, log, server.Config{
		Version:      Version,
		BearerSecret: cfg.Server.BearerSecret,
		BodyLimit:    cfg.Server.BodyLimit,
		Stats:        pool,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w%s", cfg.Addr(), err, hints.ForListen(cfg.Addr()))
	}

	log.Info("starting", slog.String("version", Version), slog.Bool("auth", cfg.Server.BearerSecret != ""))
	return srv.Serve(ctx, ln)
}

// presetSource picks the preset file when configured, else the built-in
// table seeded from the pdf section.
func presetSource(cfg *config.Config) hcpdf.PresetSource {
	if cfg.Render.PresetFile != "" {
		return hcpdf.FileSource{Path: cfg.Render.PresetFile}
	}
	return hcpdf.BuiltinSource{Settings: hcpdf.DefaultPDFSettings{
		Format:          cfg.PDF.Format,
		Landscape:       cfg.PDF.Landscape,
		Margin:          cfg.PDF.Margin,
		PrintBackground: cfg.PDF.PrintBackground,
	}}
}

// browserOptions maps the browser section onto hcpdf.BrowserOptions.
func browserOptions(cfg *config.Config) (hcpdf.BrowserOptions, error) {
	opts := hcpdf.BrowserOptions{
		Bin:                cfg.Browser.Bin,
		NoSandbox:          cfg.Browser.NoSandbox,
		Args:               cfg.Browser.Args,
		UserAgent:          cfg.Browser.UserAgent,
		AcceptLanguage:     cfg.Browser.AcceptLanguage,
		EmulateScreenMedia: cfg.Browser.EmulateScreenMedia,
		PageTimeout:        cfg.Browser.PageTimeout(),
	}

	w, h, ok, err := cfg.Browser.ViewportSize()
	if err != nil {
		return opts, fmt.Errorf("%w: browser.%v", config.ErrInvalidConfig, err)
	}
	if ok {
		opts.Viewport = &hcpdf.Viewport{Width: w, Height: h}
	}
	return opts, nil
}
