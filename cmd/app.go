package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/config"
	"github.com/brogergvhs/kirarank/internal/extract"
	"github.com/brogergvhs/kirarank/internal/harvest"
	"github.com/brogergvhs/kirarank/internal/pipeline"
	"github.com/brogergvhs/kirarank/internal/store"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/ui"
	"github.com/brogergvhs/kirarank/internal/util"
)

var (
	// fetching
	flagWorkers    int
	flagDelay      time.Duration
	flagUserAgent  string
	flagCookie     string
	flagCookieFile string
)

// addFetchFlags registers the flags of commands that talk to the site.
func addFetchFlags(c *cobra.Command) {
	c.Flags().IntVar(&flagWorkers, "workers", 0, "parallel issue fetches (default from config)")
	c.Flags().DurationVar(&flagDelay, "delay", 0, "delay between requests, at least 1s (default from config)")
	c.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	c.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	c.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
}

func loadConfig() (*config.Config, string, error) {
	return config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		ConfigPath:   flagConfig,
		EnvFile:      flagEnvFile,
		Debug:        flagDebug,
		DataDir:      flagDataDir,
		StoreDriver:  flagStore,
		StoreDSN:     flagDSN,
		Workers:      flagWorkers,
		Delay:        flagDelay,
		UserAgent:    flagUserAgent,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
	})
}

// app is everything a pipeline command needs, built from the merged config.
type app struct {
	cfg   *config.Config
	log   *ui.Logger
	store store.Store
	pipe  *pipeline.Pipeline
}

func newApp(ctx context.Context) (*app, error) {
	cfg, used, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if used != "" {
		logSvc.Debugf("config file: %s", used)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	year, month, err := cfg.Cutover()
	if err != nil {
		return nil, err
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.Timeout,
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      logSvc,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:     cfg.Store.Driver,
		DSN:        cfg.Store.DSN,
		URLFile:    cfg.URLPath(),
		RawDir:     cfg.RawPath(),
		MasterFile: cfg.MasterPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	// one limiter for every request to the site
	throttle := util.NewThrottle(cfg.Delay)
	fixes := cfg.Fixes()

	p := pipeline.New(pipeline.Deps{
		Store: st,
		Harvester: harvest.New(client, harvest.Options{
			BaseURL:  cfg.BaseURL,
			Fixes:    fixes,
			Throttle: throttle,
			Attempts: cfg.Retries,
			Log:      logSvc,
		}),
		Extractor: extract.New(client, extract.Options{
			Registry: reg,
			Fixes:    fixes,
			Cutover:  extract.Cutover{Year: year, Month: month},
			Throttle: throttle,
			Attempts: cfg.Retries,
			Log:      logSvc,
		}),
		Registry:     reg,
		Fixes:        fixes,
		AliasFile:    cfg.AliasFile,
		OverrideFile: cfg.OverrideFile,
		Workers:      cfg.Workers,
		FirstYear:    cfg.FirstYear,
		Log:          logSvc,
		Progress:     os.Stderr,
	})
	logSvc.Debugf("run %s: store=%s workers=%d delay=%s", p.RunID, cfg.Store.Driver, cfg.Workers, cfg.Delay)

	return &app{cfg: cfg, log: logSvc, store: st, pipe: p}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnf("close store: %v", err)
	}
}

// interruptible wraps ctx so the first Ctrl-C stops new fetches and the
// second removes temp files of half-written tables before exiting.
func (a *app) interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return util.SetupInterruptHandler(ctx, func() {
		for _, p := range util.CleanupTempFiles(table.TempSuffix, a.cfg.RawPath(), a.cfg.DataDir) {
			a.log.Debugf("removed %s", p)
		}
		util.RemoveIfEmpty(a.cfg.RawPath())
	})
}
