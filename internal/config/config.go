package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/kirarank/internal/magazine"
)

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

type Config struct {
	BaseURL string `yaml:"base_url"`

	DataDir      string      `yaml:"data_dir"`
	URLFile      string      `yaml:"url_file"`
	RawDir       string      `yaml:"raw_dir"`
	MasterFile   string      `yaml:"master_file"`
	OverrideFile string      `yaml:"override_file"`
	AliasFile    string      `yaml:"alias_file"`
	Store        StoreConfig `yaml:"store"`

	Workers          int           `yaml:"workers"`
	Delay            time.Duration `yaml:"delay"`
	Timeout          time.Duration `yaml:"timeout"`
	Retries          int           `yaml:"retries"`
	UserAgent        string        `yaml:"user_agent"`
	Cookie           string        `yaml:"cookie,omitempty"`
	CookieFile       string        `yaml:"cookie_file,omitempty"`
	CloudflareBypass bool          `yaml:"cloudflare_bypass"`

	FirstYear     int    `yaml:"first_year"`
	StartYear     int    `yaml:"start_year"`
	EndYear       int    `yaml:"end_year,omitempty"`
	LayoutCutover string `yaml:"layout_cutover"`

	Magazines     []magazine.Magazine `yaml:"magazines,omitempty"`
	DefaultExpect *magazine.Profile   `yaml:"default_expect,omitempty"`
	MonthFixes    []magazine.MonthFix `yaml:"month_fixes,omitempty"`

	Listen string `yaml:"listen"`
	Debug  bool   `yaml:"debug"`
}

// Options are the CLI-level inputs; non-zero values win over the file and
// the environment.
type Options struct {
	IgnoreConfig bool
	ConfigPath   string
	EnvFile      string
	Debug        bool
	DataDir      string
	StoreDriver  string
	StoreDSN     string
	Workers      int
	Delay        time.Duration
	UserAgent    string
	Cookie       string
	CookieFile   string
}

// Environment variables read after the config file.
const (
	EnvStoreDriver = "KIRARANK_STORE_DRIVER"
	EnvStoreDSN    = "KIRARANK_STORE_DSN"
	EnvDataDir     = "KIRARANK_DATA_DIR"
	EnvUserAgent   = "KIRARANK_USER_AGENT"
	EnvWorkers     = "KIRARANK_WORKERS"
)

// MinDelay is the smallest gap allowed between requests to the site.
const MinDelay = time.Second

func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://www.dokidokivisual.com",
		DataDir:       "data",
		URLFile:       "kirara_issue_urls.csv",
		RawDir:        "raw",
		MasterFile:    "master.csv",
		OverrideFile:  filepath.Join("overrides", "issues_fix.csv"),
		AliasFile:     filepath.Join("overrides", "aliases.csv"),
		Store:         StoreConfig{Driver: "csv"},
		Workers:       1,
		Delay:         time.Second,
		Timeout:       15 * time.Second,
		Retries:       3,
		FirstYear:     2007,
		StartYear:     2013,
		LayoutCutover: "2025-03",
		Listen:        "127.0.0.1:8080",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// unset keys keep their defaults
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective config: defaults, then the file given
// with --config or the active profile, then KIRARANK_* variables (a .env
// file is loaded first when present), then CLI flags. The second return
// value describes where the file came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, "", err
	}

	cfg, used, err := loadBase(opts)
	if err != nil {
		return nil, "", err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config %s: %w", used, err)
	}

	return cfg, used, nil
}

func loadBase(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		return DefaultConfig(), "(ignored config)", nil
	}

	if opts.ConfigPath != "" {
		cfg, err := loadYAML(opts.ConfigPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config %s: %w", opts.ConfigPath, err)
		}
		return cfg, opts.ConfigPath, nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		return DefaultConfig(), "(default config in memory)\nRun `kirarank config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return cfg, activePath, nil
}

// loadEnvFile loads path, or ./.env when path is empty. Variables already
// set in the environment are not overwritten. A missing default file is
// fine; a missing explicit one is not.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.StoreDriver != "" {
		c.Store.Driver = o.StoreDriver
	}
	if o.StoreDSN != "" {
		c.Store.DSN = o.StoreDSN
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Delay != 0 {
		c.Delay = o.Delay
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Delay < MinDelay {
		c.Delay = MinDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Retries < 1 {
		c.Retries = 1
	}
	if c.FirstYear == 0 {
		c.FirstYear = def.FirstYear
	}
	if c.LayoutCutover == "" {
		c.LayoutCutover = def.LayoutCutover
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
}

// Validate checks the values that are parsed later on.
func (c *Config) Validate() error {
	if _, _, err := c.Cutover(); err != nil {
		return err
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	if c.EndYear != 0 && c.StartYear > c.EndYear {
		return fmt.Errorf("start_year %d is after end_year %d", c.StartYear, c.EndYear)
	}
	return nil
}

// Cutover parses layout_cutover (YYYY-MM).
func (c *Config) Cutover() (year, month int, err error) {
	y, m, ok := strings.Cut(c.LayoutCutover, "-")
	if ok {
		year, err = strconv.Atoi(y)
		if err == nil {
			month, err = strconv.Atoi(m)
		}
	}
	if !ok || err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("layout_cutover %q: want YYYY-MM", c.LayoutCutover)
	}
	return year, month, nil
}

// Registry builds the magazine registry, falling back to the five
// built-in magazines when none are configured.
func (c *Config) Registry() (*magazine.Registry, error) {
	mags := c.Magazines
	if len(mags) == 0 {
		mags = magazine.Defaults()
	}
	return magazine.NewRegistry(mags, c.DefaultExpect)
}

func (c *Config) Fixes() magazine.MonthFixes {
	if len(c.MonthFixes) == 0 {
		return magazine.DefaultMonthFixes()
	}
	return magazine.NewMonthFixes(c.MonthFixes)
}

// dataPath resolves p against DataDir unless it is absolute.
func (c *Config) dataPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func (c *Config) URLPath() string    { return c.dataPath(c.URLFile) }
func (c *Config) RawPath() string    { return c.dataPath(c.RawDir) }
func (c *Config) MasterPath() string { return c.dataPath(c.MasterFile) }

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	fmt.Fprintf(w, " -data_dir: %s\n", c.DataDir)
	fmt.Fprintf(w, " -store: %s\n", c.Store.Driver)
	if c.Store.DSN != "" {
		fmt.Fprintf(w, " -store_dsn: %s\n", redactDSN(c.Store.DSN))
	}
	fmt.Fprintf(w, " -override_file: %s\n", c.OverrideFile)
	fmt.Fprintf(w, " -alias_file: %s\n", c.AliasFile)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -delay: %s\n", c.Delay)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	fmt.Fprintf(w, " -retries: %d\n", c.Retries)
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	fmt.Fprintf(w, " -years: first=%d start=%d", c.FirstYear, c.StartYear)
	if c.EndYear != 0 {
		fmt.Fprintf(w, " end=%d", c.EndYear)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, " -layout_cutover: %s\n", c.LayoutCutover)
	if len(c.Magazines) > 0 {
		slugs := make([]string, len(c.Magazines))
		for i, m := range c.Magazines {
			slugs[i] = m.Slug
		}
		fmt.Fprintf(w, " -magazines: %s\n", strings.Join(slugs, ", "))
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
}

// redactDSN hides a password in user:pass@ or postgres URL form.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	userinfo := dsn[:at]
	start := 0
	if i := strings.LastIndex(userinfo, "//"); i >= 0 {
		start = i + 2
	}
	if colon := strings.Index(userinfo[start:], ":"); colon >= 0 {
		return userinfo[:start+colon+1] + "***" + dsn[at:]
	}
	return dsn
}
