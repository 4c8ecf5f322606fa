// Package config assembles the copytrader daemon configuration from a
// go-zero style YAML file plus per-component section files, following the
// same layered pattern as the teacher's internal/config package.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"copytrader/pkg/advisor"
	"copytrader/pkg/confkit"
	"copytrader/pkg/risk"
	"copytrader/pkg/venue"
)

// RedisConf describes the volatile store connection.
type RedisConf struct {
	Addr     string `json:",optional"`
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

// PostgresConf mirrors the teacher's pool-tuning knobs for the durable store.
type PostgresConf struct {
	DataSource  string        `json:",optional"`
	MaxOpen     int           `json:",default=10"`
	MaxIdle     int           `json:",default=5"`
	MaxLifetime time.Duration `json:",default=5m"`
}

// WatchedWallet seeds a wallet under copy-trade watch at startup.
type WatchedWallet struct {
	Address string `json:"address"`
	Label   string `json:"label,optional"`
	Enabled bool   `json:"enabled,default=true"`
}

// ArbitrageConfig configures the cross-venue scan cadence (C5).
type ArbitrageConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MinSpread    float64       `yaml:"min_spread"`
	MinVolume    float64       `yaml:"min_volume"`
	PrimaryFee   float64       `yaml:"primary_fee"`
	SecondaryFee float64       `yaml:"secondary_fee"`
}

// PriceLagConfig configures the Binance-vs-Polymarket lag scanner.
type PriceLagConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MinPriceMove float64       `yaml:"min_price_move"`
	MaxMarketLag float64       `yaml:"max_market_lag"`
	// Symbols is the set of Binance trade-stream symbols to subscribe to,
	// e.g. "btcusdt". Markets on the crypto_watchlist reference these by
	// CryptoSymbol.
	Symbols []string `yaml:"symbols"`
}

// Config is the root configuration for the copytrader daemon.
type Config struct {
	rest.RestConf

	// Env indicates the running environment: test | dev | prod. It is
	// validated and reported by IsTestEnv; execution mode and advisor model
	// are not chosen from it.
	Env string `json:",default=test"`

	Postgres PostgresConf `json:",optional"`
	Redis    RedisConf    `json:",optional"`

	Risk      confkit.Section[risk.Config]     `json:",optional"`
	Advisor   confkit.Section[advisor.Config]  `json:",optional"`
	Venue     confkit.Section[venue.Config]    `json:",optional"`
	Arbitrage confkit.Section[ArbitrageConfig] `json:",optional"`
	PriceLag  confkit.Section[PriceLagConfig]  `json:",optional"`

	// Wallets is the initial set of wallets to follow; operators add more
	// at runtime through cmd/copytraderctl.
	Wallets []WatchedWallet `json:",optional"`

	mainPath string
	baseDir  string
}

const defaultConfigRelativePath = "etc/copytrader.yaml"

var configFileFlag = flag.String("f", defaultConfigRelativePath, "the config file")

func init() {
	confkit.LoadDotenvOnce()
}

// ConfigFile resolves the -f flag against cwd/executable-relative search, the
// same convention the teacher uses so operators can run the binary from any
// working directory inside the repo checkout.
func ConfigFile() string {
	candidate := defaultConfigRelativePath
	if configFileFlag != nil {
		if trimmed := strings.TrimSpace(*configFileFlag); trimmed != "" {
			candidate = trimmed
		}
	}
	if resolved, ok := resolveConfigPath(candidate); ok {
		return resolved
	}
	return candidate
}

// OverrideConfigFile swaps the -f flag value, returning a restore func; used
// by tests that need to point at a fixture config.
func OverrideConfigFile(path string) (restore func()) {
	prev := ConfigFile()
	if configFileFlag != nil {
		*configFileFlag = path
	}
	return func() {
		if configFileFlag != nil {
			*configFileFlag = prev
		}
	}
}

func resolveConfigPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path, true
		}
		return "", false
	}
	startDirs := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		startDirs = append(startDirs, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		startDirs = append(startDirs, filepath.Dir(exePath))
	}
	seen := make(map[string]struct{}, len(startDirs))
	for _, dir := range startDirs {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if resolved, ok := searchUpwards(dir, path); ok {
			return resolved, true
		}
	}
	return "", false
}

func searchUpwards(start, rel string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		candidate := filepath.Join(dir, rel)
		if fileExists(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MustLoad loads the config at the resolved path or panics.
func MustLoad() *Config {
	cfg, err := Load(ConfigFile())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads and validates the config at path, hydrating every section file.
func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required top-level fields.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return nil
}

// IsTestEnv reports whether Env is "test" (case-insensitive) or empty.
func (c *Config) IsTestEnv() bool {
	return strings.EqualFold(c.Env, "test") || c.Env == ""
}

func (c *Config) hydrateSections() error {
	base := c.baseDir
	if err := c.Risk.Hydrate(base, risk.LoadConfig); err != nil {
		return fmt.Errorf("load risk config: %w", err)
	}
	if err := c.Advisor.Hydrate(base, advisor.LoadConfig); err != nil {
		return fmt.Errorf("load advisor config: %w", err)
	}
	if err := c.Venue.Hydrate(base, venue.LoadConfig); err != nil {
		return fmt.Errorf("load venue config: %w", err)
	}
	if err := c.Arbitrage.Hydrate(base, loadArbitrageConfig); err != nil {
		return fmt.Errorf("load arbitrage config: %w", err)
	}
	if err := c.PriceLag.Hydrate(base, loadPriceLagConfig); err != nil {
		return fmt.Errorf("load price lag config: %w", err)
	}
	return nil
}

func loadArbitrageConfig(path string) (*ArbitrageConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open arbitrage config: %w", err)
	}
	defer file.Close()

	cfg := &ArbitrageConfig{
		PollInterval: 15 * time.Second,
		MinSpread:    0.03,
		MinVolume:    1000,
		PrimaryFee:   0.02,
		SecondaryFee: 0.01,
	}
	if err := confkit.DecodeYAML(file, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPriceLagConfig(path string) (*PriceLagConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price lag config: %w", err)
	}
	defer file.Close()

	cfg := &PriceLagConfig{
		PollInterval: 30 * time.Second,
		MinPriceMove: 0.02,
		MaxMarketLag: 0.10,
	}
	if err := confkit.DecodeYAML(file, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MainPath returns the resolved absolute path of the loaded main config file.
func (c *Config) MainPath() string { return c.mainPath }

// BaseDir returns the directory containing the loaded main config file.
func (c *Config) BaseDir() string { return c.baseDir }
