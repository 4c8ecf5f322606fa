// Package risk implements the C9 Risk Manager: pre-trade validation of
// advisor verdicts against daily loss, exposure, trade-size, and slippage
// limits. Grounded on original_source's core/risk/manager.py and
// core/execution/slippage.py.
package risk

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the risk manager's configurable limits, following the
// teacher's yaml-section config style (pkg/market.Config, pkg/manager.Config).
type Config struct {
	MaxDailyLoss      float64 `yaml:"max_daily_loss"`
	MaxTotalExposure  float64 `yaml:"max_total_exposure"`
	MaxSingleTrade    float64 `yaml:"max_single_trade"`
	MaxSlippagePct    float64 `yaml:"max_slippage_pct"`
}

const defaultMaxSlippagePct = 5.0

// LoadConfig reads risk configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open risk config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read risk config: %w", err)
	}
	cfg := &Config{MaxSlippagePct: defaultMaxSlippagePct}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal risk config: %w", err)
	}
	if cfg.MaxSlippagePct <= 0 {
		cfg.MaxSlippagePct = defaultMaxSlippagePct
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every limit is a positive, sensible value.
func (c *Config) Validate() error {
	if c.MaxDailyLoss <= 0 {
		return errors.New("risk config: max_daily_loss must be positive")
	}
	if c.MaxTotalExposure <= 0 {
		return errors.New("risk config: max_total_exposure must be positive")
	}
	if c.MaxSingleTrade <= 0 {
		return errors.New("risk config: max_single_trade must be positive")
	}
	if c.MaxSlippagePct <= 0 {
		return errors.New("risk config: max_slippage_pct must be positive")
	}
	return nil
}
