package venue

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PrimaryConfig configures the tradable venue client (gamma/CLOB/data-api
// style REST endpoints).
type PrimaryConfig struct {
	BaseURL      string        `yaml:"base_url"`
	DataAPIURL   string        `yaml:"data_api_url"`
	APIKey       string        `yaml:"api_key"`
	APISecret    string        `yaml:"api_secret"`
	Passphrase   string        `yaml:"passphrase"`
	Timeout      time.Duration `yaml:"-"`
	timeoutRaw   string        `yaml:"timeout"`
}

// SecondaryConfig configures the read-only comparison venue client, which
// authenticates reads with an RSA-PSS signed request per spec §6.
type SecondaryConfig struct {
	BaseURL       string        `yaml:"base_url"`
	KeyID         string        `yaml:"key_id"`
	PrivateKeyPEM string        `yaml:"private_key_pem"`
	Timeout       time.Duration `yaml:"-"`
	timeoutRaw    string        `yaml:"timeout"`
}

// Config is the venue section of the daemon config.
type Config struct {
	Primary   PrimaryConfig     `yaml:"primary"`
	Secondary SecondaryConfig   `yaml:"secondary"`
	Mappings  []MarketMapping   `yaml:"mappings"`
}

const (
	envPrimaryAPIKey    = "VENUE_PRIMARY_API_KEY"
	envPrimaryAPISecret = "VENUE_PRIMARY_API_SECRET"
	envSecondaryKeyID   = "VENUE_SECONDARY_KEY_ID"
	envSecondaryKeyPEM  = "VENUE_SECONDARY_PRIVATE_KEY_PEM"

	defaultTimeout = 10 * time.Second
)

// LoadConfig reads the venue section file from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open venue config: %w", err)
	}
	defer file.Close()

	var raw struct {
		Primary struct {
			PrimaryConfig `yaml:",inline"`
			Timeout       string `yaml:"timeout"`
		} `yaml:"primary"`
		Secondary struct {
			SecondaryConfig `yaml:",inline"`
			Timeout         string `yaml:"timeout"`
		} `yaml:"secondary"`
		Mappings []MarketMapping `yaml:"mappings"`
	}
	if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode venue config: %w", err)
	}

	cfg := &Config{
		Primary:   raw.Primary.PrimaryConfig,
		Secondary: raw.Secondary.SecondaryConfig,
		Mappings:  raw.Mappings,
	}
	cfg.Primary.timeoutRaw = raw.Primary.Timeout
	cfg.Secondary.timeoutRaw = raw.Secondary.Timeout

	cfg.applyEnvOverrides()
	if err := cfg.parseTimeouts(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrimaryAPIKey); v != "" {
		c.Primary.APIKey = v
	}
	if v := os.Getenv(envPrimaryAPISecret); v != "" {
		c.Primary.APISecret = v
	}
	if v := os.Getenv(envSecondaryKeyID); v != "" {
		c.Secondary.KeyID = v
	}
	if v := os.Getenv(envSecondaryKeyPEM); v != "" {
		c.Secondary.PrivateKeyPEM = v
	}
	c.Primary.BaseURL = os.ExpandEnv(c.Primary.BaseURL)
	c.Secondary.BaseURL = os.ExpandEnv(c.Secondary.BaseURL)
}

func (c *Config) parseTimeouts() error {
	d, err := parseDurationOrDefault(c.Primary.timeoutRaw, defaultTimeout)
	if err != nil {
		return fmt.Errorf("venue config: primary timeout: %w", err)
	}
	c.Primary.Timeout = d

	d, err = parseDurationOrDefault(c.Secondary.timeoutRaw, defaultTimeout)
	if err != nil {
		return fmt.Errorf("venue config: secondary timeout: %w", err)
	}
	c.Secondary.Timeout = d
	return nil
}

func parseDurationOrDefault(raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}

// Validate checks that the required endpoints are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Primary.BaseURL) == "" {
		return fmt.Errorf("venue config: primary.base_url is required")
	}
	if strings.TrimSpace(c.Secondary.BaseURL) == "" {
		return fmt.Errorf("venue config: secondary.base_url is required")
	}
	return nil
}
