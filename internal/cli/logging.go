// Package cli holds small helpers shared by the daemon and operator
// entrypoints, grounded on the teacher's internal/cli logging summary.
package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/internal/config"
	"copytrader/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// daemon config, for startup diagnostics.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	return []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DataSource != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Addr) != "")),
		sectionLine("Risk config", cfg.Risk),
		sectionLine("Advisor config", cfg.Advisor),
		sectionLine("Venue config", cfg.Venue),
		sectionLine("Arbitrage config", cfg.Arbitrage),
		fmt.Sprintf("Watched wallets (seed): %d", len(cfg.Wallets)),
	}
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
