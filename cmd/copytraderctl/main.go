// Command copytraderctl is the operator CLI for the copytrader daemon:
// manage watched wallets, market filters, market mappings, switch between
// paper/live mode, and trip or reset the emergency stop. Grounded on the
// teacher's cmd/llm flag-per-subcommand + fatalf style.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/internal/config"
	"copytrader/internal/model"
	"copytrader/internal/store"
	"copytrader/internal/volatile"
	"copytrader/pkg/safety"
	"copytrader/pkg/signal"
)

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func main() {
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.MustLoad()
	st := store.New(cfg.Postgres.DataSource)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	vol := volatile.NewRedisStore(redisClient, volatile.DefaultTTLSet)

	ctx := context.Background()

	switch os.Args[1] {
	case "wallets":
		runWallets(ctx, st, os.Args[2:])
	case "filters":
		runFilters(ctx, st, os.Args[2:])
	case "mappings":
		runMappings(ctx, st, os.Args[2:])
	case "watchlist":
		runWatchlist(ctx, st, os.Args[2:])
	case "mode":
		runMode(ctx, vol, os.Args[2:])
	case "live-confirm":
		runLiveConfirm(ctx, vol, os.Args[2:])
	case "emergency-stop":
		runEmergencyStop(ctx, vol, os.Args[2:])
	case "status":
		runStatus(ctx, vol)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: copytraderctl <command> [flags]

commands:
  wallets add --address=0x.. --label=.. --scale=1.0
  wallets list
  wallets enable --address=0x..
  wallets disable --address=0x..
  filters add --type=market|category|keyword --value=.. --action=allow|deny
  filters list
  mappings add --primary=.. --secondary=.. --label=..
  mappings list
  watchlist add --market=.. --symbol=.. --title=..
  watchlist list
  mode get
  mode set --mode=paper|live
  live-confirm get
  live-confirm set --confirmed=true|false
  emergency-stop activate --reason=..
  emergency-stop reset
  status`)
}

func runWallets(ctx context.Context, st *store.Store, args []string) {
	if len(args) == 0 {
		fatalf("wallets: missing subcommand")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("wallets add", flag.ExitOnError)
		address := fs.String("address", "", "wallet address")
		label := fs.String("label", "", "display label")
		scale := fs.Float64("scale", 1.0, "signal size scale factor")
		minConf := fs.Float64("min-confidence", 0, "minimum advisor confidence to act on this wallet")
		_ = fs.Parse(args[1:])
		if strings.TrimSpace(*address) == "" {
			fatalf("wallets add: --address is required")
		}
		rec := &model.WalletRecord{
			ID:            uuid.NewString(),
			Address:       signal.CanonicalAddress(*address),
			Label:         *label,
			Enabled:       true,
			ScaleFactor:   *scale,
			MinConfidence: *minConf,
		}
		if err := st.Wallets.Insert(ctx, rec); err != nil {
			fatalf("wallets add: %v", err)
		}
		logx.Infof("wallets add: added %s (%s)", rec.Address, rec.Label)

	case "list":
		rows, err := st.Wallets.ListEnabled(ctx)
		if err != nil {
			fatalf("wallets list: %v", err)
		}
		for _, w := range rows {
			fmt.Printf("%s\tlabel=%q\tscale=%.2f\tmin_confidence=%.2f\n", w.Address, w.Label, w.ScaleFactor, w.MinConfidence)
		}

	case "enable", "disable":
		fs := flag.NewFlagSet("wallets "+args[0], flag.ExitOnError)
		address := fs.String("address", "", "wallet address")
		_ = fs.Parse(args[1:])
		if strings.TrimSpace(*address) == "" {
			fatalf("wallets %s: --address is required", args[0])
		}
		if err := st.Wallets.SetEnabled(ctx, signal.CanonicalAddress(*address), args[0] == "enable"); err != nil {
			fatalf("wallets %s: %v", args[0], err)
		}
		logx.Infof("wallets %s: %s", args[0], *address)

	default:
		fatalf("wallets: unknown subcommand %q", args[0])
	}
}

func runFilters(ctx context.Context, st *store.Store, args []string) {
	if len(args) == 0 {
		fatalf("filters: missing subcommand")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("filters add", flag.ExitOnError)
		filterType := fs.String("type", "", "market|category|keyword")
		value := fs.String("value", "", "filter value")
		action := fs.String("action", "", "allow|deny")
		_ = fs.Parse(args[1:])
		rec := &model.MarketFilterRecord{
			ID:     uuid.NewString(),
			Type:   model.FilterType(*filterType),
			Value:  *value,
			Action: model.FilterAction(*action),
		}
		if err := st.MarketFilters.Insert(ctx, rec); err != nil {
			fatalf("filters add: %v", err)
		}
		logx.Infof("filters add: %s %s -> %s", rec.Type, rec.Value, rec.Action)

	case "list":
		rows, err := st.MarketFilters.ListAll(ctx)
		if err != nil {
			fatalf("filters list: %v", err)
		}
		for _, f := range rows {
			fmt.Printf("%s\t%s\t%s\n", f.Type, f.Value, f.Action)
		}

	default:
		fatalf("filters: unknown subcommand %q", args[0])
	}
}

func runMappings(ctx context.Context, st *store.Store, args []string) {
	if len(args) == 0 {
		fatalf("mappings: missing subcommand")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("mappings add", flag.ExitOnError)
		primary := fs.String("primary", "", "primary venue market id")
		secondary := fs.String("secondary", "", "secondary venue market id")
		label := fs.String("label", "", "display label")
		_ = fs.Parse(args[1:])
		rec := &model.MarketMappingRecord{
			ID:                uuid.NewString(),
			PrimaryMarketID:   *primary,
			SecondaryMarketID: *secondary,
			Label:             *label,
		}
		if err := st.MarketMappings.Insert(ctx, rec); err != nil {
			fatalf("mappings add: %v", err)
		}
		logx.Infof("mappings add: %s <-> %s (%s)", rec.PrimaryMarketID, rec.SecondaryMarketID, rec.Label)

	case "list":
		rows, err := st.MarketMappings.ListAll(ctx)
		if err != nil {
			fatalf("mappings list: %v", err)
		}
		for _, m := range rows {
			fmt.Printf("%s\t%s <-> %s\t%s\n", m.ID, m.PrimaryMarketID, m.SecondaryMarketID, m.Label)
		}

	default:
		fatalf("mappings: unknown subcommand %q", args[0])
	}
}

// runWatchlist manages the operator-curated crypto_watchlist table: which
// Polymarket markets to monitor against which Binance trade-stream symbol,
// grounded on the same add/list shape as runMappings/runFilters rather than
// a dynamic Gamma-category discovery client (see DESIGN.md).
func runWatchlist(ctx context.Context, st *store.Store, args []string) {
	if len(args) == 0 {
		fatalf("watchlist: missing subcommand")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("watchlist add", flag.ExitOnError)
		market := fs.String("market", "", "polymarket market id")
		symbol := fs.String("symbol", "", "binance trade-stream symbol, e.g. btcusdt")
		title := fs.String("title", "", "display title")
		_ = fs.Parse(args[1:])
		if strings.TrimSpace(*market) == "" || strings.TrimSpace(*symbol) == "" {
			fatalf("watchlist add: --market and --symbol are required")
		}
		rec := &model.CryptoWatchlistRecord{
			ID:           uuid.NewString(),
			MarketID:     *market,
			MarketTitle:  *title,
			CryptoSymbol: strings.ToLower(*symbol),
			Enabled:      true,
		}
		if err := st.CryptoWatchlist.Insert(ctx, rec); err != nil {
			fatalf("watchlist add: %v", err)
		}
		logx.Infof("watchlist add: %s -> %s (%s)", rec.MarketID, rec.CryptoSymbol, rec.MarketTitle)

	case "list":
		rows, err := st.CryptoWatchlist.ListEnabled(ctx)
		if err != nil {
			fatalf("watchlist list: %v", err)
		}
		for _, w := range rows {
			fmt.Printf("%s\tsymbol=%s\ttitle=%q\n", w.MarketID, w.CryptoSymbol, w.MarketTitle)
		}

	default:
		fatalf("watchlist: unknown subcommand %q", args[0])
	}
}

func runMode(ctx context.Context, vol volatile.Store, args []string) {
	if len(args) == 0 {
		fatalf("mode: missing subcommand")
	}
	switch args[0] {
	case "get":
		mode, err := vol.GetMode(ctx)
		if err != nil {
			fatalf("mode get: %v", err)
		}
		fmt.Println(mode)

	case "set":
		fs := flag.NewFlagSet("mode set", flag.ExitOnError)
		mode := fs.String("mode", "", "paper|live")
		_ = fs.Parse(args[1:])
		if *mode != "paper" && *mode != "live" {
			fatalf("mode set: --mode must be paper or live")
		}
		if err := vol.SetMode(ctx, *mode); err != nil {
			fatalf("mode set: %v", err)
		}
		logx.Infof("mode set: %s", *mode)

	default:
		fatalf("mode: unknown subcommand %q", args[0])
	}
}

// runLiveConfirm manages the system:live_confirmed flag: mode=live alone
// never authorizes real order submission, an operator must separately set
// this flag, grounded on spec §4.10's mode=live fallback-to-paper rule.
func runLiveConfirm(ctx context.Context, vol volatile.Store, args []string) {
	if len(args) == 0 {
		fatalf("live-confirm: missing subcommand")
	}
	switch args[0] {
	case "get":
		confirmed, err := vol.GetLiveConfirmed(ctx)
		if err != nil {
			fatalf("live-confirm get: %v", err)
		}
		fmt.Println(confirmed)

	case "set":
		fs := flag.NewFlagSet("live-confirm set", flag.ExitOnError)
		confirmed := fs.Bool("confirmed", false, "true|false")
		_ = fs.Parse(args[1:])
		if err := vol.SetLiveConfirmed(ctx, *confirmed); err != nil {
			fatalf("live-confirm set: %v", err)
		}
		logx.Infof("live-confirm set: %v", *confirmed)

	default:
		fatalf("live-confirm: unknown subcommand %q", args[0])
	}
}

func runEmergencyStop(ctx context.Context, vol volatile.Store, args []string) {
	guard := safety.NewGuard(vol)
	if len(args) == 0 {
		fatalf("emergency-stop: missing subcommand")
	}
	switch args[0] {
	case "activate":
		fs := flag.NewFlagSet("emergency-stop activate", flag.ExitOnError)
		reason := fs.String("reason", "operator requested stop", "reason recorded with the stop")
		_ = fs.Parse(args[1:])
		if err := guard.ActivateEmergencyStop(ctx, *reason); err != nil {
			fatalf("emergency-stop activate: %v", err)
		}
		logx.Infof("emergency-stop activated: %s", *reason)

	case "reset":
		if err := guard.ResetEmergencyStop(ctx); err != nil {
			fatalf("emergency-stop reset: %v", err)
		}
		logx.Info("emergency-stop reset")

	default:
		fatalf("emergency-stop: unknown subcommand %q", args[0])
	}
}

func runStatus(ctx context.Context, vol volatile.Store) {
	mode, err := vol.GetMode(ctx)
	if err != nil {
		fatalf("status: get mode: %v", err)
	}
	stopped, err := vol.GetEmergencyStop(ctx)
	if err != nil {
		fatalf("status: get emergency stop: %v", err)
	}
	exposure, err := vol.GetOpenExposure(ctx)
	if err != nil {
		fatalf("status: get open exposure: %v", err)
	}
	dailyPnL, err := vol.GetDailyPnL(ctx, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		fatalf("status: get daily pnl: %v", err)
	}
	liveConfirmed, err := vol.GetLiveConfirmed(ctx)
	if err != nil {
		fatalf("status: get live confirmed: %v", err)
	}

	fmt.Printf("mode: %s\n", mode)
	fmt.Printf("live confirmed: %v\n", liveConfirmed)
	fmt.Printf("emergency stop: active=%v reason=%q\n", stopped.Active, stopped.Reason)
	fmt.Printf("open exposure: %s\n", strconv.FormatFloat(exposure, 'f', 4, 64))
	fmt.Printf("daily pnl: %s\n", strconv.FormatFloat(dailyPnL, 'f', 4, 64))
}
