package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/gomm/clob/client"
	"github.com/betbot/gomm/clob/types"
	"github.com/betbot/gomm/internal/config"
	"github.com/betbot/gomm/internal/discovery"
	"github.com/betbot/gomm/internal/mm"
	"github.com/betbot/gomm/pkg/logger"
	"github.com/betbot/gomm/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	envPath := flag.String("env", ".env", "dotenv file with credentials")
	flag.Parse()

	// Missing .env is fine when the environment is already populated.
	_ = godotenv.Load(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.InitDefault()
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		logger.InitDefault()
		logger.Warnf("log file setup failed: %v", err)
	}

	if err := run(cfg); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("initializing CLOB client...")
	wallet, err := cfg.LoadWallet()
	if err != nil {
		return err
	}
	venue, err := client.NewClient(cfg.ClobHost, types.Chain(cfg.ChainID), wallet.PrivateKey, wallet.Funder, wallet.SigType)
	if err != nil {
		return err
	}
	logger.Infof("signer %s funder %s", venue.SignerAddress().Hex(), venue.FunderAddress().Hex())

	if cfg.HasApiCreds() {
		venue.SetApiCreds(types.ApiKeyCreds{
			Key:        cfg.ClobAPIKey,
			Secret:     cfg.ClobSecret,
			Passphrase: cfg.ClobPassphrase,
		})
	} else {
		logger.Info("no API creds in env, deriving from private key...")
		creds, err := venue.CreateOrDeriveApiKey(ctx, 0)
		if err != nil {
			return err
		}
		venue.SetApiCreds(creds)
		logger.Infof("derived creds, add to .env:\nCLOB_API_KEY=%s\nCLOB_SECRET=%s\nCLOB_PASSPHRASE=%s",
			creds.Key, creds.Secret, creds.Passphrase)
	}

	// Capital check. Quoting still proceeds on a low balance; undersized
	// markets just get rejected order by order.
	balance, err := venue.GetCollateralBalance(ctx)
	balanceKnown := err == nil
	if err != nil {
		logger.Warnf("USDC balance check failed: %v", err)
	} else {
		logger.Infof("USDC balance: $%.2f", balance)
	}

	logger.Infof("discovering markets for tickers=%v", cfg.Tickers)
	gamma := discovery.NewClient("")
	markets, err := gamma.ResolveMarkets(ctx, cfg.Tickers)
	if err != nil {
		return err
	}
	if len(markets) == 0 {
		logger.Error("no markets found, exiting")
		os.Exit(1)
	}
	logger.Infof("found %d markets", len(markets))

	// Rough capital need: both sides of every market at the quoted size,
	// priced near the midpoint. Quoting proceeds anyway on a low balance.
	var needed float64
	for _, m := range markets {
		size := m.MinIncentiveSize
		if cfg.SizeOverride > 0 {
			size = cfg.SizeOverride
		}
		needed += 2 * size * 0.5
	}
	if balanceKnown && balance < needed {
		logger.Warnf("USDC balance $%.2f below estimated need $%.2f for %d markets, expect rejected orders",
			balance, needed, len(markets))
	}

	// The CLOB caches on-chain allowances; refresh them for every token we
	// are about to trade so the first orders are not rejected.
	for _, m := range markets {
		for _, tokenID := range []string{m.YesTokenID, m.NoTokenID} {
			if err := venue.RefreshBalanceAllowance(ctx, tokenID); err != nil {
				logger.Warnf("%s allowance refresh failed: %v", m.Ticker, err)
			}
		}
	}

	pricing := mm.Pricing{
		SpreadPct:    cfg.SpreadPct,
		SizeOverride: cfg.SizeOverride,
		Escalation:   cfg.ExitEscalation(),
		StopLossPct:  cfg.StopLossPct,
	}
	orders := mm.NewOrderManager(venue, cfg.DryRun)
	processor := mm.NewProcessor(orders, pricing,
		cfg.RefreshThreshold, cfg.MinQuotableMid, cfg.DustThreshold, cfg.ExitCooldown())
	fetcher := mm.NewFetcher(venue, cfg.FetchConcurrency)
	engine := mm.NewEngine(fetcher, processor, orders, cfg.PollInterval(), cfg.ShutdownTime)
	engine.Track(markets)

	if err := engine.PlaceInitialQuotes(ctx); err != nil {
		return err
	}
	logger.Infof("entering monitor loop (poll every %s, cutoff %s ET)", cfg.PollInterval(), cfg.ShutdownTime)

	// SIGHUP forces an immediate cycle, useful after manual order changes.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			engine.Kick()
		}
	}()

	shut := shutdown.NewManager()
	shut.OnShutdown(func(ctx context.Context) {
		engine.CancelAllQuoted(ctx)
	})

	err = engine.Run(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Info("interrupt received, cancelling all orders...")
	}

	sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	shut.Shutdown(sweepCtx)
	logger.Info("exiting")
	return nil
}
