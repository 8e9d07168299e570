package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/betbot/gomm/clob/client"
	"github.com/betbot/gomm/clob/types"
	"github.com/betbot/gomm/internal/config"
	"github.com/betbot/gomm/internal/discovery"
	"github.com/betbot/gomm/pkg/logger"
)

// Discovery dry run: resolve today's markets for the configured tickers and
// print their reward parameters, optionally with live midpoints when
// credentials are available.
func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	envPath := flag.String("env", ".env", "dotenv file with credentials")
	withMids := flag.Bool("mids", true, "fetch live midpoints when credentials allow")
	flag.Parse()

	_ = godotenv.Load(*envPath)
	logger.Init(logger.Config{Level: "info"})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	gamma := discovery.NewClient("")
	markets, err := gamma.ResolveMarkets(ctx, cfg.Tickers)
	if err != nil {
		logger.Errorf("discovery: %v", err)
		os.Exit(1)
	}

	var venue *client.Client
	if *withMids {
		venue = buildVenue(ctx, cfg)
	}

	fmt.Printf("\nDiscovered %d markets:\n", len(markets))
	for _, m := range markets {
		midStr := ""
		if venue != nil {
			if mid, ok, err := venue.GetMidpoint(ctx, m.YesTokenID); err == nil && ok {
				midStr = fmt.Sprintf("  mid: %.3f", mid)
			} else {
				midStr = "  mid: N/A"
			}
		}
		fmt.Printf("  %s: %s\n", m.Ticker, m.Question)
		fmt.Printf("    YES token: %.20s...\n", m.YesTokenID)
		fmt.Printf("    spread: %v, min_size: %v, tick: %s%s\n",
			m.MaxIncentiveSpread, m.MinIncentiveSize, m.TickSize, midStr)
	}
}

// buildVenue returns a ready client, or nil when credentials are missing.
// Midpoints are optional in a dry run.
func buildVenue(ctx context.Context, cfg *config.Config) *client.Client {
	wallet, err := cfg.LoadWallet()
	if err != nil {
		return nil
	}
	venue, err := client.NewClient(cfg.ClobHost, types.Chain(cfg.ChainID), wallet.PrivateKey, wallet.Funder, wallet.SigType)
	if err != nil {
		return nil
	}
	if cfg.HasApiCreds() {
		venue.SetApiCreds(types.ApiKeyCreds{Key: cfg.ClobAPIKey, Secret: cfg.ClobSecret, Passphrase: cfg.ClobPassphrase})
	}
	return venue
}
