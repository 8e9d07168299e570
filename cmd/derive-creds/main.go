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
	"github.com/betbot/gomm/pkg/logger"
)

// Derives (or creates) the L2 API credentials for the configured signing key
// and prints them in .env form.
func main() {
	envPath := flag.String("env", ".env", "dotenv file with PRIVATE_KEY or MNEMONIC")
	nonce := flag.Uint64("nonce", 0, "key nonce, 0 unless rotating")
	flag.Parse()

	_ = godotenv.Load(*envPath)
	logger.Init(logger.Config{Level: "info"})

	cfg, err := config.Load("")
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}
	wallet, err := cfg.LoadWallet()
	if err != nil {
		logger.Errorf("wallet: %v", err)
		os.Exit(1)
	}
	venue, err := client.NewClient(cfg.ClobHost, types.Chain(cfg.ChainID), wallet.PrivateKey, wallet.Funder, wallet.SigType)
	if err != nil {
		logger.Errorf("client: %v", err)
		os.Exit(1)
	}

	creds, err := venue.CreateOrDeriveApiKey(context.Background(), *nonce)
	if err != nil {
		logger.Errorf("derive: %v", err)
		os.Exit(1)
	}

	fmt.Printf("# signer %s\n", venue.SignerAddress().Hex())
	fmt.Printf("CLOB_API_KEY=%s\n", creds.Key)
	fmt.Printf("CLOB_SECRET=%s\n", creds.Secret)
	fmt.Printf("CLOB_PASSPHRASE=%s\n", creds.Passphrase)
}
