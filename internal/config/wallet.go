package config

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/pkg/errors"

	"github.com/betbot/gomm/clob/types"
)

const defaultDerivationPath = "m/44'/60'/0'/0/0"

// Wallet is the resolved signing identity.
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	Signer     common.Address
	Funder     common.Address
	SigType    types.SignatureType
}

// LoadWallet resolves the signing key from PRIVATE_KEY hex or, failing that,
// derives it from MNEMONIC at the standard Ethereum path. When a funder
// address is configured the account is a proxy wallet and orders are signed
// with the gnosis safe signature type.
func (c *Config) LoadWallet() (*Wallet, error) {
	var key *ecdsa.PrivateKey
	switch {
	case c.PrivateKey != "":
		k, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "parse PRIVATE_KEY")
		}
		key = k
	case c.Mnemonic != "":
		k, err := deriveKey(c.Mnemonic, defaultDerivationPath)
		if err != nil {
			return nil, err
		}
		key = k
	default:
		return nil, errors.New("no signing key configured")
	}

	signer := crypto.PubkeyToAddress(key.PublicKey)
	funder := signer
	sigType := types.SignatureTypeEOA
	if c.FunderAddress != "" {
		if !common.IsHexAddress(c.FunderAddress) {
			return nil, errors.Errorf("invalid FUNDER_ADDRESS %q", c.FunderAddress)
		}
		funder = common.HexToAddress(c.FunderAddress)
		sigType = types.SignatureTypeGnosisSafe
	}

	return &Wallet{
		PrivateKey: key,
		Signer:     signer,
		Funder:     funder,
		SigType:    sigType,
	}, nil
}

func deriveKey(mnemonic, derivationPath string) (*ecdsa.PrivateKey, error) {
	w, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, errors.Wrap(err, "invalid mnemonic")
	}
	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, errors.Wrap(err, "invalid derivation path")
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "derive account")
	}
	return w.PrivateKey(acct)
}
