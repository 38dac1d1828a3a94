package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// BIP-44 derivation path constants for Ethereum.
// Full path: m/44'/60'/0'/0/index
const (
	purposeBIP44  = bip32.FirstHardenedChild + 44
	coinTypeEther = bip32.FirstHardenedChild + 60
	accountZero   = bip32.FirstHardenedChild
	changeExternal uint32 = 0
)

// ErrInvalidMnemonic is returned when the configured mnemonic fails
// BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Keyring derives deterministic (address, signing key) pairs from a
// BIP-39 mnemonic. Derivation is pure per index.
type Keyring struct {
	master *bip32.Key
}

// NewKeyring validates the mnemonic and builds the master key.
func NewKeyring(mnemonic string) (*Keyring, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	return &Keyring{master: master}, nil
}

// DeriveKey returns the ECDSA signing key at m/44'/60'/0'/0/index.
func (k *Keyring) DeriveKey(index int64) (*ecdsa.PrivateKey, error) {
	key := k.master

	for _, step := range []uint32{purposeBIP44, coinTypeEther, accountZero, changeExternal, uint32(index)} {
		child, err := key.NewChildKey(step)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", step, err)
		}
		key = child
	}

	// bip32 private keys are 33 bytes with a leading 0x00.
	raw := key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}

	priv, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build ECDSA key: %w", err)
	}

	return priv, nil
}

// DeriveAddress implements usecase.KeyDeriver.
func (k *Keyring) DeriveAddress(index int64) (string, error) {
	priv, err := k.DeriveKey(index)
	if err != nil {
		return "", err
	}

	return strings.ToLower(crypto.PubkeyToAddress(priv.PublicKey).Hex()), nil
}
