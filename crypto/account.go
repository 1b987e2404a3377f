// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/core"
)

// Account is an ed25519 identity: a validator, fee payer, or program
// upgrade authority. The PublicKey is what the engine and account store key
// on; the PrivateKey never leaves this struct.
type Account struct {
	PublicKey  common.PublicKey
	PrivateKey ed25519.PrivateKey
}

// GenerateAccount creates a new account from a random ed25519 keypair.
func GenerateAccount() (Account, error) {
	var account Account
	pub, prv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return account, err
	}
	copy(account.PublicKey[:], pub)
	account.PrivateKey = prv
	return account, err
}

// GenerateBase58PrvKey returns the base58-encoded private key.
func GenerateBase58PrvKey(a Account) (string, error) {
	if len(a.PrivateKey) == 0 {
		return "", core.ErrEmptyAccount
	}
	return base58.Encode(a.PrivateKey), nil
}

// GenerateHexPrvKey returns the 0x-prefixed hex-encoded private key.
func GenerateHexPrvKey(a Account) (string, error) {
	if len(a.PrivateKey) == 0 {
		return "", core.ErrEmptyAccount
	}
	return "0x" + hex.EncodeToString(a.PrivateKey), nil
}

// AccountFromBytes builds an account from a raw ed25519 private key.
func AccountFromBytes(b []byte) (Account, error) {
	if len(b) != ed25519.PrivateKeySize {
		return Account{}, fmt.Errorf("PrivateKey size mismatch, expected: %v, got: %v", ed25519.PrivateKeySize, len(b))
	}
	account := Account{PrivateKey: ed25519.PrivateKey(b)}
	account.PublicKey = common.BytesToPublicKey(account.PrivateKey.Public().(ed25519.PublicKey))
	return account, nil
}

// AccountFromBase58Key builds an account from a base58-encoded private key.
func AccountFromBase58Key(key string) (Account, error) {
	if len(key) == 0 {
		return Account{}, core.ErrEmptyString
	}
	b, err := base58.Decode(key)
	if err != nil {
		return Account{}, core.StdErr("AccountFromBase58", err)
	}
	return AccountFromBytes(b)
}

// AccountFromHexKey builds an account from a hex-encoded private key.
func AccountFromHexKey(key string) (Account, error) {
	if len(key) == 0 {
		return Account{}, core.ErrEmptyString
	}
	if core.Has0xPrefix(key) {
		key = key[2:]
	}
	b, err := hex.DecodeString(key)
	if err != nil {
		return Account{}, core.StdErr("AccountFromHex", err)
	}
	return AccountFromBytes(b)
}

// AccountFromSeed builds an account from a 32-byte ed25519 seed.
func AccountFromSeed(seed []byte) (Account, error) {
	pk := ed25519.NewKeyFromSeed(seed)
	return AccountFromBytes(pk)
}

// AccountFromMnemonic derives an account from a BIP-39 mnemonic, optionally
// passphrase-protected. Unlike a real hierarchical wallet this takes the
// first 32 bytes of the BIP-39 seed directly as the ed25519 seed; there is
// no derivation path support (see DESIGN.md).
func AccountFromMnemonic(mnemonic string, password string) (Account, error) {
	if ok, _ := regexp.MatchString(`\S`, mnemonic); !ok {
		return Account{}, core.ErrEmptyString
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	if err != nil {
		return Account{}, core.StdErr("NewSeedWithErrorChecking", err)
	}
	return AccountFromSeed(seed[:ed25519.SeedSize])
}

// AccountFromKeygenFile loads an account from a Solana CLI style keygen
// JSON file: a JSON array of the raw private key bytes.
func AccountFromKeygenFile(file string) (Account, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Account{}, core.StdErr("read keygen file", err)
	}
	var values []byte
	if err = json.Unmarshal(content, &values); err != nil {
		return Account{}, core.StdErr("decode keygen file", err)
	}
	return AccountFromBytes(values)
}

// Sign signs message with the account's private key.
func (a Account) Sign(message []byte) common.Signature {
	return common.BytesToSignature(ed25519.Sign(a.PrivateKey, message))
}

// Verify reports whether sig is a valid signature of message under pub.
func Verify(pub common.PublicKey, message []byte, sig common.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), message, sig[:])
}
