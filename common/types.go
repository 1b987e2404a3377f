// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package common

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
)

// Lengths of hashes, keys and signatures in bytes.
const (
	// HashLength is the expected length of the hash
	HashLength = 32
	// PublicKeyLength is the expected length of an account address
	PublicKeyLength = 32
	// SignatureLength is the expected length of the signature
	SignatureLength = 64
)

/////// -------------------------------------------------///////
/////// -------------------- PublicKey --------------------///////
/////// -------------------------------------------------///////

// PublicKey is the 32-byte address identifying an account or a program.
type PublicKey [PublicKeyLength]byte

// BytesToPublicKey returns a PublicKey with value b.
func BytesToPublicKey(b []byte) (a PublicKey) {
	a.SetBytes(b)
	return
}

// BigToPublicKey returns a PublicKey with byte values of b.
func BigToPublicKey(b *big.Int) PublicKey { return BytesToPublicKey(b.Bytes()) }

// Base58ToPublicKey returns a PublicKey with byte values of b.
func Base58ToPublicKey(b string) PublicKey {
	d, _ := base58.Decode(b)
	return BytesToPublicKey(d)
}

// Cmp compares two public keys, giving the store's total byte order.
func (a PublicKey) Cmp(other PublicKey) int {
	return bytes.Compare(a[:], other[:])
}

// Bytes returns the raw PublicKey bytes.
func (a PublicKey) Bytes() []byte { return a[:] }

// Big returns the PublicKey interpreted as a big-endian integer.
func (a PublicKey) Big() *big.Int { return new(big.Int).SetBytes(a[:]) }

// Base58 returns the base58 encoded account address.
func (a PublicKey) Base58() string {
	return base58.Encode(a[:])
}

// String returns the base58 encoded account address.
func (a PublicKey) String() string {
	return a.Base58()
}

// IsZero reports whether the key is the all-zero default value.
func (a PublicKey) IsZero() bool {
	return a == PublicKey{}
}

// SetBytes sets the public key to the value of b.
func (a *PublicKey) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-PublicKeyLength:]
	}
	copy(a[PublicKeyLength-len(b):], b)
}

// MarshalText returns the base58 string form of the key.
func (a PublicKey) MarshalText() ([]byte, error) {
	input, err := json.Marshal(a.Base58())
	return input[1 : len(input)-1], err
}

// UnmarshalText parses a public key in base58 syntax.
func (a *PublicKey) UnmarshalText(input []byte) error {
	d, err := base58.Decode(string(input))
	if err != nil {
		return err
	}
	a.SetBytes(d)
	return nil
}

// UnmarshalJSON parses a public key in base58/base64 syntax.
func (a *PublicKey) UnmarshalJSON(input []byte) error {
	data, _, err := UnmarshalDataByEncoding(input)
	a.SetBytes(data)
	return err
}

// Scan implements Scanner for database/sql.
func (a *PublicKey) Scan(src interface{}) error {
	srcB, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("can't scan %T into PublicKey", src)
	}
	if len(srcB) != PublicKeyLength {
		return fmt.Errorf("can't scan []byte of len %d into PublicKey, want %d", len(srcB), PublicKeyLength)
	}
	copy(a[:], srcB)
	return nil
}

// Value implements valuer for database/sql.
func (a PublicKey) Value() (driver.Value, error) {
	return a[:], nil
}

/////// ----------------------------------------------///////
/////// -------------------- Hash --------------------///////
/////// ----------------------------------------------///////

// Hash is an opaque 32-byte value compared bytewise.
type Hash [HashLength]byte

// BytesToHash returns Hash with value b.
func BytesToHash(b []byte) (h Hash) {
	h.SetBytes(b)
	return
}

// BigToHash returns Hash with byte values of b.
func BigToHash(b *big.Int) Hash { return BytesToHash(b.Bytes()) }

// Base58ToHash returns Hash with byte values of b.
func Base58ToHash(b string) Hash {
	d, _ := base58.Decode(b)
	return BytesToHash(d)
}

// Cmp compares two hashes.
func (h Hash) Cmp(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Bytes returns the raw hash bytes.
func (h Hash) Bytes() []byte { return h[:] }

// Big returns the hash interpreted as a big-endian integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Base58 returns the base58 encoded hash.
func (h Hash) Base58() string {
	return base58.Encode(h[:])
}

// String returns the base58 encoded hash.
func (h Hash) String() string {
	return h.Base58()
}

// SetBytes sets the hash to the value of b.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalText returns the base58 string form of the hash.
func (h Hash) MarshalText() ([]byte, error) {
	input, err := json.Marshal(h.Base58())
	return input[1 : len(input)-1], err
}

// UnmarshalText parses a hash in base58 syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	d, err := base58.Decode(string(input))
	if err != nil {
		return err
	}
	h.SetBytes(d)
	return nil
}

// UnmarshalJSON parses a hash in base58/base64 syntax.
func (h *Hash) UnmarshalJSON(input []byte) error {
	data, _, err := UnmarshalDataByEncoding(input)
	h.SetBytes(data)
	return err
}

// Scan implements Scanner for database/sql.
func (h *Hash) Scan(src interface{}) error {
	srcB, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("can't scan %T into Hash", src)
	}
	if len(srcB) != HashLength {
		return fmt.Errorf("can't scan []byte of len %d into Hash, want %d", len(srcB), HashLength)
	}
	copy(h[:], srcB)
	return nil
}

// Value implements valuer for database/sql.
func (h Hash) Value() (driver.Value, error) {
	return h[:], nil
}

/////// ---------------------------------------------------///////
/////// -------------------- Signature --------------------///////
/////// ---------------------------------------------------///////

// Signature is a 64-byte ed25519 signature.
type Signature [SignatureLength]byte

// BytesToSignature returns Signature with value b.
func BytesToSignature(b []byte) (a Signature) {
	a.SetBytes(b)
	return
}

// Base58ToSignature returns Signature with byte values of b.
func Base58ToSignature(b string) Signature {
	d, _ := base58.Decode(b)
	return BytesToSignature(d)
}

// Cmp compares two signatures.
func (s Signature) Cmp(other Signature) int {
	return bytes.Compare(s[:], other[:])
}

// Bytes returns the raw signature bytes.
func (s Signature) Bytes() []byte { return s[:] }

// Base58 returns the base58 encoded signature.
func (s Signature) Base58() string {
	return base58.Encode(s[:])
}

// String returns the base58 encoded signature.
func (s Signature) String() string {
	return s.Base58()
}

// SetBytes sets the signature to the value of b.
func (s *Signature) SetBytes(b []byte) {
	if len(b) > len(s) {
		b = b[len(b)-SignatureLength:]
	}
	copy(s[SignatureLength-len(b):], b)
}

// MarshalText returns the base58 string form of the signature.
func (s Signature) MarshalText() ([]byte, error) {
	input, err := json.Marshal(s.Base58())
	return input[1 : len(input)-1], err
}

// UnmarshalText parses a signature in base58 syntax.
func (s *Signature) UnmarshalText(input []byte) error {
	d, err := base58.Decode(string(input))
	if err != nil {
		return err
	}
	s.SetBytes(d)
	return nil
}

/////// -------------------------------------------------///////
/////// -------------------- SolData --------------------///////
/////// -------------------------------------------------///////

// SolData is a byte blob that round-trips through base58/base64 text form.
type SolData struct {
	Data     []byte
	Encoding string
}

// Base58 returns the base58 string form.
func (sd SolData) Base58() string {
	return base58.Encode(sd.Data)
}

// Base64 returns the base64 string form.
func (sd SolData) Base64() string {
	return base64.StdEncoding.EncodeToString(sd.Data)
}

// String returns the string form per sd.Encoding (default base58).
func (sd SolData) String() string {
	if sd.Encoding == "base64" {
		return sd.Base64()
	}
	return sd.Base58()
}

// SetBytes sets the SolData payload (default base58 on marshal).
func (sd *SolData) SetBytes(input []byte) {
	sd.Data = input
}

// SetSolData sets the payload and its preferred text encoding.
func (sd *SolData) SetSolData(data []byte, encoding string) {
	sd.Data = data
	sd.Encoding = encoding
}

// UnmarshalDataByEncoding decodes a JSON value that is either a bare base58
// string or a [data, encoding] pair, as returned by Solana JSON-RPC style
// account-data fields.
func UnmarshalDataByEncoding(input []byte) ([]byte, string, error) {
	var (
		err      error
		data     interface{}
		encoding string
	)
	if err = json.Unmarshal(input, &data); err != nil {
		return input, "", err
	}
	switch v := data.(type) {
	case string:
		encoding = "base58"
		d, _ := base58.Decode(v)
		input = d
	case []interface{}:
		if len(v) == 0 {
			return nil, "", err
		}
		switch v[1] {
		case "base58":
			encoding = "base58"
			d, _ := base58.Decode(v[0].(string))
			input = d
		case "base64":
			encoding = "base64"
			input, _ = base64.StdEncoding.DecodeString(v[0].(string))
		default:
			return nil, "", fmt.Errorf("UnmarshalDataByEncoding: unknown encoding %v", v[1])
		}
	}
	return input, encoding, err
}
