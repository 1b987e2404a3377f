package common

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestPublicKey(t *testing.T) {
	tests := []struct {
		addr string
		want PublicKey
	}{
		{
			addr: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // usdc
			want: Base58ToPublicKey("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		},
	}

	for _, test := range tests {
		addr := Base58ToPublicKey(test.addr)

		if addr != test.want {
			t.Errorf("Go PublicKey Err ==> Got %s, Want: %s", addr, test.want)
		}

		if addr.String() != test.addr {
			t.Errorf("Go PublicKey Err ==> Got %s, Want: %s", addr, test.want)
		}
	}
	// Random a pub key
	pub, prv, _ := ed25519.GenerateKey(rand.Reader)
	var (
		addr1, addr2 PublicKey
		pubKey       = make([]byte, PublicKeyLength)
	)
	addr1.SetBytes(pub)
	copy(pubKey[:], prv.Public().(ed25519.PublicKey))
	addr2.SetBytes(pubKey)
	if addr1 != addr2 {
		t.Errorf("pub address not eq prv address. Got addr1: %s, addr2: %s", addr1, addr2)
	}
	t.Logf("addr1: %s, addr2: %s", addr1, addr2)
}

func TestHashCmp(t *testing.T) {
	a := BytesToHash([]byte{1, 2, 3})
	b := BytesToHash([]byte{1, 2, 4})
	if a.Cmp(b) >= 0 {
		t.Errorf("expected a < b")
	}
	if a.Cmp(a) != 0 {
		t.Errorf("expected a == a")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	raw := make([]byte, SignatureLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	sig := BytesToSignature(raw)
	if sig.String() != sig.Base58() {
		t.Errorf("String/Base58 mismatch")
	}
	var got Signature
	if err := got.UnmarshalText([]byte(sig.Base58())); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != sig {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, sig)
	}
}
