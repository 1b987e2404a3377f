package accounts

import (
	"bytes"
	"testing"

	"github.com/slonana-labs/slonana-go/common"
)

func TestAccountSerializeRoundTrip(t *testing.T) {
	a := Account{
		Key:        common.Base58ToPublicKey("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Owner:      common.BytesToPublicKey([]byte{1, 2, 3}),
		Lamports:   1_000_000,
		Data:       []byte("hello proof of history"),
		Executable: true,
		RentEpoch:  42,
	}
	b := a.Serialize()
	got, err := DeserializeAccount(b)
	if err != nil {
		t.Fatalf("DeserializeAccount: %v", err)
	}
	if got.Key != a.Key || got.Owner != a.Owner || got.Lamports != a.Lamports ||
		got.Executable != a.Executable || got.RentEpoch != a.RentEpoch {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, a)
	}
	if !bytes.Equal(got.Data, a.Data) {
		t.Fatalf("data round-trip mismatch: got %q, want %q", got.Data, a.Data)
	}
}

func TestDeserializeAccountTruncated(t *testing.T) {
	if _, err := DeserializeAccount([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}

func TestIsZeroFunded(t *testing.T) {
	a := Account{Lamports: 0}
	if !a.IsZeroFunded() {
		t.Fatalf("expected zero-funded account to report true")
	}
	a.Lamports = 1
	if a.IsZeroFunded() {
		t.Fatalf("expected funded account to report false")
	}
}
