package svm

import (
	"bytes"
	"testing"

	"github.com/slonana-labs/slonana-go/common"
)

// TestInstructionSerializeRoundTrip covers the §8 round-trip law for
// instructions: DeserializeInstruction(in.Serialize()) must reproduce in,
// including the writable/signer flags byte this encoding adds per account.
func TestInstructionSerializeRoundTrip(t *testing.T) {
	programID := common.BytesToPublicKey([]byte{7, 7, 7})
	a := common.BytesToPublicKey([]byte{1})
	b := common.BytesToPublicKey([]byte{2})

	in := Instruction{
		ProgramID: programID,
		Accounts: AccountMetaSlice{
			NewAccountMeta(a, true, true),
			NewAccountMeta(b, false, false),
		},
		Data: []byte{1, 2, 3, 4, 5},
	}

	encoded, err := in.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := DeserializeInstruction(encoded)
	if err != nil {
		t.Fatalf("DeserializeInstruction: %v", err)
	}

	if got.ProgramID != in.ProgramID {
		t.Fatalf("program ID round-trip mismatch: got %s, want %s", got.ProgramID, in.ProgramID)
	}
	if !bytes.Equal(got.Data, in.Data) {
		t.Fatalf("data round-trip mismatch: got %v, want %v", got.Data, in.Data)
	}
	if len(got.Accounts) != len(in.Accounts) {
		t.Fatalf("expected %d accounts, got %d", len(in.Accounts), len(got.Accounts))
	}
	for i := range in.Accounts {
		want := in.Accounts[i]
		have := got.Accounts[i]
		if have.PublicKey != want.PublicKey || have.IsWritable != want.IsWritable || have.IsSigner != want.IsSigner {
			t.Fatalf("account %d round-trip mismatch: got %+v, want %+v", i, have, want)
		}
	}
}

func TestInstructionSerializeRoundTripNoAccounts(t *testing.T) {
	in := Instruction{ProgramID: common.BytesToPublicKey([]byte{9})}
	encoded, err := in.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := DeserializeInstruction(encoded)
	if err != nil {
		t.Fatalf("DeserializeInstruction: %v", err)
	}
	if got.ProgramID != in.ProgramID || len(got.Accounts) != 0 || len(got.Data) != 0 {
		t.Fatalf("round-trip mismatch: got %+v", got)
	}
}

func TestDeserializeInstructionTruncated(t *testing.T) {
	if _, err := DeserializeInstruction([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}
