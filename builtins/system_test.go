package builtins_test

import (
	"testing"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/builtins"
	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
	"github.com/slonana-labs/slonana-go/svm"
)

func key(b byte) common.PublicKey {
	var k common.PublicKey
	k[0] = b
	return k
}

func putUint64(data []byte, off int, v uint64) {
	encodbin.LE.PutUint64(data[off:off+8], v)
}

func TestCreateAccount(t *testing.T) {
	funding := key(1)
	newAcc := key(2)
	owner := key(3)

	data := make([]byte, 1+8+8+32)
	data[0] = builtins.InstructionCreateAccount
	putUint64(data, 1, 40)
	putUint64(data, 9, 16)
	copy(data[17:49], owner[:])

	ws := map[common.PublicKey]accounts.Account{
		funding: {Key: funding, Lamports: 100},
	}
	execCtx := svm.NewExecutionContext(ws, 1_000_000, 0)

	instr := svm.Instruction{
		ProgramID: builtins.SystemProgramID,
		Accounts: svm.AccountMetaSlice{
			svm.NewAccountMeta(funding, true, true),
			svm.NewAccountMeta(newAcc, true, true),
		},
		Data: data,
	}

	if err := (builtins.SystemProgram{}).Execute(instr, execCtx, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	fundingAcc := execCtx.WorkingSet[funding]
	if fundingAcc.Lamports != 60 {
		t.Fatalf("expected funding left with 60 lamports, got %d", fundingAcc.Lamports)
	}
	created, ok := execCtx.WorkingSet[newAcc]
	if !ok {
		t.Fatalf("expected new account in working set")
	}
	if created.Lamports != 40 {
		t.Fatalf("expected new account funded with 40 lamports, got %d", created.Lamports)
	}
	if len(created.Data) != 16 {
		t.Fatalf("expected new account with 16 bytes of space, got %d", len(created.Data))
	}
	if created.Owner != owner {
		t.Fatalf("expected new account owner %s, got %s", owner, created.Owner)
	}
}

func TestCreateAccountInsufficientFunds(t *testing.T) {
	funding := key(1)
	newAcc := key(2)

	data := make([]byte, 1+8+8+32)
	data[0] = builtins.InstructionCreateAccount
	putUint64(data, 1, 1000)

	ws := map[common.PublicKey]accounts.Account{
		funding: {Key: funding, Lamports: 100},
	}
	execCtx := svm.NewExecutionContext(ws, 1_000_000, 0)
	instr := svm.Instruction{
		ProgramID: builtins.SystemProgramID,
		Accounts: svm.AccountMetaSlice{
			svm.NewAccountMeta(funding, true, true),
			svm.NewAccountMeta(newAcc, true, true),
		},
		Data: data,
	}
	if err := (builtins.SystemProgram{}).Execute(instr, execCtx, nil); err == nil {
		t.Fatalf("expected insufficient funds error")
	}
}

func TestTransfer(t *testing.T) {
	from := key(1)
	to := key(2)

	data := make([]byte, 1+8)
	data[0] = builtins.InstructionTransfer
	putUint64(data, 1, 25)

	ws := map[common.PublicKey]accounts.Account{
		from: {Key: from, Lamports: 100},
		to:   {Key: to, Lamports: 10},
	}
	execCtx := svm.NewExecutionContext(ws, 1_000_000, 0)
	instr := svm.Instruction{
		ProgramID: builtins.SystemProgramID,
		Accounts: svm.AccountMetaSlice{
			svm.NewAccountMeta(from, true, true),
			svm.NewAccountMeta(to, true, false),
		},
		Data: data,
	}
	if err := (builtins.SystemProgram{}).Execute(instr, execCtx, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if execCtx.WorkingSet[from].Lamports != 75 {
		t.Fatalf("expected sender left with 75, got %d", execCtx.WorkingSet[from].Lamports)
	}
	if execCtx.WorkingSet[to].Lamports != 35 {
		t.Fatalf("expected recipient with 35, got %d", execCtx.WorkingSet[to].Lamports)
	}
	if len(execCtx.Logs) != 1 {
		t.Fatalf("expected one log line, got %d", len(execCtx.Logs))
	}
}

func TestAllocate(t *testing.T) {
	target := key(1)
	data := make([]byte, 1+8)
	data[0] = builtins.InstructionAllocate
	putUint64(data, 1, 64)

	ws := map[common.PublicKey]accounts.Account{
		target: {Key: target},
	}
	execCtx := svm.NewExecutionContext(ws, 1_000_000, 0)
	instr := svm.Instruction{
		ProgramID: builtins.SystemProgramID,
		Accounts:  svm.AccountMetaSlice{svm.NewAccountMeta(target, true, true)},
		Data:      data,
	}
	if err := (builtins.SystemProgram{}).Execute(instr, execCtx, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(execCtx.WorkingSet[target].Data) != 64 {
		t.Fatalf("expected 64 bytes allocated, got %d", len(execCtx.WorkingSet[target].Data))
	}
}

func TestAllocateAlreadyAllocated(t *testing.T) {
	target := key(1)
	data := make([]byte, 1+8)
	data[0] = builtins.InstructionAllocate
	putUint64(data, 1, 64)

	ws := map[common.PublicKey]accounts.Account{
		target: {Key: target, Data: make([]byte, 8)},
	}
	execCtx := svm.NewExecutionContext(ws, 1_000_000, 0)
	instr := svm.Instruction{
		ProgramID: builtins.SystemProgramID,
		Accounts:  svm.AccountMetaSlice{svm.NewAccountMeta(target, true, true)},
		Data:      data,
	}
	if err := (builtins.SystemProgram{}).Execute(instr, execCtx, nil); err == nil {
		t.Fatalf("expected error for re-allocating an already-allocated account")
	}
}
