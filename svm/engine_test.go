package svm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/bpf"
	"github.com/slonana-labs/slonana-go/builtins"
	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
	"github.com/slonana-labs/slonana-go/svm"
)

func keyWithByte(b byte) common.PublicKey {
	var k common.PublicKey
	k[0] = b
	return k
}

func newTestEngine() *svm.Engine {
	e := svm.NewEngine(svm.DefaultConfig, bpf.DefaultPolicy)
	e.RegisterBuiltin(builtins.SystemProgramID, builtins.SystemProgram{})
	return e
}

// alwaysFailProgram always returns a program error, used to force a
// transaction into the rollback path after a successful first instruction.
type alwaysFailProgram struct{}

var errAlwaysFails = errors.New("always fails")

func (alwaysFailProgram) Execute(instr svm.Instruction, execCtx *svm.ExecutionContext, engine *svm.Engine) error {
	return errAlwaysFails
}

// TestTransactionAtomicity implements S6: a transaction whose first
// instruction mutates the working set must be rolled back in full if a
// later instruction fails.
func TestTransactionAtomicity(t *testing.T) {
	store := accounts.NewStore(accounts.DefaultRentConfig)
	a := keyWithByte(1)
	b := keyWithByte(2)
	failProgram := keyWithByte(99)

	if err := store.Create(accounts.Account{Key: a, Lamports: 100}); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := store.Create(accounts.Account{Key: b, Lamports: 0}); err != nil {
		t.Fatalf("create b: %v", err)
	}
	store.Commit()

	engine := newTestEngine()
	engine.RegisterBuiltin(failProgram, alwaysFailProgram{})

	transferData := append([]byte{builtins.InstructionTransfer}, make([]byte, 8)...)
	encodbin.LE.PutUint64(transferData[1:9], 30)

	tx := svm.Transaction{
		Instructions: []svm.Instruction{
			{
				ProgramID: builtins.SystemProgramID,
				Accounts: svm.AccountMetaSlice{
					svm.NewAccountMeta(a, true, true),
					svm.NewAccountMeta(b, true, false),
				},
				Data: transferData,
			},
			{
				ProgramID: failProgram,
				Accounts:  svm.AccountMetaSlice{},
				Data:      []byte{0},
			},
		},
		WorkingSet: map[common.PublicKey]accounts.Account{
			a: mustGet(store, a),
			b: mustGet(store, b),
		},
	}

	outcome := engine.ExecuteTransaction(context.Background(), tx, store)
	if outcome.Result != common.ProgramError {
		t.Fatalf("expected ProgramError, got %s", outcome.Result)
	}

	postA := mustGet(store, a)
	postB := mustGet(store, b)
	if postA.Lamports != 100 {
		t.Fatalf("expected A untouched at 100 lamports, got %d", postA.Lamports)
	}
	if postB.Lamports != 0 {
		t.Fatalf("expected B untouched at 0 lamports, got %d", postB.Lamports)
	}
}

// recursiveInvoker is a test-local builtin that invokes itself via CPI,
// decrementing instr.Data[0] each hop until it reaches zero.
type recursiveInvoker struct {
	programID common.PublicKey
}

func (r recursiveInvoker) Execute(instr svm.Instruction, execCtx *svm.ExecutionContext, engine *svm.Engine) error {
	if len(instr.Data) == 0 {
		return nil
	}
	n := instr.Data[0]
	if n == 0 {
		return nil
	}
	next := svm.Instruction{
		ProgramID: r.programID,
		Accounts:  instr.Accounts,
		Data:      []byte{n - 1},
	}
	return engine.Invoke(next, execCtx)
}

// TestCPIDepthLimit implements S7: recursion to depth 4 succeeds, depth 5
// fails with the CPI-depth-exceeded diagnostic.
func TestCPIDepthLimit(t *testing.T) {
	store := accounts.NewStore(accounts.DefaultRentConfig)
	programID := keyWithByte(42)

	engine := svm.NewEngine(svm.DefaultConfig, bpf.DefaultPolicy)
	engine.RegisterBuiltin(programID, recursiveInvoker{programID: programID})

	run := func(depth byte) svm.Outcome {
		tx := svm.Transaction{
			Instructions: []svm.Instruction{
				{ProgramID: programID, Data: []byte{depth}},
			},
			WorkingSet: map[common.PublicKey]accounts.Account{},
		}
		return engine.ExecuteTransaction(context.Background(), tx, store)
	}

	if out := run(4); out.Result != common.Success {
		t.Fatalf("depth 4: expected Success, got %s (%s)", out.Result, out.ErrorDetails)
	}
	out := run(5)
	if out.Result != common.ProgramError {
		t.Fatalf("depth 5: expected ProgramError, got %s", out.Result)
	}
	if !strings.Contains(out.ErrorDetails, "CPI depth exceeded") {
		t.Fatalf("depth 5: expected CPI depth exceeded diagnostic, got %q", out.ErrorDetails)
	}
}

func mustGet(store *accounts.Store, key common.PublicKey) accounts.Account {
	acc, _ := store.Get(key)
	return acc
}
