package bridge

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/nftbridge/relayer/pkg/kvdb"
	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

func newTestSM(t *testing.T) *StateMachine {
	t.Helper()
	mem := dbm.NewMemDB()
	t.Cleanup(func() { mem.Close() })
	registry := store.NewRegistry(kvdb.NewKVAdapter(mem))
	return NewStateMachine(registry)
}

func TestUpdateStateAdvancesOneStep(t *testing.T) {
	sm := newTestSM(t)
	req := types.NewBRequest(types.InputRequest{OriginNetwork: types.ChainEVM})

	steps := []types.Status{
		types.StatusTokenReceived,
		types.StatusTokenMinted,
		types.StatusCompleted,
	}
	for _, want := range steps {
		if err := sm.UpdateState(req); err != nil {
			t.Fatalf("UpdateState: %v", err)
		}
		if req.Status != want {
			t.Fatalf("status = %s, want %s", req.Status, want)
		}
	}
}

func TestUpdateStateTerminalIsNoOp(t *testing.T) {
	sm := newTestSM(t)
	req := types.NewBRequest(types.InputRequest{})
	req.Status = types.StatusCompleted

	if err := sm.UpdateState(req); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if req.Status != types.StatusCompleted {
		t.Fatalf("terminal status changed to %s", req.Status)
	}

	req.Status = types.StatusCanceled
	if err := sm.UpdateState(req); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if req.Status != types.StatusCanceled {
		t.Fatalf("terminal status changed to %s", req.Status)
	}
}

func TestCancelIsAbsorbing(t *testing.T) {
	sm := newTestSM(t)
	req := types.NewBRequest(types.InputRequest{})

	if err := sm.Cancel(req); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if req.Status != types.StatusCanceled {
		t.Fatalf("status = %s, want Canceled", req.Status)
	}

	if err := sm.Cancel(req); err != nil {
		t.Fatalf("Cancel twice: %v", err)
	}
	if req.Status != types.StatusCanceled {
		t.Fatalf("status = %s after second cancel, want Canceled", req.Status)
	}
}

func TestFinalizeSetsOutputAndCompletedOnce(t *testing.T) {
	sm := newTestSM(t)
	req := types.NewBRequest(types.InputRequest{})
	req.Status = types.StatusTokenMinted

	if err := sm.Finalize(req, "0xdestcontract", "1"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if req.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want Completed", req.Status)
	}
	if req.Output.DestinationContractIDOrMint != "0xdestcontract" || req.Output.DestinationTokenIDOrAccount != "1" {
		t.Fatalf("output not set: %+v", req.Output)
	}

	completed, err := sm.registry.CompletedIDs()
	if err != nil {
		t.Fatalf("CompletedIDs: %v", err)
	}
	if len(completed) != 1 || completed[0] != req.ID {
		t.Fatalf("completed ids = %v, want [%s]", completed, req.ID)
	}

	// Calling Finalize again with the same values is idempotent (I5):
	// it must not append a second completed entry.
	if err := sm.Finalize(req, "0xdestcontract", "1"); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	completed, err = sm.registry.CompletedIDs()
	if err != nil {
		t.Fatalf("CompletedIDs after second Finalize: %v", err)
	}
	if len(completed) != 1 || completed[0] != req.ID {
		t.Fatalf("completed ids = %v, want [%s] after a second Finalize", completed, req.ID)
	}
}

func TestAddTxAppendsOnly(t *testing.T) {
	sm := newTestSM(t)
	req := types.NewBRequest(types.InputRequest{})

	if err := sm.AddTx(req, "0xone"); err != nil {
		t.Fatalf("AddTx: %v", err)
	}
	if err := sm.AddTx(req, "0xtwo"); err != nil {
		t.Fatalf("AddTx: %v", err)
	}
	if len(req.TxHashes) != 2 || req.TxHashes[0] != "0xone" || req.TxHashes[1] != "0xtwo" {
		t.Fatalf("tx hashes = %v, want [0xone 0xtwo]", req.TxHashes)
	}
}
