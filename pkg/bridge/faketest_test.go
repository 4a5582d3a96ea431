package bridge

import (
	"context"
	"log"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/nftbridge/relayer/pkg/chain"
	"github.com/nftbridge/relayer/pkg/kvdb"
	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

// fakeAdapter is an in-memory chain.Adapter used to exercise intake,
// listener, tx worker and recovery logic without a live RPC endpoint,
// mirroring the teacher's own table-driven fakes for its strategy
// interfaces.
type fakeAdapter struct {
	chainID types.Chains

	healthErr error

	received    map[string]bool
	receivedErr error

	metadata    string
	metadataErr error

	initErr  error
	initTx   string
	initCall int

	mintResult chain.MintResult
	mintErr    error
	mintCalls  int

	found    map[string]bool
	foundErr error
}

func newFakeAdapter(chainID types.Chains) *fakeAdapter {
	return &fakeAdapter{
		chainID:  chainID,
		received: map[string]bool{},
		found:    map[string]bool{},
		metadata: "ipfs://metadata",
		initTx:   "0xinittx",
		mintResult: chain.MintResult{
			TxHash:                      "0xminttx",
			DestinationContractOrMint:   "0xdestcontract",
			DestinationTokenIDOrAccount: "1",
		},
	}
}

func (f *fakeAdapter) Chain() types.Chains { return f.chainID }

func (f *fakeAdapter) Health(ctx context.Context) error { return f.healthErr }

func (f *fakeAdapter) LatestHeight(ctx context.Context) (uint64, error) { return 1, nil }

func (f *fakeAdapter) TokenOwner(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	return "", nil
}

func (f *fakeAdapter) TokenReceived(ctx context.Context, contractOrMint, tokenID string) (bool, error) {
	if f.receivedErr != nil {
		return false, f.receivedErr
	}
	return f.received[contractOrMint+tokenID], nil
}

func (f *fakeAdapter) TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	if f.metadataErr != nil {
		return "", f.metadataErr
	}
	return f.metadata, nil
}

func (f *fakeAdapter) InitializeRequest(ctx context.Context, req *types.InputRequest, requestID string) (string, error) {
	f.initCall++
	if f.initErr != nil {
		return "", f.initErr
	}
	return f.initTx, nil
}

func (f *fakeAdapter) MintToken(ctx context.Context, req *types.BRequest, tokenMetadata string) (chain.MintResult, error) {
	f.mintCalls++
	if f.mintErr != nil {
		return chain.MintResult{}, f.mintErr
	}
	return f.mintResult, nil
}

func (f *fakeAdapter) TransactionFound(ctx context.Context, txHash string) (bool, error) {
	if f.foundErr != nil {
		return false, f.foundErr
	}
	return f.found[txHash], nil
}

func (f *fakeAdapter) RunListener(ctx context.Context, handler chain.EventHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

var _ chain.Adapter = (*fakeAdapter)(nil)

func newTestState(t testingT, evm, sol *fakeAdapter) *State {
	t.Helper()
	mem := dbm.NewMemDB()
	t.Cleanup(func() { mem.Close() })
	registry := store.NewRegistry(kvdb.NewKVAdapter(mem))
	sm := NewStateMachine(registry)
	logger := log.New(discard{}, "", 0)
	return NewState(registry, sm, evm, sol, logger)
}

// testingT is the subset of *testing.T the fixture helper needs, avoiding
// an import of "testing" outside _test.go files.
type testingT interface {
	Helper()
	Cleanup(func())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
