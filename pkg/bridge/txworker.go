package bridge

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nftbridge/relayer/pkg/chain"
	"github.com/nftbridge/relayer/pkg/types"
)

// RunEVMTxWorker consumes state.EVMTx until ctx is canceled, minting the
// wrapped token on EVM for every message the Solana-side listener (or
// recovery orchestrator) enqueues. Grounded on evm_txs.rs's process_message
// consumer loop.
func RunEVMTxWorker(ctx context.Context, state *State) {
	runTxWorker(ctx, state, types.ChainEVM)
}

// RunSolanaTxWorker is the Solana counterpart of RunEVMTxWorker, grounded
// on sol_txs.rs's process_message.
func RunSolanaTxWorker(ctx context.Context, state *State) {
	runTxWorker(ctx, state, types.ChainSolana)
}

func runTxWorker(ctx context.Context, state *State, destination types.Chains) {
	adapter := state.adapterFor(destination)
	inbox := state.txChannelFor(destination)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox:
			// correlationID has no relation to the bridge request id; a
			// fresh one tags each dequeued message's failure log line.
			correlationID := uuid.New().String()
			if err := processTxMessage(ctx, state, adapter, msg); err != nil {
				state.Logger.Printf("%s tx worker [%s]: %v", destination, correlationID, err)
			}
		}
	}
}

// processTxMessage dispatches on msg.Action. FunctionMint is the path
// every request actually takes today: mint the wrapped token, append the
// tx hash, and finalize. FunctionNewRequest is reserved for a future
// direct-submission path (see types.MessageNewRequest) and is not
// exercised by Request Intake, which submits the origin-chain transaction
// itself rather than going through a tx worker.
func processTxMessage(ctx context.Context, state *State, adapter chain.Adapter, msg types.TxMessage) error {
	switch msg.Action {
	case types.FunctionMint:
		return processMint(ctx, state, adapter, msg.MintData)
	case types.FunctionNewRequest:
		return nil
	default:
		return fmt.Errorf("unknown tx message action %q", msg.Action)
	}
}

func processMint(ctx context.Context, state *State, adapter chain.Adapter, data *types.MessageMint) error {
	req, err := state.Registry.GetRequest(data.RequestID)
	if err != nil {
		return fmt.Errorf("load request %s: %w", data.RequestID, err)
	}
	if req.Status.Terminal() {
		return nil
	}

	result, err := adapter.MintToken(ctx, req, data.TokenMetadata)
	if err != nil {
		return NewChainError(string(adapter.Chain()), "MintToken", err)
	}

	if err := state.SM.AddTx(req, result.TxHash); err != nil {
		return fmt.Errorf("record mint tx for %s: %w", data.RequestID, err)
	}

	if req.Status == types.StatusTokenReceived {
		if err := state.SM.UpdateState(req); err != nil {
			return fmt.Errorf("advance request %s to TokenMinted: %w", data.RequestID, err)
		}
	}

	return state.SM.Finalize(req, result.DestinationContractOrMint, result.DestinationTokenIDOrAccount)
}
