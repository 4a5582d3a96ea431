package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nftbridge/relayer/pkg/types"
)

// sentinelAlreadyInUse is the substring pending.rs's recovery loop matches
// against an EVM error to decide that a pending RequestReceived request
// raced a prior one and should be canceled rather than retried forever.
const sentinelAlreadyInUse = "sentinel already in use"

// RecoveryInterItemDelay separates consecutive pending requests within one
// recovery pass, matching pending.rs's sleep(Duration::from_secs(8))
// between items. The origin ran this delay on the same thread driving the
// whole pass, stalling it for up to 8 seconds per pending request; here it
// runs inside Recover's own goroutine instead, so it never blocks the
// listeners or tx workers sharing the process.
const RecoveryInterItemDelay = 8 * time.Second

// Recover is the boot-time Recovery Orchestrator (C7): it walks every
// pending request and re-derives what, if anything, still needs doing,
// so a request can never get stuck because the event that would have
// advanced it was missed during a crash or restart. Grounded on
// pending.rs's process_pending_request.
func Recover(ctx context.Context, state *State) error {
	ids, err := state.Registry.PendingIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := recoverOne(ctx, state, id); err != nil {
			state.Logger.Printf("recovering pending request %s: %v", id, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RecoveryInterItemDelay):
		}
	}
	return nil
}

func recoverOne(ctx context.Context, state *State, id string) error {
	req, err := state.Registry.GetRequest(id)
	if err != nil {
		return err
	}
	origin := req.Input.OriginNetwork

	switch req.Status {
	case types.StatusRequestReceived:
		err := checkTokenOwner(ctx, state, origin, req)
		if err != nil && origin == types.ChainEVM && strings.Contains(err.Error(), sentinelAlreadyInUse) {
			if cancelErr := state.SM.Cancel(req); cancelErr != nil {
				return fmt.Errorf("cancel raced request %s: %w", req.ID, cancelErr)
			}
			return nil
		}
		return err

	case types.StatusTokenReceived:
		return continueFromMetadata(ctx, state, origin, req)

	case types.StatusTokenMinted:
		return recoverTokenMinted(ctx, state, origin, req)

	case types.StatusCompleted, types.StatusCanceled:
		return state.Registry.RemovePending(id)
	}
	return nil
}

// recoverTokenMinted checks whether the last recorded mint transaction
// actually landed on the destination chain and, if so, whether the
// destination token now carries metadata (the origin's proxy for "mint
// fully confirmed"). Either a transaction that never landed or a landed
// transaction with no metadata yet re-dispatches the mint; only a landed
// transaction with metadata in place is considered complete.
func recoverTokenMinted(ctx context.Context, state *State, origin types.Chains, req *types.BRequest) error {
	if len(req.TxHashes) == 0 {
		return continueFromMetadata(ctx, state, origin, req)
	}
	lastTx := req.TxHashes[len(req.TxHashes)-1]

	destination := destinationChain(origin)
	destAdapter := state.adapterFor(destination)

	found, err := destAdapter.TransactionFound(ctx, lastTx)
	if err != nil {
		return NewChainError(string(destination), "TransactionFound", err)
	}
	if !found {
		return continueFromMetadata(ctx, state, origin, req)
	}

	if _, err := destAdapter.TokenMetadata(ctx, req.Output.DestinationContractIDOrMint, req.Output.DestinationTokenIDOrAccount); err != nil {
		return continueFromMetadata(ctx, state, origin, req)
	}

	return state.SM.UpdateState(req)
}
