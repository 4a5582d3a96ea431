package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

// ListenerRestartDelay is how long a listener waits before reconnecting
// after its chain subscription dies, grounded on the teacher's
// pkg/anchor/event_watcher.go poll/backoff loop.
const ListenerRestartDelay = 5 * time.Second

// eventHandler implements chain.EventHandler for one chain side, wiring
// decoded on-chain events into state transitions. origin is the chain
// this handler's adapter watches; state.adapterFor(origin) is used to
// re-check custody, and state.txChannelFor(destinationChain(origin)) is
// where a mint gets dispatched once custody and metadata are confirmed.
type eventHandler struct {
	origin types.Chains
	state  *State
}

// OnNewRequest re-checks token custody for requestID and, once the bridge
// holds the token, advances it to TokenReceived and enqueues a mint on the
// destination chain's tx worker, mirroring read_account.rs's
// check_token_owner / calls.rs's check_token_owner.
func (h *eventHandler) OnNewRequest(ctx context.Context, requestID string) error {
	req, err := h.state.Registry.GetRequest(requestID)
	if err != nil {
		if err == store.ErrRequestNotFound {
			h.state.Logger.Printf("event for unknown request %s, ignoring", requestID)
			return nil
		}
		return fmt.Errorf("load request %s: %w", requestID, err)
	}
	return checkTokenOwner(ctx, h.state, h.origin, req)
}

// checkTokenOwner is read_account.rs/calls.rs's check_token_owner: it is
// the sole path by which a request leaves RequestReceived. Both the event
// listener (on a fresh lock event) and the recovery orchestrator (on a
// RequestReceived request still pending at boot) call it against the same
// origin-chain custody check, so a missed or duplicated event can never
// strand a request — recovery re-derives the same answer independently.
// A failed custody check cancels the request outright (calls.rs: `if
// token_owner != client.bridge_contract { request.cancel(db); }`).
func checkTokenOwner(ctx context.Context, state *State, origin types.Chains, req *types.BRequest) error {
	if req.Status != types.StatusRequestReceived {
		return nil
	}

	adapter := state.adapterFor(origin)
	received, err := adapter.TokenReceived(ctx, req.Input.ContractOrMint, req.Input.TokenID)
	if err != nil {
		return NewChainError(string(origin), "TokenReceived", err)
	}
	if !received {
		if err := state.SM.Cancel(req); err != nil {
			return fmt.Errorf("cancel request %s: %w", req.ID, err)
		}
		return nil
	}

	if err := state.SM.UpdateState(req); err != nil {
		return fmt.Errorf("advance request %s to TokenReceived: %w", req.ID, err)
	}

	return dispatchMint(ctx, state, origin, adapter, req)
}

// continueFromMetadata is pending.rs's continue_from_metadata: it fetches
// the origin token's metadata and, once available, (re)dispatches the mint
// on the destination chain. Used both right after TokenReceived and by
// recovery whenever a TokenMinted request's mint transaction needs
// resubmitting.
func continueFromMetadata(ctx context.Context, state *State, origin types.Chains, req *types.BRequest) error {
	adapter := state.adapterFor(origin)
	return dispatchMint(ctx, state, origin, adapter, req)
}

func dispatchMint(ctx context.Context, state *State, origin types.Chains, adapter interface {
	TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error)
}, req *types.BRequest) error {
	metadata, err := adapter.TokenMetadata(ctx, req.Input.ContractOrMint, req.Input.TokenID)
	if err != nil {
		return NewChainError(string(origin), "TokenMetadata", err)
	}

	select {
	case state.txChannelFor(destinationChain(origin)) <- types.TxMessage{
		Action: types.FunctionMint,
		MintData: &types.MessageMint{
			RequestID:     req.ID,
			TokenMetadata: metadata,
		},
	}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// OnTokenMinted confirms a mint event matches the request's recorded
// output and, if so, advances it past TokenMinted, mirroring
// sol_events.rs's event_token_minted / evm_events.rs's equivalent.
func (h *eventHandler) OnTokenMinted(ctx context.Context, requestID, destContractOrMint, destTokenIDOrAccount string) error {
	req, err := h.state.Registry.GetRequest(requestID)
	if err != nil {
		if err == store.ErrRequestNotFound {
			h.state.Logger.Printf("event for unknown request %s, ignoring", requestID)
			return nil
		}
		return fmt.Errorf("load request %s: %w", requestID, err)
	}
	if req.Status != types.StatusTokenMinted {
		return nil
	}
	if req.Output.DestinationContractIDOrMint != destContractOrMint ||
		req.Output.DestinationTokenIDOrAccount != destTokenIDOrAccount {
		return nil
	}

	return h.state.SM.UpdateState(req)
}

// RunEVMListener drives the EVM adapter's event subscription, restarting
// it with ListenerRestartDelay between attempts until ctx is canceled.
func RunEVMListener(ctx context.Context, state *State) {
	runListener(ctx, state, types.ChainEVM)
}

// RunSolanaListener is the Solana counterpart of RunEVMListener.
func RunSolanaListener(ctx context.Context, state *State) {
	runListener(ctx, state, types.ChainSolana)
}

func runListener(ctx context.Context, state *State, chainID types.Chains) {
	handler := &eventHandler{origin: chainID, state: state}
	adapter := state.adapterFor(chainID)

	for {
		if ctx.Err() != nil {
			return
		}
		// correlationID ties together the "connecting"/"stopped" pair of log
		// lines for one subscription attempt, independent of any request id.
		correlationID := uuid.New().String()
		state.Logger.Printf("%s listener [%s] connecting", chainID, correlationID)
		if err := adapter.RunListener(ctx, handler); err != nil && ctx.Err() == nil {
			state.Logger.Printf("%s listener [%s] stopped: %v, restarting in %s", chainID, correlationID, err, ListenerRestartDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(ListenerRestartDelay):
		}
	}
}
