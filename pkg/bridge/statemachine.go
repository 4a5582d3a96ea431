// Package bridge implements the bridge request lifecycle on top of the
// Request Registry: the pure state transitions (C3), request intake (C8),
// the per-chain event listeners (C5) and tx workers (C6), and the boot-time
// recovery orchestrator (C7).
package bridge

import (
	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

// StateMachine drives BRequest transitions and persists every change
// through the registry, mirroring the origin implementation's
// BRequest::update_state/cancel/finalize/add_tx, which wrote to the store
// on every mutation rather than batching.
type StateMachine struct {
	registry *store.Registry
}

// NewStateMachine returns a StateMachine backed by registry.
func NewStateMachine(registry *store.Registry) *StateMachine {
	return &StateMachine{registry: registry}
}

// UpdateState advances req one step along RequestReceived -> TokenReceived
// -> TokenMinted -> Completed. Completed and Canceled are absorbing: a call
// against either status is a persisted no-op, which is what lets callers
// invoke UpdateState unconditionally after "the watched evidence now
// matches" without checking status first (I3, at-least-once handling).
func (s *StateMachine) UpdateState(req *types.BRequest) error {
	switch req.Status {
	case types.StatusRequestReceived:
		req.Status = types.StatusTokenReceived
	case types.StatusTokenReceived:
		req.Status = types.StatusTokenMinted
	case types.StatusTokenMinted:
		req.Status = types.StatusCompleted
	case types.StatusCompleted, types.StatusCanceled:
		// terminal: nothing to do
	}
	req.LastUpdate = types.NowFunc()
	return s.registry.PutRequest(req)
}

// Cancel moves req to Canceled from any non-terminal status. Completed and
// Canceled are absorbing, so cancelling an already-terminal request keeps
// its status and just rewrites the record.
func (s *StateMachine) Cancel(req *types.BRequest) error {
	if req.Status != types.StatusCompleted {
		req.Status = types.StatusCanceled
	}
	req.LastUpdate = types.NowFunc()
	return s.registry.PutRequest(req)
}

// Finalize records where the wrapped token landed on the destination
// chain and marks req Completed, regardless of its current status. Mint
// confirmation can race the destination-chain event listener, so Finalize
// is idempotent: calling it twice with the same destination values is
// harmless (I5), and it is safe to call directly from TokenReceived,
// short-circuiting the TokenMinted step, for chains whose mint call
// confirms synchronously.
func (s *StateMachine) Finalize(req *types.BRequest, destContractOrMint, destTokenIDOrAccount string) error {
	req.Output = types.OutputResult{
		DestinationContractIDOrMint: destContractOrMint,
		DestinationTokenIDOrAccount: destTokenIDOrAccount,
	}
	req.Status = types.StatusCompleted
	req.LastUpdate = types.NowFunc()

	if err := s.registry.PutRequest(req); err != nil {
		return err
	}
	return s.registry.AddCompleted(req.ID)
}

// AddTx appends tx to req's tx history (I6: append-only) and persists it.
func (s *StateMachine) AddTx(req *types.BRequest, tx string) error {
	req.TxHashes = append(req.TxHashes, tx)
	req.LastUpdate = types.NowFunc()
	return s.registry.PutRequest(req)
}
