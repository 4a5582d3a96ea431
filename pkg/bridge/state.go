package bridge

import (
	"log"

	"github.com/nftbridge/relayer/pkg/chain"
	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

// State is the wiring struct every long-running component (C5 listeners,
// C6 tx workers, C7 recovery, C8 intake) closes over, grounded on the
// origin implementation's AppState (crates/requests/src/lib.rs), which
// bundled the db handle and both chain clients the same way.
type State struct {
	Registry *store.Registry
	SM       *StateMachine

	EVM    chain.Adapter
	Solana chain.Adapter

	// EVMTx/SolanaTx feed each chain's tx worker (C6); both are created
	// with capacity 50 per the concurrency model.
	EVMTx    chan types.TxMessage
	SolanaTx chan types.TxMessage

	Logger *log.Logger
}

// TxChannelCapacity is the bounded channel size every tx worker's inbox
// uses, matching the concurrency model's resource bound.
const TxChannelCapacity = 50

// NewState builds a State with freshly allocated tx channels.
func NewState(registry *store.Registry, sm *StateMachine, evm, solana chain.Adapter, logger *log.Logger) *State {
	return &State{
		Registry: registry,
		SM:       sm,
		EVM:      evm,
		Solana:   solana,
		EVMTx:    make(chan types.TxMessage, TxChannelCapacity),
		SolanaTx: make(chan types.TxMessage, TxChannelCapacity),
		Logger:   logger,
	}
}

// adapterFor returns the chain.Adapter driving chainID.
func (s *State) adapterFor(chainID types.Chains) chain.Adapter {
	if chainID == types.ChainEVM {
		return s.EVM
	}
	return s.Solana
}

// txChannelFor returns the tx worker inbox that mints onto chainID.
func (s *State) txChannelFor(chainID types.Chains) chan types.TxMessage {
	if chainID == types.ChainEVM {
		return s.EVMTx
	}
	return s.SolanaTx
}

// destinationChain returns the chain opposite origin, where the wrapped
// token gets minted.
func destinationChain(origin types.Chains) types.Chains {
	if origin == types.ChainEVM {
		return types.ChainSolana
	}
	return types.ChainEVM
}
