// Package chain defines the chain-agnostic capability set the bridge
// relayer needs from either side (C4): reading token ownership/metadata,
// submitting the lock-acknowledgement and mint transactions, checking
// whether a transaction landed, and running the event listener that feeds
// the tx worker's channel. pkg/chain/evmchain and pkg/chain/solchain each
// implement Adapter for one chain.
package chain

import (
	"context"

	"github.com/nftbridge/relayer/pkg/types"
)

// MintResult is what a successful MintToken call reports back: the
// submitted transaction hash and where the wrapped token now lives on the
// destination chain, which the caller folds into BRequest.Output via
// StateMachine.Finalize.
type MintResult struct {
	TxHash                string
	DestinationContractOrMint string
	DestinationTokenIDOrAccount string
}

// EventHandler receives decoded on-chain events from an Adapter's
// RunListener. Implementations live in pkg/bridge so they can reach the
// registry and state machine; pkg/chain only decodes, it never mutates
// bridge state itself.
type EventHandler interface {
	// OnNewRequest fires when the origin-chain bridge contract/program
	// records a new lock for requestID.
	OnNewRequest(ctx context.Context, requestID string) error

	// OnTokenMinted fires when the destination-chain bridge contract/
	// program finishes minting the wrapped token for requestID.
	OnTokenMinted(ctx context.Context, requestID, destContractOrMint, destTokenIDOrAccount string) error
}

// Adapter is the capability set one chain side exposes to the relayer.
type Adapter interface {
	// Chain identifies which side of the bridge this adapter drives.
	Chain() types.Chains

	// Health fails if the underlying RPC endpoint cannot be reached,
	// used both at boot (supplemented connection self-test) and by any
	// liveness surface built on top of it.
	Health(ctx context.Context) error

	// LatestHeight returns the chain's current block height (EVM) or
	// slot (Solana).
	LatestHeight(ctx context.Context) (uint64, error)

	// TokenOwner reports the current owner of contractOrMint/tokenID as
	// a chain-native address/pubkey string.
	TokenOwner(ctx context.Context, contractOrMint, tokenID string) (string, error)

	// TokenReceived reports whether the bridge now custodies
	// contractOrMint/tokenID on this chain — on EVM, the ERC-721's
	// current owner is the bridge contract itself; on Solana, the
	// bridge's associated token account for the mint holds exactly one
	// unit. This is the chain-specific half of the RequestReceived ->
	// TokenReceived transition.
	TokenReceived(ctx context.Context, contractOrMint, tokenID string) (bool, error)

	// TokenMetadata fetches the token's metadata URI.
	TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error)

	// InitializeRequest submits the origin-chain transaction that
	// records a new bridge request for req, returning its tx hash.
	InitializeRequest(ctx context.Context, req *types.InputRequest, requestID string) (txHash string, err error)

	// MintToken submits the destination-chain transaction that mints
	// the wrapped token described by req, using tokenMetadata as its URI.
	MintToken(ctx context.Context, req *types.BRequest, tokenMetadata string) (MintResult, error)

	// TransactionFound reports whether txHash corresponds to a
	// confirmed transaction on this chain.
	TransactionFound(ctx context.Context, txHash string) (bool, error)

	// RunListener blocks, dispatching decoded events to handler until
	// ctx is canceled or the subscription fails unrecoverably.
	RunListener(ctx context.Context, handler EventHandler) error
}
