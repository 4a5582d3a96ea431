package bridge

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"github.com/nftbridge/relayer/pkg/types"
)

// NewRequest is C8 Request Intake: it builds a BRequest from input,
// rejects duplicates (I2), validates the destination address against the
// chain opposite the origin, submits the origin-chain lock-acknowledgement
// transaction, and records the request as pending. Grounded on
// crates/requests/src/endpoints.rs's new_request.
func NewRequest(ctx context.Context, state *State, input types.InputRequest) (*types.BRequest, error) {
	req := types.NewBRequest(input)

	exists, err := state.Registry.Exists(req.ID)
	if err != nil {
		return nil, NewCreationError(err.Error())
	}
	if exists {
		return nil, NewAlreadyExistingError(req.ID)
	}

	if err := validateDestination(req.Input); err != nil {
		return nil, err
	}

	origin := state.adapterFor(req.Input.OriginNetwork)
	txHash, err := origin.InitializeRequest(ctx, &req.Input, req.ID)
	if err != nil {
		if req.Input.OriginNetwork == types.ChainEVM {
			return nil, NewEVMTxError()
		}
		return nil, NewSolanaTxError()
	}

	if err := state.SM.AddTx(req, txHash); err != nil {
		return nil, NewCreationError(err.Error())
	}

	if err := state.Registry.AddPending(req.ID); err != nil {
		return nil, NewCreationError(err.Error())
	}

	return req, nil
}

// validateDestination checks that a request's destination account parses
// as an address on the chain opposite its origin — an EVM-origin request
// must name a Solana pubkey destination, and vice versa — mirroring
// endpoints.rs's inline Pubkey::from_str/Address::from_str checks.
func validateDestination(input types.InputRequest) error {
	switch input.OriginNetwork {
	case types.ChainEVM:
		if _, err := solana.PublicKeyFromBase58(input.DestinationAccount); err != nil {
			return NewInvalidDestinationError()
		}
	case types.ChainSolana:
		if !common.IsHexAddress(input.DestinationAccount) {
			return NewInvalidDestinationError()
		}
	}
	return nil
}
