package evmchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	bchain "github.com/nftbridge/relayer/pkg/chain"
)

// RunListener subscribes to the bridge contract's NewRequest and
// TokenMinted logs over the websocket leg and dispatches decoded events to
// handler, blocking until ctx is canceled or the subscription dies,
// matching the origin implementation's catch_event loop.
func (a *Adapter) RunListener(ctx context.Context, handler bchain.EventHandler) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{a.bridgeContract},
		Topics: [][]common.Hash{{
			bridgeABI.Events["NewRequest"].ID,
			bridgeABI.Events["TokenMinted"].ID,
		}},
	}

	logs := make(chan types.Log)
	sub, err := a.ws.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("subscribe evm logs: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("evm log subscription: %w", err)
		case vLog := <-logs:
			if err := a.dispatchLog(ctx, vLog, handler); err != nil {
				a.logger.Printf("dispatch evm log: %v", err)
			}
		}
	}
}

func (a *Adapter) dispatchLog(ctx context.Context, vLog types.Log, handler bchain.EventHandler) error {
	if len(vLog.Topics) == 0 {
		return nil
	}

	switch vLog.Topics[0] {
	case bridgeABI.Events["NewRequest"].ID:
		var event struct {
			RequestID     string
			TokenContract common.Address
			TokenID       *big.Int
		}
		if err := bridgeABI.UnpackIntoInterface(&event, "NewRequest", vLog.Data); err != nil {
			return fmt.Errorf("unpack NewRequest: %w", err)
		}
		return handler.OnNewRequest(ctx, event.RequestID)

	case bridgeABI.Events["TokenMinted"].ID:
		var event struct {
			RequestID     string
			TokenContract common.Address
			To            common.Address
			TokenID       *big.Int
		}
		if err := bridgeABI.UnpackIntoInterface(&event, "TokenMinted", vLog.Data); err != nil {
			return fmt.Errorf("unpack TokenMinted: %w", err)
		}
		return handler.OnTokenMinted(ctx, event.RequestID, event.TokenContract.Hex(), event.TokenID.String())
	}
	return nil
}
