// Package evmchain implements chain.Adapter for the EVM side of the
// bridge, grounded on the teacher's pkg/ethereum client and the origin
// implementation's crates/evm (calls.rs, evm_txs.rs, evm_events.rs).
package evmchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mr-tron/base58"

	bchain "github.com/nftbridge/relayer/pkg/chain"
	btypes "github.com/nftbridge/relayer/pkg/types"
)

// feeFloor is the EIP-1559 sentinel substitute: some RPCs (local devnets
// especially) report both max_fee_per_gas and max_priority_fee_per_gas as
// 1 wei when they have no real fee market to estimate from. A transaction
// built at that rate never gets included, so whenever both estimates come
// back as exactly 1 wei we substitute this 3 Gwei floor for both.
var feeFloor = big.NewInt(3_000_000_000)

const (
	gasLimitNewBridgeRequest = 100_000
	gasLimitMintToken        = 200_000
)

// Adapter implements chain.Adapter for an EVM chain carrying the bridge
// contract.
type Adapter struct {
	rpc            *ethclient.Client
	ws             *ethclient.Client
	bridgeContract common.Address
	privateKey     *ecdsa.PrivateKey
	signer         common.Address
	chainID        *big.Int
	blockExplorer  string
	logger         *log.Logger
}

// Config holds everything needed to dial both RPC legs and identify the
// deployed bridge contract.
type Config struct {
	RPCURL         string
	WSURL          string
	PrivateKeyHex  string
	BridgeContract string
	BlockExplorer  string
	ChainID        int64
	Logger         *log.Logger
}

// Dial connects the HTTP and websocket legs and parses the signing key and
// bridge contract address out of cfg.
func Dial(ctx context.Context, cfg Config) (*Adapter, error) {
	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}
	wsClient, err := ethclient.DialContext(ctx, cfg.WSURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm ws: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse evm private key: %w", err)
	}
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("derive evm public key: unexpected key type")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[evmchain] ", log.LstdFlags)
	}

	return &Adapter{
		rpc:            rpcClient,
		ws:             wsClient,
		bridgeContract: common.HexToAddress(cfg.BridgeContract),
		privateKey:     privateKey,
		signer:         crypto.PubkeyToAddress(*publicKey),
		chainID:        big.NewInt(cfg.ChainID),
		blockExplorer:  cfg.BlockExplorer,
		logger:         logger,
	}, nil
}

func (a *Adapter) Chain() btypes.Chains { return btypes.ChainEVM }

func (a *Adapter) Health(ctx context.Context) error {
	if _, err := a.rpc.BlockNumber(ctx); err != nil {
		return fmt.Errorf("evm health check: %w", err)
	}
	return nil
}

func (a *Adapter) LatestHeight(ctx context.Context) (uint64, error) {
	return a.rpc.BlockNumber(ctx)
}

func (a *Adapter) TokenOwner(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	tokenIDU256, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token id %q", tokenID)
	}

	out, err := a.callRead(ctx, common.HexToAddress(contractOrMint), tokenABI, "ownerOf", tokenIDU256)
	if err != nil {
		return "", fmt.Errorf("ownerOf: %w", err)
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("ownerOf: unexpected return type")
	}
	return owner.Hex(), nil
}

// TokenReceived reports whether the bridge contract itself now owns
// contractOrMint/tokenID, mirroring calls.rs's check_token_owner
// (`token_owner != client.bridge_contract`).
func (a *Adapter) TokenReceived(ctx context.Context, contractOrMint, tokenID string) (bool, error) {
	owner, err := a.TokenOwner(ctx, contractOrMint, tokenID)
	if err != nil {
		return false, err
	}
	return common.HexToAddress(owner) == a.bridgeContract, nil
}

func (a *Adapter) TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	tokenIDU256, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token id %q", tokenID)
	}

	out, err := a.callRead(ctx, common.HexToAddress(contractOrMint), tokenABI, "tokenURI", tokenIDU256)
	if err != nil {
		return "", fmt.Errorf("tokenURI: %w", err)
	}
	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("tokenURI: unexpected return type")
	}
	return uri, nil
}

func (a *Adapter) InitializeRequest(ctx context.Context, req *btypes.InputRequest, requestID string) (string, error) {
	tokenIDU256, ok := new(big.Int).SetString(req.TokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token id %q", req.TokenID)
	}

	data, err := bridgeABI.Pack("newBridgeRequest",
		requestID,
		common.HexToAddress(req.ContractOrMint),
		common.HexToAddress(req.TokenOwner),
		tokenIDU256,
	)
	if err != nil {
		return "", fmt.Errorf("pack newBridgeRequest: %w", err)
	}

	return a.sendContractTx(ctx, data, gasLimitNewBridgeRequest)
}

func (a *Adapter) MintToken(ctx context.Context, req *btypes.BRequest, tokenMetadata string) (bchain.MintResult, error) {
	// The wrapped token's id is not carried in the request: it is the
	// origin Solana mint address, base58-decoded and read back as a
	// big-endian integer, matching the origin implementation's
	// bs58::decode(mint_account) -> U256::from_be_slice.
	mintBytes, err := base58.Decode(req.Input.ContractOrMint)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("decode origin mint %q: %w", req.Input.ContractOrMint, err)
	}
	tokenIDU256 := new(big.Int).SetBytes(mintBytes)

	destContract, err := a.tokenAddress(ctx)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("tokenAddress: %w", err)
	}

	data, err := bridgeABI.Pack("mintToken",
		req.ID,
		common.HexToAddress(req.Input.DestinationAccount),
		tokenIDU256,
		tokenMetadata,
	)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("pack mintToken: %w", err)
	}

	txHash, err := a.sendContractTx(ctx, data, gasLimitMintToken)
	if err != nil {
		return bchain.MintResult{}, err
	}

	return bchain.MintResult{
		TxHash:                      txHash,
		DestinationContractOrMint:   destContract.Hex(),
		DestinationTokenIDOrAccount: tokenIDU256.String(),
	}, nil
}

func (a *Adapter) TransactionFound(ctx context.Context, txHash string) (bool, error) {
	_, isPending, err := a.rpc.TransactionByHash(ctx, common.HexToHash(txHash))
	if err != nil {
		if err == ethereum.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("get transaction: %w", err)
	}
	return !isPending, nil
}

func (a *Adapter) tokenAddress(ctx context.Context) (common.Address, error) {
	out, err := a.callRead(ctx, a.bridgeContract, bridgeABI, "tokenAddress")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("tokenAddress: unexpected return type")
	}
	return addr, nil
}

// callRead packs a read-only method call against target using contractABI,
// runs it via eth_call and unpacks the result.
func (a *Adapter) callRead(ctx context.Context, target common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	result, err := a.rpc.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	return contractABI.Unpack(method, result)
}

// sendContractTx estimates an EIP-1559 fee, builds, signs and broadcasts a
// transaction calling the bridge contract with data, using gasLimit as its
// gas cap, and returns its hash without waiting for confirmation: the
// caller finds out the transaction landed through the event listener or
// the recovery orchestrator's TransactionFound poll.
func (a *Adapter) sendContractTx(ctx context.Context, data []byte, gasLimit uint64) (string, error) {
	nonce, err := a.rpc.PendingNonceAt(ctx, a.signer)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	tipCap, feeCap, err := a.estimateFees(ctx)
	if err != nil {
		return "", fmt.Errorf("estimate fees: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   a.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &a.bridgeContract,
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.NewLondonSigner(a.chainID), a.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}

	if err := a.rpc.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	return signed.Hash().Hex(), nil
}

// estimateFees asks the node for its current priority-fee suggestion and
// derives a max fee cap from the latest base fee, falling back to feeFloor
// when the node has no real fee market to report (see feeFloor).
func (a *Adapter) estimateFees(ctx context.Context) (tipCap, feeCap *big.Int, err error) {
	tipCap, err = a.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("suggest gas tip cap: %w", err)
	}

	head, err := a.rpc.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch head: %w", err)
	}

	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}
	feeCap = new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tipCap)

	if tipCap.Cmp(big.NewInt(1)) == 0 && feeCap.Cmp(big.NewInt(1)) == 0 {
		tipCap = new(big.Int).Set(feeFloor)
		feeCap = new(big.Int).Set(feeFloor)
	}

	return tipCap, feeCap, nil
}
