// Package solchain implements chain.Adapter for the Solana side of the
// bridge, grounded on the origin implementation's crates/solana
// (sol_txs.rs, read_account.rs, sol_events.rs) and built on
// github.com/gagliardetto/solana-go, the library the broader example pack
// reaches for whenever it touches Solana.
package solchain

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	bchain "github.com/nftbridge/relayer/pkg/chain"
	btypes "github.com/nftbridge/relayer/pkg/types"
)

// Adapter implements chain.Adapter for Solana.
type Adapter struct {
	rpc           *rpc.Client
	wsURL         string
	signer        solana.PrivateKey
	bridgeProgram solana.PublicKey
	bridgeAccount solana.PublicKey
	blockExplorer string
	logger        *log.Logger
}

// Config holds everything needed to reach the cluster and identify the
// deployed bridge program and its state account.
type Config struct {
	RPCURL        string
	WSURL         string
	WalletKeyPath string
	WalletKey     string // base58-encoded private key, takes precedence over WalletKeyPath
	BridgeProgram string
	BridgeAccount string
	BlockExplorer string
	Logger        *log.Logger
}

// Dial connects the RPC leg and parses the signing key, bridge program and
// bridge account out of cfg. The websocket leg is dialed lazily by
// RunListener, matching the origin implementation's subscribe_event which
// opens its own PubsubClient.
func Dial(cfg Config) (*Adapter, error) {
	signer, err := loadWallet(cfg)
	if err != nil {
		return nil, fmt.Errorf("load solana wallet: %w", err)
	}

	bridgeProgram, err := solana.PublicKeyFromBase58(cfg.BridgeProgram)
	if err != nil {
		return nil, fmt.Errorf("parse bridge program: %w", err)
	}
	bridgeAccount, err := solana.PublicKeyFromBase58(cfg.BridgeAccount)
	if err != nil {
		return nil, fmt.Errorf("parse bridge account: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[solchain] ", log.LstdFlags)
	}

	return &Adapter{
		rpc:           rpc.New(cfg.RPCURL),
		wsURL:         cfg.WSURL,
		signer:        signer,
		bridgeProgram: bridgeProgram,
		bridgeAccount: bridgeAccount,
		blockExplorer: cfg.BlockExplorer,
		logger:        logger,
	}, nil
}

func loadWallet(cfg Config) (solana.PrivateKey, error) {
	if cfg.WalletKey != "" {
		return solana.PrivateKeyFromBase58(cfg.WalletKey)
	}
	return solana.PrivateKeyFromSolanaKeygenFile(cfg.WalletKeyPath)
}

func (a *Adapter) Chain() btypes.Chains { return btypes.ChainSolana }

func (a *Adapter) Health(ctx context.Context) error {
	status, err := a.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("solana health check: %w", err)
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("solana health check: cluster reports %s", status)
	}
	return nil
}

func (a *Adapter) LatestHeight(ctx context.Context) (uint64, error) {
	return a.rpc.GetSlot(ctx, rpc.CommitmentFinalized)
}

// TokenOwner reports the owner of the bridge's associated token account
// for mint.
func (a *Adapter) TokenOwner(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	account, err := a.bridgeATA(ctx, contractOrMint)
	if err != nil {
		return "", err
	}
	return account.Owner.String(), nil
}

// TokenReceived reports whether the bridge's associated token account for
// mint holds exactly one unit, mirroring read_account.rs's
// check_token_owner (`token_data.owner == client.bridge_account &&
// token_data.amount == 1`): FindAssociatedTokenAddress already pins the
// account to the bridge's owner, so only the amount needs checking here.
func (a *Adapter) TokenReceived(ctx context.Context, contractOrMint, tokenID string) (bool, error) {
	account, err := a.bridgeATA(ctx, contractOrMint)
	if err != nil {
		return false, err
	}
	return account.Amount == 1, nil
}

func (a *Adapter) bridgeATA(ctx context.Context, contractOrMint string) (*token.Account, error) {
	mint, err := solana.PublicKeyFromBase58(contractOrMint)
	if err != nil {
		return nil, fmt.Errorf("parse mint %q: %w", contractOrMint, err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(a.bridgeAccount, mint)
	if err != nil {
		return nil, fmt.Errorf("derive bridge ata: %w", err)
	}

	var account token.Account
	if err := a.getAccountInto(ctx, ata, &account); err != nil {
		return nil, fmt.Errorf("read bridge ata: %w", err)
	}
	return &account, nil
}

// TokenMetadata fetches the Metaplex metadata URI for mint, mirroring
// read_account.rs's get_metadata.
func (a *Adapter) TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	mint, err := solana.PublicKeyFromBase58(contractOrMint)
	if err != nil {
		return "", fmt.Errorf("parse mint %q: %w", contractOrMint, err)
	}

	metadataPDA, _, err := deriveMetadataPDA(mint)
	if err != nil {
		return "", fmt.Errorf("derive metadata pda: %w", err)
	}

	info, err := a.rpc.GetAccountInfo(ctx, metadataPDA)
	if err != nil {
		return "", fmt.Errorf("fetch metadata account: %w", err)
	}

	uri, err := decodeMetadataURI(info.Value.Data.GetBinary())
	if err != nil {
		return "", fmt.Errorf("decode metadata: %w", err)
	}
	return uri, nil
}

// decodeMetadataURI strips the Metaplex Metadata account's fixed header
// (1-byte key + 32-byte update authority + 32-byte mint) and borsh-decodes
// the name/symbol/uri strings that follow, returning uri with its
// null-padding trimmed.
func decodeMetadataURI(data []byte) (string, error) {
	const headerLen = 1 + 32 + 32
	if len(data) < headerLen {
		return "", fmt.Errorf("metadata account too short")
	}

	dec := bin.NewBorshDecoder(data[headerLen:])
	var name, symbol, uri string
	if err := dec.Decode(&name); err != nil {
		return "", fmt.Errorf("decode name: %w", err)
	}
	if err := dec.Decode(&symbol); err != nil {
		return "", fmt.Errorf("decode symbol: %w", err)
	}
	if err := dec.Decode(&uri); err != nil {
		return "", fmt.Errorf("decode uri: %w", err)
	}
	return strings.TrimRight(uri, "\x00"), nil
}

// InitializeRequest submits the bridge program's new_request instruction,
// recording the lock on the Solana side, mirroring sol_txs.rs's
// initialize_request.
func (a *Adapter) InitializeRequest(ctx context.Context, req *btypes.InputRequest, requestID string) (string, error) {
	mint, err := solana.PublicKeyFromBase58(req.ContractOrMint)
	if err != nil {
		return "", fmt.Errorf("parse mint %q: %w", req.ContractOrMint, err)
	}
	userTokenAccount, err := solana.PublicKeyFromBase58(req.TokenOwner)
	if err != nil {
		return "", fmt.Errorf("parse user token account %q: %w", req.TokenOwner, err)
	}
	bridgeTokenAccount, _, err := solana.FindAssociatedTokenAddress(a.bridgeAccount, mint)
	if err != nil {
		return "", fmt.Errorf("derive bridge ata: %w", err)
	}

	ix, err := newRequestInstruction(a.bridgeProgram, newRequestAccounts{
		Bridge:             a.bridgeAccount,
		Mint:               mint,
		UserTokenAccount:   userTokenAccount,
		BridgeTokenAccount: bridgeTokenAccount,
		Backend:            a.signer.PublicKey(),
	}, requestID)
	if err != nil {
		return "", fmt.Errorf("build new_request instruction: %w", err)
	}

	return a.signAndSend(ctx, ix)
}

// MintToken submits the bridge program's create_nft instruction, minting
// the wrapped NFT for req into its destination account, mirroring
// sol_txs.rs's mint_new_token.
func (a *Adapter) MintToken(ctx context.Context, req *btypes.BRequest, tokenMetadata string) (bchain.MintResult, error) {
	tokenID, err := strconv.ParseUint(req.Input.TokenID, 10, 64)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("invalid token id %q: %w", req.Input.TokenID, err)
	}

	destination, err := solana.PublicKeyFromBase58(req.Input.DestinationAccount)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("parse destination %q: %w", req.Input.DestinationAccount, err)
	}

	mint, _, err := deriveMintPDA(a.bridgeProgram, req.Input.ContractOrMint, tokenID)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("derive mint pda: %w", err)
	}
	metadataPDA, _, err := deriveMetadataPDA(mint)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("derive metadata pda: %w", err)
	}
	masterEditionPDA, _, err := deriveMasterEditionPDA(mint)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("derive master edition pda: %w", err)
	}
	destinationTokenAccount, _, err := solana.FindAssociatedTokenAddress(destination, mint)
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("derive destination ata: %w", err)
	}

	mid := len(req.Input.ContractOrMint) / 2
	ix, err := createNftInstruction(a.bridgeProgram, createNftAccounts{
		Bridge:                  a.bridgeAccount,
		Mint:                    mint,
		DestinationTokenAccount: destinationTokenAccount,
		Backend:                 a.signer.PublicKey(),
		NftMetadata:             metadataPDA,
		MasterEditionAccount:    masterEditionPDA,
		Recipient:               destination,
	}, createNftArgs{
		ID:        tokenID,
		SeedP1:    req.Input.ContractOrMint[:mid],
		SeedP2:    req.Input.ContractOrMint[mid:],
		Name:      "Bridged NFT",
		Symbol:    "BNFT",
		URI:       tokenMetadata,
		RequestID: req.ID,
	})
	if err != nil {
		return bchain.MintResult{}, fmt.Errorf("build create_nft instruction: %w", err)
	}

	txHash, err := a.signAndSend(ctx, ix)
	if err != nil {
		return bchain.MintResult{}, err
	}

	return bchain.MintResult{
		TxHash:                      txHash,
		DestinationContractOrMint:   mint.String(),
		DestinationTokenIDOrAccount: destinationTokenAccount.String(),
	}, nil
}

func (a *Adapter) TransactionFound(ctx context.Context, txHash string) (bool, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return false, fmt.Errorf("parse signature %q: %w", txHash, err)
	}

	statuses, err := a.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, fmt.Errorf("get signature status: %w", err)
	}
	if len(statuses.Value) == 0 || statuses.Value[0] == nil {
		return false, nil
	}
	status := statuses.Value[0]
	return status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
}

// signAndSend builds a transaction carrying ix, signs it with a.signer
// and broadcasts it without waiting for confirmation: landing is
// discovered later through the event listener or the recovery
// orchestrator's TransactionFound poll.
func (a *Adapter) signAndSend(ctx context.Context, ix solana.Instruction) (string, error) {
	recent, err := a.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, recent.Value.Blockhash, solana.TransactionPayer(a.signer.PublicKey()))
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(a.signer.PublicKey()) {
			return &a.signer
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := a.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return sig.String(), nil
}

// getAccountInto fetches key's account data and borsh-decodes it into out.
func (a *Adapter) getAccountInto(ctx context.Context, key solana.PublicKey, out interface{ UnmarshalWithDecoder(*bin.Decoder) error }) error {
	info, err := a.rpc.GetAccountInfo(ctx, key)
	if err != nil {
		return err
	}
	return bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(out)
}
