package solchain

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// newRequestAccounts mirrors solana_bridge::client::accounts::NewRequest.
type newRequestAccounts struct {
	Bridge             solana.PublicKey
	Mint               solana.PublicKey
	UserTokenAccount   solana.PublicKey
	BridgeTokenAccount solana.PublicKey
	Backend            solana.PublicKey
}

// newRequestInstruction builds the bridge program's new_request
// instruction, mirroring solana_bridge::client::accounts::NewRequest /
// args::NewRequest from the origin implementation.
func newRequestInstruction(bridgeProgram solana.PublicKey, accounts newRequestAccounts, requestID string) (solana.Instruction, error) {
	data, err := encodeInstructionData(instructionNewRequest, func(enc *bin.Encoder) error {
		return enc.Encode(requestID)
	})
	if err != nil {
		return nil, fmt.Errorf("encode new_request args: %w", err)
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Bridge).WRITE(),
		solana.Meta(accounts.Mint),
		solana.Meta(accounts.UserTokenAccount).WRITE(),
		solana.Meta(accounts.BridgeTokenAccount).WRITE(),
		solana.Meta(accounts.Backend).SIGNER().WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
	}

	return solana.NewInstruction(bridgeProgram, metas, data), nil
}

// createNftAccounts mirrors solana_bridge::client::accounts::CreateNft.
type createNftAccounts struct {
	Bridge                 solana.PublicKey
	Mint                   solana.PublicKey
	DestinationTokenAccount solana.PublicKey
	Backend                solana.PublicKey
	NftMetadata            solana.PublicKey
	MasterEditionAccount   solana.PublicKey
	Recipient              solana.PublicKey
}

// createNftArgs mirrors solana_bridge::client::args::CreateNft.
type createNftArgs struct {
	ID        uint64
	SeedP1    string
	SeedP2    string
	Name      string
	Symbol    string
	URI       string
	RequestID string
}

// createNftInstruction builds the bridge program's create_nft
// instruction, which mints the wrapped NFT into the destination account.
func createNftInstruction(bridgeProgram solana.PublicKey, accounts createNftAccounts, args createNftArgs) (solana.Instruction, error) {
	data, err := encodeInstructionData(instructionCreateNft, func(enc *bin.Encoder) error {
		if err := enc.Encode(args.ID); err != nil {
			return err
		}
		if err := enc.Encode(args.SeedP1); err != nil {
			return err
		}
		if err := enc.Encode(args.SeedP2); err != nil {
			return err
		}
		if err := enc.Encode(args.Name); err != nil {
			return err
		}
		if err := enc.Encode(args.Symbol); err != nil {
			return err
		}
		if err := enc.Encode(args.URI); err != nil {
			return err
		}
		return enc.Encode(args.RequestID)
	})
	if err != nil {
		return nil, fmt.Errorf("encode create_nft args: %w", err)
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Bridge).WRITE(),
		solana.Meta(accounts.Mint).WRITE(),
		solana.Meta(accounts.DestinationTokenAccount).WRITE(),
		solana.Meta(accounts.Backend).SIGNER().WRITE(),
		solana.Meta(accounts.NftMetadata).WRITE(),
		solana.Meta(accounts.MasterEditionAccount).WRITE(),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(accounts.Recipient),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(metaplexTokenMetadataProgram),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(bridgeProgram, metas, data), nil
}

// encodeInstructionData writes discriminator followed by the borsh
// encoding that encodeArgs produces.
func encodeInstructionData(discriminator [8]byte, encodeArgs func(*bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	enc := bin.NewBorshEncoder(buf)
	if err := encodeArgs(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
