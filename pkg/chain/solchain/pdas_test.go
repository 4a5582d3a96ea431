package solchain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestAnchorDiscriminatorIsStableAndDistinct(t *testing.T) {
	a := anchorDiscriminator("global", "new_request")
	b := anchorDiscriminator("global", "new_request")
	if a != b {
		t.Fatalf("anchorDiscriminator is not deterministic: %v != %v", a, b)
	}

	c := anchorDiscriminator("global", "create_nft")
	if a == c {
		t.Fatalf("distinct instruction names collided on discriminator %v", a)
	}

	if instructionNewRequest == instructionCreateNft {
		t.Fatalf("package-level instruction discriminators collide")
	}
	if eventNewRequestDiscriminator == eventTokenMintedDiscriminator {
		t.Fatalf("package-level event discriminators collide")
	}
}

func TestDeriveMintPDAIsDeterministic(t *testing.T) {
	bridgeProgram := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	pda1, bump1, err := deriveMintPDA(bridgeProgram, "0xabc123def456", 7)
	if err != nil {
		t.Fatalf("deriveMintPDA: %v", err)
	}
	pda2, bump2, err := deriveMintPDA(bridgeProgram, "0xabc123def456", 7)
	if err != nil {
		t.Fatalf("deriveMintPDA: %v", err)
	}
	if pda1 != pda2 || bump1 != bump2 {
		t.Fatalf("deriveMintPDA is not deterministic for identical inputs")
	}

	other, _, err := deriveMintPDA(bridgeProgram, "0xabc123def456", 8)
	if err != nil {
		t.Fatalf("deriveMintPDA: %v", err)
	}
	if other == pda1 {
		t.Fatalf("different token ids derived the same mint PDA")
	}
}

func TestDeriveMetadataAndMasterEditionPDAsAreDistinct(t *testing.T) {
	bridgeProgram := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	mint, _, err := deriveMintPDA(bridgeProgram, "0xabc123def456", 7)
	if err != nil {
		t.Fatalf("deriveMintPDA: %v", err)
	}

	metadataPDA, _, err := deriveMetadataPDA(mint)
	if err != nil {
		t.Fatalf("deriveMetadataPDA: %v", err)
	}
	editionPDA, _, err := deriveMasterEditionPDA(mint)
	if err != nil {
		t.Fatalf("deriveMasterEditionPDA: %v", err)
	}
	if metadataPDA == editionPDA {
		t.Fatalf("metadata and master-edition PDAs collided for the same mint")
	}
}
