package solchain

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// metaplexTokenMetadataProgram is the well-known Metaplex Token Metadata
// program, used to derive the metadata and master-edition PDAs for every
// NFT this adapter mints.
var metaplexTokenMetadataProgram = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// deriveMintPDA reproduces the origin implementation's mint address
// derivation: seeds ["mint", first half of the origin contract address,
// second half, little-endian u64 token id], under the bridge program. The
// split point is len/2 of the origin EVM contract's hex string, not a
// byte boundary, so it must match exactly.
func deriveMintPDA(bridgeProgram solana.PublicKey, originContract string, tokenID uint64) (solana.PublicKey, uint8, error) {
	mid := len(originContract) / 2
	seedP1, seedP2 := originContract[:mid], originContract[mid:]

	var tokenIDLE [8]byte
	binary.LittleEndian.PutUint64(tokenIDLE[:], tokenID)

	return solana.FindProgramAddress([][]byte{
		[]byte("mint"),
		[]byte(seedP1),
		[]byte(seedP2),
		tokenIDLE[:],
	}, bridgeProgram)
}

// deriveMetadataPDA derives the Metaplex metadata account for mint.
func deriveMetadataPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		metaplexTokenMetadataProgram[:],
		mint[:],
	}, metaplexTokenMetadataProgram)
}

// deriveMasterEditionPDA derives the Metaplex master-edition account for mint.
func deriveMasterEditionPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		metaplexTokenMetadataProgram[:],
		mint[:],
		[]byte("edition"),
	}, metaplexTokenMetadataProgram)
}
