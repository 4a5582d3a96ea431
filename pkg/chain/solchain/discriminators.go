package solchain

import "crypto/sha256"

// anchorDiscriminator reproduces Anchor's sighash: the first 8 bytes of
// sha256("<namespace>:<name>"), used for instruction selectors, account
// tags and event tags alike.
func anchorDiscriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

var (
	instructionNewRequest = anchorDiscriminator("global", "new_request")
	instructionCreateNft  = anchorDiscriminator("global", "create_nft")

	eventNewRequestDiscriminator   = anchorDiscriminator("event", "NewRequestEvent")
	eventTokenMintedDiscriminator  = anchorDiscriminator("event", "TokenMintedEvent")
)
