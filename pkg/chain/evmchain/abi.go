package evmchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// bridgeContractABI describes the bridge contract's write surface
// (newBridgeRequest/mintToken) and the one read it exposes
// (tokenAddress), matching the origin implementation's BridgeContract sol!
// interface.
const bridgeContractABI = `[
	{"type":"function","name":"newBridgeRequest","stateMutability":"nonpayable",
	 "inputs":[{"name":"requestId","type":"string"},{"name":"tokenContract","type":"address"},
	           {"name":"tokenOwner","type":"address"},{"name":"tokenId","type":"uint256"}],
	 "outputs":[]},
	{"type":"function","name":"mintToken","stateMutability":"nonpayable",
	 "inputs":[{"name":"requestId","type":"string"},{"name":"to","type":"address"},
	           {"name":"tokenId","type":"uint256"},{"name":"tokenURI","type":"string"}],
	 "outputs":[]},
	{"type":"function","name":"tokenAddress","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"NewRequest","anonymous":false,
	 "inputs":[{"name":"requestId","type":"string","indexed":false},
	           {"name":"tokenContract","type":"address","indexed":false},
	           {"name":"tokenId","type":"uint256","indexed":false}]},
	{"type":"event","name":"TokenMinted","anonymous":false,
	 "inputs":[{"name":"requestId","type":"string","indexed":false},
	           {"name":"tokenContract","type":"address","indexed":false},
	           {"name":"to","type":"address","indexed":false},
	           {"name":"tokenId","type":"uint256","indexed":false}]}
]`

// erc721ABI covers the two read calls the relayer needs from the token
// being bridged itself: current owner and metadata URI.
const erc721ABI = `[
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]}
]`

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("evmchain: invalid embedded ABI: " + err.Error())
	}
	return parsed
}

var (
	bridgeABI = mustParseABI(bridgeContractABI)
	tokenABI  = mustParseABI(erc721ABI)
)
