// Package types holds the wire and storage types shared by the bridge
// relayer's registry, state machine and chain adapters.
package types

import (
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Status is the lifecycle state of a bridge request. Transitions are
// strictly forward except for the absorbing Canceled state; see
// StateMachine.UpdateState in pkg/bridge.
type Status string

const (
	StatusRequestReceived Status = "RequestReceived"
	StatusTokenReceived   Status = "TokenReceived"
	StatusTokenMinted     Status = "TokenMinted"
	StatusCompleted       Status = "Completed"
	StatusCanceled        Status = "Canceled"
)

// Terminal reports whether no further UpdateState call can change status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Chains identifies one side of the bridge.
type Chains string

const (
	ChainEVM    Chains = "EVM"
	ChainSolana Chains = "SOLANA"
)

// InputRequest is the chain-agnostic description of a lock observed on the
// origin chain (or submitted directly through the intake API).
type InputRequest struct {
	ContractOrMint      string `json:"contract_or_mint"`
	TokenID             string `json:"token_id"`
	TokenOwner          string `json:"token_owner"`
	OriginNetwork       Chains `json:"origin_network"`
	DestinationAccount  string `json:"destination_account"`
}

// OutputResult records where the wrapped token ended up once the mint leg
// completes. Both fields are empty until Finalize is called.
type OutputResult struct {
	DestinationTokenIDOrAccount string `json:"detination_token_id_or_account"`
	DestinationContractIDOrMint string `json:"detination_contract_id_or_mint"`
}

// BRequest is the durable record for one bridge transfer. Everything the
// relayer knows about a request lives here, keyed by ID under a single KV
// entry so a crash mid-transfer can always be resumed from what was last
// written.
type BRequest struct {
	ID         string       `json:"id"`
	Status     Status       `json:"status"`
	Input      InputRequest `json:"input"`
	TxHashes   []string     `json:"tx_hashes"`
	Output     OutputResult `json:"output"`
	LastUpdate int64        `json:"last_update"` // unix nanoseconds
}

// NowFunc is the clock BRequest uses for LastUpdate, overridable in tests.
var NowFunc = defaultNow

// NewBRequest builds a fresh request in RequestReceived with a derived ID.
func NewBRequest(input InputRequest) *BRequest {
	return &BRequest{
		ID:         GenerateID(input.ContractOrMint, input.TokenID, input.TokenOwner),
		Status:     StatusRequestReceived,
		Input:      input,
		TxHashes:   []string{},
		Output:     OutputResult{},
		LastUpdate: NowFunc(),
	}
}

// GenerateID derives the canonical request ID from the triple that uniquely
// identifies one token transfer: keccak256(contract||token_id||token_owner).
// Two EVMInputRequest or SolanaInputRequest conversions that describe the
// same lock always collapse onto the same ID, which is what lets the
// registry detect duplicate in-flight requests.
func GenerateID(contract, tokenID, tokenOwner string) string {
	data := make([]byte, 0, len(contract)+len(tokenID)+len(tokenOwner))
	data = append(data, contract...)
	data = append(data, tokenID...)
	data = append(data, tokenOwner...)
	return crypto.Keccak256Hash(data).Hex()
}

// EVMInputRequest is the intake shape for a request whose origin is EVM.
type EVMInputRequest struct {
	TokenContract      string `json:"token_contract"`
	TokenID            string `json:"token_id"`
	TokenOwner         string `json:"token_owner"`
	OriginNetwork      Chains `json:"origin_network"`
	DestinationAccount string `json:"destination_account"`
}

// ToInputRequest converts an EVM-origin intake payload into the
// chain-agnostic InputRequest stored on BRequest.
func (e EVMInputRequest) ToInputRequest() InputRequest {
	return InputRequest{
		ContractOrMint:     e.TokenContract,
		TokenID:            e.TokenID,
		TokenOwner:         e.TokenOwner,
		OriginNetwork:      e.OriginNetwork,
		DestinationAccount: e.DestinationAccount,
	}
}

// SolanaInputRequest is the intake shape for a request whose origin is
// Solana. Solana tokens are identified by mint + token account, not a
// separate numeric token id, so TokenID collapses to the empty string on
// conversion (matching the EVM side's id-generation triple).
type SolanaInputRequest struct {
	TokenMint          string `json:"token_mint"`
	TokenAccount       string `json:"token_account"`
	OriginNetwork      Chains `json:"origin_network"`
	DestinationAccount string `json:"destination_account"`
}

// ToInputRequest converts a Solana-origin intake payload into the
// chain-agnostic InputRequest stored on BRequest.
func (s SolanaInputRequest) ToInputRequest() InputRequest {
	return InputRequest{
		ContractOrMint:     s.TokenMint,
		TokenID:            "",
		TokenOwner:         s.TokenAccount,
		OriginNetwork:      s.OriginNetwork,
		DestinationAccount: s.DestinationAccount,
	}
}

// Function names the kind of work carried by a TxMessage on the tx worker
// channel.
type Function string

const (
	FunctionMint       Function = "Mint"
	FunctionNewRequest Function = "NewRequest"
)

// TxMessage is what an event listener hands to a tx worker over the
// bounded channel. Exactly one of MintData/RequestData is set, selected by
// Action.
type TxMessage struct {
	Action      Function
	MintData    *MessageMint
	RequestData *MessageNewRequest
}

// MessageMint carries what the tx worker needs to mint the wrapped token on
// the destination chain once the origin lock has been observed.
type MessageMint struct {
	RequestID     string
	TokenMetadata string
}

// MessageNewRequest is reserved for a future direct-submission tx worker
// path; Request Intake today writes straight to the registry instead of
// going through the channel, matching the origin implementation which
// defines this variant but does not yet dispatch it.
type MessageNewRequest struct {
	TokenContract string
	TokenOwner    string
	TokenID       string
	RequestID     string
}

func defaultNow() int64 {
	return time.Now().UnixNano()
}
