package types

import "testing"

func TestGenerateIDDeterministic(t *testing.T) {
	id1 := GenerateID("contract1", "token1", "owner1")
	id2 := GenerateID("contract1", "token1", "owner1")
	if id1 != id2 {
		t.Fatalf("same inputs produced different ids: %s vs %s", id1, id2)
	}

	id3 := GenerateID("contract2", "token1", "owner1")
	if id1 == id3 {
		t.Fatalf("different inputs produced the same id")
	}
}

func TestNewBRequest(t *testing.T) {
	input := InputRequest{
		ContractOrMint:     "0xabc123",
		TokenID:            "42",
		TokenOwner:         "0xowner456",
		OriginNetwork:      ChainEVM,
		DestinationAccount: "0xdestination789",
	}
	req := NewBRequest(input)

	if req.Status != StatusRequestReceived {
		t.Fatalf("expected RequestReceived, got %s", req.Status)
	}
	if req.Input != input {
		t.Fatalf("input not preserved")
	}
	if len(req.TxHashes) != 0 {
		t.Fatalf("expected no tx hashes, got %v", req.TxHashes)
	}
	if req.Output != (OutputResult{}) {
		t.Fatalf("expected zero-value output, got %+v", req.Output)
	}

	wantID := GenerateID(input.ContractOrMint, input.TokenID, input.TokenOwner)
	if req.ID != wantID {
		t.Fatalf("id mismatch: got %s want %s", req.ID, wantID)
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusRequestReceived: false,
		StatusTokenReceived:   false,
		StatusTokenMinted:     false,
		StatusCompleted:       true,
		StatusCanceled:        true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("Status(%s).Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestSolanaInputRequestConversion(t *testing.T) {
	sol := SolanaInputRequest{
		TokenMint:          "mint123",
		TokenAccount:       "account456",
		OriginNetwork:      ChainSolana,
		DestinationAccount: "dest789",
	}
	got := sol.ToInputRequest()

	if got.ContractOrMint != sol.TokenMint {
		t.Errorf("ContractOrMint = %s, want %s", got.ContractOrMint, sol.TokenMint)
	}
	if got.TokenID != "" {
		t.Errorf("TokenID = %q, want empty", got.TokenID)
	}
	if got.TokenOwner != sol.TokenAccount {
		t.Errorf("TokenOwner = %s, want %s", got.TokenOwner, sol.TokenAccount)
	}
	if got.OriginNetwork != sol.OriginNetwork {
		t.Errorf("OriginNetwork = %s, want %s", got.OriginNetwork, sol.OriginNetwork)
	}
	if got.DestinationAccount != sol.DestinationAccount {
		t.Errorf("DestinationAccount = %s, want %s", got.DestinationAccount, sol.DestinationAccount)
	}
}

func TestEVMInputRequestConversion(t *testing.T) {
	evm := EVMInputRequest{
		TokenContract:      "contract123",
		TokenID:            "token456",
		TokenOwner:         "owner789",
		OriginNetwork:      ChainEVM,
		DestinationAccount: "dest012",
	}
	got := evm.ToInputRequest()

	if got.ContractOrMint != evm.TokenContract {
		t.Errorf("ContractOrMint = %s, want %s", got.ContractOrMint, evm.TokenContract)
	}
	if got.TokenID != evm.TokenID {
		t.Errorf("TokenID = %s, want %s", got.TokenID, evm.TokenID)
	}
	if got.TokenOwner != evm.TokenOwner {
		t.Errorf("TokenOwner = %s, want %s", got.TokenOwner, evm.TokenOwner)
	}
}
