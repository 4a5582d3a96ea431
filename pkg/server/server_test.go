package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/nftbridge/relayer/pkg/bridge"
	"github.com/nftbridge/relayer/pkg/chain"
	"github.com/nftbridge/relayer/pkg/kvdb"
	"github.com/nftbridge/relayer/pkg/store"
	"github.com/nftbridge/relayer/pkg/types"
)

// stubAdapter is a minimal chain.Adapter used only to drive intake through
// the HTTP surface; its RPC-backed methods are never exercised here.
type stubAdapter struct {
	chainID types.Chains
	initTx  string
	initErr error
}

func (s *stubAdapter) Chain() types.Chains                        { return s.chainID }
func (s *stubAdapter) Health(ctx context.Context) error           { return nil }
func (s *stubAdapter) LatestHeight(ctx context.Context) (uint64, error) { return 0, nil }
func (s *stubAdapter) TokenOwner(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	return "", nil
}
func (s *stubAdapter) TokenReceived(ctx context.Context, contractOrMint, tokenID string) (bool, error) {
	return false, nil
}
func (s *stubAdapter) TokenMetadata(ctx context.Context, contractOrMint, tokenID string) (string, error) {
	return "", nil
}
func (s *stubAdapter) InitializeRequest(ctx context.Context, req *types.InputRequest, requestID string) (string, error) {
	if s.initErr != nil {
		return "", s.initErr
	}
	return s.initTx, nil
}
func (s *stubAdapter) MintToken(ctx context.Context, req *types.BRequest, tokenMetadata string) (chain.MintResult, error) {
	return chain.MintResult{}, nil
}
func (s *stubAdapter) TransactionFound(ctx context.Context, txHash string) (bool, error) {
	return false, nil
}
func (s *stubAdapter) RunListener(ctx context.Context, handler chain.EventHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

var _ chain.Adapter = (*stubAdapter)(nil)

func newTestHandlers(t *testing.T, evmExplorer, solExplorer string) *Handlers {
	t.Helper()
	mem := dbm.NewMemDB()
	t.Cleanup(func() { mem.Close() })
	registry := store.NewRegistry(kvdb.NewKVAdapter(mem))
	sm := bridge.NewStateMachine(registry)
	evm := &stubAdapter{chainID: types.ChainEVM, initTx: "0xinittx"}
	sol := &stubAdapter{chainID: types.ChainSolana, initTx: "soltx"}
	state := bridge.NewState(registry, sm, evm, sol, nil)
	return New(state, evmExplorer, solExplorer, nil)
}

func TestHealthcheck(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["running"] {
		t.Fatalf("body = %v, want running=true", body)
	}
}

func TestEVMToSolanaHappyPath(t *testing.T) {
	h := newTestHandlers(t, "", "")
	payload := types.EVMInputRequest{
		TokenContract:      "0xabc",
		TokenID:            "1",
		TokenOwner:         "0xowner",
		OriginNetwork:      types.ChainEVM,
		DestinationAccount: "11111111111111111111111111111111",
	}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bridge/evm-to-solana", bytes.NewReader(body))
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var stored types.BRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if stored.Status != types.StatusRequestReceived {
		t.Fatalf("status = %s, want RequestReceived", stored.Status)
	}
}

func TestEVMToSolanaRejectsWrongOrigin(t *testing.T) {
	h := newTestHandlers(t, "", "")
	payload := types.EVMInputRequest{OriginNetwork: types.ChainSolana}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bridge/evm-to-solana", bytes.NewReader(body))
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEVMToSolanaRejectsGet(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/evm-to-solana", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestPendingRequestsEmptyIsBlank(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/pending-requests", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var ids []string
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(ids) != 1 || ids[0] != "" {
		t.Fatalf("ids = %v, want ['']", ids)
	}
}

func TestGetRequestNotFound(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/requests/doesnotexist", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBlockExplorersNotConfigured(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/block_explorers", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBlockExplorersConfigured(t *testing.T) {
	h := newTestHandlers(t, "https://evm.explorer/tx/", "https://solscan.io/tx/")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/block_explorers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var urls map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &urls); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if urls["EVM"] == "" || urls["SOLANA"] == "" {
		t.Fatalf("urls = %v, want both set", urls)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandlers(t, "", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/bridge/pending-requests", nil)
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
