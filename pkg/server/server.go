// Package server is the thin HTTP adapter (spec §6): seven plain
// net/http.HandlerFuncs registered on a http.ServeMux, no router
// framework, grounded on the teacher's pkg/server handler shape
// (constructor holding a service + logger, writeJSONError helper).
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/nftbridge/relayer/pkg/bridge"
	"github.com/nftbridge/relayer/pkg/types"
)

// Handlers holds what every route needs: the wired bridge state and the
// two block-explorer URLs (config, not chain state, so they're threaded
// straight from pkg/config rather than reaching back through an adapter).
type Handlers struct {
	state               *bridge.State
	evmBlockExplorer    string
	solanaBlockExplorer string
	logger              *log.Logger
}

// New builds Handlers for the given state and block-explorer URLs.
func New(state *bridge.State, evmBlockExplorer, solanaBlockExplorer string, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}
	return &Handlers{
		state:               state,
		evmBlockExplorer:    evmBlockExplorer,
		solanaBlockExplorer: solanaBlockExplorer,
		logger:              logger,
	}
}

// Router builds the http.ServeMux carrying all seven routes, wrapped in
// permissive CORS matching the origin implementation's
// CorsLayer::new().allow_origin(Any).
func (h *Handlers) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcheck", h.handleHealthcheck)
	mux.HandleFunc("/bridge/evm-to-solana", h.handleEVMToSolana)
	mux.HandleFunc("/bridge/solana-to-evm", h.handleSolanaToEVM)
	mux.HandleFunc("/bridge/pending-requests", h.handlePendingRequests)
	mux.HandleFunc("/bridge/completed-requests", h.handleCompletedRequests)
	mux.HandleFunc("/bridge/requests/", h.handleGetRequest)
	mux.HandleFunc("/bridge/block_explorers", h.handleBlockExplorers)
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"running": true})
}

func (h *Handlers) handleEVMToSolana(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload types.EVMInputRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.OriginNetwork != types.ChainEVM {
		writeJSONError(w, "origin_network must be EVM", http.StatusBadRequest)
		return
	}

	h.submit(w, r, payload.ToInputRequest())
}

func (h *Handlers) handleSolanaToEVM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload types.SolanaInputRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.OriginNetwork != types.ChainSolana {
		writeJSONError(w, "origin_network must be SOLANA", http.StatusBadRequest)
		return
	}

	h.submit(w, r, payload.ToInputRequest())
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, input types.InputRequest) {
	req, err := bridge.NewRequest(r.Context(), h.state, input)
	if err != nil {
		h.logger.Printf("intake failed: %v", err)
		writeJSONError(w, err.Error(), requestErrorStatus(err))
		return
	}
	json.NewEncoder(w).Encode(req)
}

func (h *Handlers) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ids, err := h.state.Registry.PendingIDs()
	if err != nil {
		writeJSONError(w, "failed to read pending requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(emptyAsBlank(ids))
}

func (h *Handlers) handleCompletedRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ids, err := h.state.Registry.CompletedIDs()
	if err != nil {
		writeJSONError(w, "failed to read completed requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(emptyAsBlank(ids))
}

// emptyAsBlank matches the origin's empty-list convention: an empty set
// of ids is serialized as [""] rather than [].
func emptyAsBlank(ids []string) []string {
	if len(ids) == 0 {
		return []string{""}
	}
	return ids
}

func (h *Handlers) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/bridge/requests/")
	if id == "" {
		writeJSONError(w, "request id required", http.StatusBadRequest)
		return
	}

	req, err := h.state.Registry.GetRequest(id)
	if err != nil {
		writeJSONError(w, "request not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(req)
}

func (h *Handlers) handleBlockExplorers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.evmBlockExplorer == "" || h.solanaBlockExplorer == "" {
		writeJSONError(w, "block explorer not configured", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"EVM":    h.evmBlockExplorer,
		"SOLANA": h.solanaBlockExplorer,
	})
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// requestErrorStatus maps a bridge.RequestError's Kind to the HTTP status
// intake's error taxonomy carries (spec §7): address/validation failures
// are 400, a duplicate in-flight id is 409, and anything persistence- or
// chain-related is 500.
func requestErrorStatus(err error) int {
	reqErr, ok := err.(*bridge.RequestError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch reqErr.Kind {
	case bridge.ErrInvalidDestination:
		return http.StatusBadRequest
	case bridge.ErrAlreadyExisting:
		return http.StatusConflict
	case bridge.ErrNoExisting:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
