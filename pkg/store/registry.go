package store

import (
	"github.com/nftbridge/relayer/pkg/types"
)

// Registry is the durable Request Registry (C2): every BRequest keyed by
// its id, plus a pending-id "swap-remove set" (a dense list plus an
// id->slot index, giving O(1) insert/remove without leaving holes) and a
// flat completed-id list.
//
// CONCURRENCY: Registry assumes callers serialize writes to a given
// request id themselves (the event listener and tx worker for one chain
// never touch the same id concurrently in normal operation); the
// underlying KV handle is safe for concurrent use across different keys.
type Registry struct {
	db *DB
}

// NewRegistry builds a Registry over the given KV store.
func NewRegistry(kv KV) *Registry {
	return &Registry{db: NewDB(kv)}
}

var (
	keyPendingRequests      = []byte("pending_requests")       // -> []string
	keyPendingRequestsIndex = []byte("pending_requests_index") // -> map[string]int
	keyCompletedRequests    = []byte("completed_requests")     // -> []string
)

func requestKey(id string) []byte {
	return []byte("request:" + id)
}

// PutRequest persists req under its id.
func (r *Registry) PutRequest(req *types.BRequest) error {
	return r.db.writeValue(requestKey(req.ID), req)
}

// GetRequest loads the request stored under id. It returns
// ErrRequestNotFound if no such request has ever been written.
func (r *Registry) GetRequest(id string) (*types.BRequest, error) {
	var req types.BRequest
	found, err := r.db.readValue(requestKey(id), &req)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

// Exists reports whether id names a request that is still in flight, i.e.
// present and neither Canceled nor Completed. This backs the
// AlreadyExistingRequest check at intake (I2).
func (r *Registry) Exists(id string) (bool, error) {
	req, err := r.GetRequest(id)
	if err == ErrRequestNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !req.Status.Terminal(), nil
}

// PendingIDs returns the ids currently tracked as in-flight. The order is
// not meaningful: RemovePending swaps the removed id's slot with the last
// element to stay O(1), so the list is reordered on every removal.
func (r *Registry) PendingIDs() ([]string, error) {
	var ids []string
	if _, err := r.db.readValue(keyPendingRequests, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Registry) pendingIndex() (map[string]int, error) {
	index := map[string]int{}
	if _, err := r.db.readValue(keyPendingRequestsIndex, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// CompletedIDs returns every id that has been finalized.
func (r *Registry) CompletedIDs() ([]string, error) {
	var ids []string
	if _, err := r.db.readValue(keyCompletedRequests, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddPending adds id to the pending set. Idempotent: adding an id that is
// already pending is a no-op, matching the invariant that a request enters
// the pending set exactly once between intake and terminal status (I4).
func (r *Registry) AddPending(id string) error {
	ids, err := r.PendingIDs()
	if err != nil {
		return err
	}
	index, err := r.pendingIndex()
	if err != nil {
		return err
	}
	if _, ok := index[id]; ok {
		return nil
	}

	index[id] = len(ids)
	ids = append(ids, id)

	if err := r.db.writeValue(keyPendingRequests, ids); err != nil {
		return err
	}
	return r.db.writeValue(keyPendingRequestsIndex, index)
}

// RemovePending removes id from the pending set using swap-remove: the
// removed slot is filled with the current last element so the list never
// grows holes, and the moved element's index entry is updated to match.
// Removing an id that isn't pending is a no-op.
func (r *Registry) RemovePending(id string) error {
	ids, err := r.PendingIDs()
	if err != nil {
		return err
	}
	index, err := r.pendingIndex()
	if err != nil {
		return err
	}

	slot, ok := index[id]
	if !ok {
		return nil
	}
	if slot < 0 || slot >= len(ids) {
		return ErrPendingIndexCorrupt
	}

	last := len(ids) - 1
	movedID := ids[last]
	ids[slot] = ids[last]
	ids = ids[:last]
	delete(index, id)

	if movedID != id {
		index[movedID] = slot
	}

	if err := r.db.writeValue(keyPendingRequests, ids); err != nil {
		return err
	}
	return r.db.writeValue(keyPendingRequestsIndex, index)
}

// AddCompleted appends id to the completed list, called from Finalize.
// An id already in the list is not appended again, so finalizing the same
// request twice leaves a single entry.
func (r *Registry) AddCompleted(id string) error {
	ids, err := r.CompletedIDs()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)
	return r.db.writeValue(keyCompletedRequests, ids)
}
