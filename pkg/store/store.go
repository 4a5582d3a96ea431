// Package store provides the durable Request Registry: a JSON-over-KV
// layer holding every BRequest plus the pending/completed id lists that let
// the relayer resume after a restart without rescanning either chain.
package store

import (
	"encoding/json"
	"fmt"
)

// KV defines the byte-oriented store the registry is built on. Any durable,
// crash-safe backend satisfies it; we wrap cometbft-db's dbm.DB via
// pkg/kvdb.KVAdapter.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// DB is a thin JSON marshal/unmarshal layer over a KV store.
type DB struct {
	kv KV
}

// NewDB wraps kv for JSON-valued reads and writes.
func NewDB(kv KV) *DB {
	return &DB{kv: kv}
}

// writeValue JSON-encodes v and stores it under key.
func (d *DB) writeValue(key []byte, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value for key %q: %w", key, err)
	}
	if err := d.kv.Set(key, b); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// readValue JSON-decodes the value stored under key into v. It reports
// found=false, err=nil when the key is absent.
func (d *DB) readValue(key []byte, v interface{}) (found bool, err error) {
	b, err := d.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("read key %q: %w", key, err)
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("unmarshal value for key %q: %w", key, err)
	}
	return true, nil
}
