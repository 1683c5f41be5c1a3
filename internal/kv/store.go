// Package kv wraps the external key-value record service. The store offers
// whole-record get/set and key-prefix scans only; there are no transactions
// and no locks, so read-modify-write callers must tolerate races.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrClosed = errors.New("kv: store closed")

// Entry is a scanned record together with its key. Link records encode their
// relationship in the key itself, so prefix scans must surface it.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Store is the record store adapter.
type Store interface {
	// Get returns the raw record for key. The boolean reports presence; a
	// missing key is not an error.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	// Set marshals value and writes it under key, replacing any prior record.
	Set(ctx context.Context, key string, value any) error
	// GetByPrefix returns every record whose key starts with prefix, sorted
	// by key.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

// Decode unmarshals a raw record into out.
func Decode(raw json.RawMessage, out any) error {
	return json.Unmarshal(raw, out)
}
