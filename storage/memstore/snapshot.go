// Package memstore keeps fetched upstream collections in memory.
package memstore

import (
	"strings"
	"sync"

	"github.com/trezcool/campusdesk/core/resource"
)

type SnapshotStore struct {
	sync.RWMutex
	table map[string]resource.Snapshot
}

var _ resource.Cache = (*SnapshotStore)(nil) // interface compliance check

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{table: make(map[string]resource.Snapshot)}
}

func (store *SnapshotStore) Load(key string) (resource.Snapshot, bool) {
	store.RLock()
	defer store.RUnlock()

	snap, ok := store.table[key]
	return snap, ok
}

func (store *SnapshotStore) Store(key string, snap resource.Snapshot) {
	store.Lock()
	defer store.Unlock()

	store.table[key] = snap
}

// Invalidate drops every snapshot whose key starts with prefix and returns how many were dropped.
func (store *SnapshotStore) Invalidate(prefix string) int {
	store.Lock()
	defer store.Unlock()

	var n int
	for key := range store.table {
		if strings.HasPrefix(key, prefix) {
			delete(store.table, key)
			n++
		}
	}
	return n
}

// Len returns the number of snapshots kept.
func (store *SnapshotStore) Len() int {
	store.RLock()
	defer store.RUnlock()

	return len(store.table)
}
