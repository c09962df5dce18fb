package session

import "context"

type storeContextKey struct{}

// NewContext returns ctx carrying store.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// FromContext returns the store carried by ctx, or nil.
func FromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}

// SnapshotFromContext returns the snapshot of the store carried by ctx. A
// missing store reads as logged out.
func SnapshotFromContext(ctx context.Context) Snapshot {
	if store := FromContext(ctx); store != nil {
		return store.Snapshot()
	}
	return Snapshot{}
}
