package storetest

import (
	"context"
	"sync"

	"github.com/plantify/plantify-go/store"
)

// FailingStore wraps a store and fails selected operations with Err.
// Operation names are "Get", "Set" and "Delete".
type FailingStore struct {
	store.Store
	Err error

	mu   sync.Mutex
	fail map[string]bool
}

// NewFailingStore wraps inner. No operation fails until FailOn is called.
func NewFailingStore(inner store.Store, err error) *FailingStore {
	return &FailingStore{Store: inner, Err: err, fail: make(map[string]bool)}
}

// FailOn makes the named operations return Err.
func (f *FailingStore) FailOn(ops ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range ops {
		f.fail[op] = true
	}
}

func (f *FailingStore) failing(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[op]
}

// Get implements store.Store
func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failing("Get") {
		return nil, store.NewOperationError("get", key, f.Err)
	}
	return f.Store.Get(ctx, key)
}

// Set implements store.Store
func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failing("Set") {
		return store.NewOperationError("set", key, f.Err)
	}
	return f.Store.Set(ctx, key, value)
}

// Delete implements store.Store
func (f *FailingStore) Delete(ctx context.Context, key string) error {
	if f.failing("Delete") {
		return store.NewOperationError("delete", key, f.Err)
	}
	return f.Store.Delete(ctx, key)
}
