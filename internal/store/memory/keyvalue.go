package memory

import (
	"context"
	"sync"

	"citavista/backend/internal/store"
)

// KeyValue is a process-local store.KeyValue, the stand-in for browser storage.
type KeyValue struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewKeyValue() *KeyValue {
	return &KeyValue{data: make(map[string][]byte)}
}

func (kv *KeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()

	v, ok := kv.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(v), nil
}

func (kv *KeyValue) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = clone(value)
	return nil
}

func (kv *KeyValue) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()

	next, err := fn(clone(kv.data[key]))
	if err != nil {
		return err
	}
	kv.data[key] = clone(next)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
