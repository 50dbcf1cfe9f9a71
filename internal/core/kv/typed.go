package kv

import "context"

// Separator joins a namespace and a key.
const Separator = "_"

// TypedKV provides type-safe access to a KV store for a specific type T.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped returns a TypedKV[T] whose keys are written as "<namespace>_<key>".
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: namespace + Separator,
	}
}

// Key returns the full storage key for key.
func (t *TypedKV[T]) Key(key string) string {
	return t.prefix + key
}

// Get retrieves and deserializes a value by key.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	if err := t.store.Get(ctx, t.Key(key), &v); err != nil {
		return v, err
	}
	return v, nil
}

// Lookup is Get that folds a missing key into ok=false.
func (t *TypedKV[T]) Lookup(ctx context.Context, key string) (v T, ok bool, err error) {
	v, err = t.Get(ctx, key)
	if err != nil {
		if IsMissing(err) {
			var zero T
			return zero, false, nil
		}
		return v, false, err
	}
	return v, true, nil
}

// Set stores a value, overwriting any previous one.
func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.Key(key), value)
}

// Delete removes a key.
func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.Key(key))
}

// Has returns whether a key exists.
func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.Key(key))
}
