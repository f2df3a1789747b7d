package cache

import (
	"context"

	"go.uber.org/zap"
)

// NoOp is a cache that doesn't store any items.
// It is used when caching is disabled.
type NoOp struct{}

var _ Cache = NoOp{}

func (NoOp) Get(Namespace, string) (any, bool) { return nil, false }
func (NoOp) Put(Namespace, string, any) {}
func (NoOp) Epoch(Namespace) uint64 { return 0 }
func (NoOp) PutAt(Namespace, string, any, uint64) bool { return false }
func (NoOp) EvictNamespace(Namespace) {}

// FailOpen wraps a Cache so that a panicking cache behaves like an empty one.
// Failures are logged and never reach the caller.
type FailOpen struct {
	cache  Cache
	logger *zap.Logger
}

var _ Cache = (*FailOpen)(nil)

func NewFailOpen(c Cache, logger *zap.Logger) *FailOpen {
	return &FailOpen{cache: c, logger: logger}
}

func (f *FailOpen) guard(op string, ns Namespace) {
	if r := recover(); r != nil {
		f.logger.Error("Cache operation failed, falling back to storage",
			zap.String("op", op),
			zap.String("namespace", string(ns)),
			zap.Any("panic", r))
	}
}

func (f *FailOpen) Get(ns Namespace, key string) (value any, ok bool) {
	defer f.guard("get", ns)
	return f.cache.Get(ns, key)
}

func (f *FailOpen) Put(ns Namespace, key string, value any) {
	defer f.guard("put", ns)
	f.cache.Put(ns, key, value)
}

func (f *FailOpen) Epoch(ns Namespace) (epoch uint64) {
	defer f.guard("epoch", ns)
	return f.cache.Epoch(ns)
}

func (f *FailOpen) PutAt(ns Namespace, key string, value any, epoch uint64) (stored bool) {
	defer f.guard("put", ns)
	return f.cache.PutAt(ns, key, value, epoch)
}

func (f *FailOpen) EvictNamespace(ns Namespace) {
	defer f.guard("evict", ns)
	f.cache.EvictNamespace(ns)
}

// GetOrCompute returns the cached value of (ns, key) or computes, caches and
// returns it. A cached value of the wrong type counts as a miss. Errors from
// compute are returned as-is and nothing is cached.
func GetOrCompute[T any](ctx context.Context, c Cache, ns Namespace, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(ns, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	epoch := c.Epoch(ns)
	result, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.PutAt(ns, key, result, epoch)
	return result, nil
}
