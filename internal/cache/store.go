package cache

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

type entryKey struct {
	namespace Namespace
	key       string
}

type entry struct {
	value any
	epoch uint64
}

// Store is the in-process Cache. It has no capacity limit and no TTL.
type Store struct {
	entries *xsync.MapOf[entryKey, entry]
	epochs  *xsync.MapOf[Namespace, *atomic.Uint64]
	metrics *Metrics
}

var _ Cache = (*Store)(nil)

// NewStore creates an empty cache. A nil metrics disables accounting.
func NewStore(metrics *Metrics) *Store {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Store{
		entries: xsync.NewMapOf[entryKey, entry](),
		epochs:  xsync.NewMapOf[Namespace, *atomic.Uint64](),
		metrics: metrics,
	}
}

func (s *Store) counter(ns Namespace) *atomic.Uint64 {
	c, _ := s.epochs.LoadOrCompute(ns, func() *atomic.Uint64 {
		return new(atomic.Uint64)
	})
	return c
}

func (s *Store) Get(ns Namespace, key string) (any, bool) {
	current := s.counter(ns).Load()
	e, ok := s.entries.Load(entryKey{namespace: ns, key: key})
	if !ok || e.epoch != current {
		s.metrics.miss(ns)
		return nil, false
	}
	s.metrics.hit(ns)
	return e.value, true
}

func (s *Store) Put(ns Namespace, key string, value any) {
	s.PutAt(ns, key, value, s.Epoch(ns))
}

func (s *Store) Epoch(ns Namespace) uint64 {
	return s.counter(ns).Load()
}

func (s *Store) PutAt(ns Namespace, key string, value any, epoch uint64) bool {
	if s.counter(ns).Load() != epoch {
		s.metrics.stalePut(ns)
		return false
	}
	// An evict racing this store leaves an entry tagged with the old epoch,
	// which Get already treats as absent.
	s.entries.Store(entryKey{namespace: ns, key: key}, entry{value: value, epoch: epoch})
	return true
}

// EvictNamespace bumps the epoch of ns, then drops the entries it made stale.
// The bump alone is what readers observe; the sweep only releases memory.
func (s *Store) EvictNamespace(ns Namespace) {
	current := s.counter(ns).Add(1)
	s.metrics.evict(ns)

	s.entries.Range(func(k entryKey, e entry) bool {
		if k.namespace != ns || e.epoch >= current {
			return true
		}
		s.entries.Compute(k, func(old entry, loaded bool) (entry, bool) {
			return old, !loaded || old.epoch < current
		})
		return true
	})
}

// Len returns the number of entries held, stale or not.
func (s *Store) Len() int {
	return s.entries.Size()
}
