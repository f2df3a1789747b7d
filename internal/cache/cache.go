// Package cache memoizes computed results per (namespace, key) for the
// lifetime of the process. A namespace is invalidated as a whole by bumping
// its epoch; entries written under an older epoch read as absent.
//
// Readers that compute a value from storage should take Epoch before the
// storage read and store the result with PutAt. If the namespace was evicted
// in between, PutAt drops the value instead of caching data that may predate
// the mutation:
//
//	epoch := c.Epoch(ns)
//	v, err := readFromStorage()
//	c.PutAt(ns, key, v, epoch)
//
// GetOrCompute wraps that pattern.
package cache

import (
	"fmt"
	"strings"
)

// Namespace groups entries sharing an eviction scope.
type Namespace string

const (
	ArticleByID   Namespace = "article-by-id"
	ArticleText   Namespace = "article-text"
	ArticleAuthor Namespace = "article-author"
	ArticlePage   Namespace = "article-page"
)

// Namespaces lists every namespace used by the article service.
var Namespaces = []Namespace{ArticleByID, ArticleText, ArticleAuthor, ArticlePage}

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Cache is a concurrency-safe, namespaced memo table.
type Cache interface {
	// Get returns the value stored under the current epoch of ns.
	Get(ns Namespace, key string) (any, bool)
	// Put stores value under the current epoch of ns.
	Put(ns Namespace, key string, value any)
	// Epoch returns the current epoch of ns.
	Epoch(ns Namespace) uint64
	// PutAt stores value only if ns is still at epoch. It reports whether the value was stored.
	PutAt(ns Namespace, key string, value any, epoch uint64) bool
	// EvictNamespace makes every entry of ns absent.
	EvictNamespace(ns Namespace)
}

// Key builds a cache key from request arguments.
func Key(args ...any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprint(arg)
	}
	return strings.Join(parts, KeySeparator)
}
