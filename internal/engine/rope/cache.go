package rope

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// DefaultCacheSize is the number of leaves a Cache holds by default.
const DefaultCacheSize = 4096

// Cache interns leaves by content so that equal literals share one rope,
// its memoized hash and its character length. Least recently used entries
// are evicted. A Cache is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, *Leaf]
	hits    atomic.Int64
	misses  atomic.Int64
}

type cacheKey struct {
	enc   encoding.Encoding
	cr    encoding.CodeRange
	bytes string
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewCache creates a cache holding up to size leaves.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, *Leaf](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating rope cache")
	}
	return &Cache{entries: entries}, nil
}

// Get returns the interned leaf for b in enc with code range cr, creating
// it from a copy of b on a miss. Passing encoding.Unknown classifies the
// bytes before lookup so equal content always meets one entry.
func (c *Cache) Get(b []byte, enc encoding.Encoding, cr encoding.CodeRange) *Leaf {
	if !cr.IsKnown() {
		cr, _ = enc.Scan(b)
	}
	key := cacheKey{enc: enc, cr: cr, bytes: string(b)}
	if leaf, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return leaf
	}
	c.misses.Add(1)

	leaf := NewLeaf([]byte(key.bytes), enc, cr)
	if prev, ok, _ := c.entries.PeekOrAdd(key, leaf); ok {
		return prev
	}
	return leaf
}

// GetRope interns the content of r. Native ropes are snapshotted.
func (c *Cache) GetRope(r Rope) *Leaf {
	if n, ok := r.(*Native); ok {
		return c.Get(n.Bytes(), n.enc, encoding.Unknown)
	}
	return c.Get(Bytes(r), r.Encoding(), r.CodeRange())
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.entries.Purge()
}
