package dynamis

import "github.com/akmonengine/dynamis/constraint"

// cacheEntry is the persisted state for one pair: the latest manifold, the
// frame it was last refreshed, and the warm-start impulse the solver wrote
// after its final iteration.
type cacheEntry struct {
	manifold Manifold
	stamp    uint64
	warm     constraint.Impulse
}

// ManifoldCache persists per-pair solver state between frames. Keys are
// unordered: Put((a,b), m) is found by Get((b,a)). Entries refresh their
// frame stamp on every Put and are dropped by PruneStale once they have
// gone unrefreshed longer than the retention window, so pairs that
// separate for good stop consuming memory even if their items never come
// back.
type ManifoldCache[T comparable] struct {
	identity func(T) string
	frame    uint64
	entries  map[pairKey[T]]*cacheEntry
}

// NewManifoldCache builds an empty cache. A nil identity function falls
// back to the value-derived default.
func NewManifoldCache[T comparable](identity func(T) string) *ManifoldCache[T] {
	if identity == nil {
		identity = defaultIdentity[T]
	}
	return &ManifoldCache[T]{
		identity: identity,
		entries:  make(map[pairKey[T]]*cacheEntry),
	}
}

func (c *ManifoldCache[T]) key(pair Pair[T]) pairKey[T] {
	return makePairKey(c.identity, pair.First, pair.Second)
}

// Put records the pair's latest manifold and stamps the entry with the
// current frame. The warm-start impulse of an existing entry survives.
func (c *ManifoldCache[T]) Put(pair Pair[T], manifold Manifold) {
	key := c.key(pair)
	if entry, ok := c.entries[key]; ok {
		entry.manifold = manifold
		entry.stamp = c.frame
		return
	}
	c.entries[key] = &cacheEntry{manifold: manifold, stamp: c.frame}
}

// Get returns the latest manifold recorded for the pair, in either
// argument order.
func (c *ManifoldCache[T]) Get(pair Pair[T]) (Manifold, bool) {
	entry, ok := c.entries[c.key(pair)]
	if !ok {
		return Manifold{}, false
	}
	return entry.manifold, true
}

// WarmStart returns the accumulated impulse persisted for the pair, or the
// zero impulse when the pair is unknown.
func (c *ManifoldCache[T]) WarmStart(pair Pair[T]) constraint.Impulse {
	if entry, ok := c.entries[c.key(pair)]; ok {
		return entry.warm
	}
	return constraint.Impulse{}
}

// SetWarmStart persists the solver's accumulated impulse for the pair,
// creating the entry if the pair was never Put.
func (c *ManifoldCache[T]) SetWarmStart(pair Pair[T], impulse constraint.Impulse) {
	key := c.key(pair)
	if entry, ok := c.entries[key]; ok {
		entry.warm = impulse
		return
	}
	c.entries[key] = &cacheEntry{stamp: c.frame, warm: impulse}
}

// Frame returns the cache's current frame counter.
func (c *ManifoldCache[T]) Frame() uint64 {
	return c.frame
}

// NextFrame advances the monotonic frame counter and returns it.
func (c *ManifoldCache[T]) NextFrame() uint64 {
	c.frame++
	return c.frame
}

// PruneStale drops every entry that has not been refreshed within maxAge
// frames.
func (c *ManifoldCache[T]) PruneStale(maxAge uint64) {
	for key, entry := range c.entries {
		if c.frame-entry.stamp > maxAge {
			delete(c.entries, key)
		}
	}
}

// Len reports how many pairs the cache currently tracks.
func (c *ManifoldCache[T]) Len() int {
	return len(c.entries)
}
