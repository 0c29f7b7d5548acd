package dynamis

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akmonengine/dynamis/constraint"
)

func testManifold(depth float64) Manifold {
	return Manifold{Normal: mgl64.Vec3{0, 1, 0}, Depth: depth, Points: []mgl64.Vec3{{0, 0, 0}}}
}

func TestManifoldCache(t *testing.T) {
	t.Run("get is order insensitive", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		cache.Put(Pair[string]{First: "a", Second: "b"}, testManifold(0.5))

		got, ok := cache.Get(Pair[string]{First: "b", Second: "a"})
		require.True(t, ok)
		assert.InDelta(t, 0.5, got.Depth, 1e-12)
	})

	t.Run("unknown pair misses", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		_, ok := cache.Get(Pair[string]{First: "a", Second: "b"})
		assert.False(t, ok)
	})

	t.Run("put refreshes the stamp and keeps the warm start", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		pair := Pair[string]{First: "a", Second: "b"}

		cache.Put(pair, testManifold(0.1))
		cache.SetWarmStart(pair, constraint.Impulse{Normal: 2, Tangent: -0.5})
		cache.NextFrame()
		cache.Put(pair, testManifold(0.2))

		warm := cache.WarmStart(Pair[string]{First: "b", Second: "a"})
		assert.InDelta(t, 2, warm.Normal, 1e-12)
		assert.InDelta(t, -0.5, warm.Tangent, 1e-12)

		got, _ := cache.Get(pair)
		assert.InDelta(t, 0.2, got.Depth, 1e-12)
	})

	t.Run("warm start defaults to zero", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		warm := cache.WarmStart(Pair[string]{First: "x", Second: "y"})
		assert.Zero(t, warm.Normal)
		assert.Zero(t, warm.Tangent)
	})

	t.Run("set warm start creates the entry when missing", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		pair := Pair[string]{First: "a", Second: "b"}
		cache.SetWarmStart(pair, constraint.Impulse{Normal: 1})
		assert.InDelta(t, 1, cache.WarmStart(pair).Normal, 1e-12)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("prune drops entries past the retention window", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		pair := Pair[string]{First: "a", Second: "b"}
		cache.Put(pair, testManifold(0.1))

		for frame := 0; frame < 3; frame++ {
			cache.NextFrame()
			cache.PruneStale(3)
			_, ok := cache.Get(pair)
			require.True(t, ok, "entry must survive age %d", frame+1)
		}

		cache.NextFrame()
		cache.PruneStale(3)
		_, ok := cache.Get(pair)
		assert.False(t, ok, "entry older than retention must be pruned")
	})

	t.Run("refresh resets the age", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		pair := Pair[string]{First: "a", Second: "b"}
		cache.Put(pair, testManifold(0.1))

		for frame := 0; frame < 10; frame++ {
			cache.NextFrame()
			cache.Put(pair, testManifold(0.1))
			cache.PruneStale(1)
		}

		_, ok := cache.Get(pair)
		assert.True(t, ok)
	})

	t.Run("frame counter is monotonic", func(t *testing.T) {
		cache := NewManifoldCache[string](nil)
		assert.Equal(t, uint64(0), cache.Frame())
		assert.Equal(t, uint64(1), cache.NextFrame())
		assert.Equal(t, uint64(2), cache.NextFrame())
	})
}
