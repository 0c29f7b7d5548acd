package dynamis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	t.Run("default filter matches everything", func(t *testing.T) {
		assert.True(t, DefaultFilter().Matches(DefaultFilter()))
		assert.True(t, DefaultFilter().Matches(Filter{Layer: 1 << 7, Mask: ^uint32(0)}))
	})

	t.Run("mutual test requires both directions", func(t *testing.T) {
		ship := Filter{Layer: 0b01, Mask: 0b10}
		rock := Filter{Layer: 0b10, Mask: 0b01}
		assert.True(t, ship.Matches(rock))
		assert.True(t, rock.Matches(ship))

		deaf := Filter{Layer: 0b10, Mask: 0b100}
		// ship hears deaf, deaf does not hear ship.
		assert.False(t, ship.Matches(deaf))
		assert.False(t, deaf.Matches(ship))
	})

	t.Run("disjoint layers never match", func(t *testing.T) {
		a := Filter{Layer: 0b001, Mask: 0b001}
		b := Filter{Layer: 0b010, Mask: 0b010}
		assert.False(t, a.Matches(b))
	})
}

func TestClassify(t *testing.T) {
	solid := Filter{Layer: 1, Mask: 1, Kind: KindSolid}
	trigger := Filter{Layer: 1, Mask: 1, Kind: KindTrigger}

	filters := map[string]*Filter{
		"ship":   &solid,
		"rock":   &solid,
		"sensor": &trigger,
	}
	filterOf := func(item string) *Filter { return filters[item] }

	t.Run("solid pair is response enabled", func(t *testing.T) {
		pair := Pair[string]{First: "ship", Second: "rock"}
		out, err := Classify([]*Pair[string]{&pair}, filterOf)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, out[0].ResponseEnabled)
	})

	t.Run("trigger pair keeps events but disables response", func(t *testing.T) {
		pair := Pair[string]{First: "ship", Second: "sensor"}
		out, err := Classify([]*Pair[string]{&pair}, filterOf)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.False(t, out[0].ResponseEnabled)
	})

	t.Run("nil filter resolves to default", func(t *testing.T) {
		pair := Pair[string]{First: "unknown", Second: "ship"}
		out, err := Classify([]*Pair[string]{&pair}, filterOf)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, out[0].ResponseEnabled)
	})

	t.Run("mismatched pair is dropped", func(t *testing.T) {
		layered := Filter{Layer: 0b10, Mask: 0b10}
		local := func(item string) *Filter {
			if item == "other" {
				return &layered
			}
			return &solid
		}
		pair := Pair[string]{First: "ship", Second: "other"}
		out, err := Classify([]*Pair[string]{&pair}, local)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("nil entries are skipped", func(t *testing.T) {
		pair := Pair[string]{First: "ship", Second: "rock"}
		out, err := Classify([]*Pair[string]{nil, &pair, nil}, filterOf)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		out, err := Classify([]*Pair[string]{}, filterOf)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("nil collection is rejected", func(t *testing.T) {
		_, err := Classify[string](nil, filterOf)
		require.Error(t, err)
	})

	t.Run("nil provider is rejected", func(t *testing.T) {
		pair := Pair[string]{First: "a", Second: "b"}
		_, err := Classify([]*Pair[string]{&pair}, nil)
		require.Error(t, err)
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "solid", KindSolid.String())
	assert.Equal(t, "trigger", KindTrigger.String())
}
