package dynamis

import (
	"fmt"
	"math"
	"sort"

	"github.com/akmonengine/dynamis/shape"
)

// BoundsFunc maps an item to its world bounding box. It must be pure for
// the duration of a frame.
type BoundsFunc[T comparable] func(item T) shape.AABB

// BroadPhase finds candidate pairs worth a narrow-phase test. Results are
// a superset of the actual AABB overlaps: false positives cost a narrow
// test, false negatives lose collisions, so only the former is allowed.
// Output order must be a deterministic function of the input order.
type BroadPhase[T comparable] interface {
	FindPotentialPairs(items []T, boundsOf BoundsFunc[T]) []Pair[T]
}

// cellKey addresses one cell of the uniform grid.
type cellKey struct {
	x, y, z int
}

// SpatialHashGrid is a uniform-grid broad phase: each item's AABB is
// rasterized into the cells it spans, and items sharing a cell become
// candidates. Suited to scenes of similarly sized bodies; a cell size
// close to the typical body size keeps both cell counts and per-cell
// occupancy small.
type SpatialHashGrid[T comparable] struct {
	cellSize float64
}

// NewSpatialHashGrid builds a grid broad phase. The cell size must be a
// positive finite number.
func NewSpatialHashGrid[T comparable](cellSize float64) (*SpatialHashGrid[T], error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("grid cell size must be positive and finite, got %v", cellSize)
	}
	return &SpatialHashGrid[T]{cellSize: cellSize}, nil
}

// cellRange returns the inclusive integer cell coordinates spanned by the
// box. A degenerate (point) box maps to a single cell.
func (g *SpatialHashGrid[T]) cellRange(box shape.AABB) (lo, hi cellKey) {
	lo = cellKey{
		x: int(math.Floor(box.Min.X() / g.cellSize)),
		y: int(math.Floor(box.Min.Y() / g.cellSize)),
		z: int(math.Floor(box.Min.Z() / g.cellSize)),
	}
	hi = cellKey{
		x: int(math.Floor(box.Max.X() / g.cellSize)),
		y: int(math.Floor(box.Max.Y() / g.cellSize)),
		z: int(math.Floor(box.Max.Z() / g.cellSize)),
	}
	return lo, hi
}

// FindPotentialPairs rasterizes every item into the grid in one pass, then
// walks each item's cells and pairs it with later-indexed co-occupants.
// The index ordering both dedupes (each unordered pair considered once per
// shared cell, once overall via seen) and makes the output order follow
// the input order.
func (g *SpatialHashGrid[T]) FindPotentialPairs(items []T, boundsOf BoundsFunc[T]) []Pair[T] {
	if len(items) < 2 {
		return nil
	}

	bounds := make([]shape.AABB, len(items))
	for i, item := range items {
		bounds[i] = boundsOf(item)
	}

	cells := make(map[cellKey][]int)
	for i := range items {
		lo, hi := g.cellRange(bounds[i])
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for z := lo.z; z <= hi.z; z++ {
					key := cellKey{x, y, z}
					cells[key] = append(cells[key], i)
				}
			}
		}
	}

	var pairs []Pair[T]
	seen := make(map[[2]int]struct{})
	for i := range items {
		lo, hi := g.cellRange(bounds[i])
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for z := lo.z; z <= hi.z; z++ {
					for _, j := range cells[cellKey{x, y, z}] {
						if j <= i {
							continue
						}
						if _, dup := seen[[2]int{i, j}]; dup {
							continue
						}
						seen[[2]int{i, j}] = struct{}{}
						if bounds[i].Overlaps(bounds[j]) {
							pairs = append(pairs, Pair[T]{First: items[i], Second: items[j]})
						}
					}
				}
			}
		}
	}

	return pairs
}

// SweepAndPrune is a sort-based broad phase: items sorted by their minimum
// X coordinate are swept with an active list, and only Y/Z intervals of
// X-overlapping items are compared. Output-sensitive and strong on spread-
// out scenes; degrades when everything stacks on one X slab.
type SweepAndPrune[T comparable] struct{}

// NewSweepAndPrune builds a sweep-and-prune broad phase.
func NewSweepAndPrune[T comparable]() *SweepAndPrune[T] {
	return &SweepAndPrune[T]{}
}

// FindPotentialPairs sorts stably on min X (ties keep input order), sweeps
// left to right evicting active items that ended before the current one
// starts, and emits a pair for every remaining active item whose Y and Z
// intervals overlap too.
func (s *SweepAndPrune[T]) FindPotentialPairs(items []T, boundsOf BoundsFunc[T]) []Pair[T] {
	if len(items) < 2 {
		return nil
	}

	bounds := make([]shape.AABB, len(items))
	for i, item := range items {
		bounds[i] = boundsOf(item)
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bounds[order[a]].Min.X() < bounds[order[b]].Min.X()
	})

	var pairs []Pair[T]
	active := make([]int, 0, len(items))
	for _, cur := range order {
		// Evict everything that ends before the current item starts. The
		// sort guarantees no later item can reach back to them either.
		n := 0
		for _, idx := range active {
			if bounds[idx].Max.X() >= bounds[cur].Min.X() {
				active[n] = idx
				n++
			}
		}
		active = active[:n]

		for _, idx := range active {
			if bounds[idx].Max.Y() >= bounds[cur].Min.Y() && bounds[idx].Min.Y() <= bounds[cur].Max.Y() &&
				bounds[idx].Max.Z() >= bounds[cur].Min.Z() && bounds[idx].Min.Z() <= bounds[cur].Max.Z() {
				pairs = append(pairs, Pair[T]{First: items[idx], Second: items[cur]})
			}
		}

		active = append(active, cur)
	}

	return pairs
}
