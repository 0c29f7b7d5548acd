package dynamis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/dynamis/shape"
)

// MeshComponent carries the collision metadata a host attaches alongside a
// mesh-backed item: its world bounds and an optional filter. Keeping it a
// component the host stores next to the item avoids process-wide side
// tables keyed on mesh objects.
type MeshComponent struct {
	Bounds shape.AABB
	Filter *Filter
}

// ActiveFilter resolves the component's filter, defaulting when unset.
func (c MeshComponent) ActiveFilter() Filter {
	if c.Filter != nil {
		return *c.Filter
	}
	return DefaultFilter()
}

// ComponentBounds adapts a component lookup into the world's bounds
// provider.
func ComponentBounds[T comparable](components func(item T) MeshComponent) BoundsFunc[T] {
	return func(item T) shape.AABB {
		return components(item).Bounds
	}
}

// ComponentFilter adapts a component lookup into the world's filter
// provider.
func ComponentFilter[T comparable](components func(item T) MeshComponent) FilterFunc[T] {
	return func(item T) *Filter {
		f := components(item).ActiveFilter()
		return &f
	}
}

// Meshlet is one sub-bound of a packed mesh: a local cluster AABB plus the
// cluster's normal cone (axis and cosine cutoff) when the packer provides
// one. A zero ConeAxis means no cone.
type Meshlet struct {
	Bounds     shape.AABB
	ConeAxis   mgl64.Vec3
	ConeCutoff float64
}

// hasCone reports whether the meshlet carries usable cone data.
func (m Meshlet) hasCone() bool {
	return m.ConeAxis.LenSqr() > 0
}

// MeshShape is the coarse collision view of a packed mesh: one world AABB
// for the broad phase, a filter, and the meshlet sub-bounds for coarse ray
// queries. It does not resolve individual triangles.
type MeshShape struct {
	Bounds   shape.AABB
	Filter   Filter
	Meshlets []Meshlet
}

// NewMeshShape validates and builds a mesh shape. Every meshlet bound must
// lie within the overall bounds.
func NewMeshShape(bounds shape.AABB, meshlets []Meshlet) (*MeshShape, error) {
	for i, meshlet := range meshlets {
		if !bounds.ContainsPoint(meshlet.Bounds.Min) || !bounds.ContainsPoint(meshlet.Bounds.Max) {
			return nil, fmt.Errorf("meshlet %d bounds %v outside mesh bounds %v", i, meshlet.Bounds, bounds)
		}
	}
	return &MeshShape{Bounds: bounds, Filter: DefaultFilter(), Meshlets: meshlets}, nil
}

// WorldAABB returns the mesh's overall world bounds.
func (m *MeshShape) WorldAABB() shape.AABB {
	return m.Bounds
}

// MeshHit is the result of a coarse ray query: distance along the unit ray
// direction, the hit point, and an approximate surface normal taken from
// the hit meshlet's cone axis, or from the struck AABB face when the
// meshlet has no cone.
type MeshHit struct {
	Distance float64
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
}

// Raycast walks the meshlet sub-bounds and returns the nearest hit.
// Meshlets whose normal cone faces away from the ray are rejected before
// the box test: a cluster entirely back-facing to the ray direction
// cannot present a front surface to it. Ties on distance keep the
// earliest meshlet, so results are deterministic for a fixed meshlet
// order. A mesh with no meshlets falls back to the overall bounds.
func (m *MeshShape) Raycast(ray shape.Ray) (MeshHit, bool) {
	dir := ray.Dir.Normalize()

	if len(m.Meshlets) == 0 {
		distance, ok := shape.RayAABB(ray, m.Bounds)
		if !ok {
			return MeshHit{}, false
		}
		point := ray.At(distance)
		return MeshHit{Distance: distance, Point: point, Normal: aabbFaceNormal(m.Bounds, point, dir)}, true
	}

	best := MeshHit{Distance: math.Inf(1)}
	found := false
	for _, meshlet := range m.Meshlets {
		if meshlet.hasCone() && dir.Dot(meshlet.ConeAxis.Normalize()) > meshlet.ConeCutoff {
			continue
		}
		distance, ok := shape.RayAABB(ray, meshlet.Bounds)
		if !ok || distance >= best.Distance {
			continue
		}
		point := ray.At(distance)
		normal := mgl64.Vec3{}
		if meshlet.hasCone() {
			normal = meshlet.ConeAxis.Normalize()
		} else {
			normal = aabbFaceNormal(meshlet.Bounds, point, dir)
		}
		best = MeshHit{Distance: distance, Point: point, Normal: normal}
		found = true
	}

	if !found {
		return MeshHit{}, false
	}
	return best, true
}

// aabbFaceNormal returns the outward normal of the box face nearest the
// point. For a ray that started inside the box the faces are all behind
// the hit point, so the normal opposes the ray direction instead.
func aabbFaceNormal(box shape.AABB, point mgl64.Vec3, dir mgl64.Vec3) mgl64.Vec3 {
	inside := true
	for axis := 0; axis < 3; axis++ {
		if point[axis] <= box.Min[axis] || point[axis] >= box.Max[axis] {
			inside = false
			break
		}
	}
	if inside {
		return dir.Mul(-1)
	}

	bestAxis := 0
	bestSign := 1.0
	bestDist := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if d := math.Abs(point[axis] - box.Min[axis]); d < bestDist {
			bestAxis, bestSign, bestDist = axis, -1, d
		}
		if d := math.Abs(point[axis] - box.Max[axis]); d < bestDist {
			bestAxis, bestSign, bestDist = axis, 1, d
		}
	}

	var normal mgl64.Vec3
	normal[bestAxis] = bestSign
	return normal
}
