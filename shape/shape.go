// Package shape provides the collision primitives shared by the broad
// phase, the narrow phase and the contact generators: axis-aligned boxes,
// spheres, capsules and rays, plus the support-function abstraction that
// lets any convex shape participate in GJK/EPA queries.
//
// All primitives are immutable value types. Constructors validate their
// inputs and return an error for non-finite or out-of-range values;
// geometric degeneracies (zero radius, coincident capsule endpoints,
// point-sized boxes) are legal shapes.
package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box defined by its two extreme corners.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB validates and builds a bounding box. Min must not exceed Max on
// any axis; Min == Max is a legal point volume.
func NewAABB(min, max mgl64.Vec3) (AABB, error) {
	if !finiteVec3(min) || !finiteVec3(max) {
		return AABB{}, fmt.Errorf("aabb corners must be finite, got min=%v max=%v", min, max)
	}
	for axis := 0; axis < 3; axis++ {
		if min[axis] > max[axis] {
			return AABB{}, fmt.Errorf("aabb min exceeds max on axis %d: min=%v max=%v", axis, min, max)
		}
	}
	return AABB{Min: min, Max: max}, nil
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns the half-size of the box along each axis.
func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// ContainsPoint checks if a point is inside the AABB.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap. Touching boxes count as overlapping.
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Union returns the smallest AABB enclosing both boxes.
func (a AABB) Union(other AABB) AABB {
	var out AABB
	for axis := 0; axis < 3; axis++ {
		out.Min[axis] = math.Min(a.Min[axis], other.Min[axis])
		out.Max[axis] = math.Max(a.Max[axis], other.Max[axis])
	}
	return out
}

// Expanded returns the box grown by margin on every side. Hosts use this to
// fatten bounds around moving bodies before the broad phase.
func (a AABB) Expanded(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// ClosestPoint clamps a point onto the box.
func (a AABB) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		out[axis] = math.Min(math.Max(point[axis], a.Min[axis]), a.Max[axis])
	}
	return out
}

// Sphere is a center and a radius.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// NewSphere validates and builds a sphere. A zero radius is legal.
func NewSphere(center mgl64.Vec3, radius float64) (Sphere, error) {
	if !finiteVec3(center) || !isFinite(radius) {
		return Sphere{}, fmt.Errorf("sphere must be finite, got center=%v radius=%v", center, radius)
	}
	if radius < 0 {
		return Sphere{}, fmt.Errorf("sphere radius must not be negative, got %v", radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Capsule is the set of points within Radius of the segment [Start, End].
// Coincident endpoints degenerate to a sphere, which is legal.
type Capsule struct {
	Start  mgl64.Vec3
	End    mgl64.Vec3
	Radius float64
}

// NewCapsule validates and builds a capsule.
func NewCapsule(start, end mgl64.Vec3, radius float64) (Capsule, error) {
	if !finiteVec3(start) || !finiteVec3(end) || !isFinite(radius) {
		return Capsule{}, fmt.Errorf("capsule must be finite, got start=%v end=%v radius=%v", start, end, radius)
	}
	if radius < 0 {
		return Capsule{}, fmt.Errorf("capsule radius must not be negative, got %v", radius)
	}
	return Capsule{Start: start, End: end, Radius: radius}, nil
}

// Bounds returns the world AABB of the capsule.
func (c Capsule) Bounds() AABB {
	var out AABB
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	for axis := 0; axis < 3; axis++ {
		out.Min[axis] = math.Min(c.Start[axis], c.End[axis])
		out.Max[axis] = math.Max(c.Start[axis], c.End[axis])
	}
	out.Min = out.Min.Sub(r)
	out.Max = out.Max.Add(r)
	return out
}

// Bounds returns the world AABB of the sphere.
func (s Sphere) Bounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec3(v mgl64.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}
